package document

import "strings"

// OutlineNode is one (possibly nested) heading in the tutorial skeleton.
// Outlines are produced fresh from a single model response and never mutated
// afterwards, so the tree is guaranteed acyclic.
type OutlineNode struct {
	Title    string        `json:"title"`
	Bullets  []string      `json:"bullets,omitempty"`
	Children []OutlineNode `json:"children,omitempty"`
}

// RenderOutline renders an outline tree as a Markdown skeleton: headings for
// nodes, list items for bullets. Depth maps to heading level starting at H2.
func RenderOutline(nodes []OutlineNode) string {
	var sb strings.Builder
	for _, n := range nodes {
		renderNode(&sb, n, 2)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func renderNode(sb *strings.Builder, n OutlineNode, level int) {
	if level > 6 {
		level = 6
	}
	sb.WriteString(strings.Repeat("#", level))
	sb.WriteString(" ")
	sb.WriteString(n.Title)
	sb.WriteString("\n\n")
	for _, b := range n.Bullets {
		sb.WriteString("- ")
		sb.WriteString(b)
		sb.WriteString("\n")
	}
	if len(n.Bullets) > 0 {
		sb.WriteString("\n")
	}
	for _, c := range n.Children {
		renderNode(sb, c, level+1)
	}
}
