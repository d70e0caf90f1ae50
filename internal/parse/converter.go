// Package parse turns retrieved sources into ordered content blocks. The
// converter and chunker can fail; the Parser wraps them with a
// degrade-not-fail policy so callers always receive at least one block.
package parse

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"
	pdfcpu "github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/docentlabs/docent/internal/document"
	"github.com/docentlabs/docent/internal/retrieve"
)

// ItemKind distinguishes text content from image references.
type ItemKind string

const (
	KindText  ItemKind = "text"
	KindImage ItemKind = "image"
)

// Item is one converted content unit, before chunking.
type Item struct {
	Kind ItemKind
	// Text is chunk text for KindText, an image reference for KindImage.
	Text string
	Meta map[string]string
}

// Converter turns a retrieved source into ordered content items. It may
// fail; the Parser handles degradation.
type Converter interface {
	Convert(ctx context.Context, src *retrieve.Retrieved) ([]Item, error)
}

// noiseSelectors are HTML elements stripped before extraction. They
// contribute no tutorial content.
var noiseSelectors = []string{
	"script", "style", "noscript",
	"nav", "footer", "header",
	"iframe", "video", "audio",
	"svg", "canvas",
	"form", "button", "input", "select", "textarea",
	".sidebar", ".menu", ".navigation", ".ads", ".advertisement",
}

// imageExtensions are recognized image file suffixes.
var imageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp"}

// HasImageExtension reports whether ref ends in a recognized image suffix.
func HasImageExtension(ref string) bool {
	lower := strings.ToLower(strings.TrimSpace(ref))
	for _, ext := range imageExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// DocConverter is the production converter: PDFs via page-wise text
// extraction, HTML via content isolation and Markdown normalization.
type DocConverter struct {
	logger *slog.Logger
}

// NewDocConverter creates a DocConverter.
func NewDocConverter(logger *slog.Logger) *DocConverter {
	if logger == nil {
		logger = slog.Default()
	}
	return &DocConverter{logger: logger}
}

// Convert dispatches on the retrieved format.
func (c *DocConverter) Convert(ctx context.Context, src *retrieve.Retrieved) ([]Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if src.IsPDF() {
		return c.convertPDF(src.PDFPath)
	}
	return c.convertHTML(src.Text, src.Origin)
}

// convertPDF extracts text page by page. The file is validated and counted
// up front so a corrupt PDF fails before partial extraction.
func (c *DocConverter) convertPDF(path string) ([]Item, error) {
	pageCount, err := pdfcpu.PageCountFile(path)
	if err != nil {
		return nil, fmt.Errorf("pdf validation failed: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to read pdf: %w", err)
	}

	var items []Item
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			c.logger.Warn("pdf page extraction failed", "page", i, "error", err)
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		items = append(items, Item{
			Kind: KindText,
			Text: text,
			Meta: map[string]string{
				document.MetaPage:      strconv.Itoa(i),
				document.MetaPageCount: strconv.Itoa(pageCount),
			},
		})
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("no extractable text in %d-page pdf", pageCount)
	}
	return items, nil
}

// convertHTML isolates the main content container, collects image
// references, and normalizes the remainder to Markdown. origin is the
// retrieval source; relative image references resolve against it when it
// names a file on disk.
func (c *DocConverter) convertHTML(html, origin string) ([]Item, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	for _, sel := range noiseSelectors {
		doc.Find(sel).Remove()
	}

	// Collect image references before stripping the elements, so the
	// analyzer's vision path still sees them. Only references that name a
	// readable local file survive.
	var images []Item
	doc.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
		src, ok := s.Attr("src")
		if !ok || !HasImageExtension(src) {
			return
		}
		local, ok := localImageRef(src, origin)
		if !ok {
			return
		}
		images = append(images, Item{Kind: KindImage, Text: local})
	})
	doc.Find("img, picture, figure, figcaption").Remove()

	// <main> is the most semantically correct container, then <article>,
	// then <body>.
	var content *goquery.Selection
	for _, tag := range []string{"main", "article", "body"} {
		sel := doc.Find(tag)
		if sel.Length() > 0 {
			content = sel.First()
			break
		}
	}
	if content == nil {
		return nil, fmt.Errorf("no content container found in HTML")
	}

	fragment, err := goquery.OuterHtml(content)
	if err != nil {
		return nil, fmt.Errorf("serializing content: %w", err)
	}

	markdown, err := htmltomarkdown.ConvertString(fragment)
	if err != nil {
		return nil, fmt.Errorf("converting HTML to markdown: %w", err)
	}
	markdown = strings.TrimSpace(markdown)
	if markdown == "" && len(images) == 0 {
		return nil, fmt.Errorf("no content extracted from HTML")
	}

	items := make([]Item, 0, len(images)+1)
	if markdown != "" {
		items = append(items, Item{Kind: KindText, Text: markdown})
	}
	items = append(items, images...)
	return items, nil
}

// localImageRef maps an img src to a path on disk. Remote, protocol-relative,
// and data: references are dropped (images in pages fetched over HTTP are not
// downloaded), and page-relative paths in such pages point at the server, not
// the local filesystem. Relative references in HTML read from disk resolve
// against the file's directory.
func localImageRef(ref, origin string) (string, bool) {
	if strings.Contains(ref, "://") || strings.HasPrefix(ref, "//") || strings.HasPrefix(ref, "data:") {
		return "", false
	}
	if strings.HasPrefix(origin, "http://") || strings.HasPrefix(origin, "https://") {
		return "", false
	}
	if filepath.IsAbs(ref) || origin == "" {
		return ref, true
	}
	return filepath.Join(filepath.Dir(origin), ref), true
}

// Verify interface
var _ Converter = (*DocConverter)(nil)
