// Package document defines the data types that flow between pipeline stages:
// content blocks from the parser, insights from the analyzer, outline nodes
// from the structurer, and the tutorial draft itself.
package document

// SourceFormat identifies the format of the retrieved source.
type SourceFormat string

const (
	FormatPDF     SourceFormat = "pdf"
	FormatHTML    SourceFormat = "html"
	FormatUnknown SourceFormat = "unknown"
)

// ContentBlock is one unit of parsed document content. Blocks are created
// once by the parser and never mutated afterwards; downstream stages wrap
// them into richer records instead.
type ContentBlock struct {
	// Text is the chunk text, or a filesystem reference for image blocks.
	Text string `json:"text"`

	// Format is the source format the block came from.
	Format SourceFormat `json:"source_format"`

	// Index is the block's position in origin order. It is stable across
	// the whole pipeline.
	Index int `json:"sequence_index"`

	// Metadata carries free-form origin metadata forward (page numbers,
	// degradation markers, block kind).
	Metadata map[string]string `json:"origin_metadata,omitempty"`
}

// Meta returns the metadata value for key, or "" if unset.
func (b *ContentBlock) Meta(key string) string {
	if b.Metadata == nil {
		return ""
	}
	return b.Metadata[key]
}

// Well-known metadata keys set by the parser.
const (
	MetaKind       = "kind"        // "text" or "image"
	MetaPage       = "page"        // origin page number for PDF blocks
	MetaPageCount  = "page_count"  // total pages in the source PDF
	MetaParseError = "parse_error" // set on the degraded single-block fallback
)
