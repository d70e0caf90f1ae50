package parse

import (
	"context"
	"log/slog"
	"strings"

	"github.com/docentlabs/docent/internal/document"
	"github.com/docentlabs/docent/internal/retrieve"
)

// Parser converts a retrieved source into ordered content blocks. Parse
// never fails: when conversion or chunking breaks, it returns a single
// pass-through block tagged with a parse_error marker so downstream stages
// still receive well-formed input.
type Parser struct {
	conv    Converter
	chunker *Chunker
	logger  *slog.Logger
}

// New creates a Parser.
func New(conv Converter, chunker *Chunker, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{conv: conv, chunker: chunker, logger: logger}
}

// Parse returns at least one block, preserving source order in Index.
func (p *Parser) Parse(ctx context.Context, src *retrieve.Retrieved) []document.ContentBlock {
	items, err := p.conv.Convert(ctx, src)
	if err != nil {
		p.logger.Warn("conversion failed, returning raw content as single block",
			"source", src.Origin, "error", err)
		return p.fallback(src, err.Error())
	}
	if len(items) == 0 {
		return p.fallback(src, "conversion produced no content")
	}

	var blocks []document.ContentBlock
	for _, item := range items {
		switch item.Kind {
		case KindImage:
			blocks = append(blocks, p.newBlock(src, item.Text, KindImage, item.Meta, len(blocks)))
		default:
			chunks, err := p.chunker.Split(item.Text)
			if err != nil || len(chunks) == 0 {
				// Keep the unsplit text rather than dropping the item.
				if err != nil {
					p.logger.Warn("chunking failed, keeping unsplit text", "error", err)
				}
				chunks = []string{item.Text}
			}
			for _, chunk := range chunks {
				if strings.TrimSpace(chunk) == "" {
					continue
				}
				blocks = append(blocks, p.newBlock(src, chunk, KindText, item.Meta, len(blocks)))
			}
		}
	}

	if len(blocks) == 0 {
		return p.fallback(src, "chunking produced no blocks")
	}

	p.logger.Info("parsed document", "source", src.Origin, "blocks", len(blocks))
	return blocks
}

func (p *Parser) newBlock(src *retrieve.Retrieved, text string, kind ItemKind, extra map[string]string, index int) document.ContentBlock {
	meta := map[string]string{
		document.MetaKind: string(kind),
		"source":          src.Origin,
	}
	for k, v := range extra {
		meta[k] = v
	}
	return document.ContentBlock{
		Text:     text,
		Format:   src.Format,
		Index:    index,
		Metadata: meta,
	}
}

// fallback wraps the raw input as one error-tagged block. Downstream stages
// must tolerate a 1-block document.
func (p *Parser) fallback(src *retrieve.Retrieved, reason string) []document.ContentBlock {
	text := src.Text
	if src.IsPDF() {
		text = src.PDFPath
	}
	return []document.ContentBlock{{
		Text:   text,
		Format: src.Format,
		Index:  0,
		Metadata: map[string]string{
			document.MetaKind:       string(KindText),
			document.MetaParseError: reason,
			"source":                src.Origin,
		},
	}}
}
