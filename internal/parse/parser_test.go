package parse

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/docentlabs/docent/internal/document"
	"github.com/docentlabs/docent/internal/retrieve"
)

// stubConverter returns canned items or a canned error.
type stubConverter struct {
	items []Item
	err   error
}

func (s *stubConverter) Convert(ctx context.Context, src *retrieve.Retrieved) ([]Item, error) {
	return s.items, s.err
}

func htmlSource(text string) *retrieve.Retrieved {
	return &retrieve.Retrieved{
		Text:   text,
		Format: document.FormatHTML,
		Origin: "test://source",
	}
}

func TestParse(t *testing.T) {
	ctx := context.Background()

	t.Run("text items chunked in order", func(t *testing.T) {
		conv := &stubConverter{items: []Item{
			{Kind: KindText, Text: "first section body"},
			{Kind: KindText, Text: "second section body"},
		}}
		p := New(conv, NewChunker(1000, 100), nil)

		blocks := p.Parse(ctx, htmlSource("ignored"))
		if len(blocks) != 2 {
			t.Fatalf("got %d blocks, want 2", len(blocks))
		}
		for i, b := range blocks {
			if b.Index != i {
				t.Errorf("block %d has Index %d", i, b.Index)
			}
			if b.Meta(document.MetaKind) != "text" {
				t.Errorf("block %d kind = %q", i, b.Meta(document.MetaKind))
			}
			if b.Meta(document.MetaParseError) != "" {
				t.Errorf("block %d unexpectedly marked degraded", i)
			}
		}
		if blocks[0].Text != "first section body" {
			t.Errorf("order not preserved: %q", blocks[0].Text)
		}
	})

	t.Run("long text splits into multiple blocks", func(t *testing.T) {
		long := strings.Repeat("some words to fill a chunk. ", 40)
		conv := &stubConverter{items: []Item{{Kind: KindText, Text: long}}}
		p := New(conv, NewChunker(200, 20), nil)

		blocks := p.Parse(ctx, htmlSource(long))
		if len(blocks) < 2 {
			t.Fatalf("got %d blocks, want several for %d chars", len(blocks), len(long))
		}
		for i, b := range blocks {
			if b.Index != i {
				t.Errorf("block %d has Index %d", i, b.Index)
			}
		}
	})

	t.Run("image items become single blocks", func(t *testing.T) {
		conv := &stubConverter{items: []Item{
			{Kind: KindText, Text: "intro text"},
			{Kind: KindImage, Text: "diagram.png"},
		}}
		p := New(conv, NewChunker(1000, 100), nil)

		blocks := p.Parse(ctx, htmlSource("ignored"))
		if len(blocks) != 2 {
			t.Fatalf("got %d blocks, want 2", len(blocks))
		}
		img := blocks[1]
		if img.Meta(document.MetaKind) != "image" {
			t.Errorf("kind = %q, want image", img.Meta(document.MetaKind))
		}
		if img.Text != "diagram.png" {
			t.Errorf("Text = %q", img.Text)
		}
	})

	t.Run("conversion error degrades to single block", func(t *testing.T) {
		conv := &stubConverter{err: errors.New("unsupported structure")}
		p := New(conv, NewChunker(1000, 100), nil)

		src := htmlSource("raw original content")
		blocks := p.Parse(ctx, src)
		if len(blocks) != 1 {
			t.Fatalf("got %d blocks, want 1 fallback block", len(blocks))
		}
		b := blocks[0]
		if b.Text != "raw original content" {
			t.Errorf("fallback should carry raw text, got %q", b.Text)
		}
		if b.Meta(document.MetaParseError) == "" {
			t.Error("fallback block missing parse_error marker")
		}
		if b.Index != 0 {
			t.Errorf("Index = %d, want 0", b.Index)
		}
	})

	t.Run("no items degrades to single block", func(t *testing.T) {
		conv := &stubConverter{}
		p := New(conv, NewChunker(1000, 100), nil)

		blocks := p.Parse(ctx, htmlSource("still here"))
		if len(blocks) != 1 {
			t.Fatalf("got %d blocks, want 1", len(blocks))
		}
		if blocks[0].Meta(document.MetaParseError) == "" {
			t.Error("expected parse_error marker")
		}
	})

	t.Run("blank chunks skipped", func(t *testing.T) {
		conv := &stubConverter{items: []Item{
			{Kind: KindText, Text: "   "},
			{Kind: KindText, Text: "real content"},
		}}
		p := New(conv, NewChunker(1000, 100), nil)

		blocks := p.Parse(ctx, htmlSource("ignored"))
		if len(blocks) != 1 {
			t.Fatalf("got %d blocks, want 1", len(blocks))
		}
		if blocks[0].Text != "real content" {
			t.Errorf("Text = %q", blocks[0].Text)
		}
	})
}

func TestHasImageExtension(t *testing.T) {
	tests := []struct {
		ref  string
		want bool
	}{
		{"diagram.png", true},
		{"photo.JPEG", true},
		{"/tmp/x.webp", true},
		{"notes.txt", false},
		{"archive.pdf", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := HasImageExtension(tt.ref); got != tt.want {
			t.Errorf("HasImageExtension(%q) = %v, want %v", tt.ref, got, tt.want)
		}
	}
}
