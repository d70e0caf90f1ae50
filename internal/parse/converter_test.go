package parse

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/docentlabs/docent/internal/document"
	"github.com/docentlabs/docent/internal/retrieve"
)

func TestLocalImageRef(t *testing.T) {
	tests := []struct {
		name   string
		ref    string
		origin string
		want   string
		ok     bool
	}{
		{"remote url dropped", "https://cdn.example.com/fig.png", "/docs/page.html", "", false},
		{"protocol-relative dropped", "//cdn.example.com/fig.png", "/docs/page.html", "", false},
		{"data uri dropped", "data:image/png;base64,AAAA.png", "/docs/page.html", "", false},
		{"relative ref from remote page dropped", "images/fig.png", "https://example.com/guide", "", false},
		{"absolute ref from remote page dropped", "/images/fig.png", "http://example.com/guide", "", false},
		{"absolute path kept", "/srv/images/fig.png", "/docs/page.html", "/srv/images/fig.png", true},
		{"relative path resolves against file dir", "images/fig.png", "/docs/page.html", filepath.Join("/docs", "images", "fig.png"), true},
		{"bare name with empty origin kept", "fig.png", "", "fig.png", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := localImageRef(tt.ref, tt.origin)
			if ok != tt.ok {
				t.Fatalf("localImageRef(%q, %q) ok = %v, want %v", tt.ref, tt.origin, ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("localImageRef(%q, %q) = %q, want %q", tt.ref, tt.origin, got, tt.want)
			}
		})
	}
}

func TestConvertHTMLImages(t *testing.T) {
	ctx := context.Background()
	conv := NewDocConverter(nil)

	const page = `<html><body><main>
		<p>Widgets compose.</p>
		<img src="https://cdn.example.com/remote.png">
		<img src="diagrams/local.png">
	</main></body></html>`

	t.Run("remote page keeps no image refs", func(t *testing.T) {
		items, err := conv.Convert(ctx, &retrieve.Retrieved{
			Text:   page,
			Format: document.FormatHTML,
			Origin: "https://example.com/widgets",
		})
		if err != nil {
			t.Fatalf("Convert() error = %v", err)
		}
		for _, item := range items {
			if item.Kind == KindImage {
				t.Errorf("unexpected image item %q from remote page", item.Text)
			}
		}
	})

	t.Run("local page resolves relative refs", func(t *testing.T) {
		items, err := conv.Convert(ctx, &retrieve.Retrieved{
			Text:   page,
			Format: document.FormatHTML,
			Origin: "/home/user/widgets.html",
		})
		if err != nil {
			t.Fatalf("Convert() error = %v", err)
		}
		var images []string
		for _, item := range items {
			if item.Kind == KindImage {
				images = append(images, item.Text)
			}
		}
		want := filepath.Join("/home/user", "diagrams", "local.png")
		if len(images) != 1 || images[0] != want {
			t.Errorf("image refs = %v, want [%s]", images, want)
		}
		if !strings.Contains(items[0].Text, "Widgets compose") {
			t.Errorf("text item lost: %q", items[0].Text)
		}
	})
}
