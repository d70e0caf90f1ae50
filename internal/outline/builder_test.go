package outline

import (
	"context"
	"errors"
	"testing"

	"github.com/docentlabs/docent/internal/backend"
	"github.com/docentlabs/docent/internal/document"
)

func sampleInsights() []document.Insight {
	return []document.Insight{
		{Role: document.RoleTitle, Summary: "Getting started with widgets"},
		{Role: document.RoleConcept, Summary: "Widgets compose into panels"},
		{Role: document.RoleStep, Summary: "Install the widget toolkit"},
		{Role: document.RoleConclusion, Summary: "Recap and next steps"},
	}
}

func TestBuild(t *testing.T) {
	ctx := context.Background()

	t.Run("outline from model JSON", func(t *testing.T) {
		mock := backend.NewMockBackend()
		mock.ResponseJSON = []byte(`[
			{"title": "Introduction", "bullets": ["why widgets"]},
			{"title": "Installing", "bullets": ["toolkit setup"], "children": [{"title": "Verify"}]},
			{"title": "Conclusion", "bullets": ["recap"]}
		]`)
		b := New(mock, Config{Model: "m"})

		nodes, err := b.Build(ctx, sampleInsights())
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		if len(nodes) != 3 {
			t.Fatalf("got %d sections, want 3", len(nodes))
		}
		if nodes[0].Title != "Introduction" {
			t.Errorf("first section = %q, want Introduction", nodes[0].Title)
		}
		if nodes[len(nodes)-1].Title != "Conclusion" {
			t.Errorf("last section = %q, want Conclusion", nodes[len(nodes)-1].Title)
		}
		if len(nodes[1].Children) != 1 {
			t.Errorf("nested children not decoded: %+v", nodes[1])
		}
	})

	t.Run("empty insights is a structuring error", func(t *testing.T) {
		b := New(backend.NewMockBackend(), Config{})

		_, err := b.Build(ctx, nil)
		var serr *StructuringError
		if !errors.As(err, &serr) {
			t.Fatalf("error = %v, want StructuringError", err)
		}
	})

	t.Run("backend failure is a structuring error", func(t *testing.T) {
		mock := backend.NewMockBackend()
		mock.ShouldFail = true
		b := New(mock, Config{})

		_, err := b.Build(ctx, sampleInsights())
		var serr *StructuringError
		if !errors.As(err, &serr) {
			t.Fatalf("error = %v, want StructuringError", err)
		}
	})

	t.Run("unparsable output yields empty outline without error", func(t *testing.T) {
		mock := backend.NewMockBackend()
		mock.ResponseJSON = []byte(`"not an outline"`)
		b := New(mock, Config{})

		nodes, err := b.Build(ctx, sampleInsights())
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		if len(nodes) != 0 {
			t.Errorf("got %d nodes, want 0", len(nodes))
		}
	})

	t.Run("prose output yields empty outline without error", func(t *testing.T) {
		mock := backend.NewMockBackend()
		mock.ResponseText = "I am unable to produce an outline."
		b := New(mock, Config{})

		nodes, err := b.Build(ctx, sampleInsights())
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		if len(nodes) != 0 {
			t.Errorf("got %d nodes, want 0", len(nodes))
		}
	})

	t.Run("object wrapper unwrapped", func(t *testing.T) {
		mock := backend.NewMockBackend()
		mock.ResponseJSON = []byte(`{"outline": [{"title": "Only Section"}]}`)
		b := New(mock, Config{})

		nodes, err := b.Build(ctx, sampleInsights())
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		if len(nodes) != 1 || nodes[0].Title != "Only Section" {
			t.Errorf("wrapper not unwrapped: %+v", nodes)
		}
	})
}
