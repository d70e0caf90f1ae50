package refine

import (
	"context"
	"strings"
	"testing"

	"github.com/docentlabs/docent/internal/backend"
	"github.com/docentlabs/docent/internal/document"
)

func testDraft() *document.TutorialDraft {
	return &document.TutorialDraft{
		Content: "# Widgets\n\nA rough draft about widgets.\n",
		Status:  document.StatusDraft,
	}
}

func TestRefine(t *testing.T) {
	ctx := context.Background()

	t.Run("successful refinement", func(t *testing.T) {
		mock := backend.NewMockBackend()
		mock.ResponseText = "# Widgets\n\nA polished draft about widgets.\n"
		r := New(mock, Config{Model: "m"})

		got := r.Refine(ctx, testDraft())
		if got.Status != document.StatusRefined {
			t.Errorf("Status = %q, want refined", got.Status)
		}
		if !strings.Contains(got.Content, "polished") {
			t.Errorf("Content = %q", got.Content)
		}
	})

	t.Run("draft wrapped in delimiters", func(t *testing.T) {
		mock := backend.NewMockBackend()
		mock.RespondFunc = func(req *backend.CompletionRequest) string {
			last := req.Messages[len(req.Messages)-1]
			if !strings.Contains(last.Content, "--- Draft Tutorial Start ---") {
				t.Error("prompt missing start delimiter")
			}
			if !strings.Contains(last.Content, "rough draft") {
				t.Error("prompt missing draft body")
			}
			return "revised"
		}
		r := New(mock, Config{})

		r.Refine(ctx, testDraft())
	})

	t.Run("empty output keeps original as unrefined", func(t *testing.T) {
		mock := backend.NewMockBackend()
		mock.ResponseText = "   "
		r := New(mock, Config{})

		orig := testDraft()
		got := r.Refine(ctx, orig)
		if got.Status != document.StatusUnrefined {
			t.Fatalf("Status = %q, want unrefined", got.Status)
		}
		if got.Content != orig.Content {
			t.Error("original content not preserved")
		}
	})

	t.Run("backend failure keeps original as refinement_failed", func(t *testing.T) {
		mock := backend.NewMockBackend()
		mock.ShouldFail = true
		r := New(mock, Config{})

		orig := testDraft()
		got := r.Refine(ctx, orig)
		if got.Status != document.StatusRefinementFailed {
			t.Fatalf("Status = %q, want refinement_failed", got.Status)
		}
		if got.Content != orig.Content {
			t.Error("original content not preserved")
		}
		if got.ErrorMessage == "" {
			t.Error("expected error message")
		}
	})

	t.Run("one result nesting level unwraps", func(t *testing.T) {
		mock := backend.NewMockBackend()
		mock.NestResult = true
		mock.ResponseText = "unwrapped revision"
		r := New(mock, Config{})

		got := r.Refine(ctx, testDraft())
		if got.Status != document.StatusRefined {
			t.Fatalf("Status = %q, want refined", got.Status)
		}
		if got.Content != "unwrapped revision" {
			t.Errorf("Content = %q", got.Content)
		}
	})

	t.Run("idempotent at a fixed point", func(t *testing.T) {
		fixed := "# Final\n\nNothing to improve.\n"
		mock := backend.NewMockBackend()
		mock.ResponseText = fixed
		r := New(mock, Config{})

		first := r.Refine(ctx, &document.TutorialDraft{Content: fixed, Status: document.StatusDraft})
		second := r.Refine(ctx, first)
		if second.Content != first.Content {
			t.Error("refinement changed content at a fixed point")
		}
		if second.Status != document.StatusRefined {
			t.Errorf("Status = %q, want refined", second.Status)
		}
	})

	t.Run("nil draft", func(t *testing.T) {
		r := New(backend.NewMockBackend(), Config{})
		got := r.Refine(ctx, nil)
		if got.Status != document.StatusRefinementFailed {
			t.Errorf("Status = %q, want refinement_failed", got.Status)
		}
	})
}
