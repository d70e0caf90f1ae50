package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/docentlabs/docent/internal/analyze"
	"github.com/docentlabs/docent/internal/backend"
	"github.com/docentlabs/docent/internal/draft"
	"github.com/docentlabs/docent/internal/outline"
	"github.com/docentlabs/docent/internal/parse"
	"github.com/docentlabs/docent/internal/pipeline"
	"github.com/docentlabs/docent/internal/refine"
	"github.com/docentlabs/docent/internal/retrieve"
)

type passthroughConverter struct{}

func (passthroughConverter) Convert(ctx context.Context, src *retrieve.Retrieved) ([]parse.Item, error) {
	return []parse.Item{{Kind: parse.KindText, Text: src.Text}}, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	mock := backend.NewMockBackend()
	mock.RespondFunc = func(req *backend.CompletionRequest) string {
		if req.ResponseFormat != nil {
			schema := string(req.ResponseFormat.JSONSchema)
			switch {
			case strings.Contains(schema, `"block_analysis"`):
				return `{"role": "concept", "summary": "a block"}`
			case strings.Contains(schema, `"tutorial_outline"`):
				return `[{"title": "Introduction"}, {"title": "Conclusion"}]`
			}
		}
		last := req.Messages[len(req.Messages)-1]
		if strings.Contains(last.Content, "--- Draft Tutorial Start ---") {
			return "# Tutorial\n\nRefined body.\n"
		}
		return "# Tutorial\n\nDraft body.\n"
	}

	pipe := pipeline.New(pipeline.Deps{
		RetrieveConfig: retrieve.Config{Timeout: 5 * time.Second, MaxAttempts: 1},
		Parser:         parse.New(passthroughConverter{}, parse.NewChunker(1000, 100), nil),
		Analyzer:       analyze.New(mock, analyze.Config{}),
		Builder:        outline.New(mock, outline.Config{}),
		Drafter:        draft.New(mock, draft.Config{}),
		Refiner:        refine.New(mock, refine.Config{}),
	})

	srv, err := New(Config{Pipeline: pipe})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return srv
}

func TestHealthRoute(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "OK" {
		t.Errorf("body = %q, want OK", rec.Body.String())
	}
}

func TestGenerateRoute(t *testing.T) {
	t.Run("JSON source", func(t *testing.T) {
		src := filepath.Join(t.TempDir(), "doc.txt")
		if err := os.WriteFile(src, []byte("source material"), 0o644); err != nil {
			t.Fatal(err)
		}

		srv := newTestServer(t)
		body, _ := json.Marshal(GenerateRequest{Source: src})
		req := httptest.NewRequest(http.MethodPost, "/generate", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
		}
		var resp GenerateResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("Unmarshal() error = %v", err)
		}
		if resp.RunID == "" {
			t.Error("missing run_id")
		}
		if !strings.Contains(resp.Markdown, "Refined body") {
			t.Errorf("markdown = %q", resp.Markdown)
		}
		if len(resp.Outline) != 2 {
			t.Errorf("outline sections = %d, want 2", len(resp.Outline))
		}
	})

	t.Run("multipart upload", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, err := mw.CreateFormFile("file", "notes.txt")
		if err != nil {
			t.Fatal(err)
		}
		fw.Write([]byte("uploaded material"))
		mw.Close()

		srv := newTestServer(t)
		req := httptest.NewRequest(http.MethodPost, "/generate", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
		}
		if srv.uploads.Len() != 0 {
			t.Errorf("uploads not cleaned up: %d left", srv.uploads.Len())
		}
	})

	t.Run("missing source", func(t *testing.T) {
		srv := newTestServer(t)
		req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
		var resp ErrorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("Unmarshal() error = %v", err)
		}
		if resp.Error == "" {
			t.Error("expected error body")
		}
	})

	t.Run("unretrievable source", func(t *testing.T) {
		srv := newTestServer(t)
		body, _ := json.Marshal(GenerateRequest{Source: filepath.Join(t.TempDir(), "missing.txt")})
		req := httptest.NewRequest(http.MethodPost, "/generate", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d, want 422", rec.Code)
		}
	})
}

func TestGenerateOutlineRoute(t *testing.T) {
	src := filepath.Join(t.TempDir(), "doc.txt")
	if err := os.WriteFile(src, []byte("source material"), 0o644); err != nil {
		t.Fatal(err)
	}

	srv := newTestServer(t)
	body, _ := json.Marshal(GenerateRequest{Source: src})
	req := httptest.NewRequest(http.MethodPost, "/generate/outline", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var resp OutlineResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(resp.Outline) != 2 {
		t.Errorf("outline sections = %d, want 2", len(resp.Outline))
	}
	if !strings.Contains(resp.Markdown, "## Introduction") {
		t.Errorf("rendered outline = %q", resp.Markdown)
	}
}

func TestGenerateDraftRoute(t *testing.T) {
	src := filepath.Join(t.TempDir(), "doc.txt")
	if err := os.WriteFile(src, []byte("source material"), 0o644); err != nil {
		t.Fatal(err)
	}

	srv := newTestServer(t)
	body, _ := json.Marshal(GenerateRequest{Source: src})
	req := httptest.NewRequest(http.MethodPost, "/generate/draft", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var resp GenerateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if resp.Status != "draft" {
		t.Errorf("status = %q, want draft", resp.Status)
	}
	if !strings.Contains(resp.Markdown, "Draft body") {
		t.Errorf("markdown = %q", resp.Markdown)
	}
}
