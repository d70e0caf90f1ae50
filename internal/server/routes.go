package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/docentlabs/docent/internal/document"
)

// maxUploadBytes bounds multipart uploads (64 MiB).
const maxUploadBytes = 64 << 20

// registerRoutes sets up all HTTP routes.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /generate", s.handleGenerate)
	mux.HandleFunc("POST /generate/outline", s.handleGenerateOutline)
	mux.HandleFunc("POST /generate/draft", s.handleGenerateDraft)
}

// handleHealth returns a bare liveness body.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, "OK")
}

// GenerateRequest is the JSON request body for generation endpoints.
type GenerateRequest struct {
	// Source is a URL or server-local file path.
	Source string `json:"source"`
}

// GenerateResponse is the response for a full generation run.
type GenerateResponse struct {
	RunID    string                 `json:"run_id"`
	Status   document.DraftStatus   `json:"status"`
	Outline  []document.OutlineNode `json:"outline"`
	Markdown string                 `json:"markdown"`
}

// OutlineResponse is the response for an outline-only run. Markdown is the
// rendered outline skeleton.
type OutlineResponse struct {
	RunID    string                 `json:"run_id"`
	Outline  []document.OutlineNode `json:"outline"`
	Markdown string                 `json:"markdown"`
}

// handleGenerate runs the full pipeline for an uploaded file or a source
// reference.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	source, cleanup, err := s.resolveSource(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer cleanup()

	res := s.pipe.Run(r.Context(), source)
	if res.Failed() {
		writeError(w, http.StatusUnprocessableEntity, res.Draft.ErrorMessage)
		return
	}

	writeJSON(w, http.StatusOK, GenerateResponse{
		RunID:    res.RunID,
		Status:   res.Draft.Status,
		Outline:  res.Outline,
		Markdown: res.Draft.Content,
	})
}

// handleGenerateOutline runs the pipeline through structuring only.
func (s *Server) handleGenerateOutline(w http.ResponseWriter, r *http.Request) {
	source, cleanup, err := s.resolveSource(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer cleanup()

	res := s.pipe.RunOutline(r.Context(), source)
	if res.Failed() {
		writeError(w, http.StatusUnprocessableEntity, res.Draft.ErrorMessage)
		return
	}

	writeJSON(w, http.StatusOK, OutlineResponse{
		RunID:    res.RunID,
		Outline:  res.Outline,
		Markdown: document.RenderOutline(res.Outline),
	})
}

// handleGenerateDraft runs the pipeline through drafting, skipping the
// refinement pass.
func (s *Server) handleGenerateDraft(w http.ResponseWriter, r *http.Request) {
	source, cleanup, err := s.resolveSource(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer cleanup()

	res := s.pipe.RunDraft(r.Context(), source)
	if res.Failed() {
		writeError(w, http.StatusUnprocessableEntity, res.Draft.ErrorMessage)
		return
	}

	writeJSON(w, http.StatusOK, GenerateResponse{
		RunID:    res.RunID,
		Status:   res.Draft.Status,
		Outline:  res.Outline,
		Markdown: res.Draft.Content,
	})
}

// resolveSource extracts the generation source from the request: either a
// multipart upload in the "file" field (persisted to a temp file) or a JSON
// body naming a URL or path. cleanup removes any persisted upload and is
// always safe to call.
func (s *Server) resolveSource(r *http.Request) (source string, cleanup func(), err error) {
	cleanup = func() {}

	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return "", cleanup, fmt.Errorf("invalid multipart body: %w", err)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			return "", cleanup, fmt.Errorf("missing file field: %w", err)
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
		if err != nil {
			return "", cleanup, fmt.Errorf("reading upload: %w", err)
		}
		// Keep the extension so format detection sees it.
		pattern := "docent-upload-*" + filepath.Ext(header.Filename)
		path, err := s.uploads.Persist(data, pattern)
		if err != nil {
			return "", cleanup, fmt.Errorf("persisting upload: %w", err)
		}
		return path, func() { s.uploads.Remove(path) }, nil
	}

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return "", cleanup, fmt.Errorf("invalid request body: %w", err)
	}
	if strings.TrimSpace(req.Source) == "" {
		return "", cleanup, fmt.Errorf("source is required")
	}
	return req.Source, cleanup, nil
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ErrorResponse is a standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
