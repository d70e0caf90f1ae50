// Package retrieve fetches source bytes from a URL or local path and
// classifies them as PDF, HTML/text, or unknown. PDF bytes are persisted to
// a process-scoped temporary file registered for cleanup at exit.
package retrieve

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/avast/retry-go/v4"
	"golang.org/x/net/html/charset"

	"github.com/docentlabs/docent/internal/document"
)

// pdfMagic is the PDF file signature. Checked when Content-Type headers lie
// and for extensionless local files.
var pdfMagic = []byte("%PDF-")

// RetrievalError wraps any failure to obtain source content. It is the only
// hard-fail error class the retriever produces.
type RetrievalError struct {
	Source string
	Err    error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieval failed for %q: %v", e.Source, e.Err)
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}

// Retrieved is the classified result of one retrieval.
type Retrieved struct {
	// Text holds the decoded content for HTML/text and unknown sources.
	Text string

	// PDFPath is the temp-file location of the PDF bytes; empty for
	// non-PDF sources.
	PDFPath string

	Format document.SourceFormat
	Origin string
}

// IsPDF reports whether the source classified as PDF.
func (r *Retrieved) IsPDF() bool {
	return r.Format == document.FormatPDF
}

// Config holds retriever settings.
type Config struct {
	Timeout     time.Duration
	MaxAttempts int
	UserAgent   string
	Logger      *slog.Logger
}

// Retriever fetches and classifies sources.
type Retriever struct {
	client      *http.Client
	files       *TempRegistry
	maxAttempts int
	userAgent   string
	logger      *slog.Logger
}

// New creates a Retriever. The registry must not be nil; it owns temp-file
// lifetime for every PDF the retriever persists.
func New(cfg Config, files *TempRegistry) *Retriever {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "Docent/1.0 (+https://github.com/docentlabs/docent)"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Retriever{
		client:      &http.Client{Timeout: cfg.Timeout},
		files:       files,
		maxAttempts: cfg.MaxAttempts,
		userAgent:   cfg.UserAgent,
		logger:      cfg.Logger,
	}
}

// Retrieve fetches content from a URL or local path. It returns a
// RetrievalError when the source is neither a reachable URL nor an existing
// file, or when no content could be read.
func (r *Retriever) Retrieve(ctx context.Context, source string) (*Retrieved, error) {
	lower := strings.ToLower(source)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return r.retrieveURL(ctx, source)
	}
	return r.retrieveFile(source)
}

func (r *Retriever) retrieveURL(ctx context.Context, source string) (*Retrieved, error) {
	var body []byte
	var contentType string

	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.Header.Set("User-Agent", r.userAgent)

			resp, err := r.client.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			// 5xx and 429 are transient; everything else non-2xx is final.
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				return fmt.Errorf("transient status %d", resp.StatusCode)
			}
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				return retry.Unrecoverable(fmt.Errorf("unexpected status %d", resp.StatusCode))
			}

			body, err = io.ReadAll(resp.Body)
			if err != nil {
				return err
			}
			contentType = resp.Header.Get("Content-Type")
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(r.maxAttempts)),
		retry.Delay(500*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, &RetrievalError{Source: source, Err: err}
	}
	if len(body) == 0 {
		return nil, &RetrievalError{Source: source, Err: errors.New("empty response body")}
	}

	if strings.Contains(strings.ToLower(contentType), "application/pdf") || bytes.HasPrefix(body, pdfMagic) {
		path, err := r.files.Persist(body, "docent-*.pdf")
		if err != nil {
			return nil, &RetrievalError{Source: source, Err: err}
		}
		r.logger.Info("retrieved PDF", "source", source, "bytes", len(body), "temp", path)
		return &Retrieved{PDFPath: path, Format: document.FormatPDF, Origin: source}, nil
	}

	text := decodeText(body, contentType)
	r.logger.Info("retrieved HTML/text", "source", source, "chars", len(text))
	return &Retrieved{Text: text, Format: document.FormatHTML, Origin: source}, nil
}

func (r *Retriever) retrieveFile(source string) (*Retrieved, error) {
	info, err := os.Stat(source)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &RetrievalError{Source: source, Err: fmt.Errorf("not a valid URL or file: %w", fs.ErrNotExist)}
		}
		return nil, &RetrievalError{Source: source, Err: err}
	}
	if info.IsDir() {
		return nil, &RetrievalError{Source: source, Err: errors.New("source is a directory")}
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return nil, &RetrievalError{Source: source, Err: err}
	}
	if len(data) == 0 {
		return nil, &RetrievalError{Source: source, Err: errors.New("file is empty")}
	}

	// Extension first, magic bytes as the fallback classifier.
	if strings.HasSuffix(strings.ToLower(source), ".pdf") || bytes.HasPrefix(data, pdfMagic) {
		path, err := r.files.Persist(data, "docent-*.pdf")
		if err != nil {
			return nil, &RetrievalError{Source: source, Err: err}
		}
		r.logger.Info("retrieved PDF file", "source", source, "bytes", len(data))
		return &Retrieved{PDFPath: path, Format: document.FormatPDF, Origin: source}, nil
	}

	if utf8.Valid(data) {
		r.logger.Info("retrieved text file", "source", source, "chars", len(data))
		return &Retrieved{Text: string(data), Format: document.FormatHTML, Origin: source}, nil
	}

	// Not valid UTF-8 and not a PDF: pass through lossily as unknown.
	r.logger.Warn("source not decodable as UTF-8", "source", source)
	return &Retrieved{Text: string(data), Format: document.FormatUnknown, Origin: source}, nil
}

// decodeText decodes body using the declared encoding, falling back to a
// permissive raw-string interpretation when the declaration is absent or
// wrong.
func decodeText(body []byte, contentType string) string {
	reader, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return string(body)
	}
	decoded, err := io.ReadAll(reader)
	if err != nil {
		return string(body)
	}
	return string(decoded)
}
