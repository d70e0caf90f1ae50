// Package server exposes the tutorial pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/docentlabs/docent/internal/pipeline"
	"github.com/docentlabs/docent/internal/retrieve"
)

// Server is the Docent HTTP server. It owns a temp-file registry for
// uploaded documents and cleans it up on shutdown.
type Server struct {
	httpServer *http.Server
	pipe       *pipeline.Pipeline
	uploads    *retrieve.TempRegistry
	logger     *slog.Logger

	mu      sync.RWMutex
	running bool
}

// Config holds server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1)
	Host string
	// Port is the port to listen on (default: 8080)
	Port string
	// Pipeline executes generation requests.
	Pipeline *pipeline.Pipeline
	// Logger is the structured logger to use.
	Logger *slog.Logger
}

// New creates a new Server with the given configuration.
func New(cfg Config) (*Server, error) {
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Pipeline == nil {
		return nil, errors.New("server requires a pipeline")
	}

	s := &Server{
		pipe:    cfg.Pipeline,
		uploads: retrieve.NewTempRegistry(),
		logger:  cfg.Logger,
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	s.httpServer = &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Minute, // generation runs are long
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// Addr returns the server's bind address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Handler returns the server's HTTP handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins listening. It blocks until the listener fails or Shutdown
// is called.
func (s *Server) Start() error {
	s.mu.Lock()
	s.running = true
	s.mu.Unlock()

	s.logger.Info("server listening", "addr", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server and removes uploaded temp files.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	s.logger.Info("server shutting down")
	err := s.httpServer.Shutdown(ctx)
	s.uploads.CleanupAll()
	return err
}
