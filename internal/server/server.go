// Package server exposes the layout pipeline and staged reveal over HTTP.
//
// # Routes
//
//	GET  /healthz      liveness and build version
//	POST /api/layout   lay out a recipe; optionally render artifacts
//	POST /api/reveal   lay out a recipe and stream its levels as Server-Sent Events
//
// Request bodies are JSON. The recipe document travels in the "recipe"
// field, either inline as a JSON object or as a string holding JSON or YAML.
// Errors are answered as {"code": ..., "message": ...} with a status derived
// from the error code.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/alchemytree/pkg/pipeline"
	"github.com/matzehuels/alchemytree/pkg/recipe"
	"github.com/matzehuels/alchemytree/pkg/reveal"
)

const (
	// DefaultMaxBodyBytes bounds request bodies.
	DefaultMaxBodyBytes = 1 << 20

	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 10 * time.Second
)

// Config configures a [Server]. Zero values select defaults.
type Config struct {
	Addr   string
	Runner *pipeline.Runner

	// Catalog resolves element names in submitted recipes. CatalogHash
	// must identify it when it is not the default catalog.
	Catalog     *recipe.Catalog
	CatalogHash string

	// Defaults for fields a request leaves at zero.
	HorizontalSpacing float64
	VerticalSpacing   float64
	ParentEdges       bool

	Delay    time.Duration // Reveal interval when a request names none
	MinDelay time.Duration // Smallest reveal interval a request may ask for

	// TTL is the expiry of layouts and artifacts the server caches. Zero
	// selects the pipeline default.
	TTL time.Duration

	MaxBodyBytes int64
	Logger       *log.Logger
}

// Server serves the HTTP API.
type Server struct {
	cfg    Config
	runner *pipeline.Runner
	logger *log.Logger
	router chi.Router
}

// New builds a server and its routes.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if cfg.Runner == nil {
		cfg.Runner = pipeline.NewRunner(nil, nil, cfg.Logger)
	}
	if cfg.Delay <= 0 {
		cfg.Delay = reveal.DefaultDelay
	}
	if cfg.MinDelay <= 0 {
		cfg.MinDelay = reveal.DefaultMinDelay
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}

	s := &Server{cfg: cfg, runner: cfg.Runner, logger: cfg.Logger}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/layout", s.handleLayout)
		r.Post("/reveal", s.handleReveal)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, notFound(r))
	})
	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on cfg.Addr until ctx is cancelled, then shuts down
// gracefully. Open reveal streams end when their request contexts close.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}
