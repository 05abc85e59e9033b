// Package server implements the catdiagram HTTP API.
//
// Routes:
//
//	POST /v1/layout          place a document's diagram on a grid
//	POST /v1/render          lay out and render a document's diagram
//	POST /v1/check           check a document's diagram against its axioms
//	GET  /v1/library         list stored axiom libraries
//	GET  /v1/library/{name}  fetch one library
//	GET  /healthz            liveness probe
//	GET  /metrics            Prometheus metrics
//
// Errors are JSON objects carrying a pkg/errors code. An Undetermined
// check is a successful response.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/catdiagram/pkg/library"
	"github.com/matzehuels/catdiagram/pkg/pipeline"
)

const (
	// DefaultMaxBodyBytes caps request bodies.
	DefaultMaxBodyBytes = 4 << 20

	// DefaultRequestTimeout bounds one request.
	DefaultRequestTimeout = time.Minute

	// shutdownTimeout bounds graceful shutdown.
	shutdownTimeout = 10 * time.Second
)

// Config configures a Server.
type Config struct {
	// Defaults seed every request's options; request fields override them.
	Defaults pipeline.Options

	// Library serves the library routes and named axiom lookups. Nil
	// disables both.
	Library library.Library

	// Gatherer backs /metrics. Nil uses prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer

	RequestTimeout time.Duration
	MaxBodyBytes   int64
	Logger         *log.Logger
}

// Server serves the HTTP API.
type Server struct {
	runner *pipeline.Runner
	cfg    Config
	logger *log.Logger
}

// New creates a server that runs requests through runner.
func New(runner *pipeline.Runner, cfg Config) *Server {
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.Logger == nil {
		cfg.Logger = runner.Logger
	}
	return &Server{runner: runner, cfg: cfg, logger: cfg.Logger}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.instrument)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.cfg.Gatherer, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(s.cfg.RequestTimeout))
		r.Post("/layout", s.handleLayout)
		r.Post("/render", s.handleRender)
		r.Post("/check", s.handleCheck)
		r.Get("/library", s.handleLibraryList)
		r.Get("/library/{name}", s.handleLibraryGet)
	})
	return r
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("serving", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
