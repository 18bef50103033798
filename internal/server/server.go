// Package server implements the tilecalc HTTP API.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/tilecalc/pkg/pipeline"
	"github.com/matzehuels/tilecalc/pkg/render"
)

const (
	// maxBodyBytes bounds request bodies.
	maxBodyBytes = 64 << 10

	// maxListLimit bounds page sizes of list requests.
	maxListLimit = 100

	defaultListLimit = 20
	shutdownTimeout  = 10 * time.Second
)

// Options configures a Server.
type Options struct {
	// MaxCells bounds the grid size of a calculation.
	MaxCells int
	// Render is applied to every drawing before per-request overrides.
	Render pipeline.Options
	Logger *log.Logger
}

// Server serves calculations through a pipeline runner.
type Server struct {
	runner *pipeline.Runner
	opts   Options
	logger *log.Logger
}

// New creates a server for runner.
func New(runner *pipeline.Runner, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if opts.MaxCells == 0 {
		opts.MaxCells = pipeline.DefaultMaxCells
	}
	if opts.Render.Scale == 0 {
		opts.Render.Scale = render.DefaultScale
	}
	if opts.Render.DPI == 0 {
		opts.Render.DPI = render.DefaultDPI
	}
	return &Server{runner: runner, opts: opts, logger: opts.Logger}
}

// Handler returns the routed API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, s.logger, errNotFound(r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody("METHOD_NOT_ALLOWED", r.Method+" not allowed"))
	})

	r.Get("/health", s.health)

	r.Route("/api", func(r chi.Router) {
		r.Post("/calculate", s.calculate)
		r.Get("/stats", s.stats)

		r.Route("/calculations", func(r chi.Router) {
			r.Get("/", s.listCalculations)
			r.Post("/", s.createCalculation)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.getCalculation)
				r.Delete("/", s.deleteCalculation)
				r.Get("/layout.{format}", s.layout)
				r.Get("/report.{format}", s.report)
			})
		})
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
