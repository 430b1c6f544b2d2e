// Package server exposes the plate pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz           liveness probe
//	GET  /version           build information
//	POST /v1/keys?unit=     layout text in, key placements out
//	POST /v1/plate          {"layout": "...", "options": {...}} in, plate out
//
// Every response carries an X-Request-Id header. Failures are JSON objects
// of the form {"error": {"code": "...", "message": "..."}}.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/keyplate/internal/config"
	"github.com/matzehuels/keyplate/pkg/pipeline"
)

// shutdownTimeout bounds how long in-flight requests may run after the
// context passed to ListenAndServe is cancelled.
const shutdownTimeout = 10 * time.Second

// Server serves the HTTP API. It holds no per-request state; one runner is
// shared by all requests.
type Server struct {
	runner   *pipeline.Runner
	logger   *log.Logger
	defaults config.Plate
	router   chi.Router
}

// New creates a server. defaults fill plate options a request leaves unset.
func New(runner *pipeline.Runner, logger *log.Logger, defaults config.Plate) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		runner:   runner,
		logger:   logger.WithPrefix("http"),
		defaults: defaults,
	}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/version", s.handleVersion)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/keys", s.handleKeys)
		r.Post("/plate", s.handlePlate)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "no route for "+r.URL.Path, RequestIDFrom(r.Context()))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "UNSUPPORTED", r.Method+" not allowed on "+r.URL.Path, RequestIDFrom(r.Context()))
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
