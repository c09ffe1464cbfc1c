// Package api serves the captured data as a REST API. Every registered
// resource gets the same four read endpoints; the handlers resolve the
// resource from the registry on each request, so a registry reload is
// visible without re-mounting routes.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Rostezkiy/spectre/query"
	"github.com/Rostezkiy/spectre/registry"
)

// Server wires the registry and query translator behind an HTTP router.
type Server struct {
	registry   *registry.Registry
	translator *query.Translator
	logger     *slog.Logger
}

// NewServer creates an API server.
func NewServer(reg *registry.Registry, tr *query.Translator, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{registry: reg, translator: tr, logger: logger}
}

// Router builds the chi router with all endpoints mounted. Static
// segments (latest, history) are registered before the {id} wildcard so
// chi resolves them first.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/health", s.handleHealth)

	r.Route("/api/{resource}", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Get("/latest", s.handleLatest)
		r.Get("/history", s.handleHistory)
		r.Get("/{id}", s.handleGet)
	})

	return r
}

// ListenAndServe runs the HTTP server until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api: listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
