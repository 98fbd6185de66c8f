// Package server exposes reconcile passes over HTTP.
//
// Each request carries the full state: the scene, the current graph snapshot
// and optional options. The server builds a fresh graph per request, runs one
// pass and returns the reconciled snapshot with its report, so handlers never
// share mutable graph state.
//
// Routes:
//
//	GET  /healthz             build info
//	POST /v1/reconcile        run a pass over posted state
//	GET  /v1/graphs/{scene}   last stored snapshot for a scene
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/flashaov/pkg/compositor"
	"github.com/matzehuels/flashaov/pkg/errors"
	"github.com/matzehuels/flashaov/pkg/store"
)

// DefaultMaxBody caps request bodies.
const DefaultMaxBody = 8 << 20

// Options configures a Server.
type Options struct {
	Logger *log.Logger

	// Defaults apply when a request carries no options.
	Defaults compositor.Options

	// Store receives snapshots of requests that ask to persist. Nil disables
	// persistence and the graphs route.
	Store store.Store
	Keyer store.Keyer

	MaxBody int64
	TTL     time.Duration
}

// Server is the HTTP front end.
type Server struct {
	opts   Options
	logger *log.Logger
	router chi.Router
}

// New creates a server with its routes mounted.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Store == nil {
		opts.Store = store.NewNullStore()
	}
	if opts.Keyer == nil {
		opts.Keyer = store.NewDefaultKeyer()
	}
	if opts.MaxBody <= 0 {
		opts.MaxBody = DefaultMaxBody
	}
	s := &Server{opts: opts, logger: opts.Logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/reconcile", s.handleReconcile)
		r.Get("/graphs/{scene}", s.handleGraph)
	})
	s.router = r
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errc
}

// errorBody is the JSON error envelope.
type errorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	if status >= 500 {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, errorBody{Code: code, Message: errors.UserMessage(err)})
}

func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidScene, errors.ErrCodeInvalidGraph, errors.ErrCodeInvalidConfig:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
