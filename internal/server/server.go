// Package server exposes the HTTP API: submission intake, stored
// submission queries, the compiled exam definition, static UI assets, and
// live replay over WebSocket.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/typetrace/typetrace/internal/config"
	"github.com/typetrace/typetrace/internal/examdef"
	"github.com/typetrace/typetrace/internal/session"
	"github.com/typetrace/typetrace/internal/store"
)

// shutdownGrace is how long in-flight requests get to drain on shutdown.
const shutdownGrace = 30 * time.Second

// Server wires the HTTP API over the store and compiled exam definition.
type Server struct {
	cfg    config.Config
	store  *store.Store
	exam   *examdef.Exam // nil when no definitions are configured
	tokens session.TokenGenerator
	logger *slog.Logger
	router *mux.Router
}

// Option configures a Server.
type Option func(*Server)

// WithExam attaches the compiled exam definition served at /exam.
func WithExam(exam *examdef.Exam) Option {
	return func(s *Server) { s.exam = exam }
}

// WithTokenGenerator replaces the receipt token source (tests use a fixed
// generator).
func WithTokenGenerator(gen session.TokenGenerator) Option {
	return func(s *Server) {
		if gen != nil {
			s.tokens = gen
		}
	}
}

// New creates a Server over st. The logger must not be nil.
func New(cfg config.Config, st *store.Store, logger *slog.Logger, opts ...Option) *Server {
	s := &Server{
		cfg:    cfg,
		store:  st,
		tokens: session.UUIDv7Generator{},
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.buildRouter()
	return s
}

// Handler returns the fully assembled HTTP handler, exported for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) buildRouter() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.corsMiddleware)
	r.Use(s.loggingMiddleware)

	r.HandleFunc("/submit", s.handleSubmit).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/submissions", s.handleListAll).Methods(http.MethodGet)
	r.HandleFunc("/submissions/{examID}", s.handleListByExam).Methods(http.MethodGet)
	r.HandleFunc("/submissions/{examID}/{studentID}", s.handleGetSubmission).Methods(http.MethodGet)
	r.HandleFunc("/exam", s.handleExam).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/replay/{examID}/{studentID}/{questionID}", s.handleReplay).Methods(http.MethodGet)

	if s.cfg.Static.Dir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(s.cfg.Static.Dir)))
	}
	return r
}

// Run serves until ctx is cancelled or SIGINT/SIGTERM arrives, then drains
// in-flight requests for up to shutdownGrace.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.HTTP.Addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.HTTP.ReadTimeout(),
		WriteTimeout: s.cfg.HTTP.WriteTimeout(),
		IdleTimeout:  s.cfg.HTTP.IdleTimeout(),
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", "grace", shutdownGrace.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// writeJSON writes a JSON response body with status code.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("writing response", "error", err)
	}
}

// writeError writes the standard error envelope.
func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]any{"success": false, "error": msg})
}
