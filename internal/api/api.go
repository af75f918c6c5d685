// Package api provides the HTTP surface for CoachPipe.
//
// It exposes a thin JSON API over the session runner and store: start or
// resume a session, post a user turn, record the generated coach reply,
// and fetch persisted session records.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/BTreeMap/CoachPipe/internal/session"
	"github.com/BTreeMap/CoachPipe/internal/store"
)

// DefaultAddr is the listen address when none is configured.
const DefaultAddr = ":8080"

// Opts holds server configuration.
type Opts struct {
	Addr string
}

// Option configures the server.
type Option func(*Opts)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// Server wires the HTTP handlers to the session runner and store.
type Server struct {
	addr   string
	runner *session.Runner
	store  store.Store
}

// NewServer creates an API server over the given runner and store.
func NewServer(runner *session.Runner, st store.Store, opts ...Option) *Server {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	return &Server{addr: cfg.Addr, runner: runner, store: st}
}

// Handler returns the route table. Split out so tests can drive it with
// httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/sessions", s.createSessionHandler)
	mux.HandleFunc("/sessions/end", s.endSessionHandler)
	mux.HandleFunc("/turns", s.turnHandler)
	mux.HandleFunc("/replies", s.replyHandler)
	mux.HandleFunc("/records", s.recordHandler)
	return mux
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("CoachPipe API listening", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("API shutdown failed", "error", err)
			return err
		}
		slog.Info("API shut down")
		return nil
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("API server failed", "error", err)
			return err
		}
		return nil
	}
}
