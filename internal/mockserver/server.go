// Package mockserver is an in-memory implementation of the registry API
// for local development and end-to-end tests.
package mockserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wau-ai/wau-cli/internal/a2a"
	"github.com/wau-ai/wau-cli/internal/registry"
	"github.com/wau-ai/wau-cli/internal/telemetry"
)

// DefaultAddr is the address the registry client expects by default.
const DefaultAddr = "127.0.0.1:8000"

// CardFetcher resolves an agent URL to its card.
type CardFetcher func(ctx context.Context, agentURL string) *a2a.Result

// Config configures the server. Zero values take defaults.
type Config struct {
	Addr string

	// Progress lists the processing messages reported before success.
	Progress []string

	// Script, when set, replaces the generated progression for every task.
	Script []registry.TaskStatus

	Fetcher CardFetcher
	Metrics *telemetry.Metrics
	Logger  *slog.Logger
}

// Server serves the registry API.
type Server struct {
	server  *http.Server
	router  *chi.Mux
	store   *store
	fetch   CardFetcher
	metrics *telemetry.Metrics
	logger  *slog.Logger
}

// New builds the server and its routes.
func New(cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Progress == nil {
		cfg.Progress = DefaultProgress
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Fetcher == nil {
		hc := a2a.NewHTTPClient(a2a.DefaultTimeout)
		cfg.Fetcher = func(ctx context.Context, agentURL string) *a2a.Result {
			return a2a.Discover(ctx, hc, agentURL, "")
		}
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	s := &Server{
		router:  r,
		store:   newStore(cfg.Progress, cfg.Script),
		fetch:   cfg.Fetcher,
		metrics: cfg.Metrics,
		logger:  cfg.Logger,
	}
	r.Use(s.logRequests)
	s.registerRoutes()

	s.server = &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) registerRoutes() {
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Post("/discover", s.handleDiscover)
	s.router.Post("/register", s.handleRegister)
	s.router.Get("/status/{id}", s.handleStatus)
	if s.metrics != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}))
	}
}

// ServeHTTP makes the server usable with httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.server.Addr
}

// Start listens and serves until ctx is cancelled, then shuts down.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("registry listen: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Start on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info("mock registry listening", slog.String("addr", ln.Addr().String()))

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		return s.shutdown()
	case err := <-errCh:
		return err
	}
}

func (s *Server) shutdown() error {
	s.logger.Info("mock registry shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// logRequests logs each request and records it under its API operation.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		elapsed := time.Since(start)
		pattern := ""
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			pattern = rctx.RoutePattern()
		}
		if op := operation(pattern); op != "" {
			s.metrics.ObserveRequest(op, outcome(ww.Status()), elapsed)
		}
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", elapsed,
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func operation(pattern string) string {
	switch pattern {
	case "/discover":
		return "discover"
	case "/register":
		return "register"
	case "/status/{id}":
		return "status"
	}
	return ""
}

func outcome(status int) string {
	switch {
	case status == http.StatusConflict:
		return "duplicate"
	case status >= 500:
		return "server_error"
	case status >= 400:
		return "client_error"
	}
	return "ok"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail any) {
	writeJSON(w, status, map[string]any{"detail": detail})
}
