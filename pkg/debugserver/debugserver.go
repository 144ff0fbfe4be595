// Package debugserver serves the native view tree, controller registry and
// metrics of a uimanager.Manager over HTTP, and optionally mounts the
// WebSocket bridge.
package debugserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/go-drift/viewbridge/pkg/uimanager"
)

// SyncFunc runs fn on the UI thread and waits for it. It returns false if
// fn could not be scheduled.
type SyncFunc func(fn func()) bool

// Server is the debug HTTP server for one manager.
type Server struct {
	manager  *uimanager.Manager
	sync     SyncFunc
	bridge   http.Handler
	gatherer prometheus.Gatherer
	logger   *slog.Logger

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

// Option configures a Server.
type Option func(*Server)

// WithSync sets how inspection reaches the UI thread. The default calls fn
// directly, which is only safe with an inline dispatcher.
func WithSync(fn SyncFunc) Option {
	return func(s *Server) {
		if fn != nil {
			s.sync = fn
		}
	}
}

// WithBridge mounts h at /bridge.
func WithBridge(h http.Handler) Option {
	return func(s *Server) {
		s.bridge = h
	}
}

// WithGatherer serves g at /metrics. Without one /metrics is not mounted.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a debug server for m. It does not listen until Start.
func New(m *uimanager.Manager, opts ...Option) *Server {
	s := &Server{
		manager: m,
		sync: func(fn func()) bool {
			fn()
			return true
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Handler returns the router serving the debug endpoints.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Get("/view-tree", s.handleViewTree)
	r.Get("/controllers", s.handleControllers)
	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	if s.bridge != nil {
		r.Handle("/bridge", s.bridge)
	}
	return r
}

// Start listens on port and serves in the background. It returns the bound
// port, which differs from port when port is 0. Starting a running server
// returns its current port.
func (s *Server) Start(port int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		if s.listener != nil {
			return s.listener.Addr().(*net.TCPAddr).Port, nil
		}
		return port, nil
	}

	// Bind first to fail fast on port conflicts.
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return 0, fmt.Errorf("debug server listen: %w", err)
	}
	actualPort := listener.Addr().(*net.TCPAddr).Port

	server := &http.Server{Handler: s.Handler()}
	s.server = server
	s.listener = listener

	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.mu.Lock()
			s.server = nil
			s.listener = nil
			s.mu.Unlock()
			s.logger.Error("debug server stopped", "err", err)
		}
	}()

	s.logger.Info("debug server listening", "port", actualPort)
	return actualPort, nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop() {
	s.mu.Lock()
	server := s.server
	s.server = nil
	s.listener = nil
	s.mu.Unlock()

	if server == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleViewTree(w http.ResponseWriter, r *http.Request) {
	var snap uimanager.TreeSnapshot
	if !s.sync(func() { snap = s.manager.Snapshot() }) {
		http.Error(w, "ui thread stopped", http.StatusServiceUnavailable)
		return
	}
	if len(snap.Roots) == 0 {
		http.Error(w, "no view tree", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, snap)
}

func (s *Server) handleControllers(w http.ResponseWriter, r *http.Request) {
	var names []string
	if !s.sync(func() { names = s.manager.Registry().ControllerNames() }) {
		http.Error(w, "ui thread stopped", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, struct {
		Controllers []string `json:"controllers"`
	}{Controllers: names})
}

// writeJSON encodes to a buffer first so encoding errors become a 500.
func writeJSON(w http.ResponseWriter, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		http.Error(w, fmt.Sprintf("json encode error: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}
