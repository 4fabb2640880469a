// Package microservice hosts long running components behind a small HTTP
// server exposing liveness, readiness, metrics and operational endpoints.
package microservice

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Server serves /healthz, /readyz and, when a gatherer is given, /metrics.
// Components register their own routes with Handle before Listen.
type Server struct {
	addr       string
	logger     zerolog.Logger
	mux        *http.ServeMux
	httpServer *http.Server
	ready      atomic.Bool

	mu    sync.RWMutex
	bound net.Addr
}

// NewServer creates a Server for addr. It is not ready until SetReady(true).
func NewServer(addr string, gatherer prometheus.Gatherer, logger zerolog.Logger) *Server {
	s := &Server{
		addr:   addr,
		logger: logger,
		mux:    http.NewServeMux(),
	}
	s.mux.HandleFunc("GET /healthz", healthz)
	s.mux.HandleFunc("GET /readyz", s.readyz)
	if gatherer != nil {
		s.mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handle registers a component route.
func (s *Server) Handle(pattern string, handler http.Handler) {
	s.mux.Handle(pattern, handler)
}

// ServeHTTP dispatches to the registered routes.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// SetReady switches the /readyz answer.
func (s *Server) SetReady(ready bool) {
	s.ready.Store(ready)
}

// Listen binds the address and serves in the background.
func (s *Server) Listen() error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.mu.Lock()
	s.bound = listener.Addr()
	s.mu.Unlock()

	s.logger.Info().Str("address", listener.Addr().String()).Msg("HTTP server listening.")
	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("HTTP server failed.")
		}
	}()
	return nil
}

// Port returns ":<port>" of the bound listener, or the configured address
// before Listen. Useful when listening on ":0".
func (s *Server) Port() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if tcp, ok := s.bound.(*net.TCPAddr); ok {
		return fmt.Sprintf(":%d", tcp.Port)
	}
	return s.addr
}

// Close marks the server not ready and drains connections until ctx expires.
func (s *Server) Close(ctx context.Context) error {
	s.SetReady(false)
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	s.logger.Info().Msg("HTTP server stopped.")
	return nil
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	if !s.ready.Load() {
		http.Error(w, "not ready", http.StatusServiceUnavailable)
		return
	}
	_, _ = w.Write([]byte("OK"))
}
