package microservice

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// SweepRunner is the part of the guild sweeper the service hosts.
type SweepRunner interface {
	Start(ctx context.Context)
	RunSweep(ctx context.Context)
}

// SweeperService runs the sweep loop in the background and adds POST /sweep to
// the server routes. It reports ready while the loop runs.
type SweeperService struct {
	server  *Server
	sweeper SweepRunner
	logger  zerolog.Logger

	mu       sync.Mutex
	cancel   context.CancelFunc
	loopDone chan struct{}
}

// NewSweeperService creates the service. A nil gatherer disables /metrics.
func NewSweeperService(httpPort string, sweeper SweepRunner, gatherer prometheus.Gatherer, logger zerolog.Logger) (*SweeperService, error) {
	if sweeper == nil {
		return nil, errors.New("sweeper cannot be nil")
	}
	logger = logger.With().Str("component", "SweeperService").Logger()

	s := &SweeperService{
		server:  NewServer(httpPort, gatherer, logger),
		sweeper: sweeper,
		logger:  logger,
	}
	s.server.Handle("POST /sweep", http.HandlerFunc(s.sweepHandler))
	return s, nil
}

// Port returns the port the HTTP server listens on.
func (s *SweeperService) Port() string {
	return s.server.Port()
}

// Start starts the HTTP server and the sweep loop. The loop runs until
// Shutdown is called or ctx is cancelled.
func (s *SweeperService) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return errors.New("sweeper service already started")
	}

	if err := s.server.Listen(); err != nil {
		return fmt.Errorf("failed to start http server: %w", err)
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.loopDone = make(chan struct{})
	go func() {
		defer close(s.loopDone)
		s.sweeper.Start(loopCtx)
	}()
	s.server.SetReady(true)

	s.logger.Info().Msg("Sweeper service started.")
	return nil
}

// Shutdown stops the sweep loop, waiting for a running sweep to finish, then
// stops the HTTP server.
func (s *SweeperService) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	cancel, loopDone := s.cancel, s.loopDone
	s.mu.Unlock()

	s.server.SetReady(false)
	if cancel != nil {
		cancel()
		select {
		case <-loopDone:
			s.logger.Info().Msg("Sweep loop stopped.")
		case <-ctx.Done():
			s.logger.Error().Err(ctx.Err()).Msg("Timeout waiting for the sweep loop to stop.")
			return ctx.Err()
		}
	}
	return s.server.Close(ctx)
}

// sweepHandler runs a sweep immediately and returns once it has finished.
// A sweep that overlaps a running one is skipped by the sweeper.
func (s *SweeperService) sweepHandler(w http.ResponseWriter, r *http.Request) {
	s.logger.Info().Str("remote_addr", r.RemoteAddr).Msg("Manual sweep requested.")
	s.sweeper.RunSweep(r.Context())
	_, _ = w.Write([]byte("OK"))
}
