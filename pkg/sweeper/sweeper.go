// Package sweeper periodically retires idle guild sessions from the guild
// cache. For each idle guild it persists the player state, destroys the player,
// tells the owning sentinel to unsubscribe and removes the guild from the
// cache, in that order.
package sweeper

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/illmade-knight/go-guildsweeper/pkg/audit"
	"github.com/illmade-knight/go-guildsweeper/pkg/guild"
	"github.com/illmade-knight/go-guildsweeper/pkg/player"
	"github.com/illmade-knight/go-guildsweeper/pkg/sentinel"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ErrPersistTimeout is reported when a player state save does not finish
// within the configured persist timeout.
var ErrPersistTimeout = errors.New("player state persist timed out")

// GuildCache is the view of the guild cache the sweeper needs.
type GuildCache interface {
	Snapshot() []*guild.Guild
	// Remove must be idempotent.
	Remove(ctx context.Context, guildID string) error
}

// SessionRegistry owns the live players.
type SessionRegistry interface {
	// GetExisting returns the persistable player state, or false if the guild
	// has no player.
	GetExisting(g *guild.Guild) (*player.State, bool)
	// Destroy must be idempotent.
	Destroy(g *guild.Guild)
}

// PlayerRepository persists player state.
type PlayerRepository interface {
	Save(ctx context.Context, state *player.State) error
}

// EvictionRecorder receives the outcome of every retirement in a sweep.
type EvictionRecorder interface {
	Record(ctx context.Context, records []*audit.EvictionRecord) error
}

// Option configures optional Sweeper collaborators.
type Option func(*Sweeper)

// WithRecorder sends eviction records to r after each sweep.
func WithRecorder(r EvictionRecorder) Option {
	return func(s *Sweeper) {
		s.recorder = r
	}
}

// WithMetrics sets the Prometheus collectors.
func WithMetrics(m *Metrics) Option {
	return func(s *Sweeper) {
		s.metrics = m
	}
}

// WithClock overrides the time source used to judge idleness.
func WithClock(now func() time.Time) Option {
	return func(s *Sweeper) {
		s.now = now
	}
}

// Sweeper retires idle guilds. It is safe to call RunSweep from several
// goroutines; overlapping sweeps are skipped.
type Sweeper struct {
	cfg        Config
	cache      GuildCache
	registry   SessionRegistry
	repository PlayerRepository
	sentinel   sentinel.Sentinel
	recorder   EvictionRecorder
	metrics    *Metrics
	now        func() time.Time
	logger     zerolog.Logger

	running atomic.Bool
}

// New creates a Sweeper. Non-positive durations and concurrency in cfg fall
// back to the defaults.
func New(
	cfg *Config,
	cache GuildCache,
	registry SessionRegistry,
	repository PlayerRepository,
	coordinator sentinel.Sentinel,
	logger zerolog.Logger,
	opts ...Option,
) (*Sweeper, error) {
	if cfg == nil {
		cfg = NewConfigDefaults()
	}
	if cache == nil {
		return nil, errors.New("guild cache cannot be nil")
	}
	if registry == nil {
		return nil, errors.New("session registry cannot be nil")
	}
	if repository == nil {
		return nil, errors.New("player repository cannot be nil")
	}
	if coordinator == nil {
		return nil, errors.New("sentinel cannot be nil")
	}

	c := *cfg
	if c.Name == "" {
		c.Name = DefaultName
	}
	logger = logger.With().Str("component", c.Name).Logger()
	if c.Interval <= 0 {
		logger.Warn().Dur("invalid_interval", c.Interval).Msg("Interval is non-positive; using default.")
		c.Interval = DefaultInterval
	}
	if c.IdleTimeout <= 0 {
		logger.Warn().Dur("invalid_idle_timeout", c.IdleTimeout).Msg("IdleTimeout is non-positive; using default.")
		c.IdleTimeout = DefaultIdleTimeout
	}
	if c.PersistTimeout <= 0 {
		logger.Warn().Dur("invalid_persist_timeout", c.PersistTimeout).Msg("PersistTimeout is non-positive; using default.")
		c.PersistTimeout = DefaultPersistTimeout
	}
	if c.MaxConcurrency <= 0 {
		logger.Warn().Int("invalid_max_concurrency", c.MaxConcurrency).Msg("MaxConcurrency is non-positive; using default.")
		c.MaxConcurrency = DefaultMaxConcurrency
	}

	s := &Sweeper{
		cfg:        c,
		cache:      cache,
		registry:   registry,
		repository: repository,
		sentinel:   coordinator,
		now:        time.Now,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics(nil)
	}
	return s, nil
}

// Start runs a sweep every configured interval until ctx is cancelled. It
// blocks.
func (s *Sweeper) Start(ctx context.Context) {
	s.logger.Info().Dur("interval", s.cfg.Interval).Dur("idle_timeout", s.cfg.IdleTimeout).Msg("Starting guild cache sweeper.")
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Guild cache sweeper stopped.")
			return
		case <-ticker.C:
			s.RunSweep(ctx)
		}
	}
}

// RunSweep scans a snapshot of the cache and retires every evictable guild. It
// returns once all candidates are resolved. Nothing escapes RunSweep: errors
// and panics are logged per guild.
func (s *Sweeper) RunSweep(ctx context.Context) {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Warn().Msg("Previous sweep still running, skipping.")
		s.metrics.sweepsSkipped.Inc()
		return
	}
	defer s.running.Store(false)

	sweepID := uuid.NewString()
	logger := s.logger.With().Str("sweep_id", sweepID).Logger()
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("Sweep aborted by panic.")
		}
	}()

	started := time.Now()
	now := s.now()

	snapshot := s.cache.Snapshot()
	s.metrics.cachedGuilds.Set(float64(len(snapshot)))

	candidates := make([]*guild.Guild, 0)
	for _, g := range snapshot {
		if g != nil && ShouldEvict(g, now, s.cfg.IdleTimeout) {
			candidates = append(candidates, g)
		}
	}
	s.metrics.candidates.Add(float64(len(candidates)))

	records := make([]*audit.EvictionRecord, len(candidates))
	if len(candidates) > 0 {
		var eg errgroup.Group
		eg.SetLimit(s.cfg.MaxConcurrency)
		for i, g := range candidates {
			eg.Go(func() error {
				records[i] = s.retire(ctx, sweepID, g)
				return nil
			})
		}
		_ = eg.Wait()
	}

	evicted := 0
	for _, rec := range records {
		s.metrics.observeRecord(rec)
		if rec.Removed {
			evicted++
		}
	}
	s.record(ctx, logger, records)

	s.metrics.sweeps.Inc()
	s.metrics.sweepDuration.Observe(time.Since(started).Seconds())
	s.metrics.lastSweepMillis.Set(float64(time.Now().UnixMilli()))

	event := logger.Debug()
	if evicted > 0 {
		event = logger.Info()
	}
	event.Int("cached", len(snapshot)).
		Int("candidates", len(candidates)).
		Int("evicted", evicted).
		Dur("duration", time.Since(started)).
		Msg("Sweep completed.")
}

// Invalidate retires a single guild immediately, regardless of whether it is
// idle. It returns the outcome, or nil when g is nil.
func (s *Sweeper) Invalidate(ctx context.Context, g *guild.Guild) *audit.EvictionRecord {
	if g == nil {
		s.logger.Warn().Msg("Invalidate called with a nil guild, ignoring.")
		return nil
	}
	sweepID := uuid.NewString()
	rec := s.retire(ctx, sweepID, g)
	s.metrics.observeRecord(rec)
	s.record(ctx, s.logger.With().Str("sweep_id", sweepID).Logger(), []*audit.EvictionRecord{rec})
	return rec
}

// retire runs the persist, destroy, notify, remove sequence for one guild
// inside its own failure boundary.
func (s *Sweeper) retire(ctx context.Context, sweepID string, g *guild.Guild) (rec *audit.EvictionRecord) {
	rec = &audit.EvictionRecord{
		SweepID:    sweepID,
		GuildID:    g.ID,
		RoutingKey: g.RoutingKey,
		LastUsed:   g.LastUsed(),
	}
	logger := s.logger.With().Str("sweep_id", sweepID).Str("guild_id", g.ID).Logger()

	defer func() {
		if r := recover(); r != nil {
			if rec.PersistOutcome == "" {
				rec.PersistOutcome = audit.PersistPanicked
			}
			rec.Error = fmt.Sprintf("panic: %v", r)
			logger.Error().Interface("panic", r).Msg("Exception while invalidating guild.")
		}
	}()

	// Retirement is not cancelled with the caller: once a guild is selected
	// its sequence runs to completion, bounded by the persist timeout.
	ctx = context.WithoutCancel(ctx)

	state, ok := s.registry.GetExisting(g)
	if !ok {
		rec.PersistOutcome = audit.PersistSkipped
	} else {
		outcome, err := s.persist(ctx, state)
		rec.PersistOutcome = outcome
		if err != nil {
			rec.Error = err.Error()
			logger.Warn().Err(err).Str("persist", string(outcome)).Msg("Player state not persisted, evicting anyway.")
		}
	}

	s.registry.Destroy(g)
	s.sentinel.SendAndForget(ctx, g.RoutingKey, sentinel.GuildUnsubscribeRequest{GuildID: g.ID})

	if err := s.cache.Remove(ctx, g.ID); err != nil {
		if rec.Error != "" {
			rec.Error += "; "
		}
		rec.Error += err.Error()
		logger.Error().Err(err).Msg("Failed to remove guild from cache.")
		return rec
	}
	rec.Removed = true
	rec.EvictedAt = s.now()
	logger.Debug().Str("persist", string(rec.PersistOutcome)).Msg("Guild invalidated.")
	return rec
}

// persist saves the state, waiting at most the persist timeout. A repository
// that ignores its context is still bounded because the wait itself times out.
func (s *Sweeper) persist(ctx context.Context, state *player.State) (audit.PersistOutcome, error) {
	persistCtx, cancel := context.WithTimeout(ctx, s.cfg.PersistTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("panic during save: %v", r)
			}
		}()
		done <- s.repository.Save(persistCtx, state)
	}()

	select {
	case err := <-done:
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return audit.PersistTimedOut, fmt.Errorf("%w: %w", ErrPersistTimeout, err)
			}
			return audit.PersistFailed, fmt.Errorf("failed to persist player state: %w", err)
		}
		return audit.PersistSucceeded, nil
	case <-persistCtx.Done():
		return audit.PersistTimedOut, fmt.Errorf("%w after %s", ErrPersistTimeout, s.cfg.PersistTimeout)
	}
}

func (s *Sweeper) record(ctx context.Context, logger zerolog.Logger, records []*audit.EvictionRecord) {
	if s.recorder == nil || len(records) == 0 {
		return
	}
	if err := s.recorder.Record(context.WithoutCancel(ctx), records); err != nil {
		logger.Warn().Err(err).Msg("Failed to record evictions.")
	}
}
