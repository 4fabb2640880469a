// Package app assembles the guild sweeper and its backends from configuration.
// The returned App exposes the guild cache and player registry so that the
// hosting process can populate them.
package app

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/storage"
	"github.com/illmade-knight/go-guildsweeper/pkg/audit"
	"github.com/illmade-knight/go-guildsweeper/pkg/cache"
	"github.com/illmade-knight/go-guildsweeper/pkg/config"
	"github.com/illmade-knight/go-guildsweeper/pkg/guild"
	"github.com/illmade-knight/go-guildsweeper/pkg/microservice"
	"github.com/illmade-knight/go-guildsweeper/pkg/player"
	"github.com/illmade-knight/go-guildsweeper/pkg/playerstore"
	"github.com/illmade-knight/go-guildsweeper/pkg/sentinel"
	"github.com/illmade-knight/go-guildsweeper/pkg/sweeper"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
)

// App is a fully wired guild sweeper service.
type App struct {
	Cache      *cache.InMemoryCache[string, *guild.Guild]
	Registry   *player.Registry
	Repository playerstore.Repository
	Sentinel   sentinel.Sentinel
	Sweeper    *sweeper.Sweeper
	Service    *microservice.SweeperService
	Metrics    *prometheus.Registry

	// cleanups run in reverse order on Shutdown.
	cleanups []func(ctx context.Context) error
	logger   zerolog.Logger
}

// New builds every component selected by cfg. On error, anything already
// created is released.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (a *App, err error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	a = &App{
		Cache:    cache.NewInMemoryCache[string, *guild.Guild](),
		Registry: player.NewRegistry(logger),
		Metrics:  prometheus.NewRegistry(),
		logger:   logger,
	}
	defer func() {
		if err != nil {
			_ = a.cleanup(context.Background())
			a = nil
		}
	}()

	a.Metrics.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	if a.Repository, err = a.newRepository(ctx, cfg); err != nil {
		return a, err
	}
	if a.Sentinel, err = a.newSentinel(ctx, cfg); err != nil {
		return a, err
	}

	opts := []sweeper.Option{sweeper.WithMetrics(sweeper.NewMetrics(a.Metrics))}
	if cfg.AuditEnabled() {
		recorder, err := a.newRecorder(ctx, cfg)
		if err != nil {
			return a, err
		}
		opts = append(opts, sweeper.WithRecorder(recorder))
	}

	a.Sweeper, err = sweeper.New(cfg.Sweeper(), a.Cache, a.Registry, a.Repository, a.Sentinel, logger, opts...)
	if err != nil {
		return a, fmt.Errorf("failed to create sweeper: %w", err)
	}

	a.Service, err = microservice.NewSweeperService(cfg.HTTPPort(), a.Sweeper, a.Metrics, logger)
	if err != nil {
		return a, fmt.Errorf("failed to create sweeper service: %w", err)
	}
	return a, nil
}

// Start starts the HTTP server and the sweep loop.
func (a *App) Start(ctx context.Context) error {
	return a.Service.Start(ctx)
}

// Resume attaches a player to a guild that becomes active again, restoring the
// state saved when the sweeper last evicted it.
func (a *App) Resume(ctx context.Context, g *guild.Guild) (*player.Player, bool, error) {
	return playerstore.Resume(ctx, a.Repository, a.Registry, g)
}

// Shutdown stops the service and releases every backend client.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if a.Service != nil {
		if err := a.Service.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := a.cleanup(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (a *App) onShutdown(fn func(ctx context.Context) error) {
	a.cleanups = append(a.cleanups, fn)
}

func (a *App) cleanup(ctx context.Context) error {
	var errs []error
	for i := len(a.cleanups) - 1; i >= 0; i-- {
		if err := a.cleanups[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.cleanups = nil
	return errors.Join(errs...)
}

func clientOptions(cfg *config.Config) []option.ClientOption {
	var opts []option.ClientOption
	if cfg.CredentialsFile() != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile()))
	}
	return opts
}

func (a *App) newRepository(ctx context.Context, cfg *config.Config) (playerstore.Repository, error) {
	switch cfg.RepositoryBackend() {
	case config.RepositoryRedis:
		repo, err := playerstore.NewRedisRepository(ctx, cfg.RedisRepository(), a.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis repository: %w", err)
		}
		a.onShutdown(func(context.Context) error { return repo.Close() })
		return repo, nil

	case config.RepositoryFirestore:
		fsCfg := cfg.FirestoreRepository()
		client, err := playerstore.NewProductionFirestoreClient(ctx, fsCfg, a.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create firestore client: %w", err)
		}
		a.onShutdown(func(context.Context) error { return client.Close() })
		return playerstore.NewFirestoreRepository(fsCfg, client, a.logger)

	case config.RepositoryGCS:
		client, err := storage.NewClient(ctx, clientOptions(cfg)...)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		a.onShutdown(func(context.Context) error { return client.Close() })
		return playerstore.NewGCSRepository(playerstore.NewGCSClientAdapter(client), cfg.GCSRepository(), a.logger)

	default:
		a.logger.Warn().Msg("Using in-memory player repository; player state will not survive a restart.")
		return playerstore.NewInMemoryRepository(), nil
	}
}

func (a *App) newSentinel(ctx context.Context, cfg *config.Config) (sentinel.Sentinel, error) {
	switch cfg.SentinelBackend() {
	case config.SentinelPubsub:
		client, err := pubsub.NewClient(ctx, cfg.ProjectID(), clientOptions(cfg)...)
		if err != nil {
			return nil, fmt.Errorf("failed to create pubsub client: %w", err)
		}
		a.onShutdown(func(context.Context) error { return client.Close() })
		s, err := sentinel.NewPubsubSentinel(ctx, cfg.PubsubSentinel(), client, a.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create pubsub sentinel: %w", err)
		}
		a.onShutdown(s.Stop)
		return s, nil

	case config.SentinelRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr(),
			Password: cfg.RedisPassword(),
			DB:       cfg.RedisDB(),
		})
		a.onShutdown(func(context.Context) error { return client.Close() })
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect to redis for sentinel requests: %w", err)
		}
		s := sentinel.NewRedisSentinel(client, cfg.RedisSentinel(), a.logger)
		a.onShutdown(s.Stop)
		return s, nil

	default:
		return sentinel.NewLogSentinel(a.logger), nil
	}
}

func (a *App) newRecorder(ctx context.Context, cfg *config.Config) (*audit.BatchRecorder, error) {
	dsCfg := cfg.Audit()
	client, err := audit.NewProductionBigQueryClient(ctx, cfg.ProjectID(), dsCfg.CredentialsFile, a.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create bigquery client: %w", err)
	}
	a.onShutdown(func(context.Context) error { return client.Close() })

	table, err := audit.NewEvictionTable(ctx, client, dsCfg, a.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create eviction table: %w", err)
	}
	recorder, err := audit.NewBatchRecorder(table, a.logger)
	if err != nil {
		return nil, err
	}
	a.onShutdown(func(context.Context) error { return recorder.Close() })
	return recorder, nil
}
