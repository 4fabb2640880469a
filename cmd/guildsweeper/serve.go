package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/illmade-knight/go-guildsweeper/pkg/app"
	"github.com/illmade-knight/go-guildsweeper/pkg/config"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 90 * time.Second

func newServeCommand(conf *config.Config) (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Run the guild cache sweeper",
		Example: "guildsweeper serve --repository-backend=redis --redis-addr=localhost:6379 --sweeper-interval=5m",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := newLogger(conf.LogLevel())
			if err != nil {
				return err
			}
			return serve(cmd.Context(), conf, logger)
		},
	}

	if err := conf.BindFlags(cmd.Flags(), config.Options); err != nil {
		return nil, err
	}
	return cmd, nil
}

func newLogger(level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return zerolog.New(os.Stdout).Level(lvl).With().Timestamp().Str("service", "guildsweeper").Logger(), nil
}

// serve runs until ctx is cancelled, then shuts down within shutdownTimeout.
// The timeout exceeds the default persist timeout so an in-flight sweep can
// finish.
func serve(ctx context.Context, conf *config.Config, logger zerolog.Logger) error {
	a, err := app.New(ctx, conf, logger)
	if err != nil {
		return err
	}
	if err := a.Start(ctx); err != nil {
		_ = a.Shutdown(context.Background())
		return err
	}
	logger.Info().Str("version", version).Str("http_port", a.Service.Port()).Msg("Guild sweeper running.")

	<-ctx.Done()
	logger.Info().Msg("Shutdown signal received.")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	logger.Info().Msg("Guild sweeper stopped.")
	return nil
}
