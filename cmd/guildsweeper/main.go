// Package main is the entry point for the guildsweeper binary. It supports
// two subcommands:
//
//   - serve:   runs the guild cache sweeper with health, metrics and manual
//     sweep endpoints
//   - version: prints the build version
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/illmade-knight/go-guildsweeper/pkg/config"
	"github.com/spf13/cobra"
)

// version is injected at build time via -ldflags
// (e.g. -ldflags "-X main.version=v1.2.3").
var version = "devel"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	conf, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	rootCmd, err := newRootCommand(conf)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(conf *config.Config) (*cobra.Command, error) {
	c := &cobra.Command{
		Use:           "guildsweeper",
		Short:         "Evicts idle guild sessions from the guild cache.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serveCmd, err := newServeCommand(conf)
	if err != nil {
		return nil, err
	}
	c.AddCommand(serveCmd, newVersionCommand())
	return c, nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
