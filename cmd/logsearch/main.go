// logsearch - search movie and book reviews from the terminal.
//
// Indexes the movielog and booklog review feeds into a local bundle and
// opens a debounced, keyboard-driven search overlay over it.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/reviewlog/logsearch/internal/cli"
	"github.com/reviewlog/logsearch/internal/config"
	"github.com/reviewlog/logsearch/internal/db"
	"github.com/reviewlog/logsearch/internal/index/bundle"
	"github.com/reviewlog/logsearch/internal/telemetry"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	// Load config and open the index database for the persistent tracking ID
	cfg, err := config.Load()
	if err != nil {
		os.Exit(1)
	}

	paths := config.GetPaths(cfg)
	database, err := db.New(db.DefaultConfig(bundle.Path(paths.Bundle)))
	if err != nil {
		os.Exit(1)
	}

	telemetryClient := telemetry.New(cfg.Telemetry.Enabled, database)
	// The tracking ID is read once; commands open the index themselves.
	_ = database.Close()
	defer telemetryClient.Close()

	if err := cli.Execute(ctx, telemetryClient); err != nil {
		telemetryClient.Close()
		os.Exit(1)
	}
}
