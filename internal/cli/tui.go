package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reviewlog/logsearch/internal/config"
	"github.com/reviewlog/logsearch/internal/log"
	"github.com/reviewlog/logsearch/internal/search"
	"github.com/reviewlog/logsearch/internal/tui"
)

// runTUI executes the TUI when no subcommand is specified. Arguments are
// joined into an initial query and open the search overlay immediately.
func runTUI(cmd *cobra.Command, args []string) error {
	cfg, cleanup, err := setup()
	if err != nil {
		return err
	}
	defer cleanup()

	paths := config.GetPaths(cfg)
	remote := cfg.Search.RemoteURL != ""
	log.Printf("\U0001F4C1 Base directory: %s\n", cfg.BaseDir)
	if remote {
		log.Printf("\U0001F310 Remote index: %s\n", cfg.Search.RemoteURL)
	} else {
		log.Printf("\U0001F4C1 Index: %s\n", paths.Bundle)
	}

	index, err := newIndex(cfg)
	if err != nil {
		return trackCLIError(cmd.Name(), err)
	}

	stats, err := bundleStats(cfg)
	if err != nil && !remote {
		log.Println("\U000026A0\U0000FE0F  No local index yet. Run 'logsearch update' to build one.")
	}

	ctrl := search.NewController(index, controllerConfig(cfg, telemetryClient))
	telemetryClient.TrackAppStarted("tui", remote, len(cfg.Sources))

	query := strings.Join(args, " ")
	model := tui.NewModel(tui.Options{
		Controller:   ctrl,
		Telemetry:    telemetryClient,
		Platform:     tui.CurrentPlatform(),
		Stats:        stats,
		StartOpen:    query != "",
		InitialQuery: query,
	})

	if err := tui.Run(cmd.Context(), model); err != nil {
		return trackCLIError(cmd.Name(), fmt.Errorf("tui: %w", err))
	}
	return nil
}
