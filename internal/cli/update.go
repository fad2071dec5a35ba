package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/reviewlog/logsearch/internal/config"
	"github.com/reviewlog/logsearch/internal/db"
	"github.com/reviewlog/logsearch/internal/index/bundle"
	"github.com/reviewlog/logsearch/internal/ingest"
)

var updateOffline bool

var updateCmd = &cobra.Command{
	Use:     "update",
	Aliases: []string{"u"},
	Short:   "Download the review feeds and rebuild the index (alias: u)",
	Long: `Download the review feeds and rebuild the search index.

This command:
  1. Downloads each configured updates feed into the data directory
  2. Validates every entry and resolves image URLs
  3. Upserts reviews into the index and deletes reviews no longer listed

Examples:
  # Refresh everything
  logsearch update

  # Rebuild the index from feeds already on disk
  logsearch update --offline`,
	Args: cobra.NoArgs,
	RunE: runUpdate,
}

func init() {
	updateCmd.Flags().BoolVar(&updateOffline, "offline", false, "Skip downloads and use the feeds already on disk")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	cfg, cleanup, err := setup()
	if err != nil {
		return trackCLIError(cmd.Name(), err)
	}
	defer cleanup()

	paths := config.GetPaths(cfg)
	database, err := db.New(db.DefaultConfig(bundle.Path(paths.Bundle)))
	if err != nil {
		return trackCLIError(cmd.Name(), fmt.Errorf("initialize index database: %w", err))
	}
	defer func() {
		_ = database.Close()
	}()

	if len(cfg.Sources) == 0 {
		fmt.Println("📦 No sources configured.")
		return nil
	}

	fmt.Println("🔄 Updating review index...")
	fmt.Println()

	// Each source downloads and then processes.
	steps := len(cfg.Sources)
	if !updateOffline {
		steps *= 2
	}
	bar := NewProgressBar(steps, 15)
	done := 0
	interactive := stdoutIsTerminal()

	in := ingest.New(ingest.Config{
		DataDir: paths.Data,
		Sources: cfg.Sources,
		Offline: updateOffline,
	}, database, ingest.WithTracker(telemetryClient))

	result, err := in.Run(cmd.Context(), func(p ingest.Progress) {
		if !p.Done {
			return
		}
		done++
		bar.Update(done, p.Stage+" "+p.Source)
		if interactive {
			ClearLine()
			fmt.Print(bar.Render())
		}
	})
	if interactive {
		fmt.Println()
	}
	if err != nil {
		return trackCLIError(cmd.Name(), fmt.Errorf("update index: %w", err))
	}

	fmt.Println()
	for _, src := range result.Sources {
		fmt.Printf("   %-10s %5d entries  %5d upserted  %5d deleted\n", src.Name, src.Entries, src.Upserted, src.Deleted)
	}
	fmt.Println()
	fmt.Printf("✅ Indexed %d reviews in %s\n", result.Total(), result.Duration.Round(time.Millisecond))
	return nil
}
