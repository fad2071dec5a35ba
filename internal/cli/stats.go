package cli

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/reviewlog/logsearch/internal/models"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show what the local index holds",
	Long: `Show what the local index holds: review counts per source, when the
feeds were last synced and the size of the index file.

Examples:
  logsearch stats
  logsearch stats --json`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Print statistics as JSON")
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, cleanup, err := setup()
	if err != nil {
		return trackCLIError(cmd.Name(), err)
	}
	defer cleanup()

	stats, err := bundleStats(cfg)
	if err != nil {
		return trackCLIError(cmd.Name(), fmt.Errorf("%w (run 'logsearch update' first)", err))
	}
	telemetryClient.TrackStatsViewed(stats.TotalReviews)

	if statsJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}
	writeStats(cmd.OutOrStdout(), stats)
	return nil
}

func writeStats(w io.Writer, stats *models.ReviewStats) {
	_, _ = fmt.Fprintf(w, "📊 %d reviews from %d sources\n", stats.TotalReviews, stats.TotalSources)

	names := make([]string, 0, len(stats.BySource))
	for name := range stats.BySource {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		_, _ = fmt.Fprintf(w, "   %-10s %d\n", name, stats.BySource[name])
	}

	if !stats.LastUpdated.IsZero() {
		_, _ = fmt.Fprintf(w, "🕒 Last updated: %s\n", stats.LastUpdated.Local().Format(time.DateTime))
	}
	if stats.IndexSizeBytes > 0 {
		_, _ = fmt.Fprintf(w, "💾 Index size: %.2f KB\n", float64(stats.IndexSizeBytes)/1024)
	}
}
