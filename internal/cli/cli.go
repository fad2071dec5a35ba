// Package cli provides the command-line interface for logsearch.
package cli

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/reviewlog/logsearch/internal/telemetry"
	"github.com/reviewlog/logsearch/pkg/version"
)

var telemetryClient telemetry.Client = telemetry.Noop()

var (
	commandStartTime time.Time
	executedCmd      *cobra.Command
)

var rootCmd = &cobra.Command{
	Use:   "logsearch [query]",
	Short: "Search movie and book reviews from the terminal",
	Long: `Search movie and book reviews from the terminal

logsearch indexes the movielog and booklog review feeds into a local
search bundle and opens an interactive search overlay over it.

Run without arguments to launch the interactive TUI. Pass a query to
open the search overlay with that query already entered.

Examples:
  # Open the TUI
  logsearch

  # Open the search overlay on "batman"
  logsearch batman

Telemetry:
  Telemetry is anonymous and never records queries beyond their length.

  Opt-out with:
  	LOGSEARCH_TELEMETRY_TRACKING_ENABLED=false`,
	SilenceUsage: true,
	RunE:         runTUI,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		commandStartTime = time.Now()
		executedCmd = cmd
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		// The root TUI command reports its own session events.
		if cmd != cmd.Root() {
			durationMs := time.Since(commandStartTime).Milliseconds()
			hasFlags := cmd.Flags().NFlag() > 0
			telemetryClient.TrackCLICommandExecuted(cmd.Name(), hasFlags, durationMs)
		}
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(updateCmd)
}

// Execute runs the CLI with fang enhancements.
func Execute(ctx context.Context, tc telemetry.Client) error {
	if tc == nil {
		tc = telemetry.Noop()
	}
	telemetryClient = tc

	err := fang.Execute(
		ctx,
		rootCmd,
		fang.WithVersion(version.Version),
		fang.WithCommit(version.Commit),
	)

	// Non-TUI subcommands count as a one-shot CLI session.
	if executedCmd != nil && executedCmd != rootCmd {
		durationMs := time.Since(commandStartTime).Milliseconds()
		telemetryClient.TrackAppExited("cli", durationMs, 1)
	}

	return err
}

// trackCLIError wraps an error with telemetry tracking.
// Call this before returning errors from CLI commands.
func trackCLIError(cmdName string, err error) error {
	if err == nil {
		return nil
	}
	telemetryClient.TrackCLIError(cmdName, classifyError(err))
	return err
}

// classifyError determines the error type for telemetry.
func classifyError(err error) string {
	errStr := err.Error()
	switch {
	case containsAny(errStr, "config", "configuration"):
		return "config_error"
	case containsAny(errStr, "index", "bundle", "database"):
		return "index_error"
	case containsAny(errStr, "network", "timeout", "connection", "circuit breaker"):
		return "network_error"
	case containsAny(errStr, "permission", "access denied"):
		return "permission_error"
	case containsAny(errStr, "not found", "does not exist"):
		return "not_found_error"
	case containsAny(errStr, "invalid", "parse", "format"):
		return "validation_error"
	default:
		return "unknown_error"
	}
}

// containsAny checks if s contains any of the substrings (case-insensitive).
func containsAny(s string, substrs ...string) bool {
	lower := strings.ToLower(s)
	for _, sub := range substrs {
		if strings.Contains(lower, sub) {
			return true
		}
	}
	return false
}

// stdoutIsTerminal reports whether progress output can redraw in place.
func stdoutIsTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
