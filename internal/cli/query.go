package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/reviewlog/logsearch/internal/excerpt"
	"github.com/reviewlog/logsearch/internal/search"
)

var (
	queryAll  bool
	queryJSON bool
)

var queryCmd = &cobra.Command{
	Use:     "query <terms...>",
	Aliases: []string{"q"},
	Short:   "Search reviews without the TUI (alias: q)",
	Long: `Search reviews without the TUI.

The query runs through the same search controller as the interactive
overlay: the first page is hydrated, and --all keeps loading pages until
every match is shown.

Examples:
  # First page of matches
  logsearch query batman

  # Every match, as JSON
  logsearch query --all --json "dark knight"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().BoolVarP(&queryAll, "all", "a", false, "Load every page of results")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "Print results as JSON")
}

// queryResult is the JSON output of the query command.
type queryResult struct {
	Query   string      `json:"query"`
	Total   int         `json:"total"`
	Shown   int         `json:"shown"`
	Results []queryItem `json:"results"`
}

type queryItem struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Kind    string `json:"kind,omitempty"`
	Image   string `json:"image,omitempty"`
	Excerpt string `json:"excerpt"`
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg, cleanup, err := setup()
	if err != nil {
		return trackCLIError(cmd.Name(), err)
	}
	defer cleanup()

	index, err := newIndex(cfg)
	if err != nil {
		return trackCLIError(cmd.Name(), err)
	}

	ctrl := search.NewController(index, controllerConfig(cfg, telemetryClient))
	defer func() {
		_ = ctrl.Destroy(context.WithoutCancel(cmd.Context()))
	}()

	res, err := runHeadless(cmd.Context(), ctrl, strings.Join(args, " "), queryAll)
	if err != nil {
		return trackCLIError(cmd.Name(), err)
	}

	if queryJSON {
		return writeQueryJSON(cmd.OutOrStdout(), res)
	}
	writeQueryText(cmd.OutOrStdout(), res)
	return nil
}

// runHeadless drives ctrl without a surface: it initializes the index,
// submits query and, when all is set, loads pages until nothing remains.
func runHeadless(ctx context.Context, ctrl *search.Controller, query string, all bool) (*queryResult, error) {
	if err := ctrl.Initialize(ctx, nil); err != nil {
		return nil, err
	}

	ctrl.Submit(query)
	for all {
		st, ok := ctrl.State().(search.ResultsState)
		if !ok || st.Remaining() == 0 {
			break
		}
		if err := ctrl.LoadMore(ctx); err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	res := &queryResult{Query: strings.TrimSpace(query), Results: []queryItem{}}
	switch st := ctrl.State().(type) {
	case search.ResultsState:
		res.Total = st.Total
		res.Shown = st.VisibleCount
		for _, doc := range st.Visible {
			slots := search.FillSlots(doc, true)
			res.Results = append(res.Results, queryItem{
				Title:   slots.Title,
				URL:     slots.URL,
				Kind:    slots.Kind,
				Image:   slots.ImageURL,
				Excerpt: excerpt.Plain(doc.Excerpt),
			})
		}
	case search.ErrorState:
		return nil, errors.New(st.Message)
	}
	return res, nil
}

func writeQueryJSON(w io.Writer, res *queryResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	return nil
}

func writeQueryText(w io.Writer, res *queryResult) {
	if res.Query == "" {
		return
	}
	if res.Total == 0 {
		_, _ = fmt.Fprintln(w, search.EmptyMessage)
		return
	}

	titleStyle := lipgloss.NewStyle().Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B6B6B"))

	_, _ = fmt.Fprintln(w, search.FormatCounter(res.Total, res.Query))
	_, _ = fmt.Fprintln(w)
	for _, item := range res.Results {
		title := titleStyle.Render(item.Title)
		if item.Kind != "" {
			title += mutedStyle.Render(" · " + item.Kind)
		}
		_, _ = fmt.Fprintln(w, title)
		_, _ = fmt.Fprintln(w, "  "+mutedStyle.Render(item.URL))
		if item.Excerpt != "" {
			_, _ = fmt.Fprintln(w, "  "+item.Excerpt)
		}
		_, _ = fmt.Fprintln(w)
	}
	if remaining := res.Total - res.Shown; remaining > 0 {
		_, _ = fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("%d more. Use --all to show every match.", remaining)))
	}
}
