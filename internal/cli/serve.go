package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reviewlog/logsearch/internal/config"
	"github.com/reviewlog/logsearch/internal/index/bundle"
	"github.com/reviewlog/logsearch/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the local index over HTTP",
	Long: `Serve the local index over HTTP so other logsearch clients can use it
as a remote index (set search.remote_url or LOGSEARCH_REMOTE_URL on the
client).

Endpoints:
  GET /healthz
  GET /api/search?q=<query>
  GET /api/documents/{id}?q=<query>

Examples:
  logsearch serve --addr 127.0.0.1:8080`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, cleanup, err := setup()
	if err != nil {
		return trackCLIError(cmd.Name(), err)
	}
	defer cleanup()

	ctx := cmd.Context()
	index := bundle.New()
	if err := index.Init(ctx, config.GetPaths(cfg).Bundle); err != nil {
		return trackCLIError(cmd.Name(), fmt.Errorf("%w (run 'logsearch update' first)", err))
	}
	defer func() {
		_ = index.Destroy(context.WithoutCancel(ctx))
	}()

	srvCfg := cfg.Server
	if serveAddr != "" {
		srvCfg.Addr = serveAddr
	}

	fmt.Printf("🌐 Serving %s on http://%s\n", config.GetPaths(cfg).Bundle, srvCfg.Addr)
	if err := server.New(index, srvCfg).Run(ctx); err != nil {
		return trackCLIError(cmd.Name(), fmt.Errorf("serve index: %w", err))
	}
	return nil
}
