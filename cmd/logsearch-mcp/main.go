// Package main provides the logsearch-mcp server.
//
// logsearch-mcp exposes the review index via the Model Context Protocol,
// letting MCP clients search reviews and read them.
//
// Usage:
//
//	logsearch-mcp [flags]
//
// The server communicates via JSON-RPC 2.0 over stdio (stdin/stdout).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/reviewlog/logsearch/internal/config"
	"github.com/reviewlog/logsearch/internal/db"
	"github.com/reviewlog/logsearch/internal/index/bundle"
	"github.com/reviewlog/logsearch/internal/index/remote"
	"github.com/reviewlog/logsearch/internal/log"
	"github.com/reviewlog/logsearch/internal/mcp"
	"github.com/reviewlog/logsearch/internal/telemetry"
	"github.com/reviewlog/logsearch/pkg/version"
)

func main() {
	// Handle --version flag
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-v") {
		fmt.Printf("logsearch-mcp %s\n", version.Version)
		os.Exit(0)
	}

	// Handle --help flag
	if len(os.Args) > 1 && (os.Args[1] == "--help" || os.Args[1] == "-h") {
		printHelp()
		os.Exit(0)
	}

	// Setup context with cancellation on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "logsearch-mcp: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// stdout carries the protocol, so logs only go to the file.
	if err := log.Init(cfg.BaseDir, cfg.Log.Level); err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer func() {
		_ = log.Close()
	}()

	paths := config.GetPaths(cfg)
	database, err := db.New(db.DefaultConfig(bundle.Path(paths.Bundle)))
	if err != nil {
		return fmt.Errorf("open index database: %w", err)
	}
	defer func() {
		_ = database.Close()
	}()

	tc := telemetry.New(cfg.Telemetry.Enabled, database)
	defer tc.Close()

	var (
		index mcp.Index
		stats mcp.StatsProvider
	)
	if cfg.Search.RemoteURL != "" {
		idx, err := remote.New(cfg.Search.RemoteURL)
		if err != nil {
			return fmt.Errorf("invalid remote index url: %w", err)
		}
		if err := idx.Init(ctx, ""); err != nil {
			return err
		}
		defer func() {
			_ = idx.Destroy(context.WithoutCancel(ctx))
		}()
		index = idx
	} else {
		idx := bundle.New()
		idx.Attach(database)
		index = idx
		stats = database
	}
	tc.TrackAppStarted("mcp", cfg.Search.RemoteURL != "", len(cfg.Sources))

	return mcp.NewServer(index, stats, tc).Serve(ctx)
}

func printHelp() {
	help := `logsearch-mcp - MCP server for the logsearch review index

USAGE:
    logsearch-mcp [FLAGS]

FLAGS:
    -h, --help       Print this help message
    -v, --version    Print version information

DESCRIPTION:
    logsearch-mcp is a Model Context Protocol (MCP) server that exposes the
    movielog and booklog review index to MCP-compatible clients.

    It searches the local bundle built by 'logsearch update', or the remote
    index when search.remote_url (or LOGSEARCH_REMOTE_URL) is set.

    The server communicates via JSON-RPC 2.0 over stdio (stdin/stdout).

CONFIGURATION:
    {
      "mcpServers": {
        "logsearch": {
          "type": "stdio",
          "command": "logsearch-mcp"
        }
      }
    }

TOOLS PROVIDED:
    logsearch_search         Search reviews with full-text search
    logsearch_get_document   Get one review with its excerpt
    logsearch_get_stats      Get index statistics (local bundle only)

RESOURCES PROVIDED:
    logsearch://document/{id}   Review document as JSON
`
	fmt.Print(help)
}
