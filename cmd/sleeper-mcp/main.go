package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	str2duration "github.com/xhit/go-str2duration/v2"

	"github.com/draftkit/sleeper-mcp/cache"
	"github.com/draftkit/sleeper-mcp/env"
	"github.com/draftkit/sleeper-mcp/logger"
	"github.com/draftkit/sleeper-mcp/mcp"
	"github.com/draftkit/sleeper-mcp/mcp/transport/stdio"
	"github.com/draftkit/sleeper-mcp/sleeper"
	"github.com/draftkit/sleeper-mcp/tools"
)

// set by the linker at release time
var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "sleeper-mcp",
		Short:   "MCP server exposing Sleeper fantasy football data as tools",
		Version: version,
		RunE:    run,
	}

	rootCmd.Flags().String("log-level", "", "log level (trace, debug, info, warn, error)")
	rootCmd.Flags().Bool("json-logs", false, "emit logs as JSON instead of console format")
	rootCmd.Flags().String("base-url", "", "override the Sleeper API base URL")
	rootCmd.Flags().String("min-request-interval", "", "minimum delay between upstream requests, e.g. 500ms")
	rootCmd.Flags().String("request-timeout", "", "per-request timeout for upstream calls, e.g. 30s")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	level := env.LogLevel(cmd)
	var log logger.Logger
	if jsonLogs, _ := cmd.Flags().GetBool("json-logs"); jsonLogs {
		log = logger.NewJSONLogger(level)
	} else {
		log = logger.NewConsoleLogger(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cacheOpts := append([]cache.Option{cache.WithLogger(log.WithPrefix("[cache]"))},
		env.TTLOverrides(log.Warn)...)
	store := cache.New(cacheOpts...)

	clientOpts := []sleeper.ClientOption{sleeper.WithLogger(log.WithPrefix("[sleeper]"))}
	if baseURL := env.FlagOrEnv(cmd, "base-url", "SLEEPER_MCP_BASE_URL", ""); baseURL != "" {
		clientOpts = append(clientOpts, sleeper.WithBaseURL(baseURL))
	}
	if interval := env.FlagOrEnv(cmd, "min-request-interval", "SLEEPER_MCP_MIN_REQUEST_INTERVAL", ""); interval != "" {
		dur, err := str2duration.ParseDuration(interval)
		if err != nil {
			return err
		}
		clientOpts = append(clientOpts, sleeper.WithMinRequestInterval(dur))
	}
	if timeout := env.FlagOrEnv(cmd, "request-timeout", "SLEEPER_MCP_REQUEST_TIMEOUT", ""); timeout != "" {
		dur, err := str2duration.ParseDuration(timeout)
		if err != nil {
			return err
		}
		clientOpts = append(clientOpts, sleeper.WithHTTPClient(&http.Client{Timeout: dur}))
	}
	client := sleeper.NewClient(clientOpts...)

	registry := tools.New(client, store, log.WithPrefix("[tools]")).Registry()

	// stdout carries the protocol, so all logging goes to stderr
	t := stdio.NewStdioTransport(log.WithPrefix("[mcp]"))
	server := mcp.NewServer("sleeper-mcp", version, t, registry, log.WithPrefix("[mcp]"))

	if err := server.Serve(ctx); err != nil {
		log.Error("server exited: %v", err)
		return err
	}
	return nil
}
