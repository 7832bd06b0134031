package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/lox/lunchflow-mcp/internal/commands"
	"github.com/lox/lunchflow-mcp/internal/mcp"
	"github.com/lox/lunchflow-mcp/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type CLI struct {
	commands.CommonConfig
	commands.APIConfig

	Transport string `help:"MCP transport to serve" default:"stdio" enum:"stdio,sse" env:"LUNCHFLOW_MCP_TRANSPORT"`
	Listen    string `help:"Address to listen on for the sse transport" default:":8080" env:"LUNCHFLOW_MCP_LISTEN"`
	BaseURL   string `help:"Public base URL advertised to sse clients" default:"http://localhost:8080" env:"LUNCHFLOW_MCP_BASE_URL"`
}

func (c *CLI) Run() error {
	// stdout carries MCP frames in stdio mode, so logs always go to stderr
	logger, err := commands.SetupLogger(c.CommonConfig, os.Stderr)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m, err := metrics.New(registry)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	client, err := commands.SetupClient(c.APIConfig, logger, m)
	if err != nil {
		return err
	}

	s := mcp.New(client, logger, m)

	switch c.Transport {
	case "sse":
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return s.ServeSSE(ctx, c.Listen, c.BaseURL, registry)
	default:
		logger.Info("Serving MCP over stdio")
		return s.ServeStdio()
	}
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("lunchflow-mcp-server"),
		kong.Description("Serve Lunch Flow accounts, transactions and balances as MCP tools"),
		kong.UsageOnError(),
	)

	err := ctx.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
