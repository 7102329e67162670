package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	mcpadapter "aio/internal/adapters/mcp"
	"aio/internal/config"
	"aio/internal/daemon"
)

func main() {
	vaultFlag := flag.String("vault", "", "path to the vault (default: discovered)")
	socketFlag := flag.String("socket", config.DefaultSocketPath(), "daemon socket path")
	flag.Parse()

	vaultPath := *vaultFlag
	if vaultPath == "" {
		var err error
		vaultPath, err = config.DiscoverVault()
		if err != nil {
			log.Fatalf("aio-mcp: %v", err)
		}
	}

	// Stdout carries the MCP protocol, so logs go to stderr only.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	dispatcher, cleanup, err := daemon.NewLocalDispatcher(vaultPath, true, logger)
	if err != nil {
		log.Fatalf("aio-mcp: %v", err)
	}
	defer cleanup()

	invoker := &mcpadapter.Fallback{
		Primary:   &mcpadapter.ClientInvoker{Client: daemon.NewClient(*socketFlag, 5*time.Second)},
		Secondary: &mcpadapter.LocalInvoker{Dispatcher: dispatcher},
	}

	mcpServer := server.NewMCPServer(
		"aio-mcp",
		"0.1.0",
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(
		mcp.NewTool("ping",
			mcp.WithDescription("Health check, returns pong"),
		),
		func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("pong"), nil
		},
	)

	mcpadapter.RegisterReadTools(mcpServer, invoker)
	mcpadapter.RegisterWriteTools(mcpServer, invoker)

	if err := server.ServeStdio(mcpServer); err != nil {
		log.Fatalf("aio-mcp: %v", err)
	}
}
