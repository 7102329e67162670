package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"aio/internal/config"
	"aio/internal/daemon"
)

func main() {
	vaultFlag := flag.String("vault", "", "path to the vault (default: discovered)")
	socketFlag := flag.String("socket", config.DefaultSocketPath(), "unix socket path")
	httpFlag := flag.String("http", fmt.Sprintf("%s:%d", config.DefaultHTTPHost, config.DefaultHTTPPort), "HTTP listen address")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	vaultPath := *vaultFlag
	if vaultPath == "" {
		var err error
		vaultPath, err = config.DiscoverVault()
		if err != nil {
			logger.Error("vault discovery failed", "error", err)
			os.Exit(1)
		}
	}

	server := daemon.NewServer(daemon.Options{
		VaultPath:  vaultPath,
		SocketPath: *socketFlag,
		HTTPAddr:   *httpFlag,
		Logger:     logger,
	})
	if err := server.Start(); err != nil {
		logger.Error("daemon start failed", "error", err)
		os.Exit(1)
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGTERM, syscall.SIGINT)
	sig := <-sigs
	logger.Info("shutting down", "signal", sig.String())

	if err := server.Stop(); err != nil {
		logger.Error("daemon stop failed", "error", err)
		os.Exit(1)
	}
}
