package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"aio/internal/config"
	"aio/internal/daemon"
)

var vaultFlag string

var rootCmd = &cobra.Command{
	Use:   "aio",
	Short: "Tasks, projects, and people in your note vault",
	Long: `aio manages tasks, projects, and people stored as markdown files
with YAML frontmatter inside an Obsidian vault.

Commands talk to the background daemon when it is running and fall
back to reading the vault directly when it is not.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&vaultFlag, "vault", "v", "", "path to the vault (default: discovered)")
}

// resolveVault returns the vault path from the flag or discovery.
func resolveVault() (string, error) {
	if vaultFlag != "" {
		return vaultFlag, nil
	}
	return config.DiscoverVault()
}

// quietLogger keeps daemon internals out of CLI output.
func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// call runs one RPC method, preferring the daemon and falling back to
// direct vault access when it is not running. out receives the decoded
// result.
func call(method string, params any, out any) error {
	client := daemon.NewClient(config.DefaultSocketPath(), 5*time.Second)
	if client.Available() {
		err := client.Call(method, params, out)
		if err == nil || !errors.Is(err, daemon.ErrDaemonUnavailable) {
			return err
		}
	}

	vault, err := resolveVault()
	if err != nil {
		return err
	}
	dispatcher, cleanup, err := daemon.NewLocalDispatcher(vault, false, quietLogger())
	if err != nil {
		return err
	}
	defer cleanup()

	raw, err := json.Marshal(params)
	if err != nil {
		return err
	}
	resp := dispatcher.Dispatch(daemon.Request{JSONRPC: "2.0", ID: 0, Method: method, Params: raw})
	if resp.Error != nil {
		return resp.Error
	}
	if out != nil {
		data, err := json.Marshal(resp.Result)
		if err != nil {
			return err
		}
		return json.Unmarshal(data, out)
	}
	return nil
}
