package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"aio/internal/config"
	"aio/internal/daemon"
)

const foregroundEnv = "AIO_DAEMON_FOREGROUND"

var daemonHTTPAddr string

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Manage the background daemon",
	Long: `The daemon keeps an in-memory mirror of the vault and answers the
CLI, MCP server, and editor plugin over a Unix socket and HTTP.`,
}

var daemonStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the daemon in the background",
	RunE: func(cmd *cobra.Command, args []string) error {
		vaultPath, err := resolveVault()
		if err != nil {
			return err
		}

		pidFile, err := pidFilePath()
		if err != nil {
			return err
		}
		if running, pid := daemonRunning(pidFile); running {
			return fmt.Errorf("daemon already running (PID %d)", pid)
		}

		if os.Getenv(foregroundEnv) == "1" {
			return runForeground(vaultPath, pidFile)
		}
		return spawnBackground(vaultPath, pidFile)
	},
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		pidFile, err := pidFilePath()
		if err != nil {
			return err
		}
		running, pid := daemonRunning(pidFile)
		if !running {
			fmt.Println("Daemon is not running.")
			return nil
		}

		process, err := os.FindProcess(pid)
		if err != nil {
			return err
		}
		if err := process.Signal(syscall.SIGTERM); err != nil {
			return fmt.Errorf("send SIGTERM: %w", err)
		}

		for i := 0; i < 50; i++ {
			time.Sleep(100 * time.Millisecond)
			if running, _ := daemonRunning(pidFile); !running {
				fmt.Println("Daemon stopped.")
				return nil
			}
		}
		return fmt.Errorf("daemon (PID %d) did not stop within 5 seconds", pid)
	},
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon status",
	RunE: func(cmd *cobra.Command, args []string) error {
		pidFile, err := pidFilePath()
		if err != nil {
			return err
		}
		running, pid := daemonRunning(pidFile)
		if !running {
			fmt.Println("Daemon is not running.")
			return nil
		}
		fmt.Printf("Daemon is running (PID %d)\n", pid)

		resp, err := http.Get(fmt.Sprintf("http://%s/api/v1/health", daemonHTTPAddr))
		if err != nil {
			fmt.Println("Health endpoint unreachable:", err)
			return nil
		}
		defer resp.Body.Close()

		var health struct {
			Data map[string]any `json:"data"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&health); err == nil {
			pretty, _ := json.MarshalIndent(health.Data, "", "  ")
			fmt.Println(string(pretty))
		}
		return nil
	},
}

// spawnBackground re-executes this binary detached with the foreground
// marker set, then waits for the PID file to confirm startup.
func spawnBackground(vaultPath, pidFile string) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}

	child := exec.Command(exe, "daemon", "start", "--vault", vaultPath, "--http", daemonHTTPAddr)
	child.Env = append(os.Environ(), foregroundEnv+"=1")
	child.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return err
	}
	defer devNull.Close()
	child.Stdin = devNull
	child.Stdout = devNull
	child.Stderr = devNull

	if err := child.Start(); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}
	expected := child.Process.Pid
	child.Process.Release()

	for i := 0; i < 50; i++ {
		time.Sleep(100 * time.Millisecond)
		if data, err := os.ReadFile(pidFile); err == nil {
			if pid, err := strconv.Atoi(strings.TrimSpace(string(data))); err == nil && pid == expected {
				fmt.Printf("Daemon started (PID %d)\n", expected)
				return nil
			}
		}
	}
	return fmt.Errorf("daemon did not confirm startup; check %s", logFilePath())
}

// runForeground runs the supervisor in this process until SIGTERM or
// SIGINT.
func runForeground(vaultPath, pidFile string) error {
	logFile, err := os.OpenFile(logFilePath(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer logFile.Close()
	logger := slog.New(slog.NewTextHandler(logFile, nil))

	if err := writePIDFile(pidFile); err != nil {
		return err
	}
	defer os.Remove(pidFile)

	server := daemon.NewServer(daemon.Options{
		VaultPath:  vaultPath,
		SocketPath: config.DefaultSocketPath(),
		HTTPAddr:   daemonHTTPAddr,
		Logger:     logger,
	})
	if err := server.Start(); err != nil {
		logger.Error("daemon failed to start", "error", err)
		return err
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGTERM, syscall.SIGINT)
	sig := <-signals
	logger.Info("shutting down", "signal", sig.String())
	return server.Stop()
}

// writePIDFile claims the PID file, replacing a stale one from a dead
// process.
func writePIDFile(pidFile string) error {
	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(pidFile, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
		if err == nil {
			fmt.Fprintf(f, "%d", os.Getpid())
			return f.Close()
		}
		if errors.Is(err, fs.ErrExist) {
			if running, pid := daemonRunning(pidFile); running {
				return fmt.Errorf("daemon already running (PID %d)", pid)
			}
			os.Remove(pidFile)
			continue
		}
		return err
	}
	return fmt.Errorf("could not claim PID file %s", pidFile)
}

func daemonRunning(pidFile string) (bool, int) {
	data, err := os.ReadFile(pidFile)
	if err != nil {
		return false, 0
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return false, 0
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false, 0
	}
	if err := process.Signal(syscall.Signal(0)); err != nil {
		return false, 0
	}
	return true, pid
}

func pidFilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".aio")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return filepath.Join(dir, "daemon.pid"), nil
}

func logFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "aio-daemon.log")
	}
	return filepath.Join(home, ".aio", "daemon.log")
}

func init() {
	defaultAddr := fmt.Sprintf("%s:%d", config.DefaultHTTPHost, config.DefaultHTTPPort)
	daemonCmd.PersistentFlags().StringVar(&daemonHTTPAddr, "http", defaultAddr, "HTTP listen address")
	daemonCmd.AddCommand(daemonStartCmd, daemonStopCmd, daemonStatusCmd)
	rootCmd.AddCommand(daemonCmd)
}
