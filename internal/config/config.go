package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"aio/internal/application"
)

// Daemon defaults.
const (
	DefaultHTTPHost = "127.0.0.1"
	DefaultHTTPPort = 7432
)

// DefaultSocketPath returns the per-user daemon socket path
// (~/.aio/daemon.sock).
func DefaultSocketPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "aio-daemon.sock")
	}
	return filepath.Join(home, ".aio", "daemon.sock")
}

// fileConfig mirrors the vault section of .aio/config.yaml.
type fileConfig struct {
	Vault struct {
		Path string `yaml:"path"`
	} `yaml:"vault"`
}

// DiscoverVault locates the Obsidian vault. Search order:
//
//  1. AIO_VAULT_PATH environment variable
//  2. .aio/config.yaml in the current directory
//  3. walking up from the current directory to find a .obsidian folder
//  4. ~/.aio/config.yaml
func DiscoverVault() (string, error) {
	if env := os.Getenv("AIO_VAULT_PATH"); env != "" {
		path := expandHome(env)
		if isVault(path) {
			return path, nil
		}
		return "", &application.VaultNotFoundError{
			Hint: "AIO_VAULT_PATH is set but not a valid vault: " + path,
		}
	}

	cwd, err := os.Getwd()
	if err == nil {
		if path := readConfigVaultPath(filepath.Join(cwd, ".aio", "config.yaml")); path != "" && isVault(path) {
			return path, nil
		}

		for dir := cwd; ; dir = filepath.Dir(dir) {
			if info, err := os.Stat(filepath.Join(dir, ".obsidian")); err == nil && info.IsDir() {
				return dir, nil
			}
			if dir == filepath.Dir(dir) {
				break
			}
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		if path := readConfigVaultPath(filepath.Join(home, ".aio", "config.yaml")); path != "" && isVault(path) {
			return path, nil
		}
	}

	return "", &application.VaultNotFoundError{
		Hint: "set AIO_VAULT_PATH or run 'aio init <vault-path>'",
	}
}

// SaveGlobalConfig records the vault path in ~/.aio/config.yaml so later
// invocations find it without AIO_VAULT_PATH.
func SaveGlobalConfig(vaultPath string) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	dir := filepath.Join(home, ".aio")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	var cfg fileConfig
	cfg.Vault.Path = vaultPath
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "config.yaml"), data, 0o600)
}

func readConfigVaultPath(configPath string) string {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return ""
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return ""
	}
	return expandHome(cfg.Vault.Path)
}

func isVault(path string) bool {
	info, err := os.Stat(filepath.Join(path, ".obsidian"))
	return err == nil && info.IsDir()
}

func expandHome(path string) string {
	if len(path) > 0 && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
