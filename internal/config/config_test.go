package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"aio/internal/application"
)

func makeVault(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ".obsidian"), 0o755); err != nil {
		t.Fatalf("mkdir .obsidian: %v", err)
	}
	return dir
}

func TestDiscoverVaultFromEnv(t *testing.T) {
	vault := makeVault(t)
	t.Setenv("AIO_VAULT_PATH", vault)

	got, err := DiscoverVault()
	if err != nil {
		t.Fatalf("DiscoverVault: %v", err)
	}
	if got != vault {
		t.Errorf("DiscoverVault() = %q, want %q", got, vault)
	}
}

func TestDiscoverVaultEnvNotAVault(t *testing.T) {
	t.Setenv("AIO_VAULT_PATH", t.TempDir())

	_, err := DiscoverVault()
	var notFound *application.VaultNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("DiscoverVault error = %v, want VaultNotFoundError", err)
	}
}

func TestDiscoverVaultWalksUpToObsidianFolder(t *testing.T) {
	t.Setenv("AIO_VAULT_PATH", "")
	t.Setenv("HOME", t.TempDir())

	vault := makeVault(t)
	nested := filepath.Join(vault, "AIO", "Tasks", "Inbox")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	t.Chdir(nested)

	got, err := DiscoverVault()
	if err != nil {
		t.Fatalf("DiscoverVault: %v", err)
	}
	// The temp dir may come back through a symlink; compare resolved paths.
	wantReal, _ := filepath.EvalSymlinks(vault)
	gotReal, _ := filepath.EvalSymlinks(got)
	if gotReal != wantReal {
		t.Errorf("DiscoverVault() = %q, want %q", got, vault)
	}
}

func TestDiscoverVaultFromLocalConfig(t *testing.T) {
	t.Setenv("AIO_VAULT_PATH", "")
	t.Setenv("HOME", t.TempDir())

	vault := makeVault(t)
	work := t.TempDir()
	if err := os.MkdirAll(filepath.Join(work, ".aio"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	cfg := "vault:\n  path: " + vault + "\n"
	if err := os.WriteFile(filepath.Join(work, ".aio", "config.yaml"), []byte(cfg), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Chdir(work)

	got, err := DiscoverVault()
	if err != nil {
		t.Fatalf("DiscoverVault: %v", err)
	}
	if got != vault {
		t.Errorf("DiscoverVault() = %q, want %q", got, vault)
	}
}

func TestSaveGlobalConfigRoundtrip(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("AIO_VAULT_PATH", "")

	vault := makeVault(t)
	if err := SaveGlobalConfig(vault); err != nil {
		t.Fatalf("SaveGlobalConfig: %v", err)
	}

	// Discovery falls through env and cwd to the global config.
	t.Chdir(t.TempDir())
	got, err := DiscoverVault()
	if err != nil {
		t.Fatalf("DiscoverVault: %v", err)
	}
	if got != vault {
		t.Errorf("DiscoverVault() = %q, want %q", got, vault)
	}
}

func TestDefaultSocketPathUnderHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	want := filepath.Join(home, ".aio", "daemon.sock")
	if got := DefaultSocketPath(); got != want {
		t.Errorf("DefaultSocketPath() = %q, want %q", got, want)
	}
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	if got := expandHome("~/vault"); got != filepath.Join(home, "vault") {
		t.Errorf("expandHome(~/vault) = %q", got)
	}
	if got := expandHome("/abs/path"); got != "/abs/path" {
		t.Errorf("expandHome(/abs/path) = %q", got)
	}
}
