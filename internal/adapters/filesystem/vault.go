package filesystem

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"aio/internal/application"
	"aio/internal/domain"
)

// aioFolders is the directory skeleton created by Init.
var aioFolders = []string{
	"AIO/Dashboard",
	"AIO/Tasks/Inbox",
	"AIO/Tasks/Next",
	"AIO/Tasks/Waiting",
	"AIO/Tasks/Scheduled",
	"AIO/Tasks/Someday",
	"AIO/Tasks/Completed",
	"AIO/Projects",
	"AIO/Areas",
	"AIO/People",
	"AIO/Context-Packs/Domains",
	"AIO/Context-Packs/Systems",
	"AIO/Context-Packs/Operating",
	"AIO/Archive/Tasks/Inbox",
	"AIO/Archive/Tasks/Next",
	"AIO/Archive/Tasks/Waiting",
	"AIO/Archive/Tasks/Scheduled",
	"AIO/Archive/Tasks/Someday",
	"AIO/Archive/Projects",
	"AIO/Archive/People",
}

// Vault resolves paths inside an Obsidian vault with the AIO structure.
type Vault struct {
	root string
}

// NewVault creates a Vault rooted at vaultPath. A leading ~ is expanded.
func NewVault(vaultPath string) *Vault {
	if strings.HasPrefix(vaultPath, "~") {
		home, _ := os.UserHomeDir()
		vaultPath = filepath.Join(home, vaultPath[1:])
	}
	return &Vault{root: vaultPath}
}

// Root returns the vault root path.
func (v *Vault) Root() string { return v.root }

// AIOPath returns the AIO directory path.
func (v *Vault) AIOPath() string { return filepath.Join(v.root, "AIO") }

// TasksFolder returns the folder for a task status.
func (v *Vault) TasksFolder(status domain.TaskStatus) string {
	return filepath.Join(v.AIOPath(), "Tasks", status.Folder())
}

// CompletedFolder returns the year/month folder for completed tasks,
// creating it if needed.
func (v *Vault) CompletedFolder(year int, month int) (string, error) {
	folder := filepath.Join(v.AIOPath(), "Tasks", "Completed",
		fmt.Sprintf("%d", year), fmt.Sprintf("%02d", month))
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return "", fmt.Errorf("create completed folder: %w", err)
	}
	return folder, nil
}

// ArchiveTasksFolder returns the archive folder for a task status,
// creating it if needed.
func (v *Vault) ArchiveTasksFolder(status domain.TaskStatus) (string, error) {
	folder := filepath.Join(v.AIOPath(), "Archive", "Tasks", status.Folder())
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return "", fmt.Errorf("create archive folder: %w", err)
	}
	return folder, nil
}

// ArchiveProjectsFolder returns the archive folder for projects,
// creating it if needed.
func (v *Vault) ArchiveProjectsFolder() (string, error) {
	folder := filepath.Join(v.AIOPath(), "Archive", "Projects")
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return "", fmt.Errorf("create archive folder: %w", err)
	}
	return folder, nil
}

// ArchivePeopleFolder returns the archive folder for people, creating
// it if needed.
func (v *Vault) ArchivePeopleFolder() (string, error) {
	folder := filepath.Join(v.AIOPath(), "Archive", "People")
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return "", fmt.Errorf("create archive folder: %w", err)
	}
	return folder, nil
}

// ProjectsFolder returns the Projects folder path.
func (v *Vault) ProjectsFolder() string { return filepath.Join(v.AIOPath(), "Projects") }

// PeopleFolder returns the People folder path.
func (v *Vault) PeopleFolder() string { return filepath.Join(v.AIOPath(), "People") }

// DashboardFolder returns the Dashboard folder path.
func (v *Vault) DashboardFolder() string { return filepath.Join(v.AIOPath(), "Dashboard") }

// ContextPacksFolder returns the Context-Packs folder path.
func (v *Vault) ContextPacksFolder() string { return filepath.Join(v.AIOPath(), "Context-Packs") }

// ConfigDir returns the vault-local .aio directory.
func (v *Vault) ConfigDir() string { return filepath.Join(v.root, ".aio") }

// IsInitialized reports whether the AIO folder exists.
func (v *Vault) IsInitialized() bool {
	info, err := os.Stat(v.AIOPath())
	return err == nil && info.IsDir()
}

// EnsureInitialized fails with VaultNotInitializedError when the AIO
// structure is missing.
func (v *Vault) EnsureInitialized() error {
	if !v.IsInitialized() {
		return &application.VaultNotInitializedError{Path: v.root}
	}
	return nil
}

// Init creates the AIO folder skeleton. Existing folders are left alone.
func (v *Vault) Init() error {
	for _, folder := range aioFolders {
		if err := os.MkdirAll(filepath.Join(v.root, folder), 0o755); err != nil {
			return fmt.Errorf("create %s: %w", folder, err)
		}
	}
	return nil
}
