package filesystem

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"aio/internal/application"
	"aio/internal/ports"
)

// FileStore implements ports.FileStore. Queries resolve to a vault file
// either directly as a relative path or through the task repository by
// ID or title. All paths are confined to the vault root.
type FileStore struct {
	vault *Vault
	tasks ports.TaskRepository
}

var _ ports.FileStore = (*FileStore)(nil)

// NewFileStore creates a file store for a vault.
func NewFileStore(vault *Vault, tasks ports.TaskRepository) *FileStore {
	return &FileStore{vault: vault, tasks: tasks}
}

// Get returns the content of the file the query resolves to.
func (s *FileStore) Get(query string) (string, error) {
	path, err := s.resolve(query, false)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

// Set overwrites or creates the file the query resolves to. An existing
// file is backed up to <path>.bak first.
func (s *FileStore) Set(query, content string) (string, string, error) {
	path, err := s.resolve(query, true)
	if err != nil {
		return "", "", err
	}

	backup := ""
	if _, err := os.Stat(path); err == nil {
		backup = path + ".bak"
		data, err := os.ReadFile(path)
		if err != nil {
			return "", "", fmt.Errorf("read %s for backup: %w", path, err)
		}
		if err := os.WriteFile(backup, data, 0o644); err != nil {
			return "", "", fmt.Errorf("write backup %s: %w", backup, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", "", err
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", "", fmt.Errorf("write %s: %w", path, err)
	}

	rel, _ := filepath.Rel(s.vault.Root(), path)
	if backup != "" {
		backup, _ = filepath.Rel(s.vault.Root(), backup)
	}
	return rel, backup, nil
}

// resolve turns a query into an absolute path inside the vault. A path
// query may name a file that does not exist yet when forWrite is set;
// ID and title queries always resolve through an existing task.
func (s *FileStore) resolve(query string, forWrite bool) (string, error) {
	if looksLikePath(query) {
		return s.resolvePath(query, forWrite)
	}

	task, err := s.tasks.Find(query)
	if err != nil {
		// A bare filename may still be a path query.
		if path, perr := s.resolvePath(query, forWrite); perr == nil {
			return path, nil
		}
		return "", err
	}

	repo, ok := s.tasks.(*TaskRepo)
	if !ok {
		return "", &application.TaskNotFoundError{Query: query}
	}
	path := repo.findFileByID(task.ID)
	if path == "" {
		return "", &application.TaskNotFoundError{Query: query}
	}
	return path, nil
}

func (s *FileStore) resolvePath(query string, forWrite bool) (string, error) {
	if !strings.HasSuffix(query, ".md") {
		query += ".md"
	}

	path := filepath.Join(s.vault.Root(), query)
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	root, err := filepath.Abs(s.vault.Root())
	if err != nil {
		return "", err
	}
	if abs != root && !strings.HasPrefix(abs, root+string(filepath.Separator)) {
		return "", &application.FileOutsideVaultError{Path: query}
	}

	if !forWrite {
		if _, err := os.Stat(abs); err != nil {
			return "", &application.TaskNotFoundError{Query: query}
		}
	}
	return abs, nil
}

// looksLikePath reports whether a query names a file rather than an
// entity ID or title.
func looksLikePath(query string) bool {
	return strings.ContainsRune(query, filepath.Separator) ||
		strings.ContainsRune(query, '/') ||
		strings.HasSuffix(query, ".md")
}
