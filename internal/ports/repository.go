package ports

import (
	"time"

	"aio/internal/domain"
)

// TaskRepository defines storage operations for task markdown files.
// Implementations resolve queries that are either a 4-character ID or a
// title substring; a substring matching more than one task is an
// AmbiguousMatchError.
type TaskRepository interface {
	Create(title string, due *time.Time, project string, status domain.TaskStatus, tags []string) (*domain.Task, error)
	Get(id string) (*domain.Task, error)
	Find(query string) (*domain.Task, error)
	List(status *domain.TaskStatus, includeCompleted bool) ([]domain.Task, error)

	// Status transitions move the file between status folders.
	Complete(query string) (*domain.Task, error)
	Start(query string) (*domain.Task, error)
	Defer(query string) (*domain.Task, error)
	Wait(query, personLink string) (*domain.Task, error)

	// Archive moves the file under Archive, keeping its status.
	Archive(query string) (*domain.Task, error)
}

// ProjectRepository defines storage operations for project notes.
type ProjectRepository interface {
	Create(name string, status domain.ProjectStatus, team string) (*domain.Project, error)
	Find(query string) (*domain.Project, error)
	List(status *domain.ProjectStatus) ([]domain.Project, error)
	Archive(query string) (*domain.Project, error)
	Slug(title string) string
}

// PersonRepository defines storage operations for person notes.
type PersonRepository interface {
	Create(name, team, role, email string) (*domain.Person, error)
	Find(query string) (*domain.Person, error)
	List() ([]domain.Person, error)
	Archive(query string) (*domain.Person, error)
	Slug(name string) string
}

// ContextPackRepository defines storage operations for context packs.
type ContextPackRepository interface {
	Create(title string, category domain.ContextPackCategory, content, description string, tags []string) (*domain.ContextPack, error)
	Get(id string) (*domain.ContextPack, error)
	List(category *domain.ContextPackCategory) ([]domain.ContextPack, error)
	Append(id, content, section string) (*domain.ContextPack, error)
	AppendFile(id, filePath, section string) (*domain.ContextPack, error)
}

// FileStore reads and writes arbitrary vault files, resolving queries
// by entity ID, title, or relative path. Writes are confined to the
// vault root.
type FileStore interface {
	Get(query string) (string, error)
	// Set returns the resolved path and, when the file already existed,
	// the path of the backup taken before overwriting.
	Set(query, content string) (path string, backup string, err error)
}
