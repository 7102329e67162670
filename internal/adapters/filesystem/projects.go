package filesystem

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"aio/internal/application"
	"aio/internal/domain"
	"aio/internal/ports"
)

// ProjectRepo implements ports.ProjectRepository on markdown files in
// the Projects folder.
type ProjectRepo struct {
	vault *Vault
	ids   ports.IDIndex
}

var _ ports.ProjectRepository = (*ProjectRepo)(nil)

// NewProjectRepo creates a project repository for a vault.
func NewProjectRepo(vault *Vault, ids ports.IDIndex) *ProjectRepo {
	return &ProjectRepo{vault: vault, ids: ids}
}

// Create writes a new project note.
func (r *ProjectRepo) Create(name string, status domain.ProjectStatus, team string) (*domain.Project, error) {
	if err := r.vault.EnsureInitialized(); err != nil {
		return nil, err
	}

	id, err := r.ids.GenerateUnique(ports.KindProject)
	if err != nil {
		return nil, fmt.Errorf("generate project ID: %w", err)
	}

	now := time.Now()
	project := &domain.Project{
		ID:      id,
		Title:   name,
		Status:  status,
		Team:    team,
		Created: now,
		Updated: now,
	}
	project.Body = fmt.Sprintf("# %s\n\n## Goal\n\n## Tasks\n", name)

	folder := r.vault.ProjectsFolder()
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return nil, err
	}
	path := filepath.Join(folder, r.Slug(name)+".md")
	if err := writeFrontmatter(path, projectMeta(project), project.Body); err != nil {
		return nil, fmt.Errorf("write project %s: %w", id, err)
	}
	return project, nil
}

// Find resolves a query that is an ID, exact title, or title substring.
// Misses include near-match suggestions in the error.
func (r *ProjectRepo) Find(query string) (*domain.Project, error) {
	projects, err := r.List(nil)
	if err != nil {
		return nil, err
	}

	if domain.IsValidID(query) {
		id := domain.NormalizeID(query)
		for i := range projects {
			if domain.NormalizeID(projects[i].ID) == id {
				return &projects[i], nil
			}
		}
	}

	queryLower := strings.ToLower(query)
	var matches []*domain.Project
	for i := range projects {
		if strings.Contains(strings.ToLower(projects[i].Title), queryLower) {
			matches = append(matches, &projects[i])
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return nil, &application.ProjectNotFoundError{
			Project:     query,
			Suggestions: suggestTitles(query, projects),
		}
	default:
		ids := make([]string, len(matches))
		for i, p := range matches {
			ids[i] = p.ID
		}
		return nil, &application.AmbiguousMatchError{Query: query, Matches: ids}
	}
}

// List returns projects, optionally filtered by status.
func (r *ProjectRepo) List(status *domain.ProjectStatus) ([]domain.Project, error) {
	if err := r.vault.EnsureInitialized(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(r.vault.ProjectsFolder())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read projects folder: %w", err)
	}

	var projects []domain.Project
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		project, err := r.readProjectFile(filepath.Join(r.vault.ProjectsFolder(), entry.Name()))
		if err != nil {
			continue
		}
		if status != nil && project.Status != *status {
			continue
		}
		projects = append(projects, *project)
	}

	sort.Slice(projects, func(i, j int) bool {
		return projects[i].Title < projects[j].Title
	})
	return projects, nil
}

// Archive marks a project archived and moves its note under
// Archive/Projects.
func (r *ProjectRepo) Archive(query string) (*domain.Project, error) {
	project, err := r.Find(query)
	if err != nil {
		return nil, err
	}

	oldPath := findInFolder(r.vault.ProjectsFolder(), domain.NormalizeID(project.ID))
	if oldPath == "" {
		return nil, &application.ProjectNotFoundError{Project: query}
	}

	folder, err := r.vault.ArchiveProjectsFolder()
	if err != nil {
		return nil, err
	}

	project.Status = domain.ProjectArchived
	project.Updated = time.Now()
	newPath := filepath.Join(folder, filepath.Base(oldPath))
	if err := writeFrontmatter(newPath, projectMeta(project), project.Body); err != nil {
		return nil, fmt.Errorf("write project %s: %w", project.ID, err)
	}
	if err := os.Remove(oldPath); err != nil {
		return nil, fmt.Errorf("remove old project file: %w", err)
	}
	return project, nil
}

// Slug returns the filename stem used for a project title.
func (r *ProjectRepo) Slug(title string) string {
	return domain.SlugifyName(title)
}

func (r *ProjectRepo) readProjectFile(path string) (*domain.Project, error) {
	meta, body, err := readFrontmatter(path)
	if err != nil {
		return nil, err
	}

	status, ok := domain.ParseProjectStatus(metaString(meta, "status"))
	if !ok {
		status = domain.ProjectActive
	}

	return &domain.Project{
		ID:         metaString(meta, "id"),
		Status:     status,
		Title:      extractTitle(body, path),
		Body:       body,
		Team:       metaString(meta, "team"),
		TargetDate: metaDate(meta, "targetDate"),
		Created:    metaTime(meta, "created", time.Now()),
		Updated:    metaTime(meta, "updated", time.Now()),
	}, nil
}

func projectMeta(p *domain.Project) map[string]any {
	meta := map[string]any{
		"id":      p.ID,
		"type":    "project",
		"status":  string(p.Status),
		"created": p.Created.Format(time.RFC3339),
		"updated": p.Updated.Format(time.RFC3339),
	}
	if p.Team != "" {
		meta["team"] = p.Team
	}
	if p.TargetDate != nil {
		meta["targetDate"] = p.TargetDate.Format("2006-01-02")
	}
	return meta
}

// suggestTitles returns up to three titles sharing a word prefix with
// the query, for did-you-mean hints.
func suggestTitles(query string, projects []domain.Project) []string {
	queryLower := strings.ToLower(query)
	var out []string
	for _, p := range projects {
		titleLower := strings.ToLower(p.Title)
		if len(queryLower) >= 3 && (strings.HasPrefix(titleLower, queryLower[:3]) ||
			strings.Contains(titleLower, queryLower[:3])) {
			out = append(out, p.Title)
			if len(out) == 3 {
				break
			}
		}
	}
	return out
}
