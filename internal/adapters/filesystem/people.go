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

// PersonRepo implements ports.PersonRepository on markdown files in the
// People folder. Person files are named after the person, not their ID.
type PersonRepo struct {
	vault *Vault
	ids   ports.IDIndex
}

var _ ports.PersonRepository = (*PersonRepo)(nil)

// NewPersonRepo creates a person repository for a vault.
func NewPersonRepo(vault *Vault, ids ports.IDIndex) *PersonRepo {
	return &PersonRepo{vault: vault, ids: ids}
}

// Create writes a new person note.
func (r *PersonRepo) Create(name, team, role, email string) (*domain.Person, error) {
	if err := r.vault.EnsureInitialized(); err != nil {
		return nil, err
	}

	id, err := r.ids.GenerateUnique(ports.KindPerson)
	if err != nil {
		return nil, fmt.Errorf("generate person ID: %w", err)
	}

	now := time.Now()
	person := &domain.Person{
		ID:      id,
		Name:    name,
		Team:    team,
		Role:    role,
		Email:   email,
		Created: now,
		Updated: now,
	}
	person.Body = fmt.Sprintf("# %s\n\n## Notes\n", name)

	folder := r.vault.PeopleFolder()
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return nil, err
	}
	path := filepath.Join(folder, r.Slug(name)+".md")
	if err := writeFrontmatter(path, personMeta(person), person.Body); err != nil {
		return nil, fmt.Errorf("write person %s: %w", id, err)
	}
	return person, nil
}

// Find resolves a query that is an ID or a name substring.
func (r *PersonRepo) Find(query string) (*domain.Person, error) {
	people, err := r.List()
	if err != nil {
		return nil, err
	}

	if domain.IsValidID(query) {
		id := domain.NormalizeID(query)
		for i := range people {
			if domain.NormalizeID(people[i].ID) == id {
				return &people[i], nil
			}
		}
	}

	queryLower := strings.ToLower(query)
	var matches []*domain.Person
	for i := range people {
		if strings.Contains(strings.ToLower(people[i].Name), queryLower) {
			matches = append(matches, &people[i])
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return nil, &application.PersonNotFoundError{Name: query}
	default:
		ids := make([]string, len(matches))
		for i, p := range matches {
			ids[i] = p.Name
		}
		return nil, &application.AmbiguousMatchError{Query: query, Matches: ids}
	}
}

// List returns every person, sorted by name.
func (r *PersonRepo) List() ([]domain.Person, error) {
	if err := r.vault.EnsureInitialized(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(r.vault.PeopleFolder())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read people folder: %w", err)
	}

	var people []domain.Person
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		person, err := r.readPersonFile(filepath.Join(r.vault.PeopleFolder(), entry.Name()))
		if err != nil {
			continue
		}
		people = append(people, *person)
	}

	sort.Slice(people, func(i, j int) bool {
		return people[i].Name < people[j].Name
	})
	return people, nil
}

// Archive moves a person note under Archive/People.
func (r *PersonRepo) Archive(query string) (*domain.Person, error) {
	person, err := r.Find(query)
	if err != nil {
		return nil, err
	}

	oldPath := findInFolder(r.vault.PeopleFolder(), domain.NormalizeID(person.ID))
	if oldPath == "" {
		return nil, &application.PersonNotFoundError{Name: query}
	}

	folder, err := r.vault.ArchivePeopleFolder()
	if err != nil {
		return nil, err
	}

	person.Updated = time.Now()
	newPath := filepath.Join(folder, filepath.Base(oldPath))
	if err := writeFrontmatter(newPath, personMeta(person), person.Body); err != nil {
		return nil, fmt.Errorf("write person %s: %w", person.ID, err)
	}
	if err := os.Remove(oldPath); err != nil {
		return nil, fmt.Errorf("remove old person file: %w", err)
	}
	return person, nil
}

// Slug returns the filename stem used for a person name.
func (r *PersonRepo) Slug(name string) string {
	return domain.SlugifyName(name)
}

func (r *PersonRepo) readPersonFile(path string) (*domain.Person, error) {
	meta, body, err := readFrontmatter(path)
	if err != nil {
		return nil, err
	}

	name := metaString(meta, "name")
	if name == "" {
		name = strings.ReplaceAll(strings.TrimSuffix(filepath.Base(path), ".md"), "-", " ")
	}

	return &domain.Person{
		ID:      metaString(meta, "id"),
		Name:    name,
		Body:    body,
		Team:    metaString(meta, "team"),
		Role:    metaString(meta, "role"),
		Email:   metaString(meta, "email"),
		Created: metaTime(meta, "created", time.Now()),
		Updated: metaTime(meta, "updated", time.Now()),
	}, nil
}

func personMeta(p *domain.Person) map[string]any {
	meta := map[string]any{
		"id":      p.ID,
		"type":    "person",
		"name":    p.Name,
		"created": p.Created.Format(time.RFC3339),
		"updated": p.Updated.Format(time.RFC3339),
	}
	if p.Team != "" {
		meta["team"] = p.Team
	}
	if p.Role != "" {
		meta["role"] = p.Role
	}
	if p.Email != "" {
		meta["email"] = p.Email
	}
	return meta
}
