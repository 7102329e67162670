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

// ContextPackRepo implements ports.ContextPackRepository. Packs live
// under Context-Packs/<CategoryFolder>/<slug>.md and their ID is the
// filename stem.
type ContextPackRepo struct {
	vault *Vault
}

var _ ports.ContextPackRepository = (*ContextPackRepo)(nil)

// NewContextPackRepo creates a context pack repository for a vault.
func NewContextPackRepo(vault *Vault) *ContextPackRepo {
	return &ContextPackRepo{vault: vault}
}

// Create writes a new context pack. Creating over an existing pack is an
// error.
func (r *ContextPackRepo) Create(title string, category domain.ContextPackCategory, content, description string, tags []string) (*domain.ContextPack, error) {
	if err := r.vault.EnsureInitialized(); err != nil {
		return nil, err
	}

	id := domain.SlugifyName(title)
	if existing, _ := r.findPath(id); existing != "" {
		return nil, &application.ContextPackExistsError{Pack: id}
	}

	now := time.Now()
	pack := &domain.ContextPack{
		ID:          id,
		Category:    category,
		Title:       title,
		Description: description,
		Tags:        tags,
		Created:     now,
		Updated:     now,
	}
	if content != "" {
		pack.Body = content
	} else {
		pack.Body = fmt.Sprintf("# %s\n", title)
	}

	folder := filepath.Join(r.vault.ContextPacksFolder(), domain.CategoryFolders[category])
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return nil, err
	}
	path := filepath.Join(folder, id+".md")
	if err := writeFrontmatter(path, packMeta(pack), pack.Body); err != nil {
		return nil, fmt.Errorf("write context pack %s: %w", id, err)
	}
	return pack, nil
}

// Get returns the pack with the given ID (filename stem).
func (r *ContextPackRepo) Get(id string) (*domain.ContextPack, error) {
	path, err := r.findPath(id)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, &application.ContextPackNotFoundError{Pack: id}
	}
	return r.readPackFile(path)
}

// List returns packs, optionally filtered by category.
func (r *ContextPackRepo) List(category *domain.ContextPackCategory) ([]domain.ContextPack, error) {
	if err := r.vault.EnsureInitialized(); err != nil {
		return nil, err
	}

	var packs []domain.ContextPack
	for cat, folder := range domain.CategoryFolders {
		if category != nil && cat != *category {
			continue
		}
		dir := filepath.Join(r.vault.ContextPacksFolder(), folder)
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
				continue
			}
			pack, err := r.readPackFile(filepath.Join(dir, entry.Name()))
			if err != nil {
				continue
			}
			pack.Category = cat
			packs = append(packs, *pack)
		}
	}

	sort.Slice(packs, func(i, j int) bool { return packs[i].ID < packs[j].ID })
	return packs, nil
}

// Append adds content to a pack, optionally under a named section.
func (r *ContextPackRepo) Append(id, content, section string) (*domain.ContextPack, error) {
	path, err := r.findPath(id)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, &application.ContextPackNotFoundError{Pack: id}
	}

	meta, body, err := readFrontmatter(path)
	if err != nil {
		return nil, err
	}

	if section != "" {
		body = appendToSection(body, section, content)
	} else {
		body = strings.TrimRight(body, "\n") + "\n\n" + content + "\n"
	}

	meta["updated"] = time.Now().Format(time.RFC3339)
	if err := writeFrontmatter(path, meta, body); err != nil {
		return nil, fmt.Errorf("append to context pack %s: %w", id, err)
	}
	return r.readPackFile(path)
}

// AppendFile appends a file's contents to a pack, recording its source.
func (r *ContextPackRepo) AppendFile(id, filePath, section string) (*domain.ContextPack, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read source file: %w", err)
	}
	block := fmt.Sprintf("## Source: %s\n\n%s", filepath.Base(filePath), string(data))
	return r.Append(id, block, section)
}

// findPath searches every category folder, then the flat Context-Packs
// root, for <id>.md.
func (r *ContextPackRepo) findPath(id string) (string, error) {
	for _, folder := range domain.CategoryFolders {
		path := filepath.Join(r.vault.ContextPacksFolder(), folder, id+".md")
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	path := filepath.Join(r.vault.ContextPacksFolder(), id+".md")
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	return "", nil
}

func (r *ContextPackRepo) readPackFile(path string) (*domain.ContextPack, error) {
	meta, body, err := readFrontmatter(path)
	if err != nil {
		return nil, err
	}

	category, _ := domain.ParseContextPackCategory(metaString(meta, "category"))

	return &domain.ContextPack{
		ID:          strings.TrimSuffix(filepath.Base(path), ".md"),
		Category:    category,
		Title:       extractTitle(body, path),
		Description: metaString(meta, "description"),
		Body:        body,
		Tags:        metaStrings(meta, "tags"),
		Sources:     metaStrings(meta, "sources"),
		Created:     metaTime(meta, "created", time.Now()),
		Updated:     metaTime(meta, "updated", time.Now()),
	}, nil
}

func packMeta(p *domain.ContextPack) map[string]any {
	meta := map[string]any{
		"type":     "context-pack",
		"category": string(p.Category),
		"created":  p.Created.Format(time.RFC3339),
		"updated":  p.Updated.Format(time.RFC3339),
	}
	if p.Description != "" {
		meta["description"] = p.Description
	}
	if len(p.Tags) > 0 {
		meta["tags"] = p.Tags
	}
	if len(p.Sources) > 0 {
		meta["sources"] = p.Sources
	}
	return meta
}

// appendToSection inserts content at the end of a "## section" block,
// creating the section when absent.
func appendToSection(body, section, content string) string {
	heading := "## " + section
	lines := strings.Split(body, "\n")

	start := -1
	for i, line := range lines {
		if strings.TrimSpace(line) == heading {
			start = i
			break
		}
	}
	if start < 0 {
		return strings.TrimRight(body, "\n") + "\n\n" + heading + "\n\n" + content + "\n"
	}

	end := len(lines)
	for i := start + 1; i < len(lines); i++ {
		if strings.HasPrefix(lines[i], "## ") {
			end = i
			break
		}
	}

	block := append([]string{}, lines[:end]...)
	block = append(block, "", content)
	block = append(block, lines[end:]...)
	return strings.Join(block, "\n")
}
