package filesystem

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"aio/internal/application"
	"aio/internal/domain"
)

func TestProjectRepoCreateAndFind(t *testing.T) {
	repo := NewProjectRepo(newTestVault(t), newFakeIDIndex())

	created, err := repo.Create("Q4 Migration", domain.ProjectActive, "Platform")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	byID, err := repo.Find(created.ID)
	if err != nil {
		t.Fatalf("Find by ID: %v", err)
	}
	if byID.Title != "Q4 Migration" {
		t.Errorf("Title = %q", byID.Title)
	}
	if byID.Team != "Platform" {
		t.Errorf("Team = %q", byID.Team)
	}

	byTitle, err := repo.Find("migration")
	if err != nil {
		t.Fatalf("Find by title: %v", err)
	}
	if byTitle.ID != created.ID {
		t.Errorf("ID = %q, want %q", byTitle.ID, created.ID)
	}
}

func TestProjectRepoFindSuggestions(t *testing.T) {
	repo := NewProjectRepo(newTestVault(t), newFakeIDIndex())
	if _, err := repo.Create("Migration Plan", domain.ProjectActive, ""); err != nil {
		t.Fatal(err)
	}

	_, err := repo.Find("migratino")
	var notFound *application.ProjectNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("err = %v, want ProjectNotFoundError", err)
	}
	if len(notFound.Suggestions) == 0 {
		t.Error("expected a did-you-mean suggestion")
	}
}

func TestProjectRepoListFiltersByStatus(t *testing.T) {
	repo := NewProjectRepo(newTestVault(t), newFakeIDIndex())
	if _, err := repo.Create("Active One", domain.ProjectActive, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Create("On Hold One", domain.ProjectOnHold, ""); err != nil {
		t.Fatal(err)
	}

	all, err := repo.List(nil)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("len(all) = %d, want 2", len(all))
	}

	status := domain.ProjectOnHold
	onHold, err := repo.List(&status)
	if err != nil {
		t.Fatalf("List filtered: %v", err)
	}
	if len(onHold) != 1 || onHold[0].Title != "On Hold One" {
		t.Errorf("onHold = %v", onHold)
	}
}

func TestProjectRepoArchive(t *testing.T) {
	vault := newTestVault(t)
	repo := NewProjectRepo(vault, newFakeIDIndex())
	created, err := repo.Create("Legacy Importer", domain.ProjectActive, "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	archived, err := repo.Archive("legacy")
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if archived.ID != created.ID {
		t.Errorf("ID = %q, want %q", archived.ID, created.ID)
	}
	if archived.Status != domain.ProjectArchived {
		t.Errorf("Status = %q, want archived", archived.Status)
	}

	oldPath := filepath.Join(vault.ProjectsFolder(), repo.Slug("Legacy Importer")+".md")
	if _, err := os.Stat(oldPath); !os.IsNotExist(err) {
		t.Error("old project file still present after archive")
	}
	folder, err := vault.ArchiveProjectsFolder()
	if err != nil {
		t.Fatal(err)
	}
	newPath := filepath.Join(folder, repo.Slug("Legacy Importer")+".md")
	meta, _, err := readFrontmatter(newPath)
	if err != nil {
		t.Fatalf("archived note unreadable: %v", err)
	}
	if metaString(meta, "status") != string(domain.ProjectArchived) {
		t.Errorf("archived note status = %q", metaString(meta, "status"))
	}

	// Archived projects leave the listing.
	projects, err := repo.List(nil)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(projects) != 0 {
		t.Errorf("List after archive = %v, want empty", projects)
	}
}

func TestPersonRepoArchive(t *testing.T) {
	vault := newTestVault(t)
	repo := NewPersonRepo(vault, newFakeIDIndex())
	if _, err := repo.Create("Sarah Chen", "", "", ""); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := repo.Archive("sarah"); err != nil {
		t.Fatalf("Archive: %v", err)
	}

	folder, err := vault.ArchivePeopleFolder()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(folder, repo.Slug("Sarah Chen")+".md")); err != nil {
		t.Errorf("archived note missing: %v", err)
	}
	people, err := repo.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(people) != 0 {
		t.Errorf("List after archive = %v, want empty", people)
	}
}

func TestPersonRepoCreateAndFind(t *testing.T) {
	repo := NewPersonRepo(newTestVault(t), newFakeIDIndex())

	created, err := repo.Create("Sarah Chen", "Platform", "Staff Engineer", "sarah@example.com")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.Find("sarah")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("ID = %q, want %q", got.ID, created.ID)
	}
	if got.Role != "Staff Engineer" || got.Email != "sarah@example.com" {
		t.Errorf("Role = %q, Email = %q", got.Role, got.Email)
	}

	if _, err := repo.Find("nobody"); !errors.Is(err, application.ErrNotFound) {
		t.Errorf("err = %v, want not-found", err)
	}
}

func TestPersonRepoListSortedByName(t *testing.T) {
	repo := NewPersonRepo(newTestVault(t), newFakeIDIndex())
	for _, name := range []string{"Zoe Park", "Ali Reza", "Mia Wong"} {
		if _, err := repo.Create(name, "", "", ""); err != nil {
			t.Fatal(err)
		}
	}

	people, err := repo.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(people) != 3 {
		t.Fatalf("len(people) = %d", len(people))
	}
	if people[0].Name != "Ali Reza" || people[2].Name != "Zoe Park" {
		t.Errorf("order = %q, %q, %q", people[0].Name, people[1].Name, people[2].Name)
	}
}
