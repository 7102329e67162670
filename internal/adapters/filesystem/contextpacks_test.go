package filesystem

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"aio/internal/application"
	"aio/internal/domain"
)

func TestContextPackCreateAndGet(t *testing.T) {
	repo := NewContextPackRepo(newTestVault(t))

	created, err := repo.Create("Payment Processing", domain.PackDomain, "", "How payments flow", []string{"payments"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID != "Payment-Processing" {
		t.Errorf("ID = %q", created.ID)
	}

	got, err := repo.Get("Payment-Processing")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "Payment Processing" {
		t.Errorf("Title = %q", got.Title)
	}
	if got.Category != domain.PackDomain {
		t.Errorf("Category = %q", got.Category)
	}
	if got.Description != "How payments flow" {
		t.Errorf("Description = %q", got.Description)
	}
}

func TestContextPackCreateCollision(t *testing.T) {
	repo := NewContextPackRepo(newTestVault(t))
	if _, err := repo.Create("Billing", domain.PackSystem, "", "", nil); err != nil {
		t.Fatal(err)
	}

	_, err := repo.Create("Billing", domain.PackSystem, "", "", nil)
	var exists *application.ContextPackExistsError
	if !errors.As(err, &exists) {
		t.Fatalf("err = %v, want ContextPackExistsError", err)
	}
}

func TestContextPackAppendToSection(t *testing.T) {
	repo := NewContextPackRepo(newTestVault(t))
	content := "# Billing\n\n## Overview\n\nIntro text.\n\n## Gotchas\n\nOld gotcha.\n"
	if _, err := repo.Create("Billing", domain.PackSystem, content, "", nil); err != nil {
		t.Fatal(err)
	}

	updated, err := repo.Append("Billing", "New gotcha.", "Gotchas")
	if err != nil {
		t.Fatalf("Append: %v", err)
	}

	gotchas := sectionText(updated.Body, "Gotchas")
	if !strings.Contains(gotchas, "Old gotcha.") || !strings.Contains(gotchas, "New gotcha.") {
		t.Errorf("Gotchas section = %q", gotchas)
	}
	if strings.Contains(sectionText(updated.Body, "Overview"), "New gotcha.") {
		t.Error("content leaked into the Overview section")
	}
}

func TestContextPackAppendCreatesMissingSection(t *testing.T) {
	repo := NewContextPackRepo(newTestVault(t))
	if _, err := repo.Create("Billing", domain.PackSystem, "", "", nil); err != nil {
		t.Fatal(err)
	}

	updated, err := repo.Append("Billing", "First note.", "Notes")
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if !strings.Contains(updated.Body, "## Notes") {
		t.Errorf("missing created section in %q", updated.Body)
	}
	if !strings.Contains(sectionText(updated.Body, "Notes"), "First note.") {
		t.Errorf("content not under new section: %q", updated.Body)
	}
}

func TestContextPackAppendFile(t *testing.T) {
	repo := NewContextPackRepo(newTestVault(t))
	if _, err := repo.Create("Billing", domain.PackSystem, "", "", nil); err != nil {
		t.Fatal(err)
	}

	src := filepath.Join(t.TempDir(), "runbook.md")
	if err := os.WriteFile(src, []byte("restart the worker\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	updated, err := repo.AppendFile("Billing", src, "")
	if err != nil {
		t.Fatalf("AppendFile: %v", err)
	}
	if !strings.Contains(updated.Body, "## Source: runbook.md") {
		t.Errorf("missing source heading in %q", updated.Body)
	}
	if !strings.Contains(updated.Body, "restart the worker") {
		t.Errorf("missing file content in %q", updated.Body)
	}
}

func TestContextPackListByCategory(t *testing.T) {
	repo := NewContextPackRepo(newTestVault(t))
	if _, err := repo.Create("Payments", domain.PackDomain, "", "", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Create("Billing", domain.PackSystem, "", "", nil); err != nil {
		t.Fatal(err)
	}

	all, err := repo.List(nil)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("len(all) = %d, want 2", len(all))
	}

	cat := domain.PackDomain
	domains, err := repo.List(&cat)
	if err != nil {
		t.Fatalf("List filtered: %v", err)
	}
	if len(domains) != 1 || domains[0].ID != "Payments" {
		t.Errorf("domains = %v", domains)
	}
}

func TestContextPackGetMissing(t *testing.T) {
	repo := NewContextPackRepo(newTestVault(t))
	_, err := repo.Get("nope")
	if !errors.Is(err, application.ErrNotFound) {
		t.Errorf("err = %v, want not-found", err)
	}
}

// sectionText extracts the body of one "## heading" block.
func sectionText(body, section string) string {
	lines := strings.Split(body, "\n")
	var out []string
	in := false
	for _, line := range lines {
		if strings.HasPrefix(line, "## ") {
			in = strings.TrimSpace(line) == "## "+section
			continue
		}
		if in {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
