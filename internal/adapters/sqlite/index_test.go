package sqlite

import (
	"os"
	"path/filepath"
	"testing"

	"aio/internal/domain"
	"aio/internal/ports"
)

func newTestIndex(t *testing.T) (*Index, string) {
	t.Helper()
	vault := t.TempDir()
	idx := NewIndex(vault)
	if err := idx.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	return idx, vault
}

func writeNote(t *testing.T, vault, rel, content string) {
	t.Helper()
	path := filepath.Join(vault, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func TestIndexAddAndContains(t *testing.T) {
	idx, _ := newTestIndex(t)

	if err := idx.Add(ports.KindTask, "ab22"); err != nil {
		t.Fatalf("Add: %v", err)
	}

	// IDs are stored normalized, so lookups ignore case.
	for _, id := range []string{"AB22", "ab22"} {
		used, err := idx.Contains(id)
		if err != nil {
			t.Fatalf("Contains(%s): %v", id, err)
		}
		if !used {
			t.Errorf("Contains(%s) = false, want true", id)
		}
	}

	used, err := idx.Contains("ZZZZ")
	if err != nil {
		t.Fatalf("Contains: %v", err)
	}
	if used {
		t.Error("Contains(ZZZZ) = true for an unknown ID")
	}
}

func TestIndexGenerateUnique(t *testing.T) {
	idx, _ := newTestIndex(t)

	seen := make(map[string]bool)
	for range 20 {
		id, err := idx.GenerateUnique(ports.KindTask)
		if err != nil {
			t.Fatalf("GenerateUnique: %v", err)
		}
		if !domain.IsValidID(id) {
			t.Fatalf("GenerateUnique returned invalid ID %q", id)
		}
		if seen[id] {
			t.Fatalf("GenerateUnique repeated %q", id)
		}
		seen[id] = true

		used, err := idx.Contains(id)
		if err != nil {
			t.Fatalf("Contains: %v", err)
		}
		if !used {
			t.Errorf("generated ID %q was not recorded", id)
		}
	}
}

func TestIndexRebuildScansFrontmatter(t *testing.T) {
	idx, vault := newTestIndex(t)

	writeNote(t, vault, "AIO/Tasks/Inbox/2026-01-15-review.md",
		"---\nid: AB22\ntype: task\nstatus: inbox\n---\n\n# Review\n")
	writeNote(t, vault, "AIO/Tasks/Completed/2025/12-December/2025-12-01-old.md",
		"---\nid: CD33\ntype: task\nstatus: completed\n---\n\n# Old\n")
	writeNote(t, vault, "AIO/Projects/Q4-Migration.md",
		"---\nid: EF44\ntype: project\n---\n\n# Q4 Migration\n")
	// No frontmatter, no id, hidden directory: all skipped.
	writeNote(t, vault, "AIO/Notes/loose.md", "# Loose note\n")
	writeNote(t, vault, "AIO/Tasks/Inbox/no-id.md", "---\nstatus: inbox\n---\n")
	writeNote(t, vault, ".obsidian/workspace.md", "---\nid: GH55\n---\n")

	if err := idx.Rebuild(); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	for _, id := range []string{"AB22", "CD33", "EF44"} {
		used, err := idx.Contains(id)
		if err != nil {
			t.Fatalf("Contains(%s): %v", id, err)
		}
		if !used {
			t.Errorf("Contains(%s) = false after Rebuild", id)
		}
	}
	if used, _ := idx.Contains("GH55"); used {
		t.Error("Rebuild indexed a file under a hidden directory")
	}
}

func TestIndexCountsIncludeArchivedNotes(t *testing.T) {
	idx, vault := newTestIndex(t)

	writeNote(t, vault, "AIO/Tasks/Next/2026-01-15-active.md",
		"---\nid: AB22\ntype: task\nstatus: next\n---\n\n# Active\n")
	writeNote(t, vault, "AIO/Archive/Tasks/Next/2025-06-01-shelved.md",
		"---\nid: CD33\ntype: task\nstatus: next\n---\n\n# Shelved\n")
	writeNote(t, vault, "AIO/Archive/Projects/legacy-importer.md",
		"---\nid: EF44\ntype: project\nstatus: archived\n---\n\n# Legacy Importer\n")

	if err := idx.Rebuild(); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	// Archived IDs stay reserved so new entities cannot collide.
	if used, _ := idx.Contains("CD33"); !used {
		t.Error("archived task ID not indexed")
	}

	counts, err := idx.Counts()
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if counts[ports.KindTask] != 2 {
		t.Errorf("task count = %d, want 2", counts[ports.KindTask])
	}
	if counts[ports.KindProject] != 1 {
		t.Errorf("project count = %d, want 1", counts[ports.KindProject])
	}
	if counts[ports.KindPerson] != 0 {
		t.Errorf("person count = %d, want 0", counts[ports.KindPerson])
	}
}

func TestIndexStale(t *testing.T) {
	idx, _ := newTestIndex(t)

	// A freshly created database has no fingerprint yet.
	stale, err := idx.Stale()
	if err != nil {
		t.Fatalf("Stale: %v", err)
	}
	if !stale {
		t.Error("Stale() = false before first Rebuild")
	}

	if err := idx.Rebuild(); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	stale, err = idx.Stale()
	if err != nil {
		t.Fatalf("Stale: %v", err)
	}
	if stale {
		t.Error("Stale() = true right after Rebuild")
	}
}

func TestIndexReopenKeepsIDs(t *testing.T) {
	vault := t.TempDir()
	idx := NewIndex(vault)
	if err := idx.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := idx.Add(ports.KindProject, "AB22"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := idx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened := NewIndex(vault)
	if err := reopened.Open(); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	used, err := reopened.Contains("AB22")
	if err != nil {
		t.Fatalf("Contains: %v", err)
	}
	if !used {
		t.Error("Contains(AB22) = false after reopen")
	}
}
