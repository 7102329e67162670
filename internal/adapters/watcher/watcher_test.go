package watcher

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// waitForEvent drains events until one matches the suffix or the
// deadline passes.
func waitForEvent(t *testing.T, events <-chan string, suffix string) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case path, ok := <-events:
			if !ok {
				t.Fatal("event channel closed while waiting")
			}
			if strings.HasSuffix(path, suffix) {
				return
			}
		case <-deadline:
			t.Fatalf("no event for %s", suffix)
		}
	}
}

func TestRecursiveEmitsWriteEvents(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "Tasks", "Inbox")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	w := New(root, testLogger())
	events, err := w.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	if !w.Running() {
		t.Fatal("Running() = false after Start")
	}

	path := filepath.Join(sub, "2026-01-15-review.md")
	if err := os.WriteFile(path, []byte("# Review\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	waitForEvent(t, events, "2026-01-15-review.md")
}

func TestRecursiveWatchesNewDirectories(t *testing.T) {
	root := t.TempDir()
	w := New(root, testLogger())
	events, err := w.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	// A directory created after Start must be picked up before files
	// inside it can be seen.
	sub := filepath.Join(root, "Completed")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	// Give the watcher a moment to add the new directory.
	time.Sleep(100 * time.Millisecond)

	path := filepath.Join(sub, "done.md")
	if err := os.WriteFile(path, []byte("# Done\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	waitForEvent(t, events, "done.md")
}

func TestRecursiveIgnoresHiddenFiles(t *testing.T) {
	root := t.TempDir()
	w := New(root, testLogger())
	events, err := w.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(root, ".swapfile"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "visible.md"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	// The hidden file must never surface; the visible one proves the
	// watcher was live the whole time.
	deadline := time.After(5 * time.Second)
	for {
		select {
		case path := <-events:
			if strings.HasSuffix(path, ".swapfile") {
				t.Fatal("hidden file produced an event")
			}
			if strings.HasSuffix(path, "visible.md") {
				return
			}
		case <-deadline:
			t.Fatal("no event for visible.md")
		}
	}
}

func TestRecursiveStopClosesChannel(t *testing.T) {
	w := New(t.TempDir(), testLogger())
	events, err := w.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	if err := w.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if w.Running() {
		t.Error("Running() = true after Stop")
	}

	select {
	case _, ok := <-events:
		if ok {
			// Buffered events may drain first; keep reading.
			for range events {
			}
		}
	case <-time.After(time.Second):
		t.Fatal("event channel not closed after Stop")
	}

	// Stop twice is fine.
	if err := w.Stop(); err != nil {
		t.Errorf("second Stop: %v", err)
	}
}
