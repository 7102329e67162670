package filesystem

import (
	"fmt"
	"testing"

	"aio/internal/domain"
	"aio/internal/ports"
)

// fakeIDIndex hands out deterministic IDs without touching sqlite.
type fakeIDIndex struct {
	next int
	ids  map[string]bool
}

func newFakeIDIndex() *fakeIDIndex {
	return &fakeIDIndex{ids: map[string]bool{}}
}

func (f *fakeIDIndex) Open() error          { return nil }
func (f *fakeIDIndex) Close() error         { return nil }
func (f *fakeIDIndex) Stale() (bool, error) { return false, nil }
func (f *fakeIDIndex) Rebuild() error       { return nil }

func (f *fakeIDIndex) Contains(id string) (bool, error) {
	return f.ids[domain.NormalizeID(id)], nil
}

func (f *fakeIDIndex) Add(kind ports.EntityKind, id string) error {
	f.ids[domain.NormalizeID(id)] = true
	return nil
}

func (f *fakeIDIndex) GenerateUnique(kind ports.EntityKind) (string, error) {
	// AAA2, AAA3, ... stays within the ID alphabet.
	for {
		f.next++
		id := fmt.Sprintf("AA%c%c",
			domain.IDChars[(f.next/len(domain.IDChars))%len(domain.IDChars)],
			domain.IDChars[f.next%len(domain.IDChars)])
		if !f.ids[id] {
			f.ids[id] = true
			return id, nil
		}
	}
}

// newTestVault creates an initialized vault in a temp dir.
func newTestVault(t *testing.T) *Vault {
	t.Helper()
	vault := NewVault(t.TempDir())
	if err := vault.Init(); err != nil {
		t.Fatalf("init vault: %v", err)
	}
	return vault
}
