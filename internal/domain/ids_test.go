package domain

import (
	"strings"
	"testing"
)

func TestGenerateID(t *testing.T) {
	for range 100 {
		id := GenerateID()
		if len(id) != IDLength {
			t.Fatalf("len(%q) = %d, want %d", id, len(id), IDLength)
		}
		for _, c := range id {
			if !strings.ContainsRune(IDChars, c) {
				t.Fatalf("ID %q contains %q, outside the alphabet", id, c)
			}
		}
	}
}

func TestIsValidID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"A2BC", true},
		{"a2bc", true}, // case-insensitive
		{"ZZZZ", true},
		{"A2B", false},   // too short
		{"A2BCD", false}, // too long
		{"A0BC", false},  // 0 not in alphabet
		{"A1BC", false},  // 1 not in alphabet
		{"AIBC", false},  // I not in alphabet
		{"AOBC", false},  // O not in alphabet
		{"", false},
		{"A2-C", false},
	}
	for _, tt := range tests {
		if got := IsValidID(tt.id); got != tt.want {
			t.Errorf("IsValidID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Review Q4 goals", "review-q4-goals"},
		{"Fix: the (thing)!", "fix-the-thing"},
		{"a  b", "a-b"},
		{"Already-slugged", "already-slugged"},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSlugifyNameKeepsCase(t *testing.T) {
	if got := SlugifyName("Sarah Chen"); got != "Sarah-Chen" {
		t.Errorf("SlugifyName = %q, want Sarah-Chen", got)
	}
	if got := SlugifyName("Q4 Migration (v2)"); got != "Q4-Migration-v2" {
		t.Errorf("SlugifyName = %q, want Q4-Migration-v2", got)
	}
}
