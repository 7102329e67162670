package domain

import "time"

// ContextPackCategory values are aligned with the Context-Packs subfolders.
type ContextPackCategory string

const (
	PackDomain    ContextPackCategory = "domain"
	PackSystem    ContextPackCategory = "system"
	PackOperating ContextPackCategory = "operating"
)

// CategoryFolders maps a category to its folder name.
var CategoryFolders = map[ContextPackCategory]string{
	PackDomain:    "Domains",
	PackSystem:    "Systems",
	PackOperating: "Operating",
}

// ParseContextPackCategory validates a category string.
func ParseContextPackCategory(s string) (ContextPackCategory, bool) {
	c := ContextPackCategory(s)
	_, ok := CategoryFolders[c]
	return c, ok
}

// ContextPack is a reusable context note. Its ID is the filename stem.
type ContextPack struct {
	ID          string
	Category    ContextPackCategory
	Title       string
	Description string
	Body        string
	Tags        []string
	Sources     []string
	Created     time.Time
	Updated     time.Time
}
