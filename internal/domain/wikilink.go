package domain

import "strings"

// ParseWikilink extracts the path from an Obsidian wikilink like
// "[[AIO/Projects/MyProject]]". Returns "" when s is not a wikilink.
func ParseWikilink(s string) string {
	if strings.HasPrefix(s, "[[") && strings.HasSuffix(s, "]]") {
		return s[2 : len(s)-2]
	}
	return ""
}

// MakeWikilink wraps a vault path in Obsidian wikilink brackets.
func MakeWikilink(path string) string {
	return "[[" + path + "]]"
}

// WikilinkName returns the last path segment of a wikilink (or plain
// string) for display.
func WikilinkName(s string) string {
	name := s
	if inner := ParseWikilink(s); inner != "" {
		name = inner
	}
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return name
}
