package filesystem

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const frontmatterDelim = "---"

// readFrontmatter parses a markdown file into its YAML frontmatter and
// body. A file without frontmatter yields an empty map and the whole
// content as body.
func readFrontmatter(path string) (map[string]any, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}

	content := string(data)
	if !strings.HasPrefix(content, frontmatterDelim+"\n") {
		return map[string]any{}, content, nil
	}

	rest := content[len(frontmatterDelim)+1:]
	end := strings.Index(rest, "\n"+frontmatterDelim)
	if end < 0 {
		return map[string]any{}, content, nil
	}

	meta := map[string]any{}
	if err := yaml.Unmarshal([]byte(rest[:end]), &meta); err != nil {
		return nil, "", fmt.Errorf("parse frontmatter in %s: %w", path, err)
	}

	body := rest[end+len("\n"+frontmatterDelim):]
	body = strings.TrimPrefix(body, "\n")
	return meta, body, nil
}

// writeFrontmatter writes a markdown file with YAML frontmatter
// atomically: write to a temp file, then rename into place.
func writeFrontmatter(path string, meta map[string]any, body string) error {
	var buf bytes.Buffer
	buf.WriteString(frontmatterDelim + "\n")

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(meta); err != nil {
		return fmt.Errorf("encode frontmatter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode frontmatter: %w", err)
	}

	buf.WriteString(frontmatterDelim + "\n\n")
	buf.WriteString(body)

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// metaString reads a string-valued frontmatter key, tolerating absence.
func metaString(meta map[string]any, key string) string {
	if v, ok := meta[key].(string); ok {
		return v
	}
	return ""
}

// metaDate reads a date-valued key. YAML may hand back a time.Time or a
// string depending on quoting.
func metaDate(meta map[string]any, key string) *time.Time {
	switch v := meta[key].(type) {
	case time.Time:
		return &v
	case string:
		if t, err := time.ParseInLocation("2006-01-02", v, time.Local); err == nil {
			return &t
		}
	}
	return nil
}

// metaDateTime reads a timestamp-valued key, accepting RFC 3339 strings
// with or without offsets.
func metaDateTime(meta map[string]any, key string) *time.Time {
	switch v := meta[key].(type) {
	case time.Time:
		return &v
	case string:
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
			if t, err := time.ParseInLocation(layout, v, time.Local); err == nil {
				return &t
			}
		}
	}
	return nil
}

// metaTime is metaDateTime with a default.
func metaTime(meta map[string]any, key string, def time.Time) time.Time {
	if t := metaDateTime(meta, key); t != nil {
		return *t
	}
	return def
}

// metaStrings reads a list-of-strings frontmatter key.
func metaStrings(meta map[string]any, key string) []string {
	raw, ok := meta[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
