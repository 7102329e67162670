package application

import (
	"strconv"
	"strings"
	"time"

	"aio/internal/domain"
)

// ParseDate parses a due-date string. Accepted forms are ISO dates
// (2024-01-15), the keywords today/tomorrow/yesterday, and relative
// offsets like +3d. Anything else is an InvalidDateError; richer natural
// language parsing is the clients' concern, not the daemon's.
func ParseDate(s string, today time.Time) (time.Time, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return time.Time{}, &InvalidDateError{Input: s}
	}

	day := domain.DateOnly(today)
	switch s {
	case "today":
		return day, nil
	case "tomorrow":
		return day.AddDate(0, 0, 1), nil
	case "yesterday":
		return day.AddDate(0, 0, -1), nil
	}

	if strings.HasPrefix(s, "+") && strings.HasSuffix(s, "d") {
		if n, err := strconv.Atoi(s[1 : len(s)-1]); err == nil && n >= 0 {
			return day.AddDate(0, 0, n), nil
		}
	}

	if t, err := time.ParseInLocation("2006-01-02", s, today.Location()); err == nil {
		return t, nil
	}

	return time.Time{}, &InvalidDateError{Input: s}
}
