package domain

import (
	"fmt"
	"time"
)

// FormatRelative formats a date relative to today for display
// ("tomorrow", "Friday", "Jan 15").
func FormatRelative(d, today time.Time) string {
	delta := int(DateOnly(d).Sub(DateOnly(today)).Hours() / 24)
	switch {
	case delta < -1:
		return fmt.Sprintf("%d days ago", -delta)
	case delta == -1:
		return "yesterday"
	case delta == 0:
		return "today"
	case delta == 1:
		return "tomorrow"
	case delta < 7:
		return d.Format("Monday")
	case delta < 14:
		return "next " + d.Format("Monday")
	default:
		return d.Format("Jan 02")
	}
}
