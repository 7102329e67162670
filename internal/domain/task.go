package domain

import (
	"sort"
	"strings"
	"time"
)

// TaskStatus values are aligned with the vault's folder names.
type TaskStatus string

const (
	StatusInbox     TaskStatus = "inbox"
	StatusNext      TaskStatus = "next"
	StatusWaiting   TaskStatus = "waiting"
	StatusScheduled TaskStatus = "scheduled"
	StatusSomeday   TaskStatus = "someday"
	StatusCompleted TaskStatus = "completed"
)

// TaskStatuses lists every status in folder order.
var TaskStatuses = []TaskStatus{
	StatusInbox,
	StatusNext,
	StatusWaiting,
	StatusScheduled,
	StatusSomeday,
	StatusCompleted,
}

// ParseTaskStatus validates a status string.
func ParseTaskStatus(s string) (TaskStatus, bool) {
	for _, st := range TaskStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// Folder returns the vault folder name for a status (e.g. "Inbox").
func (s TaskStatus) Folder() string {
	return strings.ToUpper(string(s)[:1]) + string(s)[1:]
}

// Task is a task stored as a markdown file with YAML frontmatter.
type Task struct {
	ID     string
	Status TaskStatus
	Title  string
	Body   string

	Due       *time.Time // date only; nil when unset
	Created   time.Time
	Updated   time.Time
	Completed *time.Time

	Project    string // wikilink, e.g. [[AIO/Projects/Q4-Migration]]
	AssignedTo string
	WaitingOn  string
	BlockedBy  []string
	Blocks     []string

	Tags         []string
	TimeEstimate string
	JiraKey      string
}

// IsOverdue reports whether the task's due date is before the given day.
func (t Task) IsOverdue(today time.Time) bool {
	if t.Due == nil || t.Status == StatusCompleted {
		return false
	}
	return DateOnly(*t.Due).Before(DateOnly(today))
}

// IsDueToday reports whether the task is due on the given day.
func (t Task) IsDueToday(today time.Time) bool {
	return t.Due != nil && DateOnly(*t.Due).Equal(DateOnly(today))
}

// Filename returns the canonical filename: YYYY-MM-DD-short-title.md,
// dated by creation.
func (t Task) Filename() string {
	return t.Created.Format("2006-01-02") + "-" + truncateSlug(Slugify(t.Title), 50) + ".md"
}

func truncateSlug(slug string, n int) string {
	if len(slug) > n {
		slug = slug[:n]
	}
	return strings.TrimRight(slug, "-")
}

// DateOnly truncates a time to midnight in its own location. Due dates
// compare by calendar day, never by clock time.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SortTasks orders by due date (tasks without one last), then creation.
func SortTasks(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		switch {
		case a.Due != nil && b.Due == nil:
			return true
		case a.Due == nil && b.Due != nil:
			return false
		case a.Due != nil && b.Due != nil && !a.Due.Equal(*b.Due):
			return a.Due.Before(*b.Due)
		default:
			return a.Created.Before(b.Created)
		}
	})
}
