package domain

import "time"

// ProjectStatus values for project frontmatter.
type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectOnHold    ProjectStatus = "on-hold"
	ProjectCompleted ProjectStatus = "completed"
	ProjectArchived  ProjectStatus = "archived"
)

var ProjectStatuses = []ProjectStatus{
	ProjectActive,
	ProjectOnHold,
	ProjectCompleted,
	ProjectArchived,
}

// ParseProjectStatus validates a project status string.
func ParseProjectStatus(s string) (ProjectStatus, bool) {
	for _, st := range ProjectStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// Project is a project note in the vault.
type Project struct {
	ID         string
	Status     ProjectStatus
	Title      string
	Body       string
	Team       string // wikilink to team
	TargetDate *time.Time
	Created    time.Time
	Updated    time.Time
}
