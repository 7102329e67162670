// Package dashboard renders the vault's Dashboard.md from the current
// task set.
package dashboard

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"aio/internal/domain"
)

// staleAfter marks a waiting task as stale when nothing moved for this
// long.
const staleAfter = 7 * 24 * time.Hour

// Render builds the dashboard markdown. tasks is expected to be the
// default task view (completed and someday excluded).
func Render(tasks []domain.Task, people []domain.Person, now time.Time) string {
	today := domain.DateOnly(now)
	weekEnd := today.AddDate(0, 0, 7)

	var overdue, dueToday, dueWeek, blocked []domain.Task
	waitingBy := map[string][]domain.Task{}

	for _, t := range tasks {
		switch {
		case t.IsOverdue(now):
			overdue = append(overdue, t)
		case t.IsDueToday(now):
			dueToday = append(dueToday, t)
		case t.Due != nil && t.Due.Before(weekEnd):
			dueWeek = append(dueWeek, t)
		}
		if len(t.BlockedBy) > 0 {
			blocked = append(blocked, t)
		}
		if t.Status == domain.StatusWaiting {
			who := domain.WikilinkName(t.WaitingOn)
			if who == "" {
				who = "Unassigned"
			}
			waitingBy[who] = append(waitingBy[who], t)
		}
	}

	var b strings.Builder
	b.WriteString("# Dashboard\n\n")
	fmt.Fprintf(&b, "Updated: %s\n\n", now.Format("2006-01-02 15:04"))

	section(&b, "🔥 Overdue", overdue, today)
	section(&b, "📅 Due Today", dueToday, today)
	section(&b, "🗓 Due This Week", dueWeek, today)
	section(&b, "🚧 Blocked", blocked, today)

	b.WriteString("## ⏳ Waiting\n\n")
	if len(waitingBy) == 0 {
		b.WriteString("Nothing waiting on anyone.\n\n")
	} else {
		names := make([]string, 0, len(waitingBy))
		for name := range waitingBy {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&b, "### %s\n\n", name)
			for _, t := range waitingBy[name] {
				line := taskLine(t, today)
				if now.Sub(t.Updated) > staleAfter {
					line += " **[STALE]**"
				}
				b.WriteString(line + "\n")
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("## Quick Links\n\n")
	b.WriteString("- [[AIO/Tasks/Inbox|Inbox]]\n")
	b.WriteString("- [[AIO/Tasks/Next|Next]]\n")
	b.WriteString("- [[AIO/Projects|Projects]]\n")
	b.WriteString("- [[AIO/People|People]]\n")

	return b.String()
}

func section(b *strings.Builder, title string, tasks []domain.Task, today time.Time) {
	fmt.Fprintf(b, "## %s\n\n", title)
	if len(tasks) == 0 {
		b.WriteString("None.\n\n")
		return
	}
	for _, t := range tasks {
		b.WriteString(taskLine(t, today) + "\n")
	}
	b.WriteString("\n")
}

func taskLine(t domain.Task, today time.Time) string {
	line := fmt.Sprintf("- **%s** `%s`", t.Title, t.ID)
	if t.Due != nil {
		line += " — due " + domain.FormatRelative(*t.Due, today)
	}
	if t.Project != "" {
		line += " (" + t.Project + ")"
	}
	return line
}
