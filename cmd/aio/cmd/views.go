package cmd

import (
	"fmt"
	"time"

	"aio/internal/domain"
)

// taskView mirrors the task shape the RPC methods return.
type taskView struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Status     string   `json:"status"`
	Due        string   `json:"due"`
	Project    string   `json:"project"`
	AssignedTo string   `json:"assigned_to"`
	WaitingOn  string   `json:"waiting_on"`
	Tags       []string `json:"tags"`
	IsOverdue  bool     `json:"is_overdue"`
	IsDueToday bool     `json:"is_due_today"`
}

type taskListView struct {
	Tasks []taskView `json:"tasks"`
	Count int        `json:"count"`
}

type taskResultView struct {
	Task taskView `json:"task"`
}

type projectView struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
	Team   string `json:"team"`
}

type personView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Team  string `json:"team"`
	Role  string `json:"role"`
	Email string `json:"email"`
}

type packView struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

func printTask(t taskView) {
	line := fmt.Sprintf("%s  %-9s  %s", t.ID, t.Status, t.Title)
	if t.Due != "" {
		if due, err := time.ParseInLocation("2006-01-02", t.Due, time.Local); err == nil {
			line += "  (due " + domain.FormatRelative(due, time.Now()) + ")"
		} else {
			line += "  (due " + t.Due + ")"
		}
	}
	if t.IsOverdue {
		line += "  !"
	}
	fmt.Println(line)
}

func printTasks(tasks []taskView) {
	if len(tasks) == 0 {
		fmt.Println("No tasks.")
		return
	}
	for _, t := range tasks {
		printTask(t)
	}
}
