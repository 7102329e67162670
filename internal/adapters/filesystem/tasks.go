package filesystem

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"aio/internal/application"
	"aio/internal/domain"
	"aio/internal/ports"
)

// TaskRepo implements ports.TaskRepository on markdown files grouped
// into status-named folders.
type TaskRepo struct {
	vault *Vault
	ids   ports.IDIndex
}

var _ ports.TaskRepository = (*TaskRepo)(nil)

// NewTaskRepo creates a task repository for a vault. ids supplies
// collision-free IDs for Create.
func NewTaskRepo(vault *Vault, ids ports.IDIndex) *TaskRepo {
	return &TaskRepo{vault: vault, ids: ids}
}

// Create writes a new task file into its status folder.
func (r *TaskRepo) Create(title string, due *time.Time, project string, status domain.TaskStatus, tags []string) (*domain.Task, error) {
	if err := r.vault.EnsureInitialized(); err != nil {
		return nil, err
	}

	id, err := r.ids.GenerateUnique(ports.KindTask)
	if err != nil {
		return nil, fmt.Errorf("generate task ID: %w", err)
	}

	now := time.Now()
	task := &domain.Task{
		ID:      id,
		Title:   title,
		Status:  status,
		Due:     due,
		Project: project,
		Tags:    tags,
		Created: now,
		Updated: now,
	}
	task.Body = fmt.Sprintf("# %s\n\n## Notes\n", title)

	folder := r.vault.TasksFolder(status)
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return nil, err
	}
	path := filepath.Join(folder, task.Filename())
	if err := writeFrontmatter(path, taskMeta(task), task.Body); err != nil {
		return nil, fmt.Errorf("write task %s: %w", id, err)
	}
	return task, nil
}

// Get returns the task with the given ID.
func (r *TaskRepo) Get(id string) (*domain.Task, error) {
	id = domain.NormalizeID(id)
	path := r.findFileByID(id)
	if path == "" {
		return nil, &application.TaskNotFoundError{Query: id}
	}
	return r.readTaskFile(path)
}

// Find resolves a query that is either an ID or a title substring.
func (r *TaskRepo) Find(query string) (*domain.Task, error) {
	if domain.IsValidID(query) {
		task, err := r.Get(query)
		if err == nil {
			return task, nil
		}
		// Fall through to title search.
	}

	matches := r.findByTitle(query)
	switch len(matches) {
	case 0:
		return nil, &application.TaskNotFoundError{Query: query}
	case 1:
		return &matches[0], nil
	default:
		ids := make([]string, len(matches))
		for i, t := range matches {
			ids[i] = t.ID
		}
		return nil, &application.AmbiguousMatchError{Query: query, Matches: ids}
	}
}

// List returns tasks, optionally filtered by status. The default view
// (status nil) excludes completed and someday tasks.
func (r *TaskRepo) List(status *domain.TaskStatus, includeCompleted bool) ([]domain.Task, error) {
	if err := r.vault.EnsureInitialized(); err != nil {
		return nil, err
	}

	var statuses []domain.TaskStatus
	if status != nil {
		statuses = []domain.TaskStatus{*status}
	} else {
		for _, s := range domain.TaskStatuses {
			if s == domain.StatusCompleted || s == domain.StatusSomeday {
				continue
			}
			statuses = append(statuses, s)
		}
		if includeCompleted {
			statuses = append(statuses, domain.StatusCompleted)
		}
	}

	var tasks []domain.Task
	for _, s := range statuses {
		folder := r.vault.TasksFolder(s)
		tasks = append(tasks, r.readFolder(folder)...)

		// Completed tasks also live in year/month subfolders.
		if s == domain.StatusCompleted {
			tasks = append(tasks, r.readCompletedTree(folder)...)
		}
	}

	domain.SortTasks(tasks)
	return tasks, nil
}

// Complete marks a task completed and moves it under Completed/year/month.
func (r *TaskRepo) Complete(query string) (*domain.Task, error) {
	task, err := r.Find(query)
	if err != nil {
		return nil, err
	}
	return r.updateStatus(task, domain.StatusCompleted)
}

// Start moves a task to Next.
func (r *TaskRepo) Start(query string) (*domain.Task, error) {
	task, err := r.Find(query)
	if err != nil {
		return nil, err
	}
	return r.updateStatus(task, domain.StatusNext)
}

// Defer moves a task to Someday.
func (r *TaskRepo) Defer(query string) (*domain.Task, error) {
	task, err := r.Find(query)
	if err != nil {
		return nil, err
	}
	return r.updateStatus(task, domain.StatusSomeday)
}

// Wait moves a task to Waiting, optionally recording who it waits on.
func (r *TaskRepo) Wait(query, personLink string) (*domain.Task, error) {
	task, err := r.Find(query)
	if err != nil {
		return nil, err
	}
	if personLink != "" {
		if !strings.HasPrefix(personLink, "[[") {
			personLink = domain.MakeWikilink("People/" + personLink)
		}
		task.WaitingOn = personLink
	}
	return r.updateStatus(task, domain.StatusWaiting)
}

// Archive moves a task file under Archive/Tasks, keeping its status.
// Archived tasks no longer show up in List.
func (r *TaskRepo) Archive(query string) (*domain.Task, error) {
	task, err := r.Find(query)
	if err != nil {
		return nil, err
	}

	oldPath := r.findFileByID(task.ID)
	if oldPath == "" {
		return nil, &application.TaskNotFoundError{Query: task.ID}
	}

	folder, err := r.vault.ArchiveTasksFolder(task.Status)
	if err != nil {
		return nil, err
	}

	task.Updated = time.Now()
	newPath := filepath.Join(folder, filepath.Base(oldPath))
	if err := writeFrontmatter(newPath, taskMeta(task), task.Body); err != nil {
		return nil, fmt.Errorf("write task %s: %w", task.ID, err)
	}
	if err := os.Remove(oldPath); err != nil {
		return nil, fmt.Errorf("remove old task file: %w", err)
	}
	return task, nil
}

func (r *TaskRepo) updateStatus(task *domain.Task, status domain.TaskStatus) (*domain.Task, error) {
	oldPath := r.findFileByID(task.ID)
	if oldPath == "" {
		return nil, &application.TaskNotFoundError{Query: task.ID}
	}

	now := time.Now()
	task.Status = status
	task.Updated = now

	var folder string
	if status == domain.StatusCompleted {
		task.Completed = &now
		var err error
		folder, err = r.vault.CompletedFolder(now.Year(), int(now.Month()))
		if err != nil {
			return nil, err
		}
	} else {
		folder = r.vault.TasksFolder(status)
		if err := os.MkdirAll(folder, 0o755); err != nil {
			return nil, err
		}
	}

	newPath := filepath.Join(folder, filepath.Base(oldPath))
	if err := writeFrontmatter(newPath, taskMeta(task), task.Body); err != nil {
		return nil, fmt.Errorf("write task %s: %w", task.ID, err)
	}
	if oldPath != newPath {
		if err := os.Remove(oldPath); err != nil {
			return nil, fmt.Errorf("remove old task file: %w", err)
		}
	}
	return task, nil
}

func (r *TaskRepo) findFileByID(id string) string {
	for _, status := range domain.TaskStatuses {
		folder := r.vault.TasksFolder(status)
		if path := findInFolder(folder, id); path != "" {
			return path
		}
		if status == domain.StatusCompleted {
			for _, sub := range completedSubfolders(folder) {
				if path := findInFolder(sub, id); path != "" {
					return path
				}
			}
		}
	}
	return ""
}

func findInFolder(folder, id string) string {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return ""
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		path := filepath.Join(folder, entry.Name())
		meta, _, err := readFrontmatter(path)
		if err != nil {
			continue
		}
		if domain.NormalizeID(metaString(meta, "id")) == id {
			return path
		}
	}
	return ""
}

func (r *TaskRepo) findByTitle(query string) []domain.Task {
	query = strings.ToLower(query)
	var matches []domain.Task
	for _, status := range domain.TaskStatuses {
		for _, t := range r.readFolder(r.vault.TasksFolder(status)) {
			if strings.Contains(strings.ToLower(t.Title), query) {
				matches = append(matches, t)
			}
		}
	}
	return matches
}

func (r *TaskRepo) readFolder(folder string) []domain.Task {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil
	}
	var tasks []domain.Task
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		task, err := r.readTaskFile(filepath.Join(folder, entry.Name()))
		if err != nil {
			continue // unreadable files are skipped, not fatal
		}
		tasks = append(tasks, *task)
	}
	return tasks
}

func (r *TaskRepo) readCompletedTree(base string) []domain.Task {
	var tasks []domain.Task
	for _, sub := range completedSubfolders(base) {
		tasks = append(tasks, r.readFolder(sub)...)
	}
	return tasks
}

// completedSubfolders lists Completed/<year>/<month> directories.
func completedSubfolders(base string) []string {
	var folders []string
	years, err := os.ReadDir(base)
	if err != nil {
		return nil
	}
	for _, year := range years {
		if !year.IsDir() || !isDigits(year.Name()) {
			continue
		}
		yearPath := filepath.Join(base, year.Name())
		months, err := os.ReadDir(yearPath)
		if err != nil {
			continue
		}
		for _, month := range months {
			if month.IsDir() {
				folders = append(folders, filepath.Join(yearPath, month.Name()))
			}
		}
	}
	return folders
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func (r *TaskRepo) readTaskFile(path string) (*domain.Task, error) {
	meta, body, err := readFrontmatter(path)
	if err != nil {
		return nil, err
	}

	status, ok := domain.ParseTaskStatus(metaString(meta, "status"))
	if !ok {
		status = domain.StatusInbox
	}

	task := &domain.Task{
		ID:           metaString(meta, "id"),
		Status:       status,
		Title:        extractTitle(body, path),
		Body:         body,
		Due:          metaDate(meta, "due"),
		Project:      metaString(meta, "project"),
		AssignedTo:   metaString(meta, "assignedTo"),
		WaitingOn:    metaString(meta, "waitingOn"),
		BlockedBy:    metaStrings(meta, "blockedBy"),
		Blocks:       metaStrings(meta, "blocks"),
		Tags:         metaStrings(meta, "tags"),
		TimeEstimate: metaString(meta, "timeEstimate"),
		JiraKey:      metaString(meta, "jiraKey"),
		Created:      metaTime(meta, "created", time.Now()),
		Updated:      metaTime(meta, "updated", time.Now()),
	}
	if c := metaDateTime(meta, "completed"); c != nil {
		task.Completed = c
	}
	return task, nil
}

// extractTitle takes the first H1 heading, falling back to the filename
// with any YYYY-MM-DD- prefix removed.
func extractTitle(body, path string) string {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(line[2:])
		}
	}

	name := strings.TrimSuffix(filepath.Base(path), ".md")
	if len(name) > 11 && name[4] == '-' && name[7] == '-' && name[10] == '-' {
		name = name[11:]
	}
	return strings.ReplaceAll(name, "-", " ")
}

func taskMeta(task *domain.Task) map[string]any {
	meta := map[string]any{
		"id":      task.ID,
		"type":    "task",
		"status":  string(task.Status),
		"created": task.Created.Format(time.RFC3339),
		"updated": task.Updated.Format(time.RFC3339),
	}
	if task.Due != nil {
		meta["due"] = task.Due.Format("2006-01-02")
	}
	if task.Project != "" {
		meta["project"] = task.Project
	}
	if task.AssignedTo != "" {
		meta["assignedTo"] = task.AssignedTo
	}
	if task.WaitingOn != "" {
		meta["waitingOn"] = task.WaitingOn
	}
	if len(task.BlockedBy) > 0 {
		meta["blockedBy"] = task.BlockedBy
	}
	if len(task.Blocks) > 0 {
		meta["blocks"] = task.Blocks
	}
	if len(task.Tags) > 0 {
		meta["tags"] = task.Tags
	}
	if task.TimeEstimate != "" {
		meta["timeEstimate"] = task.TimeEstimate
	}
	if task.JiraKey != "" {
		meta["jiraKey"] = task.JiraKey
	}
	if task.Completed != nil {
		meta["completed"] = task.Completed.Format(time.RFC3339)
	}
	return meta
}
