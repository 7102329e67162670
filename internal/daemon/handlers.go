package daemon

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"aio/internal/application"
	"aio/internal/dashboard"
	"aio/internal/domain"
	"aio/internal/ports"
)

// HandlerContext carries the shared services every handler needs. One
// context is built at daemon start and passed by reference; there is no
// process-wide registry.
type HandlerContext struct {
	Cache    *VaultCache
	Tasks    ports.TaskRepository
	Projects ports.ProjectRepository
	People   ports.PersonRepository
	Packs    ports.ContextPackRepository
	Files    ports.FileStore
	Logger   *slog.Logger
}

// HandlerFunc is one RPC method implementation. Domain errors propagate
// to the dispatcher, which owns the error-to-code translation.
type HandlerFunc func(ctx *HandlerContext, params json.RawMessage) (any, error)

// Dispatcher resolves method names against a fixed table built once at
// startup. It is stateless between calls.
type Dispatcher struct {
	ctx     *HandlerContext
	methods map[string]HandlerFunc
}

// NewDispatcher builds the method table.
func NewDispatcher(ctx *HandlerContext) *Dispatcher {
	if ctx.Logger == nil {
		ctx.Logger = slog.Default()
	}
	return &Dispatcher{
		ctx: ctx,
		methods: map[string]HandlerFunc{
			"list_tasks":    handleListTasks,
			"get_task":      handleGetTask,
			"add_task":      handleAddTask,
			"complete_task": handleCompleteTask,
			"start_task":    handleStartTask,
			"defer_task":    handleDeferTask,
			"delegate_task": handleDelegateTask,
			"archive_task":  handleArchiveTask,

			"get_dashboard": handleGetDashboard,

			"list_projects":   handleListProjects,
			"create_project":  handleCreateProject,
			"archive_project": handleArchiveProject,

			"list_people":    handleListPeople,
			"create_person":  handleCreatePerson,
			"archive_person": handleArchivePerson,

			"get_context":              handleGetContext,
			"list_context_packs":       handleListContextPacks,
			"create_context_pack":      handleCreateContextPack,
			"add_to_context_pack":      handleAddToContextPack,
			"add_file_to_context_pack": handleAddFileToContextPack,

			"file_get": handleFileGet,
			"file_set": handleFileSet,
		},
	}
}

// Methods returns the registered method names, for diagnostics.
func (d *Dispatcher) Methods() []string {
	names := make([]string, 0, len(d.methods))
	for name := range d.methods {
		names = append(names, name)
	}
	return names
}

// Dispatch runs one request to completion and always produces a
// response echoing its ID.
func (d *Dispatcher) Dispatch(req Request) Response {
	if req.JSONRPC != "2.0" || req.Method == "" {
		return errorResponse(req.ID, &RPCError{Code: CodeInvalidRequest, Message: "invalid request"})
	}

	handler, ok := d.methods[req.Method]
	if !ok {
		return errorResponse(req.ID, &RPCError{
			Code:    CodeMethodNotFound,
			Message: fmt.Sprintf("method not found: %s", req.Method),
		})
	}

	result, err := d.invoke(handler, req)
	if err != nil {
		rpcErr := errorToRPC(err)
		if rpcErr.Code == CodeInternalError {
			d.ctx.Logger.Error("handler failed", "method", req.Method, "error", err)
		}
		return errorResponse(req.ID, rpcErr)
	}
	return successResponse(req.ID, result)
}

// invoke isolates handler panics so a programming error in one method
// cannot take down the daemon.
func (d *Dispatcher) invoke(handler HandlerFunc, req Request) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			d.ctx.Logger.Error("handler panic", "method", req.Method, "panic", r)
			err = &RPCError{Code: CodeInternalError, Message: "internal error"}
		}
	}()
	return handler(d.ctx, req.Params)
}

// decodeParams unmarshals the params object, treating absent params as
// empty and malformed params as an invalid-params error.
func decodeParams(params json.RawMessage, v any) error {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, v); err != nil {
		return &RPCError{Code: CodeInvalidParams, Message: "invalid params: " + err.Error()}
	}
	return nil
}

// --- task methods ---

func handleListTasks(ctx *HandlerContext, params json.RawMessage) (any, error) {
	var p struct {
		Status           string `json:"status"`
		Project          string `json:"project"`
		IncludeCompleted bool   `json:"include_completed"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}

	// today and overdue are virtual views over the cache, not stored
	// statuses.
	var tasks []domain.Task
	switch p.Status {
	case "":
		tasks = ctx.Cache.List(nil, p.IncludeCompleted)
	case "today":
		tasks = ctx.Cache.ListToday(time.Now())
	case "overdue":
		tasks = ctx.Cache.ListOverdue(time.Now())
	default:
		s, ok := domain.ParseTaskStatus(p.Status)
		if !ok {
			return nil, &RPCError{Code: CodeInvalidParams, Message: "unknown status: " + p.Status}
		}
		tasks = ctx.Cache.List(&s, p.IncludeCompleted)
	}

	if p.Project != "" {
		tasks = filterByProject(tasks, p.Project)
	}
	return taskListResult(tasks), nil
}

// filterByProject keeps tasks whose project contains the query,
// case-insensitively, so both wikilinks and bare names match.
func filterByProject(tasks []domain.Task, project string) []domain.Task {
	needle := strings.ToLower(project)
	var out []domain.Task
	for _, task := range tasks {
		if strings.Contains(strings.ToLower(task.Project), needle) {
			out = append(out, task)
		}
	}
	return out
}

func handleGetTask(ctx *HandlerContext, params json.RawMessage) (any, error) {
	var p struct {
		ID string `json:"id"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if p.ID == "" {
		return nil, &RPCError{Code: CodeInvalidParams, Message: "id is required"}
	}

	task, ok := ctx.Cache.Get(p.ID)
	if !ok {
		return nil, &application.TaskNotFoundError{Query: p.ID}
	}
	return map[string]any{"task": taskJSON(*task)}, nil
}

func handleAddTask(ctx *HandlerContext, params json.RawMessage) (any, error) {
	var p struct {
		Title   string   `json:"title"`
		Due     string   `json:"due"`
		Project string   `json:"project"`
		Status  string   `json:"status"`
		Tags    []string `json:"tags"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if p.Title == "" {
		return nil, &RPCError{Code: CodeInvalidParams, Message: "title is required"}
	}

	status := domain.StatusInbox
	if p.Status != "" {
		s, ok := domain.ParseTaskStatus(p.Status)
		if !ok {
			return nil, &RPCError{Code: CodeInvalidParams, Message: "unknown status: " + p.Status}
		}
		status = s
	}

	var due *time.Time
	if p.Due != "" {
		d, err := application.ParseDate(p.Due, time.Now())
		if err != nil {
			return nil, err
		}
		due = &d
	}

	task, err := ctx.Tasks.Create(p.Title, due, p.Project, status, p.Tags)
	if err != nil {
		return nil, err
	}
	if err := ctx.Cache.Refresh(); err != nil {
		ctx.Logger.Warn("post-write refresh failed", "error", err)
	}
	return map[string]any{"task": taskJSON(*task)}, nil
}

func handleCompleteTask(ctx *HandlerContext, params json.RawMessage) (any, error) {
	return taskTransition(ctx, params, ctx.Tasks.Complete)
}

func handleStartTask(ctx *HandlerContext, params json.RawMessage) (any, error) {
	return taskTransition(ctx, params, ctx.Tasks.Start)
}

func handleDeferTask(ctx *HandlerContext, params json.RawMessage) (any, error) {
	return taskTransition(ctx, params, ctx.Tasks.Defer)
}

func handleDelegateTask(ctx *HandlerContext, params json.RawMessage) (any, error) {
	var p struct {
		Query string `json:"query"`
		To    string `json:"to"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if p.Query == "" {
		return nil, &RPCError{Code: CodeInvalidParams, Message: "query is required"}
	}

	task, err := ctx.Tasks.Wait(p.Query, p.To)
	if err != nil {
		return nil, err
	}
	if err := ctx.Cache.Refresh(); err != nil {
		ctx.Logger.Warn("post-write refresh failed", "error", err)
	}
	return map[string]any{"task": taskJSON(*task)}, nil
}

func handleArchiveTask(ctx *HandlerContext, params json.RawMessage) (any, error) {
	return taskTransition(ctx, params, ctx.Tasks.Archive)
}

// taskTransition runs a query-addressed status change and refreshes the
// cache synchronously so the caller's next read sees the new state.
func taskTransition(ctx *HandlerContext, params json.RawMessage, op func(string) (*domain.Task, error)) (any, error) {
	var p struct {
		Query string `json:"query"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if p.Query == "" {
		return nil, &RPCError{Code: CodeInvalidParams, Message: "query is required"}
	}

	task, err := op(p.Query)
	if err != nil {
		return nil, err
	}
	if err := ctx.Cache.Refresh(); err != nil {
		ctx.Logger.Warn("post-write refresh failed", "error", err)
	}
	return map[string]any{"task": taskJSON(*task)}, nil
}

// --- dashboard ---

func handleGetDashboard(ctx *HandlerContext, params json.RawMessage) (any, error) {
	// The dashboard degrades to task sections only when people cannot
	// be read; waiting-on grouping just loses its per-person headers.
	people, err := ctx.People.List()
	if err != nil {
		ctx.Logger.Warn("dashboard without people", "error", err)
		people = nil
	}
	now := time.Now()
	md := dashboard.Render(ctx.Cache.List(nil, false), people, now)
	return map[string]any{
		"markdown":     md,
		"generated_at": now.Format(time.RFC3339),
	}, nil
}

// --- project methods ---

func handleListProjects(ctx *HandlerContext, params json.RawMessage) (any, error) {
	var p struct {
		Status string `json:"status"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}

	var status *domain.ProjectStatus
	if p.Status != "" {
		s, ok := domain.ParseProjectStatus(p.Status)
		if !ok {
			return nil, &RPCError{Code: CodeInvalidParams, Message: "unknown status: " + p.Status}
		}
		status = &s
	}

	projects, err := ctx.Projects.List(status)
	if err != nil {
		return nil, err
	}
	items := make([]map[string]any, len(projects))
	for i, proj := range projects {
		items[i] = projectJSON(proj)
	}
	return map[string]any{"projects": items, "count": len(items)}, nil
}

func handleCreateProject(ctx *HandlerContext, params json.RawMessage) (any, error) {
	var p struct {
		Name   string `json:"name"`
		Status string `json:"status"`
		Team   string `json:"team"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if p.Name == "" {
		return nil, &RPCError{Code: CodeInvalidParams, Message: "name is required"}
	}

	status := domain.ProjectActive
	if p.Status != "" {
		s, ok := domain.ParseProjectStatus(p.Status)
		if !ok {
			return nil, &RPCError{Code: CodeInvalidParams, Message: "unknown status: " + p.Status}
		}
		status = s
	}

	project, err := ctx.Projects.Create(p.Name, status, p.Team)
	if err != nil {
		return nil, err
	}
	return map[string]any{"project": projectJSON(*project)}, nil
}

func handleArchiveProject(ctx *HandlerContext, params json.RawMessage) (any, error) {
	var p struct {
		Query string `json:"query"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if p.Query == "" {
		return nil, &RPCError{Code: CodeInvalidParams, Message: "query is required"}
	}

	project, err := ctx.Projects.Archive(p.Query)
	if err != nil {
		return nil, err
	}
	return map[string]any{"project": projectJSON(*project)}, nil
}

// --- people methods ---

func handleListPeople(ctx *HandlerContext, params json.RawMessage) (any, error) {
	people, err := ctx.People.List()
	if err != nil {
		return nil, err
	}
	items := make([]map[string]any, len(people))
	for i, person := range people {
		items[i] = personJSON(person)
	}
	return map[string]any{"people": items, "count": len(items)}, nil
}

func handleCreatePerson(ctx *HandlerContext, params json.RawMessage) (any, error) {
	var p struct {
		Name  string `json:"name"`
		Team  string `json:"team"`
		Role  string `json:"role"`
		Email string `json:"email"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if p.Name == "" {
		return nil, &RPCError{Code: CodeInvalidParams, Message: "name is required"}
	}

	person, err := ctx.People.Create(p.Name, p.Team, p.Role, p.Email)
	if err != nil {
		return nil, err
	}
	return map[string]any{"person": personJSON(*person)}, nil
}

func handleArchivePerson(ctx *HandlerContext, params json.RawMessage) (any, error) {
	var p struct {
		Query string `json:"query"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if p.Query == "" {
		return nil, &RPCError{Code: CodeInvalidParams, Message: "query is required"}
	}

	person, err := ctx.People.Archive(p.Query)
	if err != nil {
		return nil, err
	}
	return map[string]any{"person": personJSON(*person)}, nil
}

// --- context pack methods ---

func handleGetContext(ctx *HandlerContext, params json.RawMessage) (any, error) {
	var p struct {
		Pack string `json:"pack"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if p.Pack == "" {
		return nil, &RPCError{Code: CodeInvalidParams, Message: "pack is required"}
	}

	pack, err := ctx.Packs.Get(p.Pack)
	if err != nil {
		return nil, err
	}
	return map[string]any{"pack": packJSON(*pack), "content": pack.Body}, nil
}

func handleListContextPacks(ctx *HandlerContext, params json.RawMessage) (any, error) {
	var p struct {
		Category string `json:"category"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}

	var category *domain.ContextPackCategory
	if p.Category != "" {
		c, ok := domain.ParseContextPackCategory(p.Category)
		if !ok {
			return nil, &RPCError{Code: CodeInvalidParams, Message: "unknown category: " + p.Category}
		}
		category = &c
	}

	packs, err := ctx.Packs.List(category)
	if err != nil {
		return nil, err
	}
	items := make([]map[string]any, len(packs))
	for i, pack := range packs {
		items[i] = packJSON(pack)
	}
	return map[string]any{"packs": items, "count": len(items)}, nil
}

func handleCreateContextPack(ctx *HandlerContext, params json.RawMessage) (any, error) {
	var p struct {
		Title       string   `json:"title"`
		Category    string   `json:"category"`
		Content     string   `json:"content"`
		Description string   `json:"description"`
		Tags        []string `json:"tags"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if p.Title == "" {
		return nil, &RPCError{Code: CodeInvalidParams, Message: "title is required"}
	}
	category, ok := domain.ParseContextPackCategory(p.Category)
	if !ok {
		return nil, &RPCError{Code: CodeInvalidParams, Message: "unknown category: " + p.Category}
	}

	pack, err := ctx.Packs.Create(p.Title, category, p.Content, p.Description, p.Tags)
	if err != nil {
		return nil, err
	}
	return map[string]any{"pack": packJSON(*pack)}, nil
}

func handleAddToContextPack(ctx *HandlerContext, params json.RawMessage) (any, error) {
	var p struct {
		Pack    string `json:"pack"`
		Content string `json:"content"`
		Section string `json:"section"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if p.Pack == "" || p.Content == "" {
		return nil, &RPCError{Code: CodeInvalidParams, Message: "pack and content are required"}
	}

	pack, err := ctx.Packs.Append(p.Pack, p.Content, p.Section)
	if err != nil {
		return nil, err
	}
	return map[string]any{"pack": packJSON(*pack)}, nil
}

func handleAddFileToContextPack(ctx *HandlerContext, params json.RawMessage) (any, error) {
	var p struct {
		Pack    string `json:"pack"`
		File    string `json:"file"`
		Section string `json:"section"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if p.Pack == "" || p.File == "" {
		return nil, &RPCError{Code: CodeInvalidParams, Message: "pack and file are required"}
	}

	pack, err := ctx.Packs.AppendFile(p.Pack, p.File, p.Section)
	if err != nil {
		return nil, err
	}
	return map[string]any{"pack": packJSON(*pack)}, nil
}

// --- file methods ---

func handleFileGet(ctx *HandlerContext, params json.RawMessage) (any, error) {
	var p struct {
		Query string `json:"query"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if p.Query == "" {
		return nil, &RPCError{Code: CodeInvalidParams, Message: "query is required"}
	}

	content, err := ctx.Files.Get(p.Query)
	if err != nil {
		return nil, err
	}
	return map[string]any{"content": content}, nil
}

func handleFileSet(ctx *HandlerContext, params json.RawMessage) (any, error) {
	var p struct {
		Query   string `json:"query"`
		Content string `json:"content"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if p.Query == "" {
		return nil, &RPCError{Code: CodeInvalidParams, Message: "query is required"}
	}

	path, backup, err := ctx.Files.Set(p.Query, p.Content)
	if err != nil {
		return nil, err
	}
	if err := ctx.Cache.Refresh(); err != nil {
		ctx.Logger.Warn("post-write refresh failed", "error", err)
	}
	result := map[string]any{"path": path}
	if backup != "" {
		result["backup"] = backup
	}
	return result, nil
}

// --- JSON shapes ---

func taskListResult(tasks []domain.Task) map[string]any {
	items := make([]map[string]any, len(tasks))
	for i, task := range tasks {
		items[i] = taskJSON(task)
	}
	return map[string]any{"tasks": items, "count": len(items)}
}

func taskJSON(t domain.Task) map[string]any {
	now := time.Now()
	m := map[string]any{
		"id":           t.ID,
		"title":        t.Title,
		"status":       string(t.Status),
		"created":      t.Created.Format(time.RFC3339),
		"updated":      t.Updated.Format(time.RFC3339),
		"is_overdue":   t.IsOverdue(now),
		"is_due_today": t.IsDueToday(now),
	}
	if t.Due != nil {
		m["due"] = t.Due.Format("2006-01-02")
	}
	if t.Project != "" {
		m["project"] = t.Project
	}
	if t.AssignedTo != "" {
		m["assigned_to"] = t.AssignedTo
	}
	if t.WaitingOn != "" {
		m["waiting_on"] = t.WaitingOn
	}
	if len(t.Tags) > 0 {
		m["tags"] = t.Tags
	}
	if t.Completed != nil {
		m["completed"] = t.Completed.Format(time.RFC3339)
	}
	if t.JiraKey != "" {
		m["jira_key"] = t.JiraKey
	}
	return m
}

func projectJSON(p domain.Project) map[string]any {
	m := map[string]any{
		"id":     p.ID,
		"name":   p.Title,
		"status": string(p.Status),
	}
	if p.Team != "" {
		m["team"] = p.Team
	}
	return m
}

func personJSON(p domain.Person) map[string]any {
	m := map[string]any{
		"id":   p.ID,
		"name": p.Name,
	}
	if p.Team != "" {
		m["team"] = p.Team
	}
	if p.Role != "" {
		m["role"] = p.Role
	}
	if p.Email != "" {
		m["email"] = p.Email
	}
	return m
}

func packJSON(p domain.ContextPack) map[string]any {
	m := map[string]any{
		"id":       p.ID,
		"title":    p.Title,
		"category": string(p.Category),
	}
	if p.Description != "" {
		m["description"] = p.Description
	}
	if len(p.Tags) > 0 {
		m["tags"] = p.Tags
	}
	return m
}
