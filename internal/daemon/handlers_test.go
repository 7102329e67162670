package daemon

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"aio/internal/domain"
)

func newTestDispatcher(t *testing.T) (*Dispatcher, *fakeTaskRepo) {
	t.Helper()
	repo := newFakeTaskRepo()
	cache := NewVaultCache(repo, nil, discardLogger())
	if err := cache.Refresh(); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	d := NewDispatcher(&HandlerContext{
		Cache:  cache,
		Tasks:  repo,
		Logger: discardLogger(),
	})
	return d, repo
}

func call(t *testing.T, d *Dispatcher, method string, params any) Response {
	t.Helper()
	req := Request{JSONRPC: "2.0", ID: 1, Method: method}
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			t.Fatalf("marshal params: %v", err)
		}
		req.Params = raw
	}
	return d.Dispatch(req)
}

func resultMap(t *testing.T, resp Response) map[string]any {
	t.Helper()
	if resp.Error != nil {
		t.Fatalf("unexpected error: %d %s", resp.Error.Code, resp.Error.Message)
	}
	m, ok := resp.Result.(map[string]any)
	if !ok {
		t.Fatalf("result is %T, want map", resp.Result)
	}
	return m
}

func taskField(t *testing.T, resp Response, field string) any {
	t.Helper()
	task, ok := resultMap(t, resp)["task"].(map[string]any)
	if !ok {
		t.Fatal("result has no task object")
	}
	return task[field]
}

func TestDispatchRejectsInvalidRequest(t *testing.T) {
	d, _ := newTestDispatcher(t)

	cases := []Request{
		{JSONRPC: "1.0", ID: 1, Method: "list_tasks"},
		{JSONRPC: "2.0", ID: 1, Method: ""},
	}
	for _, req := range cases {
		resp := d.Dispatch(req)
		if resp.Error == nil || resp.Error.Code != CodeInvalidRequest {
			t.Errorf("Dispatch(%+v) error = %v, want code %d", req, resp.Error, CodeInvalidRequest)
		}
	}
}

func TestDispatchUnknownMethod(t *testing.T) {
	d, _ := newTestDispatcher(t)

	resp := call(t, d, "frobnicate", nil)
	if resp.Error == nil || resp.Error.Code != CodeMethodNotFound {
		t.Fatalf("error = %v, want code %d", resp.Error, CodeMethodNotFound)
	}
	if resp.Error.Message != "method not found: frobnicate" {
		t.Errorf("message = %q", resp.Error.Message)
	}
	if resp.ID != 1 {
		t.Errorf("response ID = %v, want 1", resp.ID)
	}
}

func TestDispatchMalformedParams(t *testing.T) {
	d, _ := newTestDispatcher(t)

	resp := d.Dispatch(Request{JSONRPC: "2.0", ID: 7, Method: "list_tasks", Params: json.RawMessage(`"not an object"`)})
	if resp.Error == nil || resp.Error.Code != CodeInvalidParams {
		t.Fatalf("error = %v, want code %d", resp.Error, CodeInvalidParams)
	}
}

func TestDispatchRecoversHandlerPanic(t *testing.T) {
	d, _ := newTestDispatcher(t)
	d.methods["explode"] = func(ctx *HandlerContext, params json.RawMessage) (any, error) {
		panic("boom")
	}

	resp := call(t, d, "explode", nil)
	if resp.Error == nil || resp.Error.Code != CodeInternalError {
		t.Fatalf("error = %v, want code %d", resp.Error, CodeInternalError)
	}
	if resp.Error.Message != "internal error" {
		t.Errorf("message = %q, panic detail must not leak", resp.Error.Message)
	}
}

func TestAddTaskThenListTasks(t *testing.T) {
	d, _ := newTestDispatcher(t)

	resp := call(t, d, "add_task", map[string]any{
		"title": "Review design doc",
		"due":   "+3d",
		"tags":  []string{"work"},
	})
	id, _ := taskField(t, resp, "id").(string)
	if id == "" {
		t.Fatal("add_task returned no id")
	}
	if status := taskField(t, resp, "status"); status != "inbox" {
		t.Errorf("status = %v, want inbox", status)
	}
	if due := taskField(t, resp, "due"); due == nil {
		t.Error("due missing from result")
	}

	// The write refreshed the cache, so the list must already see it.
	listResp := call(t, d, "list_tasks", nil)
	result := resultMap(t, listResp)
	if count, _ := result["count"].(int); count != 1 {
		t.Errorf("list_tasks count = %v, want 1", result["count"])
	}
}

func TestAddTaskValidation(t *testing.T) {
	d, _ := newTestDispatcher(t)

	resp := call(t, d, "add_task", map[string]any{"due": "+3d"})
	if resp.Error == nil || resp.Error.Code != CodeInvalidParams {
		t.Errorf("missing title: error = %v, want code %d", resp.Error, CodeInvalidParams)
	}

	resp = call(t, d, "add_task", map[string]any{"title": "x", "due": "not a date"})
	if resp.Error == nil || resp.Error.Code != CodeInvalidDate {
		t.Errorf("bad due: error = %v, want code %d", resp.Error, CodeInvalidDate)
	}

	resp = call(t, d, "add_task", map[string]any{"title": "x", "status": "urgent"})
	if resp.Error == nil || resp.Error.Code != CodeInvalidParams {
		t.Errorf("bad status: error = %v, want code %d", resp.Error, CodeInvalidParams)
	}
}

func TestGetTaskNotFound(t *testing.T) {
	d, _ := newTestDispatcher(t)

	resp := call(t, d, "get_task", map[string]any{"id": "ZZZZ"})
	if resp.Error == nil || resp.Error.Code != CodeTaskNotFound {
		t.Fatalf("error = %v, want code %d", resp.Error, CodeTaskNotFound)
	}
}

func TestCompleteTaskReadYourWrites(t *testing.T) {
	d, repo := newTestDispatcher(t)
	seedTask(repo, "AB22", "Ship release", domain.StatusNext, nil)
	call(t, d, "add_task", map[string]any{"title": "keep cache warm"})

	resp := call(t, d, "complete_task", map[string]any{"query": "AB22"})
	if status := taskField(t, resp, "status"); status != "completed" {
		t.Fatalf("status = %v, want completed", status)
	}
	if taskField(t, resp, "completed") == nil {
		t.Error("completed timestamp missing")
	}

	// Completed tasks leave the default view immediately.
	result := resultMap(t, call(t, d, "list_tasks", nil))
	if count, _ := result["count"].(int); count != 1 {
		t.Errorf("list_tasks count = %v, want 1", result["count"])
	}
	result = resultMap(t, call(t, d, "list_tasks", map[string]any{"include_completed": true}))
	if count, _ := result["count"].(int); count != 2 {
		t.Errorf("list_tasks include_completed count = %v, want 2", result["count"])
	}
}

func TestTaskTransitionsByTitleQuery(t *testing.T) {
	d, repo := newTestDispatcher(t)
	seedTask(repo, "AB22", "Migrate staging database", domain.StatusInbox, nil)
	if err := d.ctx.Cache.Refresh(); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	resp := call(t, d, "start_task", map[string]any{"query": "staging"})
	if status := taskField(t, resp, "status"); status != "next" {
		t.Errorf("start_task status = %v, want next", status)
	}

	resp = call(t, d, "defer_task", map[string]any{"query": "AB22"})
	if status := taskField(t, resp, "status"); status != "someday" {
		t.Errorf("defer_task status = %v, want someday", status)
	}
}

func TestTaskTransitionAmbiguousQuery(t *testing.T) {
	d, repo := newTestDispatcher(t)
	seedTask(repo, "AB22", "Deploy staging", domain.StatusInbox, nil)
	seedTask(repo, "CD33", "Deploy production", domain.StatusInbox, nil)

	resp := call(t, d, "complete_task", map[string]any{"query": "Deploy"})
	if resp.Error == nil || resp.Error.Code != CodeAmbiguousMatch {
		t.Fatalf("error = %v, want code %d", resp.Error, CodeAmbiguousMatch)
	}
	data, ok := resp.Error.Data.(map[string]any)
	if !ok {
		t.Fatalf("error data is %T, want map with matches", resp.Error.Data)
	}
	if matches, ok := data["matches"].([]string); !ok || len(matches) != 2 {
		t.Errorf("matches = %v, want 2 entries", data["matches"])
	}
}

func TestDelegateTask(t *testing.T) {
	d, repo := newTestDispatcher(t)
	seedTask(repo, "AB22", "Ship release", domain.StatusNext, nil)

	resp := call(t, d, "delegate_task", map[string]any{
		"query": "AB22",
		"to":    "[[People/Sarah-Chen]]",
	})
	if status := taskField(t, resp, "status"); status != "waiting" {
		t.Errorf("status = %v, want waiting", status)
	}
	if waitingOn := taskField(t, resp, "waiting_on"); waitingOn != "[[People/Sarah-Chen]]" {
		t.Errorf("waiting_on = %v", waitingOn)
	}
}

func TestListTasksFiltersByStatus(t *testing.T) {
	d, repo := newTestDispatcher(t)
	seedTask(repo, "AB22", "Inbox task", domain.StatusInbox, nil)
	seedTask(repo, "CD33", "Next task", domain.StatusNext, nil)
	if err := d.ctx.Cache.Refresh(); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	result := resultMap(t, call(t, d, "list_tasks", map[string]any{"status": "next"}))
	if count, _ := result["count"].(int); count != 1 {
		t.Errorf("count = %v, want 1", result["count"])
	}

	resp := call(t, d, "list_tasks", map[string]any{"status": "bogus"})
	if resp.Error == nil || resp.Error.Code != CodeInvalidParams {
		t.Errorf("unknown status: error = %v, want code %d", resp.Error, CodeInvalidParams)
	}
}

func TestListTasksTodayAndOverdueViews(t *testing.T) {
	d, repo := newTestDispatcher(t)
	now := time.Now()
	yesterday := now.AddDate(0, 0, -1)
	nextWeek := now.AddDate(0, 0, 7)
	seedTask(repo, "AB22", "Pay invoice", domain.StatusNext, &yesterday)
	seedTask(repo, "CD33", "Stand-up notes", domain.StatusNext, &now)
	seedTask(repo, "EF44", "Quarterly review", domain.StatusScheduled, &nextWeek)
	if err := d.ctx.Cache.Refresh(); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	result := resultMap(t, call(t, d, "list_tasks", map[string]any{"status": "today"}))
	if count, _ := result["count"].(int); count != 1 {
		t.Errorf("today count = %v, want 1", result["count"])
	}

	result = resultMap(t, call(t, d, "list_tasks", map[string]any{"status": "overdue"}))
	if count, _ := result["count"].(int); count != 1 {
		t.Errorf("overdue count = %v, want 1", result["count"])
	}
	tasks, _ := result["tasks"].([]map[string]any)
	if len(tasks) != 1 || tasks[0]["id"] != "AB22" {
		t.Errorf("overdue tasks = %v, want AB22 only", result["tasks"])
	}
}

func TestListTasksProjectFilter(t *testing.T) {
	d, repo := newTestDispatcher(t)
	now := time.Now()
	repo.put(domain.Task{ID: "AB22", Title: "Write migration plan", Status: domain.StatusNext,
		Project: "[[Projects/Atlas]]", Created: now, Updated: now})
	repo.put(domain.Task{ID: "CD33", Title: "Fix login flow", Status: domain.StatusNext,
		Project: "[[Projects/Beacon]]", Created: now, Updated: now})
	if err := d.ctx.Cache.Refresh(); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	result := resultMap(t, call(t, d, "list_tasks", map[string]any{"project": "atlas"}))
	if count, _ := result["count"].(int); count != 1 {
		t.Fatalf("count = %v, want 1", result["count"])
	}
	tasks, _ := result["tasks"].([]map[string]any)
	if len(tasks) != 1 || tasks[0]["id"] != "AB22" {
		t.Errorf("tasks = %v, want AB22 only", result["tasks"])
	}
}

func TestArchiveTaskLeavesEveryView(t *testing.T) {
	d, repo := newTestDispatcher(t)
	seedTask(repo, "AB22", "Old initiative", domain.StatusNext, nil)
	seedTask(repo, "CD33", "Keep me", domain.StatusNext, nil)
	if err := d.ctx.Cache.Refresh(); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	resp := call(t, d, "archive_task", map[string]any{"query": "AB22"})
	if id := taskField(t, resp, "id"); id != "AB22" {
		t.Fatalf("archived id = %v, want AB22", id)
	}

	result := resultMap(t, call(t, d, "list_tasks", nil))
	if count, _ := result["count"].(int); count != 1 {
		t.Errorf("list_tasks count = %v, want 1", result["count"])
	}
	resp = call(t, d, "get_task", map[string]any{"id": "AB22"})
	if resp.Error == nil || resp.Error.Code != CodeTaskNotFound {
		t.Errorf("get_task after archive: error = %v, want code %d", resp.Error, CodeTaskNotFound)
	}
}

// failingPersonRepo errors on every operation, for degraded-path tests.
type failingPersonRepo struct{ err error }

func (r *failingPersonRepo) Create(name, team, role, email string) (*domain.Person, error) {
	return nil, r.err
}
func (r *failingPersonRepo) Find(query string) (*domain.Person, error)    { return nil, r.err }
func (r *failingPersonRepo) List() ([]domain.Person, error)               { return nil, r.err }
func (r *failingPersonRepo) Archive(query string) (*domain.Person, error) { return nil, r.err }
func (r *failingPersonRepo) Slug(name string) string                      { return name }

func TestDashboardSurvivesPeopleListFailure(t *testing.T) {
	repo := newFakeTaskRepo()
	seedTask(repo, "AB22", "Ship release", domain.StatusNext, nil)
	cache := NewVaultCache(repo, nil, discardLogger())
	if err := cache.Refresh(); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	d := NewDispatcher(&HandlerContext{
		Cache:  cache,
		Tasks:  repo,
		People: &failingPersonRepo{err: errors.New("people folder unreadable")},
		Logger: discardLogger(),
	})

	result := resultMap(t, call(t, d, "get_dashboard", nil))
	md, _ := result["markdown"].(string)
	if md == "" {
		t.Fatal("get_dashboard returned no markdown")
	}
	if !strings.Contains(md, "Ship release") {
		t.Errorf("markdown missing task sections:\n%s", md)
	}
}

func TestFileGetAndSet(t *testing.T) {
	d, _ := newTestDispatcher(t)
	store := newFakeFileStore()
	d.ctx.Files = store

	resp := call(t, d, "file_get", map[string]any{"query": "AIO/missing.md"})
	if resp.Error == nil || resp.Error.Code != CodeTaskNotFound {
		t.Fatalf("file_get miss: error = %v, want code %d", resp.Error, CodeTaskNotFound)
	}

	result := resultMap(t, call(t, d, "file_set", map[string]any{
		"query":   "AIO/notes.md",
		"content": "# Notes\n",
	}))
	if result["path"] != "AIO/notes.md" {
		t.Errorf("path = %v", result["path"])
	}
	if _, ok := result["backup"]; ok {
		t.Error("new file must not report a backup")
	}

	// Overwriting returns the backup taken first.
	result = resultMap(t, call(t, d, "file_set", map[string]any{
		"query":   "AIO/notes.md",
		"content": "# Notes v2\n",
	}))
	if result["backup"] != "AIO/notes.md.bak" {
		t.Errorf("backup = %v", result["backup"])
	}

	result = resultMap(t, call(t, d, "file_get", map[string]any{"query": "AIO/notes.md"}))
	if result["content"] != "# Notes v2\n" {
		t.Errorf("content = %q", result["content"])
	}
}

func TestMethodsListsEveryRegisteredMethod(t *testing.T) {
	d, _ := newTestDispatcher(t)

	names := d.Methods()
	if len(names) != 22 {
		t.Fatalf("Methods() returned %d names, want 22", len(names))
	}
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		seen[name] = true
	}
	for _, want := range []string{"list_tasks", "get_dashboard", "archive_task", "create_context_pack", "file_set"} {
		if !seen[want] {
			t.Errorf("Methods() missing %s", want)
		}
	}
}
