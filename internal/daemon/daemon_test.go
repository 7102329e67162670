package daemon

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"aio/internal/application"
	"aio/internal/domain"
)

// fakeTaskRepo is an in-memory TaskRepository so cache and dispatcher
// tests never touch disk.
type fakeTaskRepo struct {
	mu      sync.Mutex
	tasks   map[string]domain.Task
	nextID  int
	listErr error
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[string]domain.Task)}
}

func (r *fakeTaskRepo) put(t domain.Task) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[t.ID] = t
}

func (r *fakeTaskRepo) failLists(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listErr = err
}

func (r *fakeTaskRepo) Create(title string, due *time.Time, project string, status domain.TaskStatus, tags []string) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	now := time.Now()
	task := domain.Task{
		ID:      fmt.Sprintf("TA%02d", r.nextID),
		Title:   title,
		Status:  status,
		Due:     due,
		Project: project,
		Tags:    tags,
		Created: now,
		Updated: now,
	}
	r.tasks[task.ID] = task
	return &task, nil
}

func (r *fakeTaskRepo) Get(id string) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[domain.NormalizeID(id)]
	if !ok {
		return nil, &application.TaskNotFoundError{Query: id}
	}
	return &task, nil
}

func (r *fakeTaskRepo) Find(query string) (*domain.Task, error) {
	if task, err := r.Get(query); err == nil {
		return task, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var matches []domain.Task
	for _, task := range r.tasks {
		if strings.Contains(strings.ToLower(task.Title), strings.ToLower(query)) {
			matches = append(matches, task)
		}
	}
	switch len(matches) {
	case 0:
		return nil, &application.TaskNotFoundError{Query: query}
	case 1:
		return &matches[0], nil
	default:
		titles := make([]string, len(matches))
		for i, m := range matches {
			titles[i] = m.ID + ": " + m.Title
		}
		return nil, &application.AmbiguousMatchError{Query: query, Matches: titles}
	}
}

func (r *fakeTaskRepo) List(status *domain.TaskStatus, includeCompleted bool) ([]domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []domain.Task
	for _, task := range r.tasks {
		if status != nil {
			if task.Status == *status {
				out = append(out, task)
			}
			continue
		}
		if task.Status == domain.StatusSomeday {
			continue
		}
		if task.Status == domain.StatusCompleted && !includeCompleted {
			continue
		}
		out = append(out, task)
	}
	return out, nil
}

func (r *fakeTaskRepo) transition(query string, status domain.TaskStatus) (*domain.Task, error) {
	task, err := r.Find(query)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	task.Status = status
	task.Updated = time.Now()
	if status == domain.StatusCompleted {
		now := time.Now()
		task.Completed = &now
	}
	r.tasks[task.ID] = *task
	return task, nil
}

func (r *fakeTaskRepo) Complete(query string) (*domain.Task, error) {
	return r.transition(query, domain.StatusCompleted)
}

func (r *fakeTaskRepo) Start(query string) (*domain.Task, error) {
	return r.transition(query, domain.StatusNext)
}

func (r *fakeTaskRepo) Defer(query string) (*domain.Task, error) {
	return r.transition(query, domain.StatusSomeday)
}

func (r *fakeTaskRepo) Archive(query string) (*domain.Task, error) {
	task, err := r.Find(query)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tasks, task.ID)
	return task, nil
}

func (r *fakeTaskRepo) Wait(query, personLink string) (*domain.Task, error) {
	task, err := r.transition(query, domain.StatusWaiting)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	task.WaitingOn = personLink
	r.tasks[task.ID] = *task
	return task, nil
}

// fakeFileStore keeps file contents in a map keyed by query.
type fakeFileStore struct {
	mu    sync.Mutex
	files map[string]string
}

func newFakeFileStore() *fakeFileStore {
	return &fakeFileStore{files: map[string]string{}}
}

func (s *fakeFileStore) Get(query string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	content, ok := s.files[query]
	if !ok {
		return "", &application.TaskNotFoundError{Query: query}
	}
	return content, nil
}

func (s *fakeFileStore) Set(query, content string) (string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	backup := ""
	if _, ok := s.files[query]; ok {
		backup = query + ".bak"
	}
	s.files[query] = content
	return query, backup, nil
}

// fakeNotifier delivers hand-fed change events.
type fakeNotifier struct {
	mu       sync.Mutex
	events   chan string
	running  bool
	startErr error
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{events: make(chan string, 16)}
}

func (n *fakeNotifier) Start() (<-chan string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.startErr != nil {
		return nil, n.startErr
	}
	n.running = true
	return n.events, nil
}

func (n *fakeNotifier) Stop() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.running {
		n.running = false
		close(n.events)
	}
	return nil
}

func (n *fakeNotifier) Running() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.running
}

func (n *fakeNotifier) emit(path string) { n.events <- path }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// waitFor polls until the condition holds or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
