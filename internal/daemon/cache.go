package daemon

import (
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"aio/internal/application"
	"aio/internal/domain"
	"aio/internal/ports"
)

// debouncePeriod is the quiet window after the last file event before a
// refresh fires. Bursts of events inside one window collapse into a
// single refresh.
const debouncePeriod = 100 * time.Millisecond

// cacheIndex is one immutable snapshot of the vault. Readers grab the
// current pointer under RLock; Refresh builds a complete replacement and
// swaps it in, so no reader ever observes a half-built index.
type cacheIndex struct {
	byID     map[string]domain.Task
	byStatus map[domain.TaskStatus][]string
	builtAt  time.Time
}

func newCacheIndex() *cacheIndex {
	return &cacheIndex{
		byID:     make(map[string]domain.Task),
		byStatus: make(map[domain.TaskStatus][]string),
	}
}

// CacheStats reports index and watcher state for health checks.
type CacheStats struct {
	Total          int                        `json:"total"`
	ByStatus       map[domain.TaskStatus]int  `json:"by_status"`
	WatcherRunning bool                       `json:"watcher_running"`
	LastRefresh    time.Time                  `json:"last_refresh"`
	Refreshes      uint64                     `json:"refreshes"`
	LastError      string                     `json:"last_error,omitempty"`
}

// VaultCache keeps the vault's tasks in memory so the read path never
// touches disk. The filesystem watcher drives refreshes; mutating
// handlers force one synchronously for read-your-writes.
type VaultCache struct {
	repo     ports.TaskRepository
	notifier ports.ChangeNotifier
	logger   *slog.Logger

	mu        sync.RWMutex
	index     *cacheIndex
	lastErr   error
	refreshes uint64
	watching  bool

	stopOnce sync.Once
	stopped  chan struct{}
	loopDone chan struct{}
}

// NewVaultCache creates a cache over a task repository. Call Refresh
// once before serving traffic, then Watch to keep it current.
func NewVaultCache(repo ports.TaskRepository, notifier ports.ChangeNotifier, logger *slog.Logger) *VaultCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &VaultCache{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
		index:    newCacheIndex(),
		stopped:  make(chan struct{}),
		loopDone: make(chan struct{}),
	}
}

// Refresh rebuilds the whole index from the repository and swaps it in.
// On scan failure the previous index stays in effect and the error is
// kept for health reporting.
func (c *VaultCache) Refresh() error {
	next := newCacheIndex()
	for _, status := range domain.TaskStatuses {
		s := status
		tasks, err := c.repo.List(&s, true)
		if err != nil {
			c.logger.Error("cache refresh failed", "status", status, "error", err)
			c.mu.Lock()
			c.lastErr = err
			c.mu.Unlock()
			return err
		}
		for _, task := range tasks {
			next.byID[task.ID] = task
			next.byStatus[status] = append(next.byStatus[status], task.ID)
		}
	}
	next.builtAt = time.Now()

	c.mu.Lock()
	c.index = next
	c.lastErr = nil
	c.refreshes++
	c.mu.Unlock()

	c.logger.Debug("cache refreshed", "tasks", len(next.byID))
	return nil
}

// Invalidate reloads a single task, removing it when the repository no
// longer has it. The index is copied before mutation so readers keep a
// consistent view.
func (c *VaultCache) Invalidate(id string) error {
	id = domain.NormalizeID(id)
	task, err := c.repo.Get(id)
	if err != nil && !errors.Is(err, application.ErrNotFound) {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	next := &cacheIndex{
		byID:     make(map[string]domain.Task, len(c.index.byID)),
		byStatus: make(map[domain.TaskStatus][]string, len(c.index.byStatus)),
		builtAt:  c.index.builtAt,
	}
	for tid, t := range c.index.byID {
		if tid == id {
			continue
		}
		next.byID[tid] = t
		next.byStatus[t.Status] = append(next.byStatus[t.Status], tid)
	}
	if task != nil {
		next.byID[id] = *task
		next.byStatus[task.Status] = append(next.byStatus[task.Status], id)
	}
	c.index = next
	return nil
}

// Get returns a task by ID without touching disk.
func (c *VaultCache) Get(id string) (*domain.Task, bool) {
	c.mu.RLock()
	idx := c.index
	c.mu.RUnlock()

	task, ok := idx.byID[domain.NormalizeID(id)]
	if !ok {
		return nil, false
	}
	return &task, true
}

// List returns tasks, optionally filtered by status. The default view
// excludes completed and someday tasks, matching the repository.
func (c *VaultCache) List(status *domain.TaskStatus, includeCompleted bool) []domain.Task {
	c.mu.RLock()
	idx := c.index
	c.mu.RUnlock()

	var statuses []domain.TaskStatus
	if status != nil {
		statuses = []domain.TaskStatus{*status}
	} else {
		for _, s := range domain.TaskStatuses {
			if s == domain.StatusSomeday {
				continue
			}
			if s == domain.StatusCompleted && !includeCompleted {
				continue
			}
			statuses = append(statuses, s)
		}
	}

	var tasks []domain.Task
	for _, s := range statuses {
		for _, id := range idx.byStatus[s] {
			tasks = append(tasks, idx.byID[id])
		}
	}
	domain.SortTasks(tasks)
	return tasks
}

// ListToday returns non-completed tasks due on the given date.
func (c *VaultCache) ListToday(today time.Time) []domain.Task {
	var out []domain.Task
	for _, task := range c.List(nil, false) {
		if task.IsDueToday(today) {
			out = append(out, task)
		}
	}
	return out
}

// ListOverdue returns non-completed tasks whose due date has passed.
func (c *VaultCache) ListOverdue(today time.Time) []domain.Task {
	var out []domain.Task
	for _, task := range c.List(nil, false) {
		if task.IsOverdue(today) {
			out = append(out, task)
		}
	}
	return out
}

// Stats aggregates index counts and watcher state.
func (c *VaultCache) Stats() CacheStats {
	c.mu.RLock()
	idx := c.index
	lastErr := c.lastErr
	refreshes := c.refreshes
	c.mu.RUnlock()

	stats := CacheStats{
		Total:       len(idx.byID),
		ByStatus:    make(map[domain.TaskStatus]int, len(idx.byStatus)),
		LastRefresh: idx.builtAt,
		Refreshes:   refreshes,
	}
	for status, ids := range idx.byStatus {
		stats.ByStatus[status] = len(ids)
	}
	if c.notifier != nil {
		stats.WatcherRunning = c.notifier.Running()
	}
	if lastErr != nil {
		stats.LastError = lastErr.Error()
	}
	return stats
}

// Refreshes returns how many refreshes have completed.
func (c *VaultCache) Refreshes() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.refreshes
}

// Watch starts the change notifier and the debounce loop. Events for
// non-markdown files are ignored before they count toward the window.
func (c *VaultCache) Watch() error {
	events, err := c.notifier.Start()
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.watching = true
	c.mu.Unlock()
	go c.debounceLoop(events)
	return nil
}

// StopWatch stops the notifier and waits for the debounce loop to exit.
// Safe to call when Watch never ran or failed, so a partially started
// daemon can still tear down.
func (c *VaultCache) StopWatch() error {
	var err error
	c.stopOnce.Do(func() {
		close(c.stopped)
		if c.notifier != nil && c.notifier.Running() {
			err = c.notifier.Stop()
		}
		c.mu.RLock()
		watching := c.watching
		c.mu.RUnlock()
		if watching {
			<-c.loopDone
		}
	})
	return err
}

func (c *VaultCache) debounceLoop(events <-chan string) {
	defer close(c.loopDone)

	timer := time.NewTimer(debouncePeriod)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case path, ok := <-events:
			if !ok {
				return
			}
			if !strings.HasSuffix(path, ".md") {
				continue
			}
			if pending && !timer.Stop() {
				<-timer.C
			}
			timer.Reset(debouncePeriod)
			pending = true

		case <-timer.C:
			pending = false
			if err := c.Refresh(); err != nil {
				c.logger.Warn("debounced refresh failed", "error", err)
			}

		case <-c.stopped:
			if pending {
				timer.Stop()
			}
			return
		}
	}
}
