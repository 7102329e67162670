package daemon

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"aio/internal/adapters/filesystem"
	"aio/internal/adapters/sqlite"
	"aio/internal/adapters/watcher"
)

// State is the supervisor's lifecycle state.
type State int

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	default:
		return "stopped"
	}
}

// Options configures a Server.
type Options struct {
	VaultPath  string
	SocketPath string
	HTTPAddr   string
	Logger     *slog.Logger
}

// Server is the daemon supervisor. It owns the entity store adapters,
// the cache, and both transports, and wires them into one process.
type Server struct {
	opts   Options
	logger *slog.Logger

	mu      sync.Mutex
	state   State
	started time.Time

	cache  *VaultCache
	ids    *sqlite.Index
	socket *SocketServer
	http   *HTTPServer
}

// NewServer creates a supervisor; Start brings the daemon up.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return &Server{opts: opts, logger: logger}
}

// Start constructs every component, performs the first blocking cache
// refresh, then opens both transports. Calling Start while running is a
// warning, not an error.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.state != StateStopped {
		s.mu.Unlock()
		s.logger.Warn("start ignored", "state", s.state.String())
		return nil
	}
	s.state = StateStarting
	s.mu.Unlock()

	if err := s.start(); err != nil {
		s.teardown()
		s.setState(StateStopped)
		return err
	}

	s.mu.Lock()
	s.state = StateRunning
	s.started = time.Now()
	s.mu.Unlock()

	s.logger.Info("daemon running",
		"vault", s.opts.VaultPath,
		"socket", s.opts.SocketPath,
		"http", s.opts.HTTPAddr)
	return nil
}

func (s *Server) start() error {
	vault := filesystem.NewVault(s.opts.VaultPath)
	if err := vault.EnsureInitialized(); err != nil {
		return err
	}

	ids := sqlite.NewIndex(s.opts.VaultPath)
	if err := ids.Open(); err != nil {
		return fmt.Errorf("open ID index: %w", err)
	}
	s.ids = ids
	if stale, _ := ids.Stale(); stale {
		if err := ids.Rebuild(); err != nil {
			return fmt.Errorf("rebuild ID index: %w", err)
		}
	}

	tasks := filesystem.NewTaskRepo(vault, ids)
	projects := filesystem.NewProjectRepo(vault, ids)
	people := filesystem.NewPersonRepo(vault, ids)
	packs := filesystem.NewContextPackRepo(vault)
	files := filesystem.NewFileStore(vault, tasks)

	notifier := watcher.New(s.opts.VaultPath, s.logger)
	s.cache = NewVaultCache(tasks, notifier, s.logger)

	// The first refresh runs before any transport opens so no client
	// ever observes an empty cache.
	if err := s.cache.Refresh(); err != nil {
		return fmt.Errorf("initial cache refresh: %w", err)
	}
	if err := s.cache.Watch(); err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}

	dispatcher := NewDispatcher(&HandlerContext{
		Cache:    s.cache,
		Tasks:    tasks,
		Projects: projects,
		People:   people,
		Packs:    packs,
		Files:    files,
		Logger:   s.logger,
	})

	s.socket = NewSocketServer(s.opts.SocketPath, dispatcher, s.logger)
	if err := s.socket.Start(); err != nil {
		return err
	}

	s.http = NewHTTPServer(s.opts.HTTPAddr, dispatcher, s.HealthCheck, s.logger)
	if err := s.http.Start(); err != nil {
		return err
	}
	return nil
}

// Stop shuts the transports down first so no new work arrives, then
// stops the watcher and releases resources. Idempotent.
func (s *Server) Stop() error {
	s.mu.Lock()
	if s.state != StateRunning && s.state != StateStarting {
		s.mu.Unlock()
		return nil
	}
	s.state = StateStopping
	s.mu.Unlock()

	err := s.teardown()
	s.setState(StateStopped)
	s.logger.Info("daemon stopped")
	return err
}

func (s *Server) teardown() error {
	var first error
	keep := func(err error) {
		if err != nil && first == nil {
			first = err
		}
	}

	if s.socket != nil {
		keep(s.socket.Stop())
		s.socket = nil
	}
	if s.http != nil {
		keep(s.http.Stop())
		s.http = nil
	}
	if s.cache != nil {
		keep(s.cache.StopWatch())
		s.cache = nil
	}
	if s.ids != nil {
		keep(s.ids.Close())
		s.ids = nil
	}
	return first
}

// HealthCheck aggregates cache stats and transport flags without
// touching disk.
func (s *Server) HealthCheck() map[string]any {
	s.mu.Lock()
	state := s.state
	started := s.started
	cache := s.cache
	socket := s.socket
	httpSrv := s.http
	s.mu.Unlock()

	health := map[string]any{
		"state": state.String(),
		"vault": s.opts.VaultPath,
	}
	if state == StateRunning {
		health["uptime_seconds"] = int(time.Since(started).Seconds())
	}
	if cache != nil {
		health["cache"] = cache.Stats()
	}
	health["socket_running"] = socket != nil && socket.Running()
	health["http_running"] = httpSrv != nil && httpSrv.Running()
	return health
}

// State returns the current lifecycle state.
func (s *Server) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Server) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}
