package ports

// ChangeNotifier watches the vault's entity folders and delivers the
// paths of changed files. The daemon's cache depends only on this
// interface, never on the OS watch mechanism behind it.
type ChangeNotifier interface {
	// Start begins watching. Changed paths are delivered on the returned
	// channel until Stop is called, after which the channel is closed.
	Start() (<-chan string, error)
	Stop() error
	Running() bool
}
