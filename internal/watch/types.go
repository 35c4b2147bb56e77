package watch

import (
	"context"
	"time"
)

// Operation represents a file system operation type.
type Operation int

const (
	// OpCreate indicates a new file or directory was created.
	OpCreate Operation = iota
	// OpModify indicates an existing file was modified.
	OpModify
	// OpDelete indicates a file or directory was deleted.
	OpDelete
	// OpRename indicates a file or directory was renamed.
	OpRename
)

// String returns a human-readable representation of the operation.
func (op Operation) String() string {
	switch op {
	case OpCreate:
		return "CREATE"
	case OpModify:
		return "MODIFY"
	case OpDelete:
		return "DELETE"
	case OpRename:
		return "RENAME"
	default:
		return "UNKNOWN"
	}
}

// FileEvent represents a file system event.
type FileEvent struct {
	// Path is the path to the file or directory, relative to the watch root.
	Path string

	// Operation is the type of file system operation.
	Operation Operation

	// IsDir indicates if the event is for a directory.
	IsDir bool

	// Timestamp is when the event was detected.
	Timestamp time.Time
}

// Watcher defines the interface for file system watching. Events are
// emitted as debounced batches: a rapid burst of edits to the same path
// coalesces into one event (spec's watch mode runs a collection-wide
// reindex per batch, not per raw event).
type Watcher interface {
	// Start begins watching the given directory recursively. Runs until
	// Stop is called or ctx is cancelled.
	Start(ctx context.Context, path string) error

	// Stop stops the watcher and releases resources. Safe to call multiple times.
	Stop() error

	// Events returns a channel of debounced event batches. Closed when the
	// watcher stops.
	Events() <-chan []FileEvent

	// Errors returns a channel of non-fatal watcher errors. Closed when the
	// watcher stops.
	Errors() <-chan error
}

// Options configures watcher behavior.
type Options struct {
	// DebounceWindow is the time to wait before emitting a coalesced batch.
	DebounceWindow time.Duration

	// PollInterval is the interval for polling mode (fallback).
	PollInterval time.Duration

	// EventBufferSize is the size of the event channel buffer.
	EventBufferSize int

	// IgnoreDirs are directory names skipped during fsnotify watch
	// registration; events under them are dropped for either backend. A
	// non-nil list replaces the defaults, so ".git" is skipped only when it
	// is listed. Unlike the teacher's full .gitignore matcher, this is a
	// coarse directory-name filter: the Indexer's own Scanner applies the
	// collection's real glob/gitignore filtering at reindex time, so the
	// watcher only needs to avoid watch-registration blowup on huge
	// directories like "node_modules" or "vendor".
	IgnoreDirs []string
}

// DefaultOptions returns the default watcher options.
func DefaultOptions() Options {
	return Options{
		DebounceWindow:  200 * time.Millisecond,
		PollInterval:    5 * time.Second,
		EventBufferSize: 1000,
		IgnoreDirs:      []string{"node_modules", "vendor", ".git"},
	}
}

// WithDefaults returns o with defaults applied for zero-valued fields.
func (o Options) WithDefaults() Options {
	defaults := DefaultOptions()
	if o.DebounceWindow == 0 {
		o.DebounceWindow = defaults.DebounceWindow
	}
	if o.PollInterval == 0 {
		o.PollInterval = defaults.PollInterval
	}
	if o.EventBufferSize == 0 {
		o.EventBufferSize = defaults.EventBufferSize
	}
	if o.IgnoreDirs == nil {
		o.IgnoreDirs = defaults.IgnoreDirs
	}
	return o
}
