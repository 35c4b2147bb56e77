// Package ui provides a read-only terminal dashboard over a store's status
// (collections, document and embedding counts, schema version), plus a
// plain-text renderer for non-interactive output.
package ui

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/qfs-dev/qfs/internal/store"
)

// StatusSource is the narrow dependency the dashboard polls for its
// snapshot. *store.Store satisfies this directly.
type StatusSource interface {
	GetStatus(ctx context.Context) (*store.Status, error)
}

// BusyFunc reports whether a watch or index run is currently in flight, so
// the dashboard can animate its spinner. A nil BusyFunc means "never busy".
type BusyFunc func() bool

// Snapshot is one poll of the status source.
type Snapshot struct {
	Status    *store.Status
	Busy      bool
	Err       error
	UpdatedAt time.Time
}

// Config configures the dashboard renderer.
type Config struct {
	Output          io.Writer
	ForcePlain      bool
	NoColor         bool
	RefreshInterval time.Duration
}

// ConfigOption modifies a Config.
type ConfigOption func(*Config)

// WithForcePlain forces plain text output.
func WithForcePlain(force bool) ConfigOption {
	return func(c *Config) { c.ForcePlain = force }
}

// WithNoColor disables color output.
func WithNoColor(noColor bool) ConfigOption {
	return func(c *Config) { c.NoColor = noColor }
}

// WithRefreshInterval sets how often the dashboard repolls the status source.
func WithRefreshInterval(d time.Duration) ConfigOption {
	return func(c *Config) { c.RefreshInterval = d }
}

// NewConfig creates a new Config with the given output and options.
func NewConfig(output io.Writer, opts ...ConfigOption) Config {
	cfg := Config{
		Output:          output,
		RefreshInterval: time.Second,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Renderer displays a live stream of status snapshots until Stop is called.
type Renderer interface {
	Start(ctx context.Context) error
	Stop() error
}

// Run polls source (and, if busy is non-nil, the busy indicator) on
// cfg.RefreshInterval and renders the result until ctx is cancelled. It
// picks a bubbletea dashboard for interactive terminals and a plain text
// renderer otherwise, mirroring NewRenderer's dispatch.
func Run(ctx context.Context, source StatusSource, busy BusyFunc, cfg Config) error {
	r := NewRenderer(source, busy, cfg)
	if err := r.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return r.Stop()
}

// NewRenderer creates an appropriate renderer based on config and environment.
// It returns a TUI renderer for interactive terminals, and a plain text
// renderer for CI environments, pipes, or when ForcePlain is set.
func NewRenderer(source StatusSource, busy BusyFunc, cfg Config) Renderer {
	if cfg.ForcePlain {
		return NewPlainRenderer(source, busy, cfg)
	}
	if !IsTTY(cfg.Output) {
		return NewPlainRenderer(source, busy, cfg)
	}
	if DetectCI() {
		return NewPlainRenderer(source, busy, cfg)
	}

	tui, err := NewTUIRenderer(source, busy, cfg)
	if err != nil {
		return NewPlainRenderer(source, busy, cfg)
	}
	return tui
}

// IsTTY checks if output is a terminal.
func IsTTY(w io.Writer) bool {
	if w == nil {
		return false
	}
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

// DetectNoColor checks if NO_COLOR environment variable is set.
func DetectNoColor() bool {
	_, exists := os.LookupEnv("NO_COLOR")
	return exists
}

// DetectCI checks if running in a CI environment.
func DetectCI() bool {
	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "TRAVIS"}
	for _, v := range ciVars {
		if _, exists := os.LookupEnv(v); exists {
			return true
		}
	}
	return false
}
