package ui

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

// PlainRenderer prints status snapshots as plain text lines, for CI
// environments, pipes, or --no-tui. It polls on the same cadence as the
// TUI renderer but without a bubbletea program.
type PlainRenderer struct {
	mu       sync.Mutex
	out      io.Writer
	source   StatusSource
	busy     BusyFunc
	interval time.Duration
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewPlainRenderer creates a plain text renderer.
func NewPlainRenderer(source StatusSource, busy BusyFunc, cfg Config) *PlainRenderer {
	interval := cfg.RefreshInterval
	if interval <= 0 {
		interval = time.Second
	}
	return &PlainRenderer{
		out:      cfg.Output,
		source:   source,
		busy:     busy,
		interval: interval,
	}
}

// Start implements Renderer.
func (r *PlainRenderer) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.cancel != nil {
		r.mu.Unlock()
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})
	r.mu.Unlock()

	go r.loop(ctx)
	return nil
}

func (r *PlainRenderer) loop(ctx context.Context) {
	defer close(r.done)

	r.printOnce(ctx)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.printOnce(ctx)
		}
	}
}

func (r *PlainRenderer) printOnce(ctx context.Context) {
	busy := false
	if r.busy != nil {
		busy = r.busy()
	}

	status, err := r.source.GetStatus(ctx)
	if err != nil {
		_, _ = fmt.Fprintf(r.out, "status error: %v\n", err)
		return
	}

	state := "idle"
	if busy {
		state = "indexing"
	}
	_, _ = fmt.Fprintf(r.out, "[%s] %s  collections=%d documents=%d embeddings=%d schema=%d\n",
		time.Now().Format("15:04:05"), state,
		len(status.Collections), status.Documents, status.Embeddings, status.SchemaVersion)
}

// Stop implements Renderer.
func (r *PlainRenderer) Stop() error {
	r.mu.Lock()
	cancel := r.cancel
	done := r.done
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
	return nil
}
