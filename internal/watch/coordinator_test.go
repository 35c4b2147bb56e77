package watch

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qfs-dev/qfs/internal/indexer"
	"github.com/qfs-dev/qfs/internal/model"
	"github.com/qfs-dev/qfs/internal/scanner"
)

// fakeWatcher is a hand-wired Watcher for coordinator tests: Start blocks
// until ctx is cancelled, and the test pushes batches directly onto
// eventsCh.
type fakeWatcher struct {
	eventsCh chan []FileEvent
	errorsCh chan error
	started  chan struct{}
	stopped  atomic.Bool
}

func newFakeWatcher() *fakeWatcher {
	return &fakeWatcher{
		eventsCh: make(chan []FileEvent, 10),
		errorsCh: make(chan error, 10),
		started:  make(chan struct{}),
	}
}

func (f *fakeWatcher) Start(ctx context.Context, path string) error {
	close(f.started)
	<-ctx.Done()
	return ctx.Err()
}

func (f *fakeWatcher) Stop() error {
	f.stopped.Store(true)
	return nil
}

func (f *fakeWatcher) Events() <-chan []FileEvent { return f.eventsCh }
func (f *fakeWatcher) Errors() <-chan error       { return f.errorsCh }

// fakeRunner records IndexCollection invocations instead of touching a real store.
type fakeRunner struct {
	calls  atomic.Int32
	result *indexer.Result
	err    error
}

func (f *fakeRunner) IndexCollection(ctx context.Context, collection *model.Collection, opts scanner.ScanOptions) (*indexer.Result, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func TestCoordinator_ReindexesOnEventBatch(t *testing.T) {
	w := newFakeWatcher()
	run := &fakeRunner{result: &indexer.Result{Scanned: 3, Inserted: 1}}
	coll := &model.Collection{Name: "docs", RootPath: "/docs"}

	c := NewCoordinator(w, coll, scanner.ScanOptions{RootDir: "/docs"}, run, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	select {
	case <-w.started:
	case <-time.After(time.Second):
		t.Fatal("coordinator never started the watcher")
	}

	w.eventsCh <- []FileEvent{{Path: "a.md", Operation: OpModify}}

	require.Eventually(t, func() bool { return run.calls.Load() == 1 }, time.Second, 10*time.Millisecond)

	cancel()
	<-done
}

func TestCoordinator_StopStopsWatcher(t *testing.T) {
	w := newFakeWatcher()
	run := &fakeRunner{result: &indexer.Result{}}
	coll := &model.Collection{Name: "docs", RootPath: "/docs"}

	c := NewCoordinator(w, coll, scanner.ScanOptions{}, run, nil)
	require.NoError(t, c.Stop())
	assert.True(t, w.stopped.Load())
}

func TestCoordinator_ReindexFailure_DoesNotCrashLoop(t *testing.T) {
	w := newFakeWatcher()
	run := &fakeRunner{err: assert.AnError}
	coll := &model.Collection{Name: "docs", RootPath: "/docs"}

	c := NewCoordinator(w, coll, scanner.ScanOptions{}, run, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	<-w.started
	w.eventsCh <- []FileEvent{{Path: "a.md", Operation: OpModify}}

	require.Eventually(t, func() bool { return run.calls.Load() == 1 }, time.Second, 10*time.Millisecond)

	cancel()
	<-done
}
