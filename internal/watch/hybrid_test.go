package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHybridWatcher_ShouldIgnore(t *testing.T) {
	h := &HybridWatcher{opts: Options{IgnoreDirs: []string{"node_modules", ".git"}}}

	assert.True(t, h.shouldIgnore("node_modules/left-pad/index.js", false))
	assert.True(t, h.shouldIgnore(".git/HEAD", false))
	assert.False(t, h.shouldIgnore("src/main.go", false))
	assert.True(t, h.shouldIgnore(".", true))
}

func TestHybridWatcher_ShouldIgnoreDir(t *testing.T) {
	h := &HybridWatcher{opts: Options{IgnoreDirs: []string{"vendor"}}}

	assert.True(t, h.shouldIgnoreDir("vendor"))
	assert.True(t, h.shouldIgnoreDir("vendor/pkg"))
	assert.False(t, h.shouldIgnoreDir("internal"))
}

func TestHybridWatcher_DetectsFileCreation(t *testing.T) {
	root := t.TempDir()

	h, err := NewHybridWatcher(Options{
		DebounceWindow: 20 * time.Millisecond,
		IgnoreDirs:     []string{".git"},
	})
	require.NoError(t, err)
	defer h.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = h.Start(ctx, root) }()
	time.Sleep(50 * time.Millisecond) // allow watch registration to settle

	require.NoError(t, os.WriteFile(filepath.Join(root, "new.txt"), []byte("hello"), 0o644))

	select {
	case batch := <-h.Events():
		require.NotEmpty(t, batch)
		assert.Equal(t, "new.txt", batch[0].Path)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for create event")
	}
}

func TestHybridWatcher_IgnoresConfiguredDirectory(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "node_modules"), 0o755))

	h, err := NewHybridWatcher(Options{
		DebounceWindow: 20 * time.Millisecond,
		IgnoreDirs:     []string{"node_modules", ".git"},
	})
	require.NoError(t, err)
	defer h.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = h.Start(ctx, root) }()
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(root, "node_modules", "ignored.txt"), []byte("x"), 0o644))

	select {
	case batch := <-h.Events():
		t.Fatalf("expected no events for ignored directory, got %v", batch)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestHybridWatcher_WatcherTypeReportsBackend(t *testing.T) {
	h, err := NewHybridWatcher(Options{})
	require.NoError(t, err)
	defer h.Stop()

	assert.Contains(t, []string{"fsnotify", "polling"}, h.WatcherType())
}
