package watch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drainOneBatch(t *testing.T, d *Debouncer) []FileEvent {
	t.Helper()
	select {
	case batch := <-d.Output():
		return batch
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for debounced batch")
		return nil
	}
}

func TestDebouncer_CreateThenModify_CoalescesToCreate(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)
	defer d.Stop()

	d.Add(FileEvent{Path: "a.txt", Operation: OpCreate})
	d.Add(FileEvent{Path: "a.txt", Operation: OpModify})

	batch := drainOneBatch(t, d)
	require.Len(t, batch, 1)
	assert.Equal(t, OpCreate, batch[0].Operation)
}

func TestDebouncer_CreateThenDelete_Cancels(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)
	defer d.Stop()

	d.Add(FileEvent{Path: "a.txt", Operation: OpCreate})
	d.Add(FileEvent{Path: "a.txt", Operation: OpDelete})

	select {
	case batch := <-d.Output():
		t.Fatalf("expected no batch, got %v", batch)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDebouncer_ModifyThenDelete_CoalescesToDelete(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)
	defer d.Stop()

	d.Add(FileEvent{Path: "a.txt", Operation: OpModify})
	d.Add(FileEvent{Path: "a.txt", Operation: OpDelete})

	batch := drainOneBatch(t, d)
	require.Len(t, batch, 1)
	assert.Equal(t, OpDelete, batch[0].Operation)
}

func TestDebouncer_DeleteThenCreate_CoalescesToModify(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)
	defer d.Stop()

	d.Add(FileEvent{Path: "a.txt", Operation: OpDelete})
	d.Add(FileEvent{Path: "a.txt", Operation: OpCreate})

	batch := drainOneBatch(t, d)
	require.Len(t, batch, 1)
	assert.Equal(t, OpModify, batch[0].Operation)
}

func TestDebouncer_DistinctPaths_EmitSeparateEventsInOneBatch(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)
	defer d.Stop()

	d.Add(FileEvent{Path: "a.txt", Operation: OpCreate})
	d.Add(FileEvent{Path: "b.txt", Operation: OpModify})

	batch := drainOneBatch(t, d)
	assert.Len(t, batch, 2)
}

func TestDebouncer_Stop_ClosesOutputAndIgnoresFurtherAdds(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)
	d.Stop()
	d.Stop() // safe to call twice

	d.Add(FileEvent{Path: "a.txt", Operation: OpCreate})

	_, ok := <-d.Output()
	assert.False(t, ok)
}
