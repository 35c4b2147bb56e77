package ui

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qfs-dev/qfs/internal/store"
)

type fakeStatusSource struct {
	status *store.Status
	err    error
	calls  atomic.Int32
}

func (f *fakeStatusSource) GetStatus(ctx context.Context) (*store.Status, error) {
	f.calls.Add(1)
	return f.status, f.err
}

func TestPlainRenderer_PrintsStatusLine(t *testing.T) {
	buf := &bytes.Buffer{}
	source := &fakeStatusSource{status: &store.Status{
		Collections:   []string{"docs"},
		Documents:     10,
		Embeddings:    5,
		SchemaVersion: 2,
	}}
	r := NewPlainRenderer(source, nil, NewConfig(buf, WithRefreshInterval(10*time.Millisecond)))

	require.NoError(t, r.Start(context.Background()))
	require.Eventually(t, func() bool { return source.calls.Load() >= 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, r.Stop())

	output := buf.String()
	assert.Contains(t, output, "idle")
	assert.Contains(t, output, "collections=1")
	assert.Contains(t, output, "documents=10")
	assert.Contains(t, output, "embeddings=5")
	assert.Contains(t, output, "schema=2")
}

func TestPlainRenderer_ReportsBusyState(t *testing.T) {
	buf := &bytes.Buffer{}
	source := &fakeStatusSource{status: &store.Status{}}
	busy := func() bool { return true }
	r := NewPlainRenderer(source, busy, NewConfig(buf, WithRefreshInterval(10*time.Millisecond)))

	require.NoError(t, r.Start(context.Background()))
	require.Eventually(t, func() bool { return source.calls.Load() >= 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, r.Stop())

	assert.Contains(t, buf.String(), "indexing")
}

func TestPlainRenderer_ReportsSourceError(t *testing.T) {
	buf := &bytes.Buffer{}
	source := &fakeStatusSource{err: errors.New("database closed")}
	r := NewPlainRenderer(source, nil, NewConfig(buf, WithRefreshInterval(10*time.Millisecond)))

	require.NoError(t, r.Start(context.Background()))
	require.Eventually(t, func() bool { return source.calls.Load() >= 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, r.Stop())

	assert.Contains(t, buf.String(), "status error")
	assert.Contains(t, buf.String(), "database closed")
}

func TestPlainRenderer_StartStop_Idempotent(t *testing.T) {
	buf := &bytes.Buffer{}
	source := &fakeStatusSource{status: &store.Status{}}
	r := NewPlainRenderer(source, nil, NewConfig(buf))

	require.NoError(t, r.Start(context.Background()))
	require.NoError(t, r.Start(context.Background())) // second Start is a no-op
	require.NoError(t, r.Stop())
	require.NoError(t, r.Stop()) // second Stop is safe
}
