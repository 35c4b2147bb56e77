package ui

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qfs-dev/qfs/internal/store"
)

func TestStatusRenderer_Render_Basic(t *testing.T) {
	buf := &bytes.Buffer{}
	r := NewStatusRenderer(buf, false)

	status := &store.Status{
		Collections:   []string{"docs", "code"},
		Documents:     250,
		Embeddings:    200,
		SchemaVersion: 3,
	}

	require.NoError(t, r.Render(status))

	output := buf.String()
	assert.Contains(t, output, "docs")
	assert.Contains(t, output, "code")
	assert.Contains(t, output, "250")
	assert.Contains(t, output, "200")
	assert.Contains(t, output, "3")
}

func TestStatusRenderer_Render_NoCollections(t *testing.T) {
	buf := &bytes.Buffer{}
	r := NewStatusRenderer(buf, true)

	require.NoError(t, r.Render(&store.Status{}))

	assert.Contains(t, buf.String(), "none registered")
}

func TestStatusRenderer_RenderJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	r := NewStatusRenderer(buf, false)

	status := &store.Status{
		Collections:   []string{"docs"},
		Documents:     25,
		Embeddings:    10,
		SchemaVersion: 1,
	}

	require.NoError(t, r.RenderJSON(status))

	var parsed store.Status
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))
	assert.Equal(t, status.Documents, parsed.Documents)
	assert.Equal(t, status.Collections, parsed.Collections)
}

func TestStatusRenderer_NoColor_NoANSICodes(t *testing.T) {
	buf := &bytes.Buffer{}
	r := NewStatusRenderer(buf, true)

	require.NoError(t, r.Render(&store.Status{Collections: []string{"docs"}}))

	output := buf.String()
	assert.NotContains(t, output, "\x1b[")
}
