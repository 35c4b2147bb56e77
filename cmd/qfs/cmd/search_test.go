package cmd

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchCmd_FindsIndexedContent(t *testing.T) {
	setupIndexedCollection(t, "the quick brown fox jumps over the lazy dog\n")

	searchCmd := newSearchCmd()
	buf := &bytes.Buffer{}
	searchCmd.SetOut(buf)
	searchCmd.SetArgs([]string{"quick brown fox"})
	require.NoError(t, searchCmd.Execute())

	assert.Contains(t, buf.String(), "docs/notes.md")
}

func TestSearchCmd_NoMatchesPrintsNoResults(t *testing.T) {
	setupIndexedCollection(t, "completely unrelated content\n")

	searchCmd := newSearchCmd()
	buf := &bytes.Buffer{}
	searchCmd.SetOut(buf)
	searchCmd.SetArgs([]string{"xyzzy_nonexistent_term"})
	require.NoError(t, searchCmd.Execute())

	assert.Contains(t, buf.String(), "no results")
}

func TestSearchCmd_JSONOutput(t *testing.T) {
	setupIndexedCollection(t, "hybrid BM25 and vector search over local files\n")

	searchCmd := newSearchCmd()
	buf := &bytes.Buffer{}
	searchCmd.SetOut(buf)
	searchCmd.SetArgs([]string{"--json", "hybrid BM25"})
	require.NoError(t, searchCmd.Execute())

	var rows []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "docs", rows[0]["collection"])
}

func TestVSearchCmd_FindsIndexedContent(t *testing.T) {
	setupIndexedCollection(t, "semantic embeddings power this search\n")

	vsearchCmd := newVSearchCmd()
	buf := &bytes.Buffer{}
	vsearchCmd.SetOut(buf)
	vsearchCmd.SetArgs([]string{"semantic embeddings"})
	require.NoError(t, vsearchCmd.Execute())

	assert.Contains(t, buf.String(), "docs/notes.md")
}

func TestQueryCmd_FindsIndexedContent(t *testing.T) {
	setupIndexedCollection(t, "hybrid reciprocal rank fusion combines two rankings\n")

	queryCmd := newQueryCmd()
	buf := &bytes.Buffer{}
	queryCmd.SetOut(buf)
	queryCmd.SetArgs([]string{"reciprocal rank fusion"})
	require.NoError(t, queryCmd.Execute())

	assert.Contains(t, buf.String(), "docs/notes.md")
}
