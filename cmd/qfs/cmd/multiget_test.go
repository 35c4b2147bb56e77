package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qfs-dev/qfs/internal/multiget"
)

func TestMultiGetCmd_ReturnsSingleMatchByPath(t *testing.T) {
	setupIndexedCollection(t, "some content\n")

	multiGetCmd := newMultiGetCmd()
	buf := &bytes.Buffer{}
	multiGetCmd.SetOut(buf)
	multiGetCmd.SetArgs([]string{"notes.md"})
	require.NoError(t, multiGetCmd.Execute())

	assert.Contains(t, buf.String(), "docs/notes.md")
	assert.Contains(t, buf.String(), "some content")
}

func TestMultiGetCmd_GlobMatchesAcrossFiles(t *testing.T) {
	tmpDir := t.TempDir()
	chdir(t, tmpDir)
	t.Setenv("QFS_EMBEDDINGS_PROVIDER", "static")

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "a.md"), []byte("alpha\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "b.md"), []byte("beta\n"), 0644))

	addCmd := newCollectionAddCmd()
	addCmd.SetArgs([]string{"docs", tmpDir})
	require.NoError(t, addCmd.Execute())

	indexCmd := newIndexCmd()
	indexCmd.SetArgs([]string{"docs"})
	indexCmd.SetOut(&bytes.Buffer{})
	require.NoError(t, indexCmd.Execute())

	multiGetCmd := newMultiGetCmd()
	buf := &bytes.Buffer{}
	multiGetCmd.SetOut(buf)
	multiGetCmd.SetArgs([]string{"--json", "*.md"})
	require.NoError(t, multiGetCmd.Execute())

	var results []multiget.MultiGetResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &results))
	assert.Len(t, results, 2)
}

func TestMultiGetCmd_OversizedContentIsSkipped(t *testing.T) {
	setupIndexedCollection(t, "0123456789")

	multiGetCmd := newMultiGetCmd()
	buf := &bytes.Buffer{}
	multiGetCmd.SetOut(buf)
	multiGetCmd.SetArgs([]string{"--max-bytes", "5", "notes.md"})
	require.NoError(t, multiGetCmd.Execute())

	assert.Contains(t, buf.String(), "skipped")
}
