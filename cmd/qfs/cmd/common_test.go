package cmd

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir switches the working directory to dir for the duration of the
// test, restoring the original directory on cleanup.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestOpenEnv_CreatesDatabaseUnderProjectRoot(t *testing.T) {
	tmpDir := t.TempDir()
	chdir(t, tmpDir)

	e, err := openEnv()
	require.NoError(t, err)
	defer e.close()

	assert.FileExists(t, filepath.Join(tmpDir, ".qfs", "qfs.db"))
}

func TestOpenEnv_SearcherAndMultiGetAreUsable(t *testing.T) {
	tmpDir := t.TempDir()
	chdir(t, tmpDir)

	e, err := openEnv()
	require.NoError(t, err)
	defer e.close()

	assert.NotNil(t, e.searcher(t.Context()))
	assert.NotNil(t, e.multiget())
}

func TestDirOf(t *testing.T) {
	assert.Equal(t, "/a/b", dirOf("/a/b/c.db"))
	assert.Equal(t, ".", dirOf("c.db"))
}

// setupIndexedCollection creates a project under a temp dir, chdirs into it,
// registers a collection over a small fixture file, and indexes it
// (embedding with the deterministic static embedder, never reaching out to
// Ollama). Returns the collection name and the fixture file's relative path.
func setupIndexedCollection(t *testing.T, body string) (collection, relPath string) {
	t.Helper()
	t.Setenv("QFS_EMBEDDINGS_PROVIDER", "static")

	tmpDir := t.TempDir()
	chdir(t, tmpDir)

	relPath = "notes.md"
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, relPath), []byte(body), 0644))

	addCmd := newCollectionAddCmd()
	addCmd.SetArgs([]string{"docs", tmpDir})
	require.NoError(t, addCmd.Execute())

	indexCmd := newIndexCmd()
	indexCmd.SetArgs([]string{"docs", "--embed"})
	indexCmd.SetOut(io.Discard)
	require.NoError(t, indexCmd.Execute())

	return "docs", relPath
}
