package indexer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qfs-dev/qfs/internal/model"
	"github.com/qfs-dev/qfs/internal/qerrors"
	"github.com/qfs-dev/qfs/internal/scanner"
	"github.com/qfs-dev/qfs/internal/store"
)

func newTestIndexer(t *testing.T) (*Indexer, *store.Store, string) {
	t.Helper()
	st, err := store.Open("", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	sc, err := scanner.New()
	require.NoError(t, err)

	root := t.TempDir()
	return New(st, sc, nil), st, root
}

func writeIndexerFile(t *testing.T, root, relPath, content string) {
	t.Helper()
	full := filepath.Join(root, relPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func testCollection(root string) *model.Collection {
	return &model.Collection{Name: "docs", RootPath: root}
}

func TestIndexCollection_InsertsNewFiles(t *testing.T) {
	ix, st, root := newTestIndexer(t)
	writeIndexerFile(t, root, "a.md", "# Alpha\n\nbody text")
	writeIndexerFile(t, root, "b.md", "# Beta\n\nother body")

	res, err := ix.IndexCollection(context.Background(), testCollection(root), scanner.ScanOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Scanned)
	assert.Equal(t, 2, res.Inserted)
	assert.Zero(t, res.Updated)
	assert.Zero(t, res.Skipped)

	doc, err := st.GetDocumentByPath(context.Background(), "docs", "a.md")
	require.NoError(t, err)
	assert.Equal(t, "Alpha", doc.Title)
	assert.True(t, doc.Active)
}

func TestIndexCollection_SkipsUnchangedFile(t *testing.T) {
	ix, _, root := newTestIndexer(t)
	writeIndexerFile(t, root, "a.md", "# Alpha\n\nbody text")

	_, err := ix.IndexCollection(context.Background(), testCollection(root), scanner.ScanOptions{})
	require.NoError(t, err)

	res, err := ix.IndexCollection(context.Background(), testCollection(root), scanner.ScanOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Scanned)
	assert.Zero(t, res.Inserted)
	assert.Zero(t, res.Updated)
	assert.Equal(t, 1, res.Skipped)
}

func TestIndexCollection_UpdatesChangedFile(t *testing.T) {
	ix, st, root := newTestIndexer(t)
	writeIndexerFile(t, root, "a.md", "# Alpha\n\noriginal body")

	_, err := ix.IndexCollection(context.Background(), testCollection(root), scanner.ScanOptions{})
	require.NoError(t, err)

	writeIndexerFile(t, root, "a.md", "# Alpha Revised\n\nchanged body")

	res, err := ix.IndexCollection(context.Background(), testCollection(root), scanner.ScanOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Updated)

	doc, err := st.GetDocumentByPath(context.Background(), "docs", "a.md")
	require.NoError(t, err)
	assert.Equal(t, "Alpha Revised", doc.Title)
}

func TestIndexCollection_DeactivatesMissingFiles(t *testing.T) {
	ix, st, root := newTestIndexer(t)
	writeIndexerFile(t, root, "a.md", "# Alpha\n\nbody")
	writeIndexerFile(t, root, "b.md", "# Beta\n\nbody")

	_, err := ix.IndexCollection(context.Background(), testCollection(root), scanner.ScanOptions{})
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(root, "b.md")))

	res, err := ix.IndexCollection(context.Background(), testCollection(root), scanner.ScanOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Deactivated)

	doc, err := st.GetDocumentByPath(context.Background(), "docs", "b.md")
	require.NoError(t, err)
	assert.False(t, doc.Active)
}

func TestIndexCollection_ReactivatesReappearedFile(t *testing.T) {
	ix, st, root := newTestIndexer(t)
	writeIndexerFile(t, root, "a.md", "# Alpha\n\nbody")
	_, err := ix.IndexCollection(context.Background(), testCollection(root), scanner.ScanOptions{})
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(root, "a.md")))
	_, err = ix.IndexCollection(context.Background(), testCollection(root), scanner.ScanOptions{})
	require.NoError(t, err)

	writeIndexerFile(t, root, "a.md", "# Alpha\n\nbody")
	res, err := ix.IndexCollection(context.Background(), testCollection(root), scanner.ScanOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Inserted)

	doc, err := st.GetDocumentByPath(context.Background(), "docs", "a.md")
	require.NoError(t, err)
	assert.True(t, doc.Active)
}

func TestIndexCollection_MissingRootErrors(t *testing.T) {
	ix, _, root := newTestIndexer(t)
	missing := filepath.Join(root, "does-not-exist")
	_, err := ix.IndexCollection(context.Background(), testCollection(missing), scanner.ScanOptions{})
	assert.Error(t, err)
}

func TestIndexCollection_PerFileFailuresDoNotAbortCollection(t *testing.T) {
	ix, _, root := newTestIndexer(t)
	writeIndexerFile(t, root, "good.md", "# Good\n\nbody")
	// A dangling symlink, followed, fails to read and is reported per file.
	require.NoError(t, os.Symlink(filepath.Join(root, "missing-target.md"), filepath.Join(root, "broken.md")))

	res, err := ix.IndexCollection(context.Background(), testCollection(root), scanner.ScanOptions{FollowSymlinks: true})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Inserted)
	require.Len(t, res.FailedFiles, 1)
	assert.Equal(t, "broken.md", res.FailedFiles[0].Path)
}

func TestCommitFile_PropagatesGoDocTitle(t *testing.T) {
	ix, st, root := newTestIndexer(t)
	writeIndexerFile(t, root, "main.go", "// Package main is the demo entrypoint.\npackage main\n\nfunc main() {}\n")

	_, err := ix.IndexCollection(context.Background(), testCollection(root), scanner.ScanOptions{})
	require.NoError(t, err)

	doc, err := st.GetDocumentByPath(context.Background(), "docs", "main.go")
	require.NoError(t, err)
	assert.Contains(t, doc.Title, "demo entrypoint")
}

func TestDeactivateMissing_NoActiveDocsIsNoop(t *testing.T) {
	ix, _, root := newTestIndexer(t)
	n, err := ix.deactivateMissing(context.Background(), "docs", map[string]bool{})
	require.NoError(t, err)
	assert.Zero(t, n)
	_ = root
}

func TestCommitFile_DatabaseErrorPropagates(t *testing.T) {
	ix, st, _ := newTestIndexer(t)
	require.NoError(t, st.Close())

	_, err := ix.commitFile(context.Background(), "docs", scanner.ScanResult{Path: "x.md", Bytes: []byte("# X\n\nbody")})
	require.Error(t, err)
	assert.True(t, qerrors.Is(err, qerrors.Database))
}
