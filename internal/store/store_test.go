package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qfs-dev/qfs/internal/model"
	"github.com/qfs-dev/qfs/internal/qerrors"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func hashOf(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

func TestInsertContent_IsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	hash := hashOf("hello world")
	require.NoError(t, s.InsertContent(ctx, hash, []byte("hello world"), "text/markdown"))
	require.NoError(t, s.InsertContent(ctx, hash, []byte("hello world"), "text/markdown"))

	_, payload, err := s.GetContent(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(payload))
}

func TestGetContent_MissingHashIsNotFound(t *testing.T) {
	s := newTestStore(t)
	_, _, err := s.GetContent(context.Background(), hashOf("never inserted"))
	require.Error(t, err)
	assert.True(t, qerrors.Is(err, qerrors.NotFound))
}

func TestUpsertDocument_CreatesActiveDocumentAndFTSRow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	hash := hashOf("# Title\n\nbody text")
	require.NoError(t, s.CreateCollection(ctx, &model.Collection{Name: "notes", RootPath: "/tmp/notes"}))
	require.NoError(t, s.InsertContent(ctx, hash, []byte("# Title\n\nbody text"), "text/markdown"))

	doc, err := s.UpsertDocument(ctx, "notes", "a.md", "Title", hash, "markdown", "Title body text")
	require.NoError(t, err)
	assert.True(t, doc.Active)
	assert.Equal(t, hash[:6], doc.Docid())

	hits, err := s.SearchBM25(ctx, BM25SearchOptions{Query: "body", Limit: 10})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, doc.ID, hits[0].Document.ID)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-9)
}

func TestUpsertDocument_ReactivatesAfterDeactivate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	hash := hashOf("content")
	require.NoError(t, s.InsertContent(ctx, hash, []byte("content"), "text/plain"))

	doc, err := s.UpsertDocument(ctx, "c", "p.txt", "", hash, "text", "content")
	require.NoError(t, err)

	require.NoError(t, s.DeactivateDocument(ctx, "c", "p.txt"))
	_, err = s.GetDocumentByPath(ctx, "c", "p.txt")
	require.Error(t, err)
	assert.True(t, qerrors.Is(err, qerrors.NotFound))

	doc2, err := s.UpsertDocument(ctx, "c", "p.txt", "", hash, "text", "content")
	require.NoError(t, err)
	assert.Equal(t, doc.ID, doc2.ID)
	assert.True(t, doc2.Active)
}

func TestDeactivateDocument_IsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.DeactivateDocument(ctx, "missing", "missing.txt"))
}

func TestSearchBM25_EmptyCorpusReturnsEmptySlice(t *testing.T) {
	s := newTestStore(t)
	hits, err := s.SearchBM25(context.Background(), BM25SearchOptions{Query: "anything"})
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearchBM25_FiltersByCollection(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	h1 := hashOf("alpha document about rockets")
	h2 := hashOf("beta document about rockets")
	require.NoError(t, s.InsertContent(ctx, h1, []byte("alpha"), "text/plain"))
	require.NoError(t, s.InsertContent(ctx, h2, []byte("beta"), "text/plain"))
	_, err := s.UpsertDocument(ctx, "one", "a.txt", "", h1, "text", "alpha document about rockets")
	require.NoError(t, err)
	_, err = s.UpsertDocument(ctx, "two", "b.txt", "", h2, "text", "beta document about rockets")
	require.NoError(t, err)

	hits, err := s.SearchBM25(ctx, BM25SearchOptions{Query: "rockets", Collection: "one"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "one", hits[0].Document.Collection)
}

func TestSearchBM25_ExcludesBinaryContentByDefault(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	hText := hashOf("rockets launch from a pad")
	hBin := hashOf("rockets\x00binary\x00payload")
	require.NoError(t, s.InsertContent(ctx, hText, []byte("rockets launch from a pad"), "text/plain"))
	require.NoError(t, s.InsertContent(ctx, hBin, []byte("rockets\x00binary\x00payload"), "application/octet-stream"))
	_, err := s.UpsertDocument(ctx, "c", "a.txt", "", hText, "txt", "rockets launch from a pad")
	require.NoError(t, err)
	_, err = s.UpsertDocument(ctx, "c", "b.bin", "", hBin, "bin", "rockets binary payload")
	require.NoError(t, err)

	hits, err := s.SearchBM25(ctx, BM25SearchOptions{Query: "rockets"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "a.txt", hits[0].Document.Path)

	hits, err = s.SearchBM25(ctx, BM25SearchOptions{Query: "rockets", IncludeBinary: true})
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestResolveDocid_NormalizesAndMatchesPrefix(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	hash := hashOf("docid target")
	require.NoError(t, s.InsertContent(ctx, hash, []byte("docid target"), "text/plain"))
	doc, err := s.UpsertDocument(ctx, "c", "x.txt", "", hash, "text", "docid target")
	require.NoError(t, err)

	got, err := s.ResolveDocid(ctx, "  '"+doc.Docid()+"' ")
	require.NoError(t, err)
	assert.Equal(t, doc.ID, got.ID)

	got2, err := s.ResolveDocid(ctx, "#"+doc.Docid())
	require.NoError(t, err)
	assert.Equal(t, doc.ID, got2.ID)
}

func TestResolveDocid_RejectsShortPrefix(t *testing.T) {
	s := newTestStore(t)
	_, err := s.ResolveDocid(context.Background(), "abcd")
	require.Error(t, err)
	assert.True(t, qerrors.Is(err, qerrors.InvalidQuery))
}

func TestResolveDocid_RejectsNonHex(t *testing.T) {
	s := newTestStore(t)
	_, err := s.ResolveDocid(context.Background(), "zzzzzz")
	require.Error(t, err)
	assert.True(t, qerrors.Is(err, qerrors.InvalidQuery))
}

func TestResolveDocid_UnknownPrefixIsNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.ResolveDocid(context.Background(), "abcdef")
	require.Error(t, err)
	assert.True(t, qerrors.Is(err, qerrors.NotFound))
}

func makeVector(seed float32, dims int) []float32 {
	v := make([]float32, dims)
	for i := range v {
		v[i] = seed + float32(i)*0.001
	}
	return v
}

func TestSearchVector_NoEmbeddingsReturnsNoEmbeddingsError(t *testing.T) {
	s := newTestStore(t)
	_, err := s.SearchVector(context.Background(), VectorSearchOptions{Query: makeVector(1, model.Dimensions), Limit: 5})
	require.Error(t, err)
	assert.True(t, qerrors.Is(err, qerrors.NoEmbeddings))
}

func TestSearchVector_FindsNearestByDocument(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	hashA := hashOf("doc a")
	hashB := hashOf("doc b")
	require.NoError(t, s.InsertContent(ctx, hashA, []byte("doc a"), "text/plain"))
	require.NoError(t, s.InsertContent(ctx, hashB, []byte("doc b"), "text/plain"))
	_, err := s.UpsertDocument(ctx, "c", "a.txt", "", hashA, "text", "doc a")
	require.NoError(t, err)
	_, err = s.UpsertDocument(ctx, "c", "b.txt", "", hashB, "text", "doc b")
	require.NoError(t, err)

	require.NoError(t, s.InsertEmbedding(ctx, model.Embedding{Hash: hashA, ChunkIndex: 0, Model: "static", Vector: makeVector(1, model.Dimensions)}))
	require.NoError(t, s.InsertEmbedding(ctx, model.Embedding{Hash: hashB, ChunkIndex: 0, Model: "static", Vector: makeVector(-1, model.Dimensions)}))

	hits, err := s.SearchVector(ctx, VectorSearchOptions{Query: makeVector(1, model.Dimensions), Limit: 5})
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "a.txt", hits[0].Document.Path)
}

func TestSearchVector_BruteForceFallbackMatchesNativeRanking(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	hashA := hashOf("doc a")
	hashB := hashOf("doc b")
	hashC := hashOf("doc c")
	require.NoError(t, s.InsertContent(ctx, hashA, []byte("doc a"), "text/plain"))
	require.NoError(t, s.InsertContent(ctx, hashB, []byte("doc b"), "text/plain"))
	require.NoError(t, s.InsertContent(ctx, hashC, []byte("doc c"), "text/plain"))
	_, err := s.UpsertDocument(ctx, "c", "a.txt", "", hashA, "text", "doc a")
	require.NoError(t, err)
	_, err = s.UpsertDocument(ctx, "c", "b.txt", "", hashB, "text", "doc b")
	require.NoError(t, err)
	_, err = s.UpsertDocument(ctx, "c", "c.txt", "", hashC, "text", "doc c")
	require.NoError(t, err)

	require.NoError(t, s.InsertEmbedding(ctx, model.Embedding{Hash: hashA, ChunkIndex: 0, Model: "static", Vector: makeVector(1, model.Dimensions)}))
	require.NoError(t, s.InsertEmbedding(ctx, model.Embedding{Hash: hashB, ChunkIndex: 0, Model: "static", Vector: makeVector(0.5, model.Dimensions)}))
	require.NoError(t, s.InsertEmbedding(ctx, model.Embedding{Hash: hashC, ChunkIndex: 0, Model: "static", Vector: makeVector(-1, model.Dimensions)}))

	query := VectorSearchOptions{Query: makeVector(1, model.Dimensions), Limit: 5}

	native, err := s.SearchVector(ctx, query)
	require.NoError(t, err)
	require.Len(t, native, 3)

	s.SetVectorIndexDisabled(true)
	t.Cleanup(func() { s.SetVectorIndexDisabled(false) })

	fallback, err := s.SearchVector(ctx, query)
	require.NoError(t, err)
	require.Len(t, fallback, 3)

	for i := range native {
		assert.Equal(t, native[i].Document.Path, fallback[i].Document.Path)
		assert.InDelta(t, native[i].Similarity, fallback[i].Similarity, 1e-4)
		assert.GreaterOrEqual(t, fallback[i].Similarity, float32(0))
		assert.LessOrEqual(t, fallback[i].Similarity, float32(1))
	}
}

func TestSearchVector_RejectsWrongDimensions(t *testing.T) {
	s := newTestStore(t)
	_, err := s.SearchVector(context.Background(), VectorSearchOptions{Query: []float32{1, 2, 3}})
	require.Error(t, err)
	assert.True(t, qerrors.Is(err, qerrors.InvalidQuery))
}

func TestGetStatus_ReportsCountsAndSchemaVersion(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateCollection(ctx, &model.Collection{Name: "notes", RootPath: "/tmp"}))
	hash := hashOf("status doc")
	require.NoError(t, s.InsertContent(ctx, hash, []byte("status doc"), "text/plain"))
	_, err := s.UpsertDocument(ctx, "notes", "s.txt", "", hash, "text", "status doc")
	require.NoError(t, err)
	require.NoError(t, s.InsertEmbedding(ctx, model.Embedding{Hash: hash, ChunkIndex: 0, Model: "static", Vector: makeVector(1, model.Dimensions)}))

	status, err := s.GetStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"notes"}, status.Collections)
	assert.Equal(t, 1, status.Documents)
	assert.Equal(t, 1, status.Embeddings)
	assert.Equal(t, CurrentSchemaVersion, status.SchemaVersion)
}

func TestRemoveCollection_DeactivatesItsDocuments(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateCollection(ctx, &model.Collection{Name: "notes", RootPath: "/tmp"}))
	hash := hashOf("removable")
	require.NoError(t, s.InsertContent(ctx, hash, []byte("removable"), "text/plain"))
	_, err := s.UpsertDocument(ctx, "notes", "r.txt", "", hash, "text", "removable")
	require.NoError(t, err)

	require.NoError(t, s.RemoveCollection(ctx, "notes"))

	_, err = s.GetCollection(ctx, "notes")
	require.Error(t, err)
	assert.True(t, qerrors.Is(err, qerrors.NotFound))

	_, err = s.GetDocumentByPath(ctx, "notes", "r.txt")
	require.Error(t, err)
	assert.True(t, qerrors.Is(err, qerrors.NotFound))
}

func TestNormalizeDocid(t *testing.T) {
	cases := map[string]string{
		"ABCDEF":    "abcdef",
		"'abcdef'":  "abcdef",
		`"abcdef"`:  "abcdef",
		"#abcdef":   "abcdef",
		"  abcdef ": "abcdef",
	}
	for input, want := range cases {
		assert.Equal(t, want, NormalizeDocid(input), "input %q", input)
	}
}
