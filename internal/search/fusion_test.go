package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qfs-dev/qfs/internal/model"
	"github.com/qfs-dev/qfs/internal/store"
)

func doc(collection, path string) *model.Document {
	return &model.Document{Collection: collection, Path: path, Hash: "abc123"}
}

func TestFuseRRF_SumsContributionsForDocInBothLists(t *testing.T) {
	a := doc("docs", "a.md")
	bm25 := []store.BM25Hit{{Document: a, Score: 0.9, Snippet: "snip"}}
	vec := []store.VectorHit{{Document: a, Similarity: 0.8}}

	results := fuseRRF(bm25, vec, 60)
	require.Len(t, results, 1)
	expected := 1.0/61.0 + 1.0/61.0
	assert.InDelta(t, expected, results[0].score, 1e-9)
}

func TestFuseRRF_NoNormalization(t *testing.T) {
	a := doc("docs", "a.md")
	bm25 := []store.BM25Hit{{Document: a, Score: 1.0}}

	results := fuseRRF(bm25, nil, 60)
	require.Len(t, results, 1)
	// rank 1 contribution is 1/(60+1), well below 1.0 — the score is
	// reported as the raw sum, never rescaled to a [0,1] range.
	assert.InDelta(t, 1.0/61.0, results[0].score, 1e-9)
}

func TestFuseRRF_DocOnlyInOneListGetsNoMissingPenalty(t *testing.T) {
	a := doc("docs", "a.md")
	b := doc("docs", "b.md")
	bm25 := []store.BM25Hit{{Document: a, Score: 1.0}, {Document: b, Score: 0.5}}
	vec := []store.VectorHit{{Document: a, Similarity: 1.0}}

	results := fuseRRF(bm25, vec, 60)
	require.Len(t, results, 2)

	var bScore float64
	for _, r := range results {
		if r.doc.Path == "b.md" {
			bScore = r.score
		}
	}
	// b only appears in BM25 at rank 2: its score is exactly that single
	// contribution, with no invented contribution from the vector side.
	assert.InDelta(t, 1.0/62.0, bScore, 1e-9)
}

func TestFuseRRF_SortsByScoreDescending(t *testing.T) {
	a := doc("docs", "a.md")
	b := doc("docs", "b.md")
	bm25 := []store.BM25Hit{{Document: a, Score: 1.0}, {Document: b, Score: 0.9}}
	vec := []store.VectorHit{{Document: a, Similarity: 1.0}}

	results := fuseRRF(bm25, vec, 60)
	require.Len(t, results, 2)
	assert.Equal(t, "a.md", results[0].doc.Path)
	assert.Equal(t, "b.md", results[1].doc.Path)
}

func TestFusedLess_HigherBM25ContributionWinsOnScoreTie(t *testing.T) {
	a := &fused{doc: doc("docs", "a.md"), score: 0.5, bm25Contribution: 0.3}
	b := &fused{doc: doc("docs", "b.md"), score: 0.5, bm25Contribution: 0.1}
	assert.True(t, fusedLess(a, b))
	assert.False(t, fusedLess(b, a))
}

func TestFusedLess_FallsBackToLexicographicPathOnFullTie(t *testing.T) {
	a := &fused{doc: doc("docs", "aaa.md"), score: 0.5, bm25Contribution: 0.2}
	b := &fused{doc: doc("docs", "zzz.md"), score: 0.5, bm25Contribution: 0.2}
	assert.True(t, fusedLess(a, b))
	assert.False(t, fusedLess(b, a))
}

func TestFusedLess_CollectionBeatsPathInTieBreak(t *testing.T) {
	a := &fused{doc: doc("aaa", "zzz.md"), score: 0.5, bm25Contribution: 0.2}
	b := &fused{doc: doc("zzz", "aaa.md"), score: 0.5, bm25Contribution: 0.2}
	assert.True(t, fusedLess(a, b))
}

func TestFuseRRF_EmptyInputsYieldEmptyResult(t *testing.T) {
	results := fuseRRF(nil, nil, 60)
	assert.Empty(t, results)
}

func TestFuseRRF_DefaultsKWhenNonPositive(t *testing.T) {
	a := doc("docs", "a.md")
	bm25 := []store.BM25Hit{{Document: a, Score: 1.0}}

	results := fuseRRF(bm25, nil, 0)
	require.Len(t, results, 1)
	assert.InDelta(t, 1.0/float64(DefaultRRFConstant+1), results[0].score, 1e-9)
}
