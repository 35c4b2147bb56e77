package search

import (
	"sort"

	"github.com/qfs-dev/qfs/internal/model"
	"github.com/qfs-dev/qfs/internal/store"
)

// DefaultRRFConstant is the RRF smoothing parameter (spec §4.3).
const DefaultRRFConstant = 60

// fused accumulates a document's Reciprocal Rank Fusion score across the
// BM25 and vector result lists, keyed by (collection, path).
type fused struct {
	doc            *model.Document
	score          float64
	bm25Score      float64
	bm25Snippet    string
	inBM25         bool
	bm25Contribution float64
}

func fuseKey(doc *model.Document) string {
	return doc.Collection + "\x00" + doc.Path
}

// fuseRRF combines BM25 and vector hits with the spec's exact formula:
// rrf_contribution(doc) = 1/(k+rank), rank 1-based, summed per distinct
// document with no weighting and no normalization. Ties break by BM25
// contribution (descending), then by ascending (collection, path).
func fuseRRF(bm25 []store.BM25Hit, vec []store.VectorHit, k int) []*fused {
	if k <= 0 {
		k = DefaultRRFConstant
	}

	byKey := make(map[string]*fused, len(bm25)+len(vec))
	order := make([]string, 0, len(bm25)+len(vec))

	getOrCreate := func(doc *model.Document) *fused {
		key := fuseKey(doc)
		f, ok := byKey[key]
		if !ok {
			f = &fused{doc: doc}
			byKey[key] = f
			order = append(order, key)
		}
		return f
	}

	for rank, hit := range bm25 {
		f := getOrCreate(hit.Document)
		contribution := 1.0 / float64(k+rank+1)
		f.score += contribution
		f.bm25Contribution = contribution
		f.bm25Score = hit.Score
		f.bm25Snippet = hit.Snippet
		f.inBM25 = true
	}

	for rank, hit := range vec {
		f := getOrCreate(hit.Document)
		f.score += 1.0 / float64(k+rank+1)
	}

	results := make([]*fused, 0, len(order))
	for _, key := range order {
		results = append(results, byKey[key])
	}

	sort.SliceStable(results, func(i, j int) bool {
		return fusedLess(results[i], results[j])
	})

	return results
}

// fusedLess reports whether a should rank before b: higher summed score,
// then higher BM25 contribution, then ascending (collection, path).
func fusedLess(a, b *fused) bool {
	if a.score != b.score {
		return a.score > b.score
	}
	if a.bm25Contribution != b.bm25Contribution {
		return a.bm25Contribution > b.bm25Contribution
	}
	if a.doc.Collection != b.doc.Collection {
		return a.doc.Collection < b.doc.Collection
	}
	return a.doc.Path < b.doc.Path
}
