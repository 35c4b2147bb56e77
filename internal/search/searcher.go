package search

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/qfs-dev/qfs/internal/qerrors"
	"github.com/qfs-dev/qfs/internal/store"
)

const defaultLimit = 20

// Search runs a BM25, vector, or hybrid query depending on opts.Mode.
func (s *Searcher) Search(ctx context.Context, opts Options) ([]Result, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	switch opts.Mode {
	case ModeBM25:
		return s.searchBM25(ctx, opts, limit)
	case ModeVector:
		return s.searchVector(ctx, opts, limit)
	case ModeHybrid:
		return s.searchHybrid(ctx, opts, limit)
	default:
		return s.searchBM25(ctx, opts, limit)
	}
}

func (s *Searcher) searchBM25(ctx context.Context, opts Options, limit int) ([]Result, error) {
	hits, err := s.bm25.SearchBM25(ctx, store.BM25SearchOptions{
		Query:         opts.Query,
		Collection:    opts.Collection,
		IncludeBinary: opts.IncludeBinary,
		Limit:         limit,
		MinScore:      opts.MinScore,
	})
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(hits))
	for _, h := range hits {
		results = append(results, Result{
			Document: h.Document,
			Docid:    h.Document.Docid(),
			Score:    h.Score,
			Snippet:  h.Snippet,
			Context:  s.resolveContext(ctx, h.Document),
		})
	}
	return results, nil
}

func (s *Searcher) searchVector(ctx context.Context, opts Options, limit int) ([]Result, error) {
	if s.embedder == nil {
		return nil, qerrors.New(qerrors.NoEmbeddings, "no embedder configured for vector search")
	}

	queryVec, err := s.embedder.Embed(ctx, opts.Query)
	if err != nil {
		return nil, err
	}

	hits, err := s.vector.SearchVector(ctx, store.VectorSearchOptions{
		Query:      queryVec,
		Collection: opts.Collection,
		Limit:      limit,
	})
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(hits))
	for _, h := range hits {
		results = append(results, Result{
			Document: h.Document,
			Docid:    h.Document.Docid(),
			Score:    float64(h.Similarity),
			Snippet:  s.previewSnippet(ctx, h.Document),
			Context:  s.resolveContext(ctx, h.Document),
		})
	}
	return results, nil
}

// searchHybrid runs BM25 and vector search concurrently and fuses them
// with Reciprocal Rank Fusion (spec §4.3). A NoEmbeddings failure from the
// vector half does not fail the whole query: hybrid degrades to BM25-only,
// since the spec only requires the vector-only mode to hard-fail on
// NoEmbeddings.
func (s *Searcher) searchHybrid(ctx context.Context, opts Options, limit int) ([]Result, error) {
	overfetch := limit * 2
	if overfetch < limit {
		overfetch = limit
	}

	var bm25Hits []store.BM25Hit
	var vecHits []store.VectorHit

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hits, err := s.bm25.SearchBM25(gctx, store.BM25SearchOptions{
			Query:         opts.Query,
			Collection:    opts.Collection,
			IncludeBinary: opts.IncludeBinary,
			Limit:         overfetch,
			MinScore:      opts.MinScore,
		})
		if err != nil {
			return err
		}
		bm25Hits = hits
		return nil
	})
	g.Go(func() error {
		if s.embedder == nil {
			return nil
		}
		queryVec, err := s.embedder.Embed(gctx, opts.Query)
		if err != nil {
			return err
		}
		hits, err := s.vector.SearchVector(gctx, store.VectorSearchOptions{
			Query:      queryVec,
			Collection: opts.Collection,
			Limit:      overfetch,
		})
		if err != nil {
			if qerrors.Is(err, qerrors.NoEmbeddings) {
				return nil
			}
			return err
		}
		vecHits = hits
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	fusedResults := fuseRRF(bm25Hits, vecHits, DefaultRRFConstant)
	if len(fusedResults) > limit {
		fusedResults = fusedResults[:limit]
	}

	results := make([]Result, 0, len(fusedResults))
	for _, f := range fusedResults {
		results = append(results, Result{
			Document: f.doc,
			Docid:    f.doc.Docid(),
			Score:    f.score,
			Snippet:  s.snippetFor(ctx, f),
			Context:  s.resolveContext(ctx, f.doc),
		})
	}
	return results, nil
}

// snippetFor returns the BM25 snippet when present, else the document's
// preview body truncated (spec §4.3 "union of metadata").
func (s *Searcher) snippetFor(ctx context.Context, f *fused) string {
	if f.inBM25 && f.bm25Snippet != "" {
		return f.bm25Snippet
	}
	return s.previewSnippet(ctx, f.doc)
}
