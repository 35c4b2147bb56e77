// Package search provides thin orchestration over the Store's search
// primitives: plain BM25, plain vector, and a Reciprocal Rank Fusion
// hybrid mode, with each result annotated with its docid and resolved
// path context.
package search

import (
	"context"

	"github.com/qfs-dev/qfs/internal/model"
	"github.com/qfs-dev/qfs/internal/store"
)

// Mode selects which search primitive(s) the Searcher exercises.
type Mode int

const (
	// ModeBM25 runs lexical search only.
	ModeBM25 Mode = iota
	// ModeVector runs dense vector search only.
	ModeVector
	// ModeHybrid runs both and fuses them with Reciprocal Rank Fusion.
	ModeHybrid
)

// previewMaxChars bounds the preview-body fallback snippet for hybrid
// results that have no BM25 snippet to offer.
const previewMaxChars = 400

// Options configures a single Search call.
type Options struct {
	Mode          Mode
	Query         string
	Collection    string
	IncludeBinary bool
	Limit         int
	MinScore      float64
}

// Result is one ranked hit, annotated with presentation metadata the bare
// Store primitives don't attach.
type Result struct {
	Document *model.Document
	Docid    string
	Score    float64 // meaning depends on Mode: BM25/vector score, or RRF sum for hybrid
	Snippet  string  // present for BM25 hits, and for the BM25 half of a hybrid hit
	Context  string  // resolved via internal/pathctx, best-effort (empty on lookup failure)
}

// contentStore is the narrow dependency used to build the preview-body
// fallback snippet for a hybrid result with no BM25 snippet.
type contentStore interface {
	GetContent(ctx context.Context, hash string) (*model.Content, []byte, error)
}

// contextResolver is the narrow dependency the Searcher needs from
// internal/pathctx, kept as an interface so tests can stub it.
type contextResolver interface {
	FindContextForPath(ctx context.Context, collection, path string) (string, error)
}

// embedder is the narrow dependency the Searcher needs from internal/embed.
type embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// bm25Store and vectorStore narrow the Store surface the Searcher depends
// on, mirroring the teacher's BM25Index/VectorStore split.
type bm25Store interface {
	SearchBM25(ctx context.Context, opts store.BM25SearchOptions) ([]store.BM25Hit, error)
}

type vectorStore interface {
	SearchVector(ctx context.Context, opts store.VectorSearchOptions) ([]store.VectorHit, error)
}

// Searcher runs BM25/Vector/Hybrid queries against a Store.
type Searcher struct {
	bm25     bm25Store
	vector   vectorStore
	content  contentStore
	embedder embedder
	ctxres   contextResolver
}

// New creates a Searcher. emb and ctxres may be nil; a nil emb makes
// ModeVector/ModeHybrid searches fail, a nil ctxres leaves Result.Context
// empty.
func New(st *store.Store, emb embedder, ctxres contextResolver) *Searcher {
	return &Searcher{bm25: st, vector: st, content: st, embedder: emb, ctxres: ctxres}
}

func (s *Searcher) resolveContext(ctx context.Context, doc *model.Document) string {
	if s.ctxres == nil {
		return ""
	}
	desc, err := s.ctxres.FindContextForPath(ctx, doc.Collection, doc.Path)
	if err != nil {
		return ""
	}
	return desc
}

// previewSnippet returns the first previewMaxChars runes of the document's
// stored content, best-effort (empty string if the content row is gone).
func (s *Searcher) previewSnippet(ctx context.Context, doc *model.Document) string {
	_, payload, err := s.content.GetContent(ctx, doc.Hash)
	if err != nil || len(payload) == 0 {
		return ""
	}
	runes := []rune(string(payload))
	if len(runes) > previewMaxChars {
		runes = runes[:previewMaxChars]
	}
	return string(runes)
}
