// Package store is the sole arbiter of QFS's persistent state (spec §4.1):
// collections, content-addressed blobs, documents, their FTS shadow rows,
// dense embeddings, and path contexts, all in one modernc.org/sqlite
// database running in WAL journaling mode.
package store

import (
	"fmt"

	"github.com/qfs-dev/qfs/internal/model"
	"github.com/qfs-dev/qfs/internal/qerrors"
)

// BM25SearchOptions configures a lexical search (spec §4.1 "BM25 search").
type BM25SearchOptions struct {
	Query         string
	Collection    string // empty means no filter
	IncludeBinary bool
	Limit         int
	MinScore      float64
}

// BM25Hit is a single lexical search result.
type BM25Hit struct {
	Document *model.Document
	Score    float64 // normalized to [0,1], 1.0 for the best hit
	Snippet  string
}

// VectorSearchOptions configures a dense vector search.
type VectorSearchOptions struct {
	Query      []float32
	Collection string
	Limit      int
}

// VectorHit is a single vector search result.
type VectorHit struct {
	Document   *model.Document
	Similarity float32 // (1+cosine)/2, clamped to [0,1]
}

// Status summarizes the store for the "status" tool (spec §6).
type Status struct {
	Collections   []string
	Documents     int
	Embeddings    int
	SchemaVersion int
}

func wrapDB(message string, err error) *qerrors.Error {
	return qerrors.Wrap(qerrors.Database, message, err)
}

func notFoundf(format string, args ...any) *qerrors.Error {
	return qerrors.New(qerrors.NotFound, fmt.Sprintf(format, args...))
}

func schemaTooNewError(stored, expected int) *qerrors.Error {
	return qerrors.New(qerrors.SchemaTooNew,
		fmt.Sprintf("on-disk schema version %d is newer than supported version %d", stored, expected))
}
