// Package indexer drives a collection through the scan/hash/commit cycle
// and, separately, walks already-indexed documents to request vectors from
// an external embedder.
package indexer

import (
	"log/slog"

	"github.com/qfs-dev/qfs/internal/scanner"
	"github.com/qfs-dev/qfs/internal/store"
)

// Indexer owns the scan/hash/commit pipeline for a single collection.
type Indexer struct {
	store   *store.Store
	scanner *scanner.Scanner
	logger  *slog.Logger
}

// New creates an Indexer over the given store and scanner.
func New(st *store.Store, sc *scanner.Scanner, logger *slog.Logger) *Indexer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Indexer{store: st, scanner: sc, logger: logger}
}

// Result summarizes one IndexCollection run.
type Result struct {
	Scanned     int
	Inserted    int
	Updated     int
	Skipped     int
	Deactivated int
	FailedFiles []FileFailure
}

// FileFailure records a per-file read/parse failure absorbed during indexing.
type FileFailure struct {
	Path string
	Err  error
}

// EmbedResult summarizes one Embed run.
type EmbedResult struct {
	ChunksEmbedded int
	DocsProcessed  int
	Failed         []FileFailure
}

// EmbedOptions configures the Embed operation.
type EmbedOptions struct {
	Collection string
	Model      string
	// ChunkSize bounds how many characters of preview/body text feed a
	// single embedding; defaults to defaultChunkSize when <= 0.
	ChunkSize int
}

const defaultChunkSize = 2000

// previewMaxChars bounds how much of a document's body is kept as the
// FTS/preview text committed alongside the document row.
const previewMaxChars = 4000
