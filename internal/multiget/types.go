// Package multiget resolves a glob, comma-list, docid, or bare path
// pattern to a bounded set of document payloads (spec §4.5), and serves
// the single-document "get" operation with line-range slicing (spec §6).
package multiget

import (
	"context"

	"github.com/qfs-dev/qfs/internal/model"
)

// DefaultMaxBytes is the size above which a matched document's content is
// skipped rather than returned (spec §4.5).
const DefaultMaxBytes = 10240

// documentStore is the narrow Store surface this package depends on.
type documentStore interface {
	ListActiveDocuments(ctx context.Context, collection string) ([]*model.Document, error)
	GetDocumentByPath(ctx context.Context, collection, path string) (*model.Document, error)
	ResolveDocid(ctx context.Context, input string) (*model.Document, error)
	GetContent(ctx context.Context, hash string) (*model.Content, []byte, error)
}

// Engine resolves patterns against a Store and fetches bounded content.
type Engine struct {
	store documentStore
}

// New creates an Engine over the given store.
func New(store documentStore) *Engine {
	return &Engine{store: store}
}

// MultiGetResult is one matched document's bounded content, or a
// skip/placeholder marker in its place.
type MultiGetResult struct {
	Collection string
	Path       string
	Docid      string
	Title      string
	Content    string
	Skipped    bool
	SkipReason string
}

// GetOptions configures a single-document Get call.
type GetOptions struct {
	// FromLine overrides any ":linenum" suffix on the looked-up path when
	// non-nil (spec §6 "overridden by explicit from_line").
	FromLine *int
	// MaxLines caps the returned line count. nil means unbounded; a
	// pointer to 0 means "return empty content, no marker" (spec §8).
	MaxLines *int
	// IncludeContent controls whether Content is populated at all.
	IncludeContent bool
}

// GetResult is the outcome of a single-document Get call.
type GetResult struct {
	Collection string
	Path       string
	Title      string
	Content    string
	FromLine   int
	LineCount  int
}
