// Package model defines the persistent entities of the QFS data model
// (spec §3): collections, content blobs, documents, embeddings, and path
// contexts. These are plain data carriers; the Store in internal/store
// is the sole component that mutates them.
package model

import "time"

// Collection is a named root directory plus an ordered set of glob patterns.
type Collection struct {
	Name      string
	RootPath  string
	Patterns  []string
	CreatedAt time.Time
}

// Content is a raw file payload addressed by the lowercase hex SHA-256 of
// its bytes. Content rows are immutable and shared across documents.
type Content struct {
	Hash        string // lowercase hex SHA-256, 64 chars
	ContentType string
	Size        int64
	InsertedAt  time.Time
}

// Document binds a (collection, relative path) pair to a content hash.
type Document struct {
	ID         int64
	Collection string
	Path       string
	Title      string
	Hash       string
	FileType   string
	CreatedAt  time.Time
	ModifiedAt time.Time
	IndexedAt  time.Time
	Active     bool
}

// Docid returns the short handle for this document: the first six hex
// characters of its content hash.
func (d *Document) Docid() string {
	if len(d.Hash) < 6 {
		return d.Hash
	}
	return d.Hash[:6]
}

// VirtualPath returns the collection/path form used for matching and display.
func (d *Document) VirtualPath() string {
	return d.Collection + "/" + d.Path
}

// Embedding is a fixed-dimension vector associated with (hash, chunk_index).
type Embedding struct {
	Hash       string
	ChunkIndex int
	CharOffset int
	Model      string
	Vector     []float32
	CreatedAt  time.Time
}

// PathContext is a description string keyed by (collection_or_global, normalized path prefix).
// Collection is empty for a global context row.
type PathContext struct {
	ID          string
	Collection  string // empty means global
	PathPrefix  string // normalized to begin with "/"
	Description string
	CreatedAt   time.Time
}

// Dimensions is the fixed embedding vector width used throughout QFS (spec §3).
const Dimensions = 384
