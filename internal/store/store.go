package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	lru "github.com/hashicorp/golang-lru/v2"
	_ "modernc.org/sqlite"

	"github.com/qfs-dev/qfs/internal/model"
	"github.com/qfs-dev/qfs/internal/qerrors"
)

// docidCacheSize bounds the memoized docid -> document-id lookups so a
// long-running server doesn't grow this map unboundedly (grounded on the
// teacher's gitignore-matcher LRU in internal/scanner/scanner.go).
const docidCacheSize = 4096

// Store is the sole arbiter of QFS's persistent state. Every method that
// touches the database is a suspension point (spec §5): callers may be
// cancelled at any Store boundary via ctx.
type Store struct {
	db   *sql.DB
	path string

	lock *flock.Flock // guards schema migration across processes

	docidCache *lru.Cache[string, int64]

	vecMu            sync.Mutex
	vecIndex         *vectorIndex // lazily created native ANN index
	vecIndexDisabled bool         // forces the brute-force fallback path (tests, degraded mode)

	logger *slog.Logger
}

// Open opens (creating if necessary) the QFS database at path. An empty
// path opens an in-memory database, used by tests.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var dsn string
	var fileLock *flock.Flock
	if path == "" {
		dsn = ":memory:"
	} else {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, wrapDB("failed to create data directory", err)
		}
		fileLock = flock.New(path + ".lock")
		if err := fileLock.Lock(); err != nil {
			return nil, wrapDB("failed to acquire store lock", err)
		}
		dsn = path + "?_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		if fileLock != nil {
			_ = fileLock.Unlock()
		}
		return nil, wrapDB("failed to open database", err)
	}
	db.SetMaxOpenConns(1) // single effective writer; see spec §5 "writer discipline"

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			if fileLock != nil {
				_ = fileLock.Unlock()
			}
			return nil, wrapDB("failed to set pragma", err)
		}
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		if fileLock != nil {
			_ = fileLock.Unlock()
		}
		return nil, err
	}
	if fileLock != nil {
		_ = fileLock.Unlock() // migration is done; readers and writers serialize in the database
	}

	cache, _ := lru.New[string, int64](docidCacheSize)

	return &Store{
		db:         db,
		path:       path,
		lock:       fileLock,
		docidCache: cache,
		logger:     logger,
	}, nil
}

// Close releases the database handle and any cross-process lock.
func (s *Store) Close() error {
	err := s.db.Close()
	if s.lock != nil {
		_ = s.lock.Unlock()
	}
	return err
}

// --- Collections ---------------------------------------------------------

// CreateCollection registers a named root directory and its glob patterns.
func (s *Store) CreateCollection(ctx context.Context, c *model.Collection) error {
	patternsJSON, err := json.Marshal(c.Patterns)
	if err != nil {
		return wrapDB("failed to marshal patterns", err)
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO collections(name, root_path, patterns, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET root_path = excluded.root_path, patterns = excluded.patterns`,
		c.Name, c.RootPath, string(patternsJSON), c.CreatedAt)
	if err != nil {
		return wrapDB("failed to create collection", err)
	}
	return nil
}

// GetCollection returns the named collection, or NotFound.
func (s *Store) GetCollection(ctx context.Context, name string) (*model.Collection, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT name, root_path, patterns, created_at FROM collections WHERE name = ?`, name)
	var c model.Collection
	var patternsJSON string
	if err := row.Scan(&c.Name, &c.RootPath, &patternsJSON, &c.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, notFoundf("collection %q not found", name)
		}
		return nil, wrapDB("failed to read collection", err)
	}
	if err := json.Unmarshal([]byte(patternsJSON), &c.Patterns); err != nil {
		return nil, wrapDB("failed to unmarshal patterns", err)
	}
	return &c, nil
}

// ListCollections returns all registered collections ordered by name.
func (s *Store) ListCollections(ctx context.Context) ([]*model.Collection, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, root_path, patterns, created_at FROM collections ORDER BY name`)
	if err != nil {
		return nil, wrapDB("failed to list collections", err)
	}
	defer rows.Close()

	var out []*model.Collection
	for rows.Next() {
		var c model.Collection
		var patternsJSON string
		if err := rows.Scan(&c.Name, &c.RootPath, &patternsJSON, &c.CreatedAt); err != nil {
			return nil, wrapDB("failed to scan collection", err)
		}
		_ = json.Unmarshal([]byte(patternsJSON), &c.Patterns)
		out = append(out, &c)
	}
	return out, rows.Err()
}

// RemoveCollection deletes the collection row and deactivates all its
// documents. Content blobs are left untouched: they are shared and never
// reference-counted (spec §3 "Ownership").
func (s *Store) RemoveCollection(ctx context.Context, name string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapDB("failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, `SELECT path FROM documents WHERE collection = ? AND active = 1`, name)
	if err != nil {
		return wrapDB("failed to list documents for removal", err)
	}
	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			rows.Close()
			return wrapDB("failed to scan document path", err)
		}
		paths = append(paths, p)
	}
	rows.Close()

	for _, p := range paths {
		if err := deactivateDocumentTx(ctx, tx, name, p); err != nil {
			return err
		}
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM collections WHERE name = ?`, name)
	if err != nil {
		return wrapDB("failed to delete collection", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return wrapDB("failed to read rows affected", err)
	}
	if affected == 0 {
		return notFoundf("collection %q not found", name)
	}

	if err := tx.Commit(); err != nil {
		return wrapDB("failed to commit collection removal", err)
	}
	return nil
}

// --- Content addressing ---------------------------------------------------

// InsertContent idempotently stores a content blob under its hash. Callers
// must pre-compute the SHA-256 hash; the Store never re-hashes.
func (s *Store) InsertContent(ctx context.Context, hash string, payload []byte, contentType string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO content(hash, content_type, size, payload, inserted_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(hash) DO NOTHING`,
		hash, contentType, len(payload), payload, time.Now().UTC())
	if err != nil {
		return wrapDB("failed to insert content", err)
	}
	return nil
}

// GetContent returns the content row for hash, or NotFound.
func (s *Store) GetContent(ctx context.Context, hash string) (*model.Content, []byte, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT hash, content_type, size, payload, inserted_at FROM content WHERE hash = ?`, hash)
	var c model.Content
	var payload []byte
	if err := row.Scan(&c.Hash, &c.ContentType, &c.Size, &payload, &c.InsertedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, notFoundf("content %q not found", hash)
		}
		return nil, nil, wrapDB("failed to read content", err)
	}
	return &c, payload, nil
}

// --- Documents -------------------------------------------------------------

// UpsertDocument writes or overwrites the document row for (collection,
// path) and its FTS shadow, atomically (spec §4.1/§5). It always wins over
// a prior deactivation.
func (s *Store) UpsertDocument(ctx context.Context, collection, path, title, hash, fileType, previewText string) (*model.Document, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, wrapDB("failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()

	var existingID int64
	var createdAt time.Time
	err = tx.QueryRowContext(ctx,
		`SELECT id, created_at FROM documents WHERE collection = ? AND path = ?`, collection, path,
	).Scan(&existingID, &createdAt)

	var docID int64
	switch {
	case err == sql.ErrNoRows:
		createdAt = now
		res, execErr := tx.ExecContext(ctx,
			`INSERT INTO documents(collection, path, title, hash, file_type, created_at, modified_at, indexed_at, active)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1)`,
			collection, path, title, hash, fileType, createdAt, now, now)
		if execErr != nil {
			return nil, wrapDB("failed to insert document", execErr)
		}
		docID, execErr = res.LastInsertId()
		if execErr != nil {
			return nil, wrapDB("failed to read inserted document id", execErr)
		}
	case err != nil:
		return nil, wrapDB("failed to look up document", err)
	default:
		docID = existingID
		if _, execErr := tx.ExecContext(ctx,
			`UPDATE documents SET title = ?, hash = ?, file_type = ?, modified_at = ?, indexed_at = ?, active = 1
			 WHERE id = ?`,
			title, hash, fileType, now, now, docID); execErr != nil {
			return nil, wrapDB("failed to update document", execErr)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM documents_fts WHERE rowid = ?`, docID); err != nil {
		return nil, wrapDB("failed to clear fts shadow", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO documents_fts(rowid, filepath, title, body) VALUES (?, ?, ?, ?)`,
		docID, collection+"/"+path, title, previewText); err != nil {
		return nil, wrapDB("failed to write fts shadow", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, wrapDB("failed to commit document upsert", err)
	}

	if s.docidCache != nil {
		s.docidCache.Purge() // hash association may have changed; cheap to just clear
	}

	return &model.Document{
		ID:         docID,
		Collection: collection,
		Path:       path,
		Title:      title,
		Hash:       hash,
		FileType:   fileType,
		CreatedAt:  createdAt,
		ModifiedAt: now,
		IndexedAt:  now,
		Active:     true,
	}, nil
}

// DeactivateDocument flips active to 0 and removes the FTS row.
// Re-activation happens implicitly on a subsequent UpsertDocument.
func (s *Store) DeactivateDocument(ctx context.Context, collection, path string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapDB("failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := deactivateDocumentTx(ctx, tx, collection, path); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return wrapDB("failed to commit deactivation", err)
	}
	return nil
}

func deactivateDocumentTx(ctx context.Context, tx *sql.Tx, collection, path string) error {
	var id int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM documents WHERE collection = ? AND path = ?`, collection, path).Scan(&id)
	if err == sql.ErrNoRows {
		return nil // already gone; deactivation is idempotent
	}
	if err != nil {
		return wrapDB("failed to look up document for deactivation", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE documents SET active = 0 WHERE id = ?`, id); err != nil {
		return wrapDB("failed to deactivate document", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM documents_fts WHERE rowid = ?`, id); err != nil {
		return wrapDB("failed to remove fts shadow", err)
	}
	return nil
}

// GetDocumentByID returns the document with the given surrogate id.
func (s *Store) GetDocumentByID(ctx context.Context, id int64) (*model.Document, error) {
	return scanDocument(s.db.QueryRowContext(ctx,
		`SELECT id, collection, path, title, hash, file_type, created_at, modified_at, indexed_at, active
		 FROM documents WHERE id = ?`, id))
}

// GetDocumentByPath returns the active document at (collection, path), or NotFound.
func (s *Store) GetDocumentByPath(ctx context.Context, collection, path string) (*model.Document, error) {
	return scanDocument(s.db.QueryRowContext(ctx,
		`SELECT id, collection, path, title, hash, file_type, created_at, modified_at, indexed_at, active
		 FROM documents WHERE collection = ? AND path = ? AND active = 1`, collection, path))
}

// ListActiveDocuments returns every active document, optionally filtered by collection.
func (s *Store) ListActiveDocuments(ctx context.Context, collection string) ([]*model.Document, error) {
	query := `SELECT id, collection, path, title, hash, file_type, created_at, modified_at, indexed_at, active
	          FROM documents WHERE active = 1`
	args := []any{}
	if collection != "" {
		query += ` AND collection = ?`
		args = append(args, collection)
	}
	query += ` ORDER BY path`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapDB("failed to list active documents", err)
	}
	defer rows.Close()

	var docs []*model.Document
	for rows.Next() {
		d, err := scanDocumentRows(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func scanDocument(row *sql.Row) (*model.Document, error) {
	var d model.Document
	var active int
	err := row.Scan(&d.ID, &d.Collection, &d.Path, &d.Title, &d.Hash, &d.FileType,
		&d.CreatedAt, &d.ModifiedAt, &d.IndexedAt, &active)
	if err == sql.ErrNoRows {
		return nil, notFoundf("document not found")
	}
	if err != nil {
		return nil, wrapDB("failed to scan document", err)
	}
	d.Active = active != 0
	return &d, nil
}

func scanDocumentRows(rows *sql.Rows) (*model.Document, error) {
	var d model.Document
	var active int
	if err := rows.Scan(&d.ID, &d.Collection, &d.Path, &d.Title, &d.Hash, &d.FileType,
		&d.CreatedAt, &d.ModifiedAt, &d.IndexedAt, &active); err != nil {
		return nil, wrapDB("failed to scan document", err)
	}
	d.Active = active != 0
	return &d, nil
}

// --- Docid lookup -----------------------------------------------------------

// NormalizeDocid implements the normalization rule of spec §4.1: strip
// surrounding matched quotes, strip one leading '#', trim whitespace, lowercase.
func NormalizeDocid(input string) string {
	s := strings.TrimSpace(input)
	if len(s) >= 2 {
		if (s[0] == '\'' && s[len(s)-1] == '\'') || (s[0] == '"' && s[len(s)-1] == '"') {
			s = s[1 : len(s)-1]
		}
	}
	s = strings.TrimPrefix(s, "#")
	s = strings.TrimSpace(s)
	return strings.ToLower(s)
}

func isHexDigits(s string) bool {
	for _, r := range s {
		if !((r >= '0' && r <= '9') || (r >= 'a' && r <= 'f')) {
			return false
		}
	}
	return true
}

// ResolveDocid finds the first active document whose hash starts with the
// normalized prefix, in insertion order (spec §9 "Cross-collection docid
// collisions").
func (s *Store) ResolveDocid(ctx context.Context, input string) (*model.Document, error) {
	prefix := NormalizeDocid(input)
	if len(prefix) < 6 || !isHexDigits(prefix) {
		return nil, qerrors.InvalidQueryf("invalid docid %q: must be at least 6 hex characters", input)
	}

	if s.docidCache != nil {
		if id, ok := s.docidCache.Get(prefix); ok {
			doc, err := s.GetDocumentByID(ctx, id)
			if err == nil && doc.Active {
				return doc, nil
			}
			s.docidCache.Remove(prefix)
		}
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, collection, path, title, hash, file_type, created_at, modified_at, indexed_at, active
		 FROM documents WHERE active = 1 AND hash LIKE ? ORDER BY id LIMIT 1`,
		prefix+"%")
	doc, err := scanDocument(row)
	if err != nil {
		if qerrors.Is(err, qerrors.NotFound) {
			return nil, notFoundf("no document with docid prefix %q", prefix)
		}
		return nil, err
	}
	if s.docidCache != nil {
		s.docidCache.Add(prefix, doc.ID)
	}
	return doc, nil
}

// --- Status -----------------------------------------------------------------

// GetStatus returns a summary for the "status" tool (spec §6).
func (s *Store) GetStatus(ctx context.Context) (*Status, error) {
	var st Status

	rows, err := s.db.QueryContext(ctx, `SELECT name FROM collections ORDER BY name`)
	if err != nil {
		return nil, wrapDB("failed to list collections for status", err)
	}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return nil, wrapDB("failed to scan collection name", err)
		}
		st.Collections = append(st.Collections, name)
	}
	rows.Close()

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents WHERE active = 1`).Scan(&st.Documents); err != nil {
		return nil, wrapDB("failed to count documents", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM embeddings`).Scan(&st.Embeddings); err != nil {
		return nil, wrapDB("failed to count embeddings", err)
	}

	version, err := readSchemaVersion(s.db)
	if err != nil {
		return nil, err
	}
	st.SchemaVersion = version

	return &st, nil
}
