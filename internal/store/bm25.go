package store

import (
	"context"

	"github.com/qfs-dev/qfs/internal/model"
)

// snippetMaxTokens bounds the generated snippet per spec §6 ("up to 64
// tokens around the first match").
const snippetMaxTokens = 64

// SearchBM25 runs a lexical search over the documents_fts shadow table,
// joining back to documents for the active, non-deactivated row (spec
// §4.1 "BM25 search"). Scores are normalized so the best-ranked hit is
// 1.0 and every other hit is its raw bm25() score divided by the best raw
// score — FTS5's bm25() is more negative for a better match, so dividing
// two same-signed negatives yields a value in (0, 1].
func (s *Store) SearchBM25(ctx context.Context, opts BM25SearchOptions) ([]BM25Hit, error) {
	matchQuery, err := sanitizeFTSQuery(opts.Query)
	if err != nil {
		return nil, err
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT d.id, d.collection, d.path, d.title, d.hash, d.file_type,
		       d.created_at, d.modified_at, d.indexed_at, d.active,
		       bm25(documents_fts) AS raw_score,
		       snippet(documents_fts, 2, '<mark>', '</mark>', '…', ?) AS snippet
		FROM documents_fts
		JOIN documents d ON d.id = documents_fts.rowid
		JOIN content c ON c.hash = d.hash
		WHERE documents_fts MATCH ? AND d.active = 1`
	args := []any{snippetMaxTokens, matchQuery}

	if opts.Collection != "" {
		query += ` AND d.collection = ?`
		args = append(args, opts.Collection)
	}
	if !opts.IncludeBinary {
		query += ` AND c.content_type NOT LIKE 'application/%'`
	}

	query += ` ORDER BY raw_score ASC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapDB("bm25 search failed", err)
	}
	defer rows.Close()

	type rawHit struct {
		doc     *model.Document
		raw     float64
		snippet string
	}
	var raws []rawHit

	for rows.Next() {
		var d model.Document
		var active int
		var raw float64
		var snippet string
		if err := rows.Scan(&d.ID, &d.Collection, &d.Path, &d.Title, &d.Hash, &d.FileType,
			&d.CreatedAt, &d.ModifiedAt, &d.IndexedAt, &active, &raw, &snippet); err != nil {
			return nil, wrapDB("failed to scan bm25 row", err)
		}
		d.Active = active != 0
		raws = append(raws, rawHit{doc: &d, raw: raw, snippet: snippet})
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDB("bm25 search iteration failed", err)
	}

	if len(raws) == 0 {
		return []BM25Hit{}, nil
	}

	best := raws[0].raw // ORDER BY raw_score ASC => most negative (best) first
	hits := make([]BM25Hit, 0, len(raws))
	for _, r := range raws {
		var normalized float64
		if r.raw < 0 {
			normalized = r.raw / best
		}
		if normalized < opts.MinScore {
			continue
		}
		hits = append(hits, BM25Hit{Document: r.doc, Score: normalized, Snippet: r.snippet})
	}

	return hits, nil
}
