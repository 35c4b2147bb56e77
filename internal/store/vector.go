package store

import (
	"context"
	"database/sql"
	"encoding/binary"
	"math"
	"sort"
	"time"

	"github.com/coder/hnsw"

	"github.com/qfs-dev/qfs/internal/model"
	"github.com/qfs-dev/qfs/internal/qerrors"
)

// vecState is the lazy build state of the native ANN index (spec §4.1
// "Vector search"): it is only re-evaluated after a new embedding is
// inserted, not on every search.
type vecState int

const (
	vecUnknown vecState = iota
	vecReady
	vecFailed
)

type embeddingRef struct {
	hash       string
	chunkIndex int
}

// vectorIndex is the native coder/hnsw ANN graph built over every embedding
// row currently in the database (grounded on HNSWStore in the teacher's
// internal/store/hnsw.go, simplified to one graph per Store).
type vectorIndex struct {
	graph    *hnsw.Graph[uint64]
	keyToRef map[uint64]embeddingRef
	state    vecState
	err      error
}

// InsertEmbedding stores a chunk embedding and invalidates the native index
// so the next vector search rebuilds it from the updated row set.
func (s *Store) InsertEmbedding(ctx context.Context, e model.Embedding) error {
	if len(e.Vector) != model.Dimensions {
		return qerrors.InvalidQueryf("embedding vector has %d dimensions, expected %d", len(e.Vector), model.Dimensions)
	}

	payload := encodeVector(e.Vector)
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO embeddings(hash, chunk_index, char_offset, model, vector, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(hash, chunk_index, model) DO UPDATE SET char_offset = excluded.char_offset, vector = excluded.vector`,
		e.Hash, e.ChunkIndex, e.CharOffset, e.Model, payload, e.CreatedAt)
	if err != nil {
		return wrapDB("failed to insert embedding", err)
	}

	s.vecMu.Lock()
	s.vecIndex = nil // force re-evaluation on next search
	s.vecMu.Unlock()

	return nil
}

// SetVectorIndexDisabled forces every subsequent SearchVector call onto the
// brute-force cosine path, as if native ANN index construction were
// unavailable (spec §9 "Vector index degradation"). Intended for tests and
// for operators working around a broken coder/hnsw build.
func (s *Store) SetVectorIndexDisabled(disabled bool) {
	s.vecMu.Lock()
	s.vecIndexDisabled = disabled
	s.vecMu.Unlock()
}

// SearchVector runs an approximate nearest-neighbor search using the native
// index when available, falling back to brute-force cosine similarity
// otherwise (spec §4.1 "Vector search" / §9 "Vector index degradation").
func (s *Store) SearchVector(ctx context.Context, opts VectorSearchOptions) ([]VectorHit, error) {
	if len(opts.Query) != model.Dimensions {
		return nil, qerrors.InvalidQueryf("query vector has %d dimensions, expected %d", len(opts.Query), model.Dimensions)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM embeddings`).Scan(&total); err != nil {
		return nil, wrapDB("failed to count embeddings", err)
	}
	if total == 0 {
		return nil, qerrors.New(qerrors.NoEmbeddings, "no embeddings exist for vector search")
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}

	idx, err := s.ensureVectorIndex(ctx)
	if err != nil || idx == nil {
		return s.searchVectorBruteForce(ctx, opts, limit)
	}
	return s.searchVectorNative(ctx, idx, opts, limit)
}

func (s *Store) ensureVectorIndex(ctx context.Context) (*vectorIndex, error) {
	s.vecMu.Lock()
	defer s.vecMu.Unlock()

	if s.vecIndexDisabled {
		return nil, nil
	}

	if s.vecIndex != nil {
		if s.vecIndex.state == vecReady {
			return s.vecIndex, nil
		}
		if s.vecIndex.state == vecFailed {
			return nil, s.vecIndex.err
		}
	}

	idx, err := s.buildVectorIndex(ctx)
	if err != nil {
		s.vecIndex = &vectorIndex{state: vecFailed, err: err}
		return nil, err
	}
	idx.state = vecReady
	s.vecIndex = idx
	return idx, nil
}

func (s *Store) buildVectorIndex(ctx context.Context) (*vectorIndex, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT hash, chunk_index, vector FROM embeddings`)
	if err != nil {
		return nil, wrapDB("failed to load embeddings for vector index", err)
	}
	defer rows.Close()

	graph := hnsw.NewGraph[uint64]()
	graph.Distance = hnsw.CosineDistance
	graph.M = 16
	graph.EfSearch = 20
	graph.Ml = 0.25

	keyToRef := make(map[uint64]embeddingRef)
	var key uint64

	for rows.Next() {
		var hash string
		var chunkIndex int
		var payload []byte
		if err := rows.Scan(&hash, &chunkIndex, &payload); err != nil {
			return nil, wrapDB("failed to scan embedding row", err)
		}
		vec, err := decodeVector(payload)
		if err != nil {
			return nil, err
		}
		normalizeVectorInPlace(vec)

		graph.Add(hnsw.MakeNode(key, vec))
		keyToRef[key] = embeddingRef{hash: hash, chunkIndex: chunkIndex}
		key++
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDB("failed to iterate embeddings for vector index", err)
	}

	return &vectorIndex{graph: graph, keyToRef: keyToRef}, nil
}

// scoredHash pairs a content hash with its best similarity score across
// every chunk embedding derived from it.
type scoredHash struct {
	hash       string
	similarity float32
}

func sortedScoredHashes(best map[string]float32) []scoredHash {
	pairs := make([]scoredHash, 0, len(best))
	for hash, sim := range best {
		pairs = append(pairs, scoredHash{hash: hash, similarity: sim})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].similarity > pairs[j].similarity })
	return pairs
}

func (s *Store) searchVectorNative(ctx context.Context, idx *vectorIndex, opts VectorSearchOptions, limit int) ([]VectorHit, error) {
	query := make([]float32, len(opts.Query))
	copy(query, opts.Query)
	normalizeVectorInPlace(query)

	overfetch := limit * 5
	if overfetch < limit {
		overfetch = limit
	}

	nodes := idx.graph.Search(query, overfetch)

	best := make(map[string]float32)
	for _, node := range nodes {
		ref, ok := idx.keyToRef[node.Key]
		if !ok {
			continue
		}
		distance := idx.graph.Distance(query, node.Value)
		similarity := cosineDistanceToSimilarity(distance)
		if cur, exists := best[ref.hash]; !exists || similarity > cur {
			best[ref.hash] = similarity
		}
	}

	return s.resolveVectorHits(ctx, sortedScoredHashes(best), opts.Collection, limit)
}

func (s *Store) searchVectorBruteForce(ctx context.Context, opts VectorSearchOptions, limit int) ([]VectorHit, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT hash, vector FROM embeddings`)
	if err != nil {
		return nil, wrapDB("failed to load embeddings for brute-force search", err)
	}
	defer rows.Close()

	query := make([]float32, len(opts.Query))
	copy(query, opts.Query)
	normalizeVectorInPlace(query)

	best := make(map[string]float32)
	for rows.Next() {
		var hash string
		var payload []byte
		if err := rows.Scan(&hash, &payload); err != nil {
			return nil, wrapDB("failed to scan embedding row", err)
		}
		vec, err := decodeVector(payload)
		if err != nil {
			return nil, err
		}
		normalizeVectorInPlace(vec)
		sim := cosineSimilarityToScore(cosineSimilarity(query, vec))
		if cur, exists := best[hash]; !exists || sim > cur {
			best[hash] = sim
		}
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDB("brute-force search iteration failed", err)
	}

	return s.resolveVectorHits(ctx, sortedScoredHashes(best), opts.Collection, limit)
}

func (s *Store) resolveVectorHits(ctx context.Context, pairs []scoredHash, collection string, limit int) ([]VectorHit, error) {
	hits := make([]VectorHit, 0, limit)
	for _, p := range pairs {
		if len(hits) >= limit {
			break
		}
		doc, err := s.findActiveDocumentByHash(ctx, p.hash, collection)
		if err != nil {
			if qerrors.Is(err, qerrors.NotFound) {
				continue
			}
			return nil, err
		}
		hits = append(hits, VectorHit{Document: doc, Similarity: p.similarity})
	}
	return hits, nil
}

func (s *Store) findActiveDocumentByHash(ctx context.Context, hash, collection string) (*model.Document, error) {
	query := `SELECT id, collection, path, title, hash, file_type, created_at, modified_at, indexed_at, active
	          FROM documents WHERE hash = ? AND active = 1`
	args := []any{hash}
	if collection != "" {
		query += ` AND collection = ?`
		args = append(args, collection)
	}
	query += ` ORDER BY id LIMIT 1`

	row := s.db.QueryRowContext(ctx, query, args...)
	return scanDocument(row)
}

func encodeVector(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(payload []byte) ([]float32, error) {
	if len(payload)%4 != 0 {
		return nil, wrapDB("corrupt embedding payload", sql.ErrNoRows)
	}
	n := len(payload) / 4
	v := make([]float32, n)
	for i := 0; i < n; i++ {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(payload[i*4:]))
	}
	return v, nil
}

func normalizeVectorInPlace(v []float32) {
	var sumSquares float64
	for _, val := range v {
		sumSquares += float64(val) * float64(val)
	}
	if sumSquares == 0 {
		return
	}
	invMagnitude := float32(1.0 / math.Sqrt(sumSquares))
	for i := range v {
		v[i] *= invMagnitude
	}
}

// cosineDistanceToSimilarity converts coder/hnsw's cosine distance (0 for
// identical vectors, 2 for opposite) into a [0,1] similarity score. This is
// algebraically (1+cos)/2, the same mapping cosineSimilarityToScore applies
// to a raw cosine value, so the native and brute-force paths agree on both
// ranking and magnitude (spec §4.1 "clamped to [0,1]").
func cosineDistanceToSimilarity(distance float32) float32 {
	return clampUnit(1.0 - distance/2.0)
}

// cosineSimilarity computes raw cosine similarity for the brute-force
// fallback path; inputs are expected to already be unit-normalized. The
// result can range slightly outside [-1,1] due to float rounding, so callers
// must run it through cosineSimilarityToScore before treating it as a score.
func cosineSimilarity(a, b []float32) float32 {
	var dot float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
	}
	return float32(dot)
}

// cosineSimilarityToScore maps a raw cosine similarity in [-1,1] onto the
// same [0,1] score the native ANN path reports, so brute-force fallback
// rankings and magnitudes match the native path exactly.
func cosineSimilarityToScore(cos float32) float32 {
	return clampUnit((1.0 + cos) / 2.0)
}

func clampUnit(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
