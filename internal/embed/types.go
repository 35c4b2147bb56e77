// Package embed provides the external vector-producing function the core
// treats opaquely as "the embedder" (spec §6): embed(text) -> vector of
// model.Dimensions floats.
package embed

import (
	"context"
	"math"
)

const (
	// DefaultBatchSize bounds how many texts a single EmbedBatch call groups together.
	DefaultBatchSize = 32
	// MaxBatchSize prevents a single request from exhausting memory.
	MaxBatchSize = 256
)

// Embedder generates fixed-dimension vector embeddings for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	ModelName() string
	Available(ctx context.Context) bool
	Close() error
}

// normalizeVector scales v to unit length; a zero vector is returned unchanged.
func normalizeVector(v []float32) []float32 {
	var sumSquares float64
	for _, val := range v {
		sumSquares += float64(val) * float64(val)
	}
	magnitude := math.Sqrt(sumSquares)
	if magnitude == 0 {
		return v
	}
	normalized := make([]float32, len(v))
	for i, val := range v {
		normalized[i] = float32(float64(val) / magnitude)
	}
	return normalized
}
