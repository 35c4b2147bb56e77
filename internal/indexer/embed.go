package indexer

import (
	"context"
	"log/slog"

	qfsembed "github.com/qfs-dev/qfs/internal/embed"
	"github.com/qfs-dev/qfs/internal/model"
	"github.com/qfs-dev/qfs/internal/qerrors"
)

// Embed walks active documents (optionally scoped to one collection),
// splits each document's content into fixed-size character chunks, and
// requests a vector per chunk from embedder, storing the result via
// InsertEmbedding. Embeddings are keyed by content hash, so a document
// whose file changed (and therefore whose hash changed) gets fresh
// embeddings without any stale vector lingering behind.
func (ix *Indexer) Embed(ctx context.Context, embedder qfsembed.Embedder, opts EmbedOptions) (*EmbedResult, error) {
	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	modelName := opts.Model
	if modelName == "" {
		modelName = embedder.ModelName()
	}

	docs, err := ix.store.ListActiveDocuments(ctx, opts.Collection)
	if err != nil {
		return nil, err
	}

	res := &EmbedResult{}
	for _, doc := range docs {
		n, err := ix.embedDocument(ctx, embedder, doc, chunkSize, modelName)
		if err != nil {
			ix.logger.Warn("failed to embed document",
				slog.String("collection", doc.Collection),
				slog.String("path", doc.Path),
				slog.String("error", err.Error()))
			res.Failed = append(res.Failed, FileFailure{Path: doc.Path, Err: err})
			continue
		}
		res.DocsProcessed++
		res.ChunksEmbedded += n
	}

	return res, nil
}

func (ix *Indexer) embedDocument(ctx context.Context, embedder qfsembed.Embedder, doc *model.Document, chunkSize int, modelName string) (int, error) {
	_, payload, err := ix.store.GetContent(ctx, doc.Hash)
	if err != nil {
		if qerrors.Is(err, qerrors.NotFound) {
			return 0, nil
		}
		return 0, err
	}

	text := string(payload)
	if text == "" {
		return 0, nil
	}

	chunks := splitIntoChunks(text, chunkSize)
	count := 0
	for i, chunk := range chunks {
		vec, err := embedder.Embed(ctx, chunk.text)
		if err != nil {
			return count, err
		}
		emb := model.Embedding{
			Hash:       doc.Hash,
			ChunkIndex: i,
			CharOffset: chunk.offset,
			Model:      modelName,
			Vector:     vec,
		}
		if err := ix.store.InsertEmbedding(ctx, emb); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

type textChunk struct {
	text   string
	offset int
}

// splitIntoChunks splits text into contiguous, non-overlapping runs of at
// most size runes, recording each chunk's starting rune offset.
func splitIntoChunks(text string, size int) []textChunk {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	var chunks []textChunk
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, textChunk{text: string(runes[start:end]), offset: start})
	}
	return chunks
}
