package multiget

import (
	"context"
	"fmt"
)

// MultiGet resolves pattern to a set of documents and returns each one's
// bounded content, in discovery order (spec §4.5). maxBytes<=0 falls back
// to DefaultMaxBytes.
func (e *Engine) MultiGet(ctx context.Context, pattern string, maxBytes int, maxLines *int) ([]MultiGetResult, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	docs, err := e.Resolve(ctx, pattern)
	if err != nil {
		return nil, err
	}

	results := make([]MultiGetResult, 0, len(docs))
	for _, doc := range docs {
		r := MultiGetResult{
			Collection: doc.Collection,
			Path:       doc.Path,
			Docid:      doc.Docid(),
			Title:      doc.Title,
		}

		content, payload, err := e.store.GetContent(ctx, doc.Hash)
		if err != nil {
			return nil, err
		}

		if content.Size > int64(maxBytes) {
			r.Skipped = true
			r.SkipReason = fmt.Sprintf("content size %d bytes exceeds max_bytes %d", content.Size, maxBytes)
			results = append(results, r)
			continue
		}

		text := decodeContent(payload)
		sliced, _ := sliceLines(text, 1, maxLines)
		r.Content = sliced
		results = append(results, r)
	}
	return results, nil
}
