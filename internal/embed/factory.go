package embed

import (
	"context"
	"strings"
)

// NewEmbedder builds an Embedder for the given provider name ("ollama",
// "static", or "" for auto-detect), wrapped in a query cache. Auto-detect
// probes Ollama's availability and falls back to the static hash embedder
// so vector search degrades gracefully instead of failing outright.
func NewEmbedder(ctx context.Context, provider, model, ollamaHost string) Embedder {
	switch strings.ToLower(provider) {
	case "ollama":
		return NewCachedEmbedder(newOllama(model, ollamaHost), DefaultBatchSize)
	case "static":
		return NewCachedEmbedder(NewStaticEmbedder(), DefaultBatchSize)
	default:
		ollama := newOllama(model, ollamaHost)
		if ollama.Available(ctx) {
			return NewCachedEmbedder(ollama, DefaultBatchSize)
		}
		return NewCachedEmbedder(NewStaticEmbedder(), DefaultBatchSize)
	}
}

func newOllama(model, host string) *OllamaEmbedder {
	cfg := OllamaConfig{
		Host:  host,
		Model: model,
		Retry: DefaultRetryConfig(),
	}
	if cfg.Host == "" {
		cfg.Host = DefaultOllamaHost
	}
	if cfg.Model == "" {
		cfg.Model = DefaultOllamaModel
	}
	return NewOllamaEmbedder(cfg)
}
