package watch

import (
	"context"
	"log/slog"

	"github.com/qfs-dev/qfs/internal/indexer"
	"github.com/qfs-dev/qfs/internal/model"
	"github.com/qfs-dev/qfs/internal/scanner"
)

// runner is the narrow dependency the Coordinator needs from
// internal/indexer: re-running a collection's scan/hash/commit cycle.
type runner interface {
	IndexCollection(ctx context.Context, collection *model.Collection, opts scanner.ScanOptions) (*indexer.Result, error)
}

// Coordinator watches a collection's root directory and re-runs the
// Indexer's scan/hash/commit cycle whenever a debounced batch of changes
// arrives (spec §4 Supplemented features, "watch mode"). It does not diff
// individual paths: a full collection rescan is the Indexer's own job, and
// stays cheap because commitFile skips documents whose hash is unchanged.
type Coordinator struct {
	watcher    Watcher
	collection *model.Collection
	scanOpts   scanner.ScanOptions
	ix         runner
	logger     *slog.Logger
}

// NewCoordinator builds a Coordinator over an already-constructed Watcher
// and Indexer.
func NewCoordinator(w Watcher, collection *model.Collection, scanOpts scanner.ScanOptions, ix runner, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{watcher: w, collection: collection, scanOpts: scanOpts, ix: ix, logger: logger}
}

// Run starts the watcher and blocks, reindexing the collection on every
// debounced batch until ctx is cancelled or the watcher stops.
func (c *Coordinator) Run(ctx context.Context) error {
	go func() {
		if err := c.watcher.Start(ctx, c.collection.RootPath); err != nil && ctx.Err() == nil {
			c.logger.Error("watcher stopped with error",
				slog.String("collection", c.collection.Name),
				slog.String("error", err.Error()))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			_ = c.watcher.Stop()
			return ctx.Err()
		case batch, ok := <-c.watcher.Events():
			if !ok {
				return nil
			}
			c.reindex(ctx, batch)
		case err, ok := <-c.watcher.Errors():
			if !ok {
				continue
			}
			c.logger.Warn("watcher error",
				slog.String("collection", c.collection.Name),
				slog.String("error", err.Error()))
		}
	}
}

// Stop stops the underlying watcher.
func (c *Coordinator) Stop() error {
	return c.watcher.Stop()
}

func (c *Coordinator) reindex(ctx context.Context, batch []FileEvent) {
	c.logger.Info("reindexing collection after change batch",
		slog.String("collection", c.collection.Name),
		slog.Int("batch_size", len(batch)))

	result, err := c.ix.IndexCollection(ctx, c.collection, c.scanOpts)
	if err != nil {
		c.logger.Error("reindex failed",
			slog.String("collection", c.collection.Name),
			slog.String("error", err.Error()))
		return
	}

	c.logger.Info("reindex complete",
		slog.String("collection", c.collection.Name),
		slog.Int("scanned", result.Scanned),
		slog.Int("inserted", result.Inserted),
		slog.Int("updated", result.Updated),
		slog.Int("deactivated", result.Deactivated))
}
