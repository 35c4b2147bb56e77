package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/qfs-dev/qfs/internal/watch"
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <collection>",
		Short: "Watch a collection's root directory and reindex it on every debounced change batch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.close()

			ctx := cmd.Context()
			collection, err := e.store.GetCollection(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to look up collection: %w", err)
			}

			ix, err := e.indexer()
			if err != nil {
				return err
			}

			opts := watch.DefaultOptions()
			opts.DebounceWindow = time.Duration(e.cfg.Watch.DebounceMillis) * time.Millisecond

			w, err := watch.NewHybridWatcher(opts)
			if err != nil {
				return fmt.Errorf("failed to create watcher: %w", err)
			}

			scanOpts := scanOptionsForCollection(collection.RootPath, collection.Patterns)
			coordinator := watch.NewCoordinator(w, collection, scanOpts, ix, e.logger)

			fmt.Fprintf(cmd.OutOrStdout(), "watching %s (%s) for changes, backend=%s\n", collection.Name, collection.RootPath, w.WatcherType())

			runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := coordinator.Run(runCtx); err != nil && runCtx.Err() == nil {
				return err
			}
			return nil
		},
	}
	return cmd
}
