package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qfs-dev/qfs/internal/indexer"
)

func newIndexCmd() *cobra.Command {
	var embed bool

	cmd := &cobra.Command{
		Use:   "index <collection>",
		Short: "Scan a collection's root directory and commit changes to the index",
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

			opts := scanOptionsForCollection(collection.RootPath, collection.Patterns)
			result, err := ix.IndexCollection(ctx, collection, opts)
			if err != nil {
				return fmt.Errorf("indexing failed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "scanned=%d inserted=%d updated=%d deactivated=%d failures=%d\n",
				result.Scanned, result.Inserted, result.Updated, result.Deactivated, len(result.FailedFiles))
			for _, f := range result.FailedFiles {
				fmt.Fprintf(cmd.OutOrStdout(), "  failed: %s: %v\n", f.Path, f.Err)
			}

			if embed {
				emb := e.embedder(ctx)
				defer func() { _ = emb.Close() }()
				embedResult, err := ix.Embed(ctx, emb, indexer.EmbedOptions{Collection: collection.Name, Model: emb.ModelName()})
				if err != nil {
					return fmt.Errorf("embedding failed: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "embedded_docs=%d chunks=%d\n", embedResult.DocsProcessed, embedResult.ChunksEmbedded)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&embed, "embed", false, "Also generate vector embeddings for every active document in the collection")
	return cmd
}
