package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qfs-dev/qfs/internal/model"
)

func newCollectionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collection",
		Short: "Manage registered collections",
	}
	cmd.AddCommand(newCollectionAddCmd())
	cmd.AddCommand(newCollectionRmCmd())
	cmd.AddCommand(newCollectionLsCmd())
	return cmd
}

func newCollectionAddCmd() *cobra.Command {
	var patterns []string

	cmd := &cobra.Command{
		Use:   "add <name> <path>",
		Short: "Register a directory as a named collection",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.close()

			collection := &model.Collection{
				Name:     args[0],
				RootPath: args[1],
				Patterns: patterns,
			}
			if err := e.store.CreateCollection(cmd.Context(), collection); err != nil {
				return fmt.Errorf("failed to register collection: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "registered collection %q at %s\n", collection.Name, collection.RootPath)
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&patterns, "pattern", "p", nil, "glob pattern a file's path must match (repeatable), all files if omitted")
	return cmd
}

func newCollectionRmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <name>",
		Short: "Unregister a collection and deactivate its documents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.close()

			if err := e.store.RemoveCollection(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("failed to remove collection: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "removed collection %q\n", args[0])
			return nil
		},
	}
	return cmd
}

func newCollectionLsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List registered collections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.close()

			collections, err := e.store.ListCollections(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list collections: %w", err)
			}

			if len(collections) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "(no collections registered)")
				return nil
			}
			for _, c := range collections {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", c.Name, c.RootPath)
			}
			return nil
		},
	}
	return cmd
}
