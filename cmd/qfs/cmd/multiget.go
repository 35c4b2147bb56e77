package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMultiGetCmd() *cobra.Command {
	var maxBytes int
	var maxLines int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "multi-get <pattern>",
		Short: "Fetch multiple documents matching a glob, comma-separated list, or single path/docid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.close()

			var maxLinesPtr *int
			if cmd.Flags().Changed("max-lines") {
				maxLinesPtr = &maxLines
			}

			results, err := e.multiget().MultiGet(cmd.Context(), args[0], maxBytes, maxLinesPtr)
			if err != nil {
				return err
			}

			if jsonOutput {
				return jsonEncode(cmd.OutOrStdout(), results)
			}

			for _, r := range results {
				if r.Skipped {
					fmt.Fprintf(cmd.OutOrStdout(), "%s/%s  [%s]  skipped: %s\n", r.Collection, r.Path, r.Docid, r.SkipReason)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s/%s  [%s]  %q\n", r.Collection, r.Path, r.Docid, r.Title)
				fmt.Fprintln(cmd.OutOrStdout(), r.Content)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&maxBytes, "max-bytes", 0, "per-document size cap before the content is skipped, default 10240")
	cmd.Flags().IntVar(&maxLines, "max-lines", 0, "cap on returned line count per document, unbounded if omitted")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	return cmd
}
