package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qfs-dev/qfs/internal/multiget"
)

func newGetCmd() *cobra.Command {
	var fromLine int
	var maxLines int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "get <path_or_docid>",
		Short: "Fetch a single document by docid or path, optionally sliced to a line range",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.close()

			opts := multiget.GetOptions{IncludeContent: true}
			if fromLine > 0 {
				opts.FromLine = &fromLine
			}
			if cmd.Flags().Changed("max-lines") {
				opts.MaxLines = &maxLines
			}

			result, err := e.multiget().Get(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}

			if jsonOutput {
				return jsonEncode(cmd.OutOrStdout(), result)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s/%s  %q  from_line=%d line_count=%d\n",
				result.Collection, result.Path, result.Title, result.FromLine, result.LineCount)
			fmt.Fprintln(cmd.OutOrStdout(), result.Content)
			return nil
		},
	}

	cmd.Flags().IntVar(&fromLine, "from-line", 0, "1-indexed starting line; overrides a :linenum suffix on the path")
	cmd.Flags().IntVar(&maxLines, "max-lines", 0, "cap on returned line count, unbounded if omitted")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	return cmd
}
