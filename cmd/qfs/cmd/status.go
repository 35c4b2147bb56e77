package cmd

import (
	"github.com/spf13/cobra"

	"github.com/qfs-dev/qfs/internal/ui"
)

func newStatusCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Report registered collections, document/embedding counts, and the schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.close()

			status, err := e.store.GetStatus(cmd.Context())
			if err != nil {
				return err
			}

			renderer := ui.NewStatusRenderer(cmd.OutOrStdout(), ui.DetectNoColor() || !ui.IsTTY(cmd.OutOrStdout()))
			if jsonOutput {
				return renderer.RenderJSON(status)
			}
			return renderer.Render(status)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}
