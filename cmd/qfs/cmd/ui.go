package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/qfs-dev/qfs/internal/ui"
)

func newUICmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Show a live status dashboard of collection/document/embedding counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.close()

			cfg := ui.NewConfig(cmd.OutOrStdout())
			renderer := ui.NewRenderer(e.store, nil, cfg)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := renderer.Start(ctx); err != nil {
				return err
			}
			<-ctx.Done()
			return renderer.Stop()
		},
	}
	return cmd
}
