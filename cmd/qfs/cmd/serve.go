package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/qfs-dev/qfs/internal/rpc"
)

func newServeCmd() *cobra.Command {
	var transport string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP tool server, exposing search/vsearch/query/get/multi_get/status over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			server := rpc.NewServer(e.searcher(ctx), e.multiget(), e.store, e.logger)
			return server.Serve(ctx, transport)
		},
	}

	cmd.Flags().StringVar(&transport, "transport", "stdio", "RPC transport (only stdio is implemented)")
	return cmd
}
