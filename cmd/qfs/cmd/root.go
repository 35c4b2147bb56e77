// Package cmd provides the CLI commands for qfs.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/qfs-dev/qfs/internal/logging"
	"github.com/qfs-dev/qfs/pkg/version"
)

var (
	debugMode      bool
	loggingCleanup func()
)

// NewRootCmd creates the root command for the qfs CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "qfs",
		Short: "Hybrid BM25 + vector search over local file collections",
		Long: `qfs indexes one or more directories ("collections") into a local
SQLite database and serves lexical, vector, and hybrid search over them,
either as CLI subcommands or as an MCP tool server for AI coding
assistants.`,
		Version:           version.Version,
		SilenceUsage:      true,
		PersistentPreRunE: startDebugLogging,
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			stopDebugLogging()
			return nil
		},
	}
	cmd.SetVersionTemplate("qfs version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to the qfs log directory")

	cmd.AddCommand(newCollectionCmd())
	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newVSearchCmd())
	cmd.AddCommand(newQueryCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newMultiGetCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newWatchCmd())
	cmd.AddCommand(newUICmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func startDebugLogging(_ *cobra.Command, _ []string) error {
	if !debugMode {
		return nil
	}
	logger, cleanup, err := logging.Setup(logging.DebugConfig())
	if err != nil {
		return fmt.Errorf("failed to set up debug logging: %w", err)
	}
	loggingCleanup = cleanup
	slog.SetDefault(logger)
	slog.Info("debug logging enabled", slog.String("log_file", logging.DefaultLogPath()))
	return nil
}

func stopDebugLogging() {
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
