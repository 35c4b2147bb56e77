package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/qfs-dev/qfs/internal/config"
	"github.com/qfs-dev/qfs/internal/embed"
	"github.com/qfs-dev/qfs/internal/indexer"
	"github.com/qfs-dev/qfs/internal/logging"
	"github.com/qfs-dev/qfs/internal/multiget"
	"github.com/qfs-dev/qfs/internal/pathctx"
	"github.com/qfs-dev/qfs/internal/scanner"
	"github.com/qfs-dev/qfs/internal/search"
	"github.com/qfs-dev/qfs/internal/store"
)

// env bundles the resources most subcommands need: the resolved project
// root, its loaded configuration, an open Store, and a logger. close
// releases the Store and flushes the logger's backing file.
type env struct {
	root   string
	cfg    *config.Config
	store  *store.Store
	logger *slog.Logger
	close  func()
}

// openEnv resolves the project root, loads configuration, and opens the
// Store, wiring structured logging the way every subcommand needs it.
func openEnv() (*env, error) {
	root, err := config.FindProjectRoot(".")
	if err != nil {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			root = cwd
		}
	}

	cfg, err := config.Load(root)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Server.LogLevel
	logCfg.WriteToStderr = false
	logger, cleanup, err := logging.Setup(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	dbPath := cfg.DatabasePath(root)
	if dbPath != ":memory:" {
		if err := os.MkdirAll(dirOf(dbPath), 0755); err != nil {
			cleanup()
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	st, err := store.Open(dbPath, logger)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	return &env{
		root:   root,
		cfg:    cfg,
		store:  st,
		logger: logger,
		close: func() {
			_ = st.Close()
			cleanup()
		},
	}, nil
}

func dirOf(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[:i]
		}
	}
	return "."
}

// embedder builds the configured Embedder, auto-detecting Ollama
// availability when no provider is pinned in configuration.
func (e *env) embedder(ctx context.Context) embed.Embedder {
	return embed.NewEmbedder(ctx, e.cfg.Embeddings.Provider, e.cfg.Embeddings.Model, e.cfg.Embeddings.OllamaHost)
}

// searcher builds a Searcher wired to this env's Store, embedder, and
// path-context resolver.
func (e *env) searcher(ctx context.Context) *search.Searcher {
	return search.New(e.store, e.embedder(ctx), pathctx.New(e.store))
}

// multiget builds a multi-get/get Engine over this env's Store.
func (e *env) multiget() *multiget.Engine {
	return multiget.New(e.store)
}

// indexer builds an Indexer over this env's Store and a fresh Scanner.
func (e *env) indexer() (*indexer.Indexer, error) {
	sc, err := scanner.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create scanner: %w", err)
	}
	return indexer.New(e.store, sc, e.logger), nil
}

// scanOptionsForCollection derives scanner.ScanOptions for collection from
// configuration: the collection's own include patterns plus the defaults
// every collection scan honors (gitignore, symlink, size limits).
func scanOptionsForCollection(rootPath string, patterns []string) scanner.ScanOptions {
	return scanner.ScanOptions{
		RootDir:          rootPath,
		IncludePatterns:  patterns,
		RespectGitignore: true,
		MaxFileSize:      scanner.DefaultMaxFileSize,
		FollowSymlinks:   false,
	}
}
