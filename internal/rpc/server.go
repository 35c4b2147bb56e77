package rpc

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/qfs-dev/qfs/internal/multiget"
	"github.com/qfs-dev/qfs/internal/search"
	"github.com/qfs-dev/qfs/internal/store"
	"github.com/qfs-dev/qfs/pkg/version"
)

// statusStore is the narrow Store surface the status tool depends on.
type statusStore interface {
	GetStatus(ctx context.Context) (*store.Status, error)
}

// Server is the MCP tool server exposing QFS's six search/retrieval
// operations (spec §6) over MCP's stdio transport.
type Server struct {
	mcp      *mcp.Server
	searcher *search.Searcher
	multiget *multiget.Engine
	status   statusStore
	logger   *slog.Logger
}

// NewServer builds the MCP tool server and registers its six tools.
func NewServer(searcher *search.Searcher, mg *multiget.Engine, st statusStore, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		searcher: searcher,
		multiget: mg,
		status:   st,
		logger:   logger,
	}

	s.mcp = mcp.NewServer(
		&mcp.Implementation{Name: "qfs", Version: version.Version},
		nil,
	)
	s.registerTools()
	return s
}

// MCPServer returns the underlying go-sdk server instance.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// Serve runs the tool server over the given transport. Only "stdio" is
// implemented; MCP's stdio transport is what spec §6's "RPC collaborator"
// means by line-delimited JSON-RPC.
func (s *Server) Serve(ctx context.Context, transport string) error {
	s.logger.Info("starting rpc server", slog.String("transport", transport))

	switch transport {
	case "stdio":
		err := s.mcp.Run(ctx, &mcp.StdioTransport{})
		if err != nil && err != context.Canceled {
			s.logger.Error("rpc server stopped with error", slog.String("error", err.Error()))
			return err
		}
		s.logger.Info("rpc server stopped")
		return nil
	default:
		return fmt.Errorf("unknown transport: %s (supported: stdio)", transport)
	}
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "search",
		Description: "Lexical BM25 search over indexed collections. Fast keyword matching with snippet highlighting.",
	}, s.handleSearch)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "vsearch",
		Description: "Dense vector search over indexed collections using embedding similarity. Fails with NO_EMBEDDINGS if the collection has no embeddings yet.",
	}, s.handleVSearch)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "query",
		Description: "Hybrid search: runs BM25 and vector search together and fuses the rankings with Reciprocal Rank Fusion. The best general-purpose search tool.",
	}, s.handleQuery)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get",
		Description: "Fetch a single document by docid or path, optionally sliced to a line range.",
	}, s.handleGet)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "multi_get",
		Description: "Fetch multiple documents matching a glob, comma-separated list, or single path/docid, each bounded by max_bytes.",
	}, s.handleMultiGet)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "status",
		Description: "Report registered collections, document/embedding counts, and the schema version.",
	}, s.handleStatus)

	s.logger.Debug("rpc tools registered", slog.Int("count", 6))
}
