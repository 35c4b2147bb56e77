package rpc

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/qfs-dev/qfs/internal/multiget"
	"github.com/qfs-dev/qfs/internal/search"
)

const defaultResultLimit = 20

// handleSearch runs lexical BM25 search (spec §6 "search").
func (s *Server) handleSearch(ctx context.Context, _ *mcp.CallToolRequest, in SearchInput) (
	*mcp.CallToolResult, SearchOutput, error,
) {
	if in.Query == "" {
		return nil, SearchOutput{}, NewInvalidParamsError("query is required")
	}

	results, err := s.searcher.Search(ctx, search.Options{
		Mode:          search.ModeBM25,
		Query:         in.Query,
		Collection:    in.Collection,
		IncludeBinary: in.IncludeBinary,
		Limit:         limitOrDefault(in.Limit),
		MinScore:      in.MinScore,
	})
	if err != nil {
		return nil, SearchOutput{}, MapError(err)
	}
	return nil, toSearchOutput(results), nil
}

// handleVSearch runs dense vector search (spec §6 "vsearch").
func (s *Server) handleVSearch(ctx context.Context, _ *mcp.CallToolRequest, in SearchInput) (
	*mcp.CallToolResult, SearchOutput, error,
) {
	if in.Query == "" {
		return nil, SearchOutput{}, NewInvalidParamsError("query is required")
	}

	results, err := s.searcher.Search(ctx, search.Options{
		Mode:       search.ModeVector,
		Query:      in.Query,
		Collection: in.Collection,
		Limit:      limitOrDefault(in.Limit),
		MinScore:   in.MinScore,
	})
	if err != nil {
		return nil, SearchOutput{}, MapError(err)
	}
	return nil, toSearchOutput(results), nil
}

// handleQuery runs the RRF-fused hybrid search (spec §6 "query").
func (s *Server) handleQuery(ctx context.Context, _ *mcp.CallToolRequest, in QueryInput) (
	*mcp.CallToolResult, SearchOutput, error,
) {
	if in.Query == "" {
		return nil, SearchOutput{}, NewInvalidParamsError("query is required")
	}

	results, err := s.searcher.Search(ctx, search.Options{
		Mode:       search.ModeHybrid,
		Query:      in.Query,
		Collection: in.Collection,
		Limit:      limitOrDefault(in.Limit),
	})
	if err != nil {
		return nil, SearchOutput{}, MapError(err)
	}
	return nil, toSearchOutput(results), nil
}

// handleGet fetches one document, optionally sliced to a line range
// (spec §6 "get").
func (s *Server) handleGet(ctx context.Context, _ *mcp.CallToolRequest, in GetInput) (
	*mcp.CallToolResult, GetOutput, error,
) {
	if in.PathOrDocid == "" {
		return nil, GetOutput{}, NewInvalidParamsError("path_or_docid is required")
	}

	opts := multiget.GetOptions{IncludeContent: true}
	if in.FromLine > 0 {
		opts.FromLine = &in.FromLine
	}
	if in.MaxLines > 0 {
		opts.MaxLines = &in.MaxLines
	}

	result, err := s.multiget.Get(ctx, in.PathOrDocid, opts)
	if err != nil {
		return nil, GetOutput{}, MapError(err)
	}

	return nil, GetOutput{
		Collection: result.Collection,
		Path:       result.Path,
		Title:      result.Title,
		Content:    result.Content,
		FromLine:   result.FromLine,
		LineCount:  result.LineCount,
	}, nil
}

// handleMultiGet fetches a bounded set of documents matching a pattern
// (spec §6 "multi_get", spec §4.5).
func (s *Server) handleMultiGet(ctx context.Context, _ *mcp.CallToolRequest, in MultiGetInput) (
	*mcp.CallToolResult, MultiGetOutput, error,
) {
	if in.Pattern == "" {
		return nil, MultiGetOutput{}, NewInvalidParamsError("pattern is required")
	}

	maxBytes := in.MaxBytes
	if maxBytes <= 0 {
		maxBytes = multiget.DefaultMaxBytes
	}
	var maxLines *int
	if in.MaxLines > 0 {
		maxLines = &in.MaxLines
	}

	results, err := s.multiget.MultiGet(ctx, in.Pattern, maxBytes, maxLines)
	if err != nil {
		return nil, MultiGetOutput{}, MapError(err)
	}

	out := MultiGetOutput{Results: make([]MultiGetResultOutput, 0, len(results))}
	for _, r := range results {
		out.Results = append(out.Results, MultiGetResultOutput{
			Collection: r.Collection,
			Path:       r.Path,
			Docid:      r.Docid,
			Title:      r.Title,
			Content:    r.Content,
			Skipped:    r.Skipped,
			SkipReason: r.SkipReason,
		})
	}
	return nil, out, nil
}

// handleStatus reports the store summary (spec §6 "status").
func (s *Server) handleStatus(ctx context.Context, _ *mcp.CallToolRequest, _ StatusInput) (
	*mcp.CallToolResult, StatusOutput, error,
) {
	st, err := s.status.GetStatus(ctx)
	if err != nil {
		return nil, StatusOutput{}, MapError(err)
	}
	return nil, StatusOutput{
		Collections:   st.Collections,
		Documents:     st.Documents,
		Embeddings:    st.Embeddings,
		SchemaVersion: st.SchemaVersion,
	}, nil
}

func limitOrDefault(limit int) int {
	if limit <= 0 {
		return defaultResultLimit
	}
	return limit
}

func toSearchOutput(results []search.Result) SearchOutput {
	out := SearchOutput{Results: make([]SearchResultOutput, 0, len(results))}
	for _, r := range results {
		out.Results = append(out.Results, SearchResultOutput{
			Docid:      r.Docid,
			Collection: r.Document.Collection,
			Path:       r.Document.Path,
			Title:      r.Document.Title,
			Score:      r.Score,
			Snippet:    r.Snippet,
			Context:    r.Context,
		})
	}
	return out
}
