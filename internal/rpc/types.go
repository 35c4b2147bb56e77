package rpc

// SearchInput is the input schema shared by the search and vsearch tools.
type SearchInput struct {
	Query         string  `json:"query" jsonschema:"the search query text"`
	Collection    string  `json:"collection,omitempty" jsonschema:"restrict results to this collection, all collections if omitted"`
	Limit         int     `json:"limit,omitempty" jsonschema:"maximum number of results, default 20"`
	MinScore      float64 `json:"min_score,omitempty" jsonschema:"drop results scoring below this threshold"`
	IncludeBinary bool    `json:"include_binary,omitempty" jsonschema:"include binary files in lexical search, default false"`
}

// QueryInput is the input schema for the RRF-fused query tool.
type QueryInput struct {
	Query      string `json:"query" jsonschema:"the search query text"`
	Collection string `json:"collection,omitempty" jsonschema:"restrict results to this collection, all collections if omitted"`
	Limit      int    `json:"limit,omitempty" jsonschema:"maximum number of results, default 20"`
}

// SearchOutput wraps the ranked hit list returned by search/vsearch/query.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results" jsonschema:"ranked search results"`
}

// SearchResultOutput is one ranked hit (spec §6 search/vsearch/query shape).
type SearchResultOutput struct {
	Docid      string  `json:"docid" jsonschema:"short content-hash handle for the get/multi_get tools"`
	Collection string  `json:"collection" jsonschema:"collection the document belongs to"`
	Path       string  `json:"path" jsonschema:"path relative to the collection root"`
	Title      string  `json:"title" jsonschema:"extracted document title"`
	Score      float64 `json:"score" jsonschema:"relevance score; meaning depends on mode"`
	Snippet    string  `json:"snippet,omitempty" jsonschema:"matched text excerpt"`
	Context    string  `json:"context,omitempty" jsonschema:"path-scoped description, if one was registered"`
}

// GetInput is the input schema for the get tool.
type GetInput struct {
	PathOrDocid    string `json:"path_or_docid" jsonschema:"a docid, a collection/path, or qfs://collection/path; may carry a :linenum suffix"`
	FromLine       int    `json:"from_line,omitempty" jsonschema:"1-indexed starting line; overrides any :linenum suffix"`
	MaxLines       int    `json:"max_lines,omitempty" jsonschema:"cap on returned line count, unbounded if omitted"`
	IncludeContent bool   `json:"include_content,omitempty" jsonschema:"not consulted: the get tool always returns the file content"`
}

// GetOutput is the result of the get tool.
type GetOutput struct {
	Collection string `json:"collection"`
	Path       string `json:"path"`
	Title      string `json:"title"`
	Content    string `json:"content,omitempty"`
	FromLine   int    `json:"from_line,omitempty"`
	LineCount  int    `json:"line_count"`
}

// MultiGetInput is the input schema for the multi_get tool.
type MultiGetInput struct {
	Pattern  string `json:"pattern" jsonschema:"a glob, comma-separated list, or single path/docid"`
	MaxBytes int    `json:"max_bytes,omitempty" jsonschema:"per-document size cap before the content is skipped, default 10240"`
	MaxLines int    `json:"max_lines,omitempty" jsonschema:"cap on returned line count per document, unbounded if omitted"`
}

// MultiGetOutput wraps the per-document results of the multi_get tool.
type MultiGetOutput struct {
	Results []MultiGetResultOutput `json:"results"`
}

// MultiGetResultOutput is one matched document, or a skip marker.
type MultiGetResultOutput struct {
	Collection string `json:"collection"`
	Path       string `json:"path"`
	Docid      string `json:"docid"`
	Title      string `json:"title"`
	Content    string `json:"content,omitempty"`
	Skipped    bool   `json:"skipped,omitempty"`
	SkipReason string `json:"skip_reason,omitempty"`
}

// StatusInput is the (empty) input schema for the status tool.
type StatusInput struct{}

// StatusOutput is the summary returned by the status tool (spec §6).
type StatusOutput struct {
	Collections   []string `json:"collections"`
	Documents     int      `json:"documents"`
	Embeddings    int      `json:"embeddings"`
	SchemaVersion int      `json:"schema_version"`
}
