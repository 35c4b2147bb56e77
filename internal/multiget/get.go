package multiget

import "context"

// Get fetches a single document by path or docid, with line-range
// slicing (spec §6 "get"). pathOrDocid may carry a ":linenum" suffix,
// overridden by an explicit opts.FromLine.
func (e *Engine) Get(ctx context.Context, pathOrDocid string, opts GetOptions) (*GetResult, error) {
	lookup, suffixLine, hasSuffix := splitLineSuffix(pathOrDocid)

	doc, err := e.resolveOne(ctx, lookup)
	if err != nil {
		return nil, err
	}

	fromLine := 1
	switch {
	case opts.FromLine != nil:
		fromLine = *opts.FromLine
	case hasSuffix:
		fromLine = suffixLine
	}
	if fromLine <= 0 {
		fromLine = 1
	}

	result := &GetResult{
		Collection: doc.Collection,
		Path:       doc.Path,
		Title:      doc.Title,
		FromLine:   fromLine,
	}

	if !opts.IncludeContent {
		return result, nil
	}

	_, payload, err := e.store.GetContent(ctx, doc.Hash)
	if err != nil {
		return nil, err
	}

	text := decodeContent(payload)
	sliced, lineCount := sliceLines(text, fromLine, opts.MaxLines)
	result.Content = sliced
	result.LineCount = lineCount
	return result, nil
}
