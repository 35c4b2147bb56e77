package multiget

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/qfs-dev/qfs/internal/model"
	"github.com/qfs-dev/qfs/internal/qerrors"
)

const virtualPathPrefix = "qfs://"

// stripVirtualPrefix removes a leading "qfs://" so the remainder can be
// treated as the equivalent plain "collection/path" form (spec §4.5 /
// "Virtual paths").
func stripVirtualPrefix(s string) string {
	return strings.TrimPrefix(s, virtualPathPrefix)
}

// isGlob reports whether pattern contains glob metacharacters (spec §4.5
// step 1: "if the string contains * or ?").
func isGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?")
}

// Resolve classifies pattern (glob, comma-list, or single) and returns the
// matched documents in path order, the order ListActiveDocuments returns
// them in (spec §4.5 steps 1-3).
func (e *Engine) Resolve(ctx context.Context, pattern string) ([]*model.Document, error) {
	switch {
	case isGlob(pattern):
		return e.resolveGlob(ctx, pattern)
	case strings.Contains(pattern, ","):
		return e.resolveCommaList(ctx, pattern)
	default:
		doc, err := e.resolveOne(ctx, pattern)
		if err != nil {
			return nil, err
		}
		return []*model.Document{doc}, nil
	}
}

// resolveGlob matches pattern against each active document's collection/path,
// bare path, and qfs://collection/path forms; a hit in any form wins.
func (e *Engine) resolveGlob(ctx context.Context, pattern string) ([]*model.Document, error) {
	docs, err := e.store.ListActiveDocuments(ctx, "")
	if err != nil {
		return nil, err
	}

	var matched []*model.Document
	for _, doc := range docs {
		candidates := []string{
			doc.VirtualPath(),
			doc.Path,
			virtualPathPrefix + doc.VirtualPath(),
		}
		for _, candidate := range candidates {
			if ok, _ := filepath.Match(pattern, candidate); ok {
				matched = append(matched, doc)
				break
			}
		}
	}
	return matched, nil
}

// resolveCommaList splits pattern on "," and resolves each trimmed element
// independently, skipping elements that match nothing (spec §4.5 step 2).
func (e *Engine) resolveCommaList(ctx context.Context, pattern string) ([]*model.Document, error) {
	var matched []*model.Document
	for _, elem := range strings.Split(pattern, ",") {
		elem = strings.TrimSpace(elem)
		if elem == "" {
			continue
		}
		doc, err := e.resolveOne(ctx, elem)
		if err != nil {
			if qerrors.Is(err, qerrors.NotFound) {
				continue
			}
			return nil, err
		}
		matched = append(matched, doc)
	}
	return matched, nil
}

// resolveOne runs the single-element cascade: exact collection/path, then
// docid, then suffix match on path (spec §4.5 step 2/3).
func (e *Engine) resolveOne(ctx context.Context, elem string) (*model.Document, error) {
	elem = stripVirtualPrefix(strings.TrimSpace(elem))

	if collection, path, ok := splitVirtualPath(elem); ok {
		if doc, err := e.store.GetDocumentByPath(ctx, collection, path); err == nil {
			return doc, nil
		} else if !qerrors.Is(err, qerrors.NotFound) {
			return nil, err
		}
	}

	if doc, err := e.store.ResolveDocid(ctx, elem); err == nil {
		return doc, nil
	}

	doc, err := e.resolveBySuffix(ctx, elem)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// splitVirtualPath splits "collection/path" on its first slash. Inputs
// with no slash (e.g. a bare docid) are not a valid collection/path form.
func splitVirtualPath(s string) (collection, path string, ok bool) {
	idx := strings.IndexByte(s, '/')
	if idx <= 0 || idx == len(s)-1 {
		return "", "", false
	}
	return s[:idx], s[idx+1:], true
}

// resolveBySuffix finds the first active document, ordered lexicographically
// by path (ListActiveDocuments' ORDER BY path), whose path ends with elem.
func (e *Engine) resolveBySuffix(ctx context.Context, elem string) (*model.Document, error) {
	docs, err := e.store.ListActiveDocuments(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, doc := range docs {
		if strings.HasSuffix(doc.Path, elem) {
			return doc, nil
		}
	}
	return nil, qerrors.NotFoundf("no document matches %q", elem)
}
