// Package pathctx resolves the longest-matching context description for a
// (collection, file_path) pair (spec §4.4): a free-text note attached to a
// path prefix, either scoped to one collection or global.
package pathctx

import (
	"context"
	"sort"
	"strings"

	"github.com/qfs-dev/qfs/internal/model"
)

// pathContextStore is the subset of internal/store's Store this package
// depends on, kept narrow so the resolver can be tested against a fake.
type pathContextStore interface {
	ListPathContextsForPrefix(ctx context.Context, collection string) ([]*model.PathContext, error)
}

// Resolver resolves path contexts against a store.
type Resolver struct {
	store pathContextStore
}

// New creates a Resolver over the given store.
func New(store pathContextStore) *Resolver {
	return &Resolver{store: store}
}

// NormalizePath ensures path begins with "/" and has no trailing slash
// (except for the root path itself).
func NormalizePath(path string) string {
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	return path
}

// match pairs a PathContext with whether it is collection-scoped (vs.
// global) for ranking purposes.
type match struct {
	ctx       *model.PathContext
	scoped    bool
	prefixLen int
}

// candidates returns every context row whose path_prefix is a
// path-component prefix of path, ranked collection-specific-first then by
// descending prefix length (longest wins).
func (r *Resolver) candidates(ctx context.Context, collection, path string) ([]match, error) {
	normalized := NormalizePath(path)

	rows, err := r.store.ListPathContextsForPrefix(ctx, collection)
	if err != nil {
		return nil, err
	}

	var matches []match
	for _, row := range rows {
		prefix := NormalizePath(row.PathPrefix)
		if !isPathPrefix(prefix, normalized) {
			continue
		}
		matches = append(matches, match{
			ctx:       row,
			scoped:    row.Collection != "",
			prefixLen: len(prefix),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].scoped != matches[j].scoped {
			return matches[i].scoped // collection-specific beats global
		}
		return matches[i].prefixLen > matches[j].prefixLen // longest prefix wins
	})

	return matches, nil
}

// isPathPrefix reports whether prefix is a path-component prefix of path,
// or an exact match on the terminal component.
func isPathPrefix(prefix, path string) bool {
	if prefix == "/" {
		return true
	}
	if prefix == path {
		return true
	}
	return strings.HasPrefix(path, prefix+"/")
}

// FindContextForPath returns the single best-ranked description for
// (collection, path), or "" if nothing matches.
func (r *Resolver) FindContextForPath(ctx context.Context, collection, path string) (string, error) {
	matches, err := r.candidates(ctx, collection, path)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", nil
	}
	return matches[0].ctx.Description, nil
}

// GetAllContextsForPath returns every matching description, ordered
// general (global, shortest prefix) to specific (collection-scoped,
// longest prefix), joined by two newlines for presentation.
func (r *Resolver) GetAllContextsForPath(ctx context.Context, collection, path string) (string, error) {
	matches, err := r.candidates(ctx, collection, path)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", nil
	}

	// candidates() ranks specific-first/longest-first; reverse for
	// general-to-specific presentation order.
	descriptions := make([]string, len(matches))
	for i, m := range matches {
		descriptions[len(matches)-1-i] = m.ctx.Description
	}
	return strings.Join(descriptions, "\n\n"), nil
}
