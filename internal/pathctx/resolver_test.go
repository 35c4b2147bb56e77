package pathctx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qfs-dev/qfs/internal/model"
)

type fakeStore struct {
	rows []*model.PathContext
}

func (f *fakeStore) ListPathContextsForPrefix(ctx context.Context, collection string) ([]*model.PathContext, error) {
	var out []*model.PathContext
	for _, r := range f.rows {
		if r.Collection == "" || r.Collection == collection {
			out = append(out, r)
		}
	}
	return out, nil
}

func TestNormalizePath(t *testing.T) {
	assert.Equal(t, "/", NormalizePath(""))
	assert.Equal(t, "/a/b", NormalizePath("a/b"))
	assert.Equal(t, "/a/b", NormalizePath("/a/b/"))
	assert.Equal(t, "/", NormalizePath("/"))
}

func TestFindContextForPath_CollectionBeatsGlobal(t *testing.T) {
	fs := &fakeStore{rows: []*model.PathContext{
		{ID: "g", PathPrefix: "/", Description: "global note"},
		{ID: "c", Collection: "docs", PathPrefix: "/guides", Description: "docs note"},
	}}
	r := New(fs)

	desc, err := r.FindContextForPath(context.Background(), "docs", "/guides/setup.md")
	require.NoError(t, err)
	assert.Equal(t, "docs note", desc)
}

func TestFindContextForPath_LongestPrefixWins(t *testing.T) {
	fs := &fakeStore{rows: []*model.PathContext{
		{ID: "short", Collection: "docs", PathPrefix: "/guides", Description: "shallow"},
		{ID: "long", Collection: "docs", PathPrefix: "/guides/setup", Description: "deep"},
	}}
	r := New(fs)

	desc, err := r.FindContextForPath(context.Background(), "docs", "/guides/setup/install.md")
	require.NoError(t, err)
	assert.Equal(t, "deep", desc)
}

func TestFindContextForPath_ExactTerminalComponentMatches(t *testing.T) {
	fs := &fakeStore{rows: []*model.PathContext{
		{ID: "a", PathPrefix: "/guides/setup.md", Description: "this file"},
	}}
	r := New(fs)

	desc, err := r.FindContextForPath(context.Background(), "docs", "/guides/setup.md")
	require.NoError(t, err)
	assert.Equal(t, "this file", desc)
}

func TestFindContextForPath_NoMatchReturnsEmpty(t *testing.T) {
	fs := &fakeStore{rows: []*model.PathContext{
		{ID: "a", PathPrefix: "/other", Description: "unrelated"},
	}}
	r := New(fs)

	desc, err := r.FindContextForPath(context.Background(), "docs", "/guides/setup.md")
	require.NoError(t, err)
	assert.Empty(t, desc)
}

func TestFindContextForPath_PrefixDoesNotMatchSiblingDirectory(t *testing.T) {
	fs := &fakeStore{rows: []*model.PathContext{
		{ID: "a", PathPrefix: "/guide", Description: "should not match /guides"},
	}}
	r := New(fs)

	desc, err := r.FindContextForPath(context.Background(), "docs", "/guides/setup.md")
	require.NoError(t, err)
	assert.Empty(t, desc)
}

func TestGetAllContextsForPath_OrderedGeneralToSpecific(t *testing.T) {
	fs := &fakeStore{rows: []*model.PathContext{
		{ID: "global", PathPrefix: "/", Description: "global"},
		{ID: "collection", Collection: "docs", PathPrefix: "/guides", Description: "collection"},
		{ID: "deep", Collection: "docs", PathPrefix: "/guides/setup", Description: "deep"},
	}}
	r := New(fs)

	all, err := r.GetAllContextsForPath(context.Background(), "docs", "/guides/setup/install.md")
	require.NoError(t, err)
	assert.Equal(t, "global\n\ncollection\n\ndeep", all)
}

func TestGetAllContextsForPath_NoMatchesReturnsEmpty(t *testing.T) {
	fs := &fakeStore{}
	r := New(fs)

	all, err := r.GetAllContextsForPath(context.Background(), "docs", "/x")
	require.NoError(t, err)
	assert.Empty(t, all)
}
