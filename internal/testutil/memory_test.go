package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewlog/logsearch/internal/search"
)

func TestMemoryIndex(t *testing.T) {
	idx := NewMemoryIndex()
	idx.Add("a", search.Document{URL: "/a", Meta: search.Meta{Title: "Batman Begins"}, Filters: map[string][]string{"kind": {"movie"}}})
	idx.Add("b", search.Document{URL: "/b", Meta: search.Meta{Title: "Batman: Year One"}, Filters: map[string][]string{"kind": {"book"}}})
	idx.Add("c", search.Document{URL: "/c", Meta: search.Meta{Title: "Heat"}})
	require.NoError(t, idx.Init(context.Background(), ""))

	res, err := idx.Search(context.Background(), "BATMAN", nil)
	require.NoError(t, err)
	require.Len(t, res.Results, 2)
	assert.Equal(t, "a", res.Results[0].ID)

	doc, err := res.Results[1].Data(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/b", doc.URL)

	res, err = idx.Search(context.Background(), "batman", &search.Options{Filters: map[string]string{"kind": "book"}})
	require.NoError(t, err)
	assert.Len(t, res.Results, 1)
	assert.Equal(t, 2, res.UnfilteredResultCount)

	_, err = idx.Document(context.Background(), "zz", "")
	assert.ErrorIs(t, err, ErrNotFound)
}
