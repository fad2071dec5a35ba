package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewlog/logsearch/internal/index/bundle"
	"github.com/reviewlog/logsearch/internal/search"
	"github.com/reviewlog/logsearch/internal/testutil"
)

func newHeadlessController(t *testing.T, pageSize int) *search.Controller {
	t.Helper()
	cfg := search.DefaultConfig()
	cfg.BundlePath = testutil.BuildBundle(t)
	cfg.PageSize = pageSize
	ctrl := search.NewController(bundle.New(), cfg)
	t.Cleanup(func() { _ = ctrl.Destroy(context.Background()) })
	return ctrl
}

func TestRunHeadless_FirstPage(t *testing.T) {
	ctrl := newHeadlessController(t, 2)

	res, err := runHeadless(t.Context(), ctrl, "  batman ", false)
	require.NoError(t, err)

	assert.Equal(t, "batman", res.Query)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 2, res.Shown)
	assert.Len(t, res.Results, 2)
	for _, item := range res.Results {
		assert.NotEmpty(t, item.Title)
		assert.Contains(t, item.URL, "/reviews/")
		assert.NotContains(t, item.Excerpt, "<mark>")
	}
}

func TestRunHeadless_AllPages(t *testing.T) {
	ctrl := newHeadlessController(t, 1)

	res, err := runHeadless(t.Context(), ctrl, "batman", true)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 3, res.Shown)
	assert.Len(t, res.Results, 3)

	kinds := map[string]bool{}
	for _, item := range res.Results {
		kinds[item.Kind] = true
	}
	assert.True(t, kinds["movie"])
	assert.True(t, kinds["book"])
}

func TestRunHeadless_NoMatches(t *testing.T) {
	ctrl := newHeadlessController(t, 10)

	res, err := runHeadless(t.Context(), ctrl, "zzzzqqq", false)
	require.NoError(t, err)
	assert.Zero(t, res.Total)
	assert.Empty(t, res.Results)

	var buf bytes.Buffer
	writeQueryText(&buf, res)
	assert.Equal(t, search.EmptyMessage+"\n", buf.String())
}

func TestRunHeadless_MissingBundle(t *testing.T) {
	cfg := search.DefaultConfig()
	cfg.BundlePath = t.TempDir()
	ctrl := search.NewController(bundle.New(), cfg)
	defer func() { _ = ctrl.Destroy(context.Background()) }()

	_, err := runHeadless(t.Context(), ctrl, "batman", false)
	require.Error(t, err)
	assert.ErrorIs(t, err, search.ErrInitialization)
}

func TestWriteQueryJSON(t *testing.T) {
	res := &queryResult{
		Query: "batman",
		Total: 1,
		Shown: 1,
		Results: []queryItem{{
			Title:   "Batman Begins",
			URL:     "https://www.franksmovielog.com/reviews/batman-begins-2005/",
			Kind:    "movie",
			Excerpt: "Nolan reboots the caped crusader.",
		}},
	}

	var buf bytes.Buffer
	require.NoError(t, writeQueryJSON(&buf, res))

	var decoded queryResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, *res, decoded)
}

func TestWriteQueryText(t *testing.T) {
	res := &queryResult{
		Query: "batman",
		Total: 3,
		Shown: 1,
		Results: []queryItem{{
			Title:   "Batman Begins",
			URL:     "https://www.franksmovielog.com/reviews/batman-begins-2005/",
			Kind:    "movie",
			Excerpt: "Nolan reboots the caped crusader.",
		}},
	}

	var buf bytes.Buffer
	writeQueryText(&buf, res)
	out := ansi.Strip(buf.String())

	assert.Contains(t, out, `3 results for "batman"`)
	assert.Contains(t, out, "Batman Begins · movie")
	assert.Contains(t, out, "Nolan reboots the caped crusader.")
	assert.Contains(t, out, "2 more.")
}
