package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewlog/logsearch/internal/config"
	"github.com/reviewlog/logsearch/internal/db"
	"github.com/reviewlog/logsearch/internal/models"
	"github.com/reviewlog/logsearch/internal/testutil"
)

const movieFeed = `[
  {"slug":"the-swimmer-1968","title":"The Swimmer","year":"1968","image":"/assets/posters/the-swimmer-1968.png",
   "date":"2025-09-25T00:00:00.000Z","stars":5,"genres":["Drama"],
   "excerpt":"<p>Burt Lancaster descends into hell via a series of manicured backyard pools.</p>"},
  {"slug":"stay-hungry-1976","title":"Stay Hungry","year":"1976","image":"assets/posters/stay-hungry-1976.png",
   "date":"2025-07-26","stars":2.5,"genres":["Comedy","Drama"],"excerpt":"<p>Rich kid Jeff Bridges in Birmingham.</p>"}
]`

const swimmerOnlyFeed = `[
  {"slug":"the-swimmer-1968","title":"The Swimmer","year":"1968","image":"/assets/posters/the-swimmer-1968.png",
   "date":"2025-09-25","stars":5,"excerpt":"<p>Backyard pools.</p>"}
]`

const bookFeed = `[
  {"slug":"shiloh-by-philip-fracassi","title":"Shiloh","authors":["Philip Fracassi"],"kind":"Novella","workYear":"2017",
   "image":"https://cdn.example.com/covers/shiloh.png","date":"2025-07-11","stars":4,
   "excerpt":"<p>A Confederate veteran encounters something supernatural.</p>"}
]`

type feedServer struct {
	mu    sync.Mutex
	feeds map[string]string
	hits  map[string]int
}

func newFeedServer(t *testing.T) (*feedServer, *httptest.Server) {
	t.Helper()
	fs := &feedServer{
		feeds: map[string]string{"/movies/updates.json": movieFeed, "/books/updates.json": bookFeed},
		hits:  map[string]int{},
	}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fs.mu.Lock()
		defer fs.mu.Unlock()
		fs.hits[r.URL.Path]++
		body, ok := fs.feeds[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return fs, ts
}

func (fs *feedServer) set(path, body string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.feeds[path] = body
}

func testSources(baseURL string) []config.SourceConfig {
	return []config.SourceConfig{
		{Name: "movielog", Kind: config.SourceMovie, UpdatesURL: baseURL + "/movies/updates.json", BaseURL: "https://www.franksmovielog.com"},
		{Name: "booklog", Kind: config.SourceBook, UpdatesURL: baseURL + "/books/updates.json", BaseURL: "https://www.franksbooklog.com/"},
	}
}

func testDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.New(db.DefaultConfig(filepath.Join(t.TempDir(), "search.db")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database
}

type recordingTracker struct {
	synced map[string][2]int
}

func (r *recordingTracker) TrackIndexUpdated(sourceID string, upserted, deleted int) {
	r.synced[sourceID] = [2]int{upserted, deleted}
}

func TestRunSyncsFeeds(t *testing.T) {
	fs, ts := newFeedServer(t)
	database := testDB(t)
	dataDir := t.TempDir()
	tracker := &recordingTracker{synced: map[string][2]int{}}

	in := New(Config{DataDir: dataDir, Sources: testSources(ts.URL), RequestsPerSecond: 100}, database, WithTracker(tracker))

	var stages []string
	res, err := in.Run(context.Background(), func(p Progress) {
		if p.Done {
			stages = append(stages, p.Stage+":"+p.Source)
		}
	})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total())
	assert.Equal(t, []string{
		"download:movielog", "download:booklog",
		"process:movielog", "process:booklog",
	}, stages)
	assert.Equal(t, [2]int{2, 0}, tracker.synced["movielog"])

	// Feeds are stored pretty-printed.
	stored, err := os.ReadFile(filepath.Join(dataDir, "movielog.json"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(stored), "[\n  {\n    \"slug\""))

	r, err := database.GetReviewBySlug("movielog", "the-swimmer-1968")
	require.NoError(t, err)
	assert.Equal(t, "Burt Lancaster descends into hell via a series of manicured backyard pools.", r.Excerpt)
	assert.Equal(t, "https://www.franksmovielog.com/reviews/the-swimmer-1968/", r.URL)
	assert.Equal(t, "https://www.franksmovielog.com/assets/posters/the-swimmer-1968.png", r.Image)
	assert.Equal(t, "2025-09-25", r.Date)
	assert.Equal(t, "A poster from The Swimmer (1968)", r.ImageAlt)

	r, err = database.GetReviewBySlug("movielog", "stay-hungry-1976")
	require.NoError(t, err)
	assert.InDelta(t, 2.5, r.Stars, 0.001)
	assert.Equal(t, "https://www.franksmovielog.com/assets/posters/stay-hungry-1976.png", r.Image)

	b, err := database.GetReviewBySlug("booklog", "shiloh-by-philip-fracassi")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/covers/shiloh.png", b.Image)
	assert.Equal(t, "https://www.franksbooklog.com/reviews/shiloh-by-philip-fracassi/", b.URL)
	assert.Equal(t, "Novella", b.WorkKind)
	assert.Equal(t, "A cover of Shiloh by Philip Fracassi", b.ImageAlt)

	sources, err := database.ListSources()
	require.NoError(t, err)
	assert.Len(t, sources, 2)

	last, err := database.GetSyncMeta(models.SyncMetaLastUpdate)
	require.NoError(t, err)
	assert.NotEmpty(t, last)

	// A slug dropped from the feed is deleted on the next run.
	fs.set("/movies/updates.json", swimmerOnlyFeed)
	res, err = in.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Sources[0].Deleted)
	_, err = database.GetReviewBySlug("movielog", "stay-hungry-1976")
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestRunOfflineUsesStoredFeeds(t *testing.T) {
	fs, ts := newFeedServer(t)
	database := testDB(t)
	dataDir := t.TempDir()
	sources := testSources(ts.URL)

	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "movielog.json"), []byte(movieFeed), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "booklog.json"), []byte(bookFeed), 0644))

	in := New(Config{DataDir: dataDir, Sources: sources, Offline: true}, database)
	res, err := in.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total())
	assert.Empty(t, fs.hits)
}

func TestRunDownloadFailureLeavesIndexAlone(t *testing.T) {
	_, ts := newFeedServer(t)
	database := testDB(t)
	sources := testSources(ts.URL)
	sources[1].UpdatesURL = ts.URL + "/missing.json"

	in := New(Config{DataDir: t.TempDir(), Sources: sources, RequestsPerSecond: 100}, database)
	_, err := in.Run(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP status 404")

	n, err := database.CountReviews("movielog")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestParseFeedValidation(t *testing.T) {
	movie := config.SourceConfig{Name: "movielog", Kind: config.SourceMovie}
	book := config.SourceConfig{Name: "booklog", Kind: config.SourceBook}

	_, err := ParseFeed(movie, []byte(`[{"slug":"a","title":"A","image":"a.png","date":"2024-01-01","stars":0}]`))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []Problem{{Path: "0.year", Message: "required"}}, verr.Problems)

	_, err = ParseFeed(book, []byte(`[
		{"slug":"a","title":"","image":"a.png","date":"yesterday","stars":7,"authors":["X"]},
		{"slug":"b","title":"B","date":"2024-01-01","authors":[]}
	]`))
	require.ErrorAs(t, err, &verr)
	var got []string
	for _, p := range verr.Problems {
		got = append(got, p.String())
	}
	assert.ElementsMatch(t, []string{
		"0.title: required",
		"0.date: invalid date",
		"0.stars: must be at most 5",
		"1.image: required",
		"1.stars: required",
		"1.authors: required",
	}, got)
	assert.Contains(t, verr.Error(), "validation error in booklog updates:")

	entries, err := ParseFeed(book, []byte(bookFeed))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "2017", entries[0].WorkYear)
}

func TestParseFeedMissingSlug(t *testing.T) {
	_, err := ParseFeed(config.SourceConfig{Name: "movielog", Kind: config.SourceMovie},
		[]byte(`[{"slug":"a","title":"A"},{"title":"No slug"}]`))
	assert.ErrorIs(t, err, ErrMissingSlug)
	assert.Contains(t, err.Error(), "entry 1")

	_, err = ParseFeed(config.SourceConfig{Name: "movielog"}, []byte(`{not json`))
	assert.Error(t, err)
}

func TestDownloadOptions(t *testing.T) {
	_, ts := newFeedServer(t)
	in := New(Config{RequestsPerSecond: 100}, nil)
	ctx := context.Background()
	out := filepath.Join(t.TempDir(), "movielog.json")
	url := ts.URL + "/movies/updates.json"

	res, err := in.Download(ctx, url, out, DownloadOptions{})
	require.NoError(t, err)
	assert.False(t, res.Skipped)
	assert.Positive(t, res.Bytes)

	_, err = in.Download(ctx, url, out, DownloadOptions{})
	assert.ErrorIs(t, err, ErrFileExists)

	res, err = in.Download(ctx, url, out, DownloadOptions{SkipExisting: true, Overwrite: true})
	require.NoError(t, err)
	assert.True(t, res.Skipped)

	res, err = in.Download(ctx, url, out, FeedDownload)
	require.NoError(t, err)
	assert.False(t, res.Skipped)
}

func TestDownloadWritesInvalidJSONAsIs(t *testing.T) {
	fs, ts := newFeedServer(t)
	fs.set("/broken.json", "not { json")
	in := New(Config{RequestsPerSecond: 100}, nil)
	out := filepath.Join(t.TempDir(), "broken.json")

	_, err := in.Download(context.Background(), ts.URL+"/broken.json", out, FeedDownload)
	require.NoError(t, err)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "not { json", string(data))
}

func TestResolveURL(t *testing.T) {
	tests := []struct {
		base, path, want string
	}{
		{"https://www.franksmovielog.com", "/assets/a.png", "https://www.franksmovielog.com/assets/a.png"},
		{"https://www.franksmovielog.com/", "/assets/a.png", "https://www.franksmovielog.com/assets/a.png"},
		{"https://www.franksmovielog.com/", "assets/a.png", "https://www.franksmovielog.com/assets/a.png"},
		{"https://www.franksmovielog.com", "https://cdn.example.com/a.png", "https://cdn.example.com/a.png"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ResolveURL(tt.base, tt.path), tt.path)
	}
	assert.Equal(t, "https://www.franksbooklog.com/reviews/x/", ReviewURL("https://www.franksbooklog.com/", "x"))
}

func TestLiveFeeds(t *testing.T) {
	testutil.SkipNetworkTests(t)

	in := New(Config{DataDir: t.TempDir(), Sources: config.DefaultSources()}, testDB(t))
	res, err := in.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Positive(t, res.Total())
}
