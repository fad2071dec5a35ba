package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewlog/logsearch/internal/config"
	"github.com/reviewlog/logsearch/internal/models"
	"github.com/reviewlog/logsearch/internal/search"
	"github.com/reviewlog/logsearch/internal/server"
	"github.com/reviewlog/logsearch/internal/testutil"
	"github.com/reviewlog/logsearch/pkg/version"
)

func startServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := config.DefaultConfig().Server
	cfg.RateLimitPerMin = 0
	ts := httptest.NewServer(server.New(testutil.OpenBundle(t), cfg).Router())
	t.Cleanup(ts.Close)
	return ts
}

func newIndex(t *testing.T, url string, opts ...Option) *Index {
	t.Helper()
	x, err := New(url, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = x.Destroy(context.Background()) })
	return x
}

func TestNewRejectsBadURL(t *testing.T) {
	_, err := New("ftp://example.com")
	assert.Error(t, err)
	_, err = New("://nope")
	assert.Error(t, err)
}

func TestSearchAgainstServer(t *testing.T) {
	ts := startServer(t)
	x := newIndex(t, ts.URL+"/")

	_, err := x.Search(context.Background(), "batman", nil)
	assert.ErrorIs(t, err, ErrNotInitialized)

	require.NoError(t, x.Init(context.Background(), "ignored"))

	res, err := x.Search(context.Background(), "batman", nil)
	require.NoError(t, err)
	require.Len(t, res.Results, 3)
	assert.Equal(t, 3, res.UnfilteredResultCount)

	doc, err := res.Results[0].Data(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, doc.URL)
	assert.NotEmpty(t, doc.Meta.Title)

	res, err = x.Search(context.Background(), "batman", &search.Options{Filters: map[string]string{"kind": models.KindBook}})
	require.NoError(t, err)
	require.Len(t, res.Results, 1)
	doc, err = res.Results[0].Data(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Batman: Year One by Frank Miller", doc.Meta.Title)
}

func TestDocumentNotFound(t *testing.T) {
	x := newIndex(t, startServer(t).URL)
	require.NoError(t, x.Init(context.Background(), ""))

	_, err := x.Document(context.Background(), "missing", "")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, gobreaker.StateClosed, x.State())
}

func TestDriveController(t *testing.T) {
	x := newIndex(t, startServer(t).URL)

	cfg := search.DefaultConfig()
	cfg.PageSize = 2
	c := search.NewController(x, cfg)
	t.Cleanup(func() { _ = c.Destroy(context.Background()) })

	require.NoError(t, c.Initialize(context.Background(), nil))
	c.Submit("batman")

	st, ok := c.State().(search.ResultsState)
	require.True(t, ok)
	assert.Equal(t, 3, st.Total)
	assert.Equal(t, 2, st.VisibleCount)

	require.NoError(t, c.LoadMore(context.Background()))
	st = c.State().(search.ResultsState)
	assert.Equal(t, 3, st.VisibleCount)
}

func TestInitIncompatibleVersion(t *testing.T) {
	old := version.Version
	version.Version = "v1.0.0"
	t.Cleanup(func() { version.Version = old })

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok","version":"v2.1.0"}`))
	}))
	t.Cleanup(ts.Close)

	err := newIndex(t, ts.URL).Init(context.Background(), "")
	assert.ErrorIs(t, err, version.ErrIncompatible)
}

func TestInitUnhealthy(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"degraded","version":"dev"}`))
	}))
	t.Cleanup(ts.Close)

	err := newIndex(t, ts.URL).Init(context.Background(), "")
	assert.ErrorIs(t, err, ErrUnhealthy)
}

func TestBreakerOpensOnServerErrors(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"code":"SEARCH_FAILED","message":"search failed"}`))
	}))
	t.Cleanup(ts.Close)

	x := newIndex(t, ts.URL, WithTripAfter(2), WithOpenTimeout(time.Hour))

	for i := 0; i < 2; i++ {
		err := x.Init(context.Background(), "")
		var se *StatusError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, http.StatusInternalServerError, se.Status)
		assert.Equal(t, "SEARCH_FAILED", se.Code)
	}
	assert.Equal(t, gobreaker.StateOpen, x.State())

	err := x.Init(context.Background(), "")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.EqualValues(t, 2, hits.Load())
}

func TestClientErrorsDoNotTrip(t *testing.T) {
	assert.True(t, isSuccessful(nil))
	assert.True(t, isSuccessful(ErrNotFound))
	assert.True(t, isSuccessful(context.Canceled))
	assert.True(t, isSuccessful(&StatusError{Status: http.StatusBadRequest}))
	assert.False(t, isSuccessful(&StatusError{Status: http.StatusTooManyRequests}))
	assert.False(t, isSuccessful(&StatusError{Status: http.StatusBadGateway}))
	assert.False(t, isSuccessful(context.DeadlineExceeded))
}
