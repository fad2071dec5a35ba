package server

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewlog/logsearch/internal/config"
	"github.com/reviewlog/logsearch/internal/log"
	"github.com/reviewlog/logsearch/internal/models"
	"github.com/reviewlog/logsearch/internal/search"
	"github.com/reviewlog/logsearch/internal/testutil"
)

func newTestServer(t *testing.T, rateLimit int) http.Handler {
	t.Helper()
	cfg := config.DefaultConfig().Server
	cfg.RateLimitPerMin = rateLimit
	return New(testutil.OpenBundle(t), cfg).Router()
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHealth(t *testing.T) {
	rec := get(t, newTestServer(t, 0), RouteHealth)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "ok", decode[HealthResponse](t, rec).Status)
}

func TestSearch(t *testing.T) {
	h := newTestServer(t, 0)

	rec := get(t, h, RouteSearch+"?q=batman")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[SearchResponse](t, rec)
	assert.Len(t, resp.Results, 3)
	assert.Equal(t, 3, resp.UnfilteredResultCount)
	for _, hit := range resp.Results {
		assert.NotEmpty(t, hit.ID)
	}

	rec = get(t, h, RouteSearch+"?q=batman&kind=book")
	resp = decode[SearchResponse](t, rec)
	assert.Len(t, resp.Results, 1)
	assert.Equal(t, 3, resp.UnfilteredResultCount)

	rec = get(t, h, RouteSearch+"?q=batman&limit=2")
	assert.Len(t, decode[SearchResponse](t, rec).Results, 2)

	rec = get(t, h, RouteSearch+"?q=zzqqnonexistent")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[SearchResponse](t, rec).Results)
}

func TestSearchBadRequests(t *testing.T) {
	h := newTestServer(t, 0)

	tests := []struct {
		name   string
		target string
		code   string
	}{
		{"missing query", RouteSearch, "MISSING_QUERY"},
		{"blank query", RouteSearch + "?q=%20%20", "MISSING_QUERY"},
		{"non-numeric limit", RouteSearch + "?q=batman&limit=ten", "INVALID_LIMIT"},
		{"negative limit", RouteSearch + "?q=batman&limit=-1", "INVALID_LIMIT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, h, tt.target)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.code, decode[ErrorResponse](t, rec).Code)
		})
	}
}

func TestDocument(t *testing.T) {
	h := newTestServer(t, 0)

	id := models.ReviewID("movielog", "batman-begins-2005")
	rec := get(t, h, RouteDocuments+"/"+id+"?q=crusader")
	require.Equal(t, http.StatusOK, rec.Code)
	doc := decode[search.Document](t, rec)
	assert.Equal(t, "Batman Begins (2005)", doc.Meta.Title)
	assert.Contains(t, doc.Excerpt, "<mark>crusader</mark>")

	rec = get(t, h, RouteDocuments+"/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decode[ErrorResponse](t, rec).Code)
}

func TestRateLimit(t *testing.T) {
	h := newTestServer(t, 2)

	assert.Equal(t, http.StatusOK, get(t, h, RouteSearch+"?q=batman").Code)
	assert.Equal(t, http.StatusOK, get(t, h, RouteSearch+"?q=batman").Code)

	rec := get(t, h, RouteSearch+"?q=batman")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE_LIMITED", decode[ErrorResponse](t, rec).Code)

	// Health checks are not limited.
	assert.Equal(t, http.StatusOK, get(t, h, RouteHealth).Code)
}

func TestRespondJSONEncodeFailure(t *testing.T) {
	var buf bytes.Buffer
	log.SetGlobal(log.NewWriter(&buf, "debug"))
	defer log.SetGlobal(nil)

	rec := httptest.NewRecorder()
	respondJSON(rec, http.StatusOK, map[string]interface{}{"results": make(chan int)})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Contains(t, buf.String(), "failed to marshal JSON response")
	assert.Contains(t, buf.String(), `"component":"server"`)
}
