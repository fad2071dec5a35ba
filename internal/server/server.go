// Package server exposes a review index over HTTP so remote clients can use
// it as their search index.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/reviewlog/logsearch/internal/config"
	"github.com/reviewlog/logsearch/internal/db"
	"github.com/reviewlog/logsearch/internal/index/bundle"
	"github.com/reviewlog/logsearch/internal/log"
	"github.com/reviewlog/logsearch/internal/search"
	"github.com/reviewlog/logsearch/pkg/version"
)

// Index is what the server needs from a search index.
type Index interface {
	Search(ctx context.Context, query string, opts *search.Options) (*search.Results, error)
	Document(ctx context.Context, id, query string) (*search.Document, error)
}

// Server serves an Index over HTTP.
type Server struct {
	index  Index
	cfg    config.ServerConfig
	logger zerolog.Logger
}

// New creates a server for index.
func New(index Index, cfg config.ServerConfig) *Server {
	return &Server{
		index:  index,
		cfg:    cfg,
		logger: log.Component("server"),
	}
}

// Router builds the chi router with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get(RouteHealth, s.handleHealth)

	r.Group(func(r chi.Router) {
		if s.cfg.RateLimitPerMin > 0 {
			r.Use(httprate.Limit(
				s.cfg.RateLimitPerMin,
				time.Minute,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
					respondError(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests")
				}),
			))
		}
		r.Get(RouteSearch, s.handleSearch)
		r.Get(RouteDocuments+"/{id}", s.handleDocument)
	})

	return r
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.cfg.Addr).Msg("index server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	timeout := time.Duration(s.cfg.ShutdownTimeoutS) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	s.logger.Info().Msg("index server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, HealthResponse{Status: "ok", Version: version.Version})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := strings.TrimSpace(q.Get(ParamQuery))
	if query == "" {
		respondError(w, http.StatusBadRequest, "MISSING_QUERY", "query parameter q is required")
		return
	}

	opts := &search.Options{Filters: map[string]string{}}
	for param, filter := range map[string]string{
		ParamKind:     bundle.FilterKind,
		ParamSource:   bundle.FilterSource,
		ParamMinStars: bundle.FilterMinStars,
	} {
		if v := q.Get(param); v != "" {
			opts.Filters[filter] = v
		}
	}

	limit := 0
	if v := q.Get(ParamLimit); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "INVALID_LIMIT", "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	res, err := s.index.Search(r.Context(), query, opts)
	if err != nil {
		s.logger.Error().Err(err).Str("query", query).Msg("search failed")
		respondError(w, http.StatusInternalServerError, "SEARCH_FAILED", "search failed")
		return
	}

	hits := res.Results
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}

	resp := SearchResponse{
		Results:               make([]SearchHit, len(hits)),
		UnfilteredResultCount: res.UnfilteredResultCount,
	}
	for i, h := range hits {
		resp.Results[i] = SearchHit{ID: h.ID, Score: h.Score, Words: h.Words}
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, err := s.index.Document(r.Context(), id, r.URL.Query().Get(ParamQuery))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "document not found")
			return
		}
		s.logger.Error().Err(err).Str("id", id).Msg("document lookup failed")
		respondError(w, http.StatusInternalServerError, "DOCUMENT_FAILED", "document lookup failed")
		return
	}
	respondJSON(w, http.StatusOK, doc)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Str("request_id", chimiddleware.GetReqID(r.Context())).
			Msg("request")
	})
}

// respondJSON sends a JSON response with proper headers.
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		l := log.Component("server")
		l.Error().Err(err).Msg("failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{Code: code, Message: message})
}
