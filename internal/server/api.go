package server

// Wire types for the HTTP index API. The remote index client decodes the
// same shapes.

// SearchResponse is returned by GET /api/search.
type SearchResponse struct {
	Results               []SearchHit `json:"results"`
	UnfilteredResultCount int         `json:"unfilteredResultCount"`
}

// SearchHit is a lightweight handle; the document is fetched separately.
type SearchHit struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
	Words []int   `json:"words,omitempty"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HealthResponse is returned by GET /healthz.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// Query parameter names.
const (
	ParamQuery    = "q"
	ParamKind     = "kind"
	ParamSource   = "source"
	ParamMinStars = "min_stars"
	ParamLimit    = "limit"
)

// Routes.
const (
	RouteHealth    = "/healthz"
	RouteSearch    = "/api/search"
	RouteDocuments = "/api/documents"
)
