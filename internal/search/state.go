package search

// Kind tags the active SearchState variant.
type Kind int

const (
	KindIdle Kind = iota
	KindLoading
	KindEmpty
	KindResults
	KindError
)

// Kinds lists every state kind. Render dispatch is tested against this list.
func Kinds() []Kind {
	return []Kind{KindIdle, KindLoading, KindEmpty, KindResults, KindError}
}

func (k Kind) String() string {
	switch k {
	case KindIdle:
		return "idle"
	case KindLoading:
		return "loading"
	case KindEmpty:
		return "empty"
	case KindResults:
		return "results"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// State is the controller's tagged union. Exactly one variant is active.
type State interface {
	Kind() Kind
}

// IdleState: no query entered, nothing shown.
type IdleState struct{}

// LoadingState: a request is in flight for Query.
type LoadingState struct {
	Query string
}

// EmptyState: the request for Query matched nothing.
type EmptyState struct {
	Query string
}

// ResultsState holds every match handle and the hydrated prefix shown so far.
// VisibleCount never exceeds Total.
type ResultsState struct {
	Query        string
	All          []Result
	Visible      []Document
	Total        int
	VisibleCount int
}

// ErrorState carries the user-facing message.
type ErrorState struct {
	Message string
}

func (IdleState) Kind() Kind    { return KindIdle }
func (LoadingState) Kind() Kind { return KindLoading }
func (EmptyState) Kind() Kind   { return KindEmpty }
func (ResultsState) Kind() Kind { return KindResults }
func (ErrorState) Kind() Kind   { return KindError }

// Remaining is how many matches are not hydrated yet.
func (s ResultsState) Remaining() int {
	return s.Total - s.VisibleCount
}

// Query returns the query that produced st, or "" for idle and error.
func Query(st State) string {
	switch s := st.(type) {
	case LoadingState:
		return s.Query
	case EmptyState:
		return s.Query
	case ResultsState:
		return s.Query
	default:
		return ""
	}
}
