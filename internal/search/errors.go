package search

import "errors"

// Failure classes. They wrap the underlying cause for logs; users only ever
// see the fixed messages below.
var (
	ErrInitialization = errors.New("search index initialization failed")
	ErrSearch         = errors.New("search failed")
	ErrLoadMore       = errors.New("load more failed")
)

// User-facing error messages.
const (
	MsgInitialization = "Search functionality could not be loaded."
	MsgSearch         = "Search failed. Please try again."
	MsgLoadMore       = "Failed to load more results."
)
