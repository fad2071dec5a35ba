package search

import "fmt"

// FormatCounter formats the results counter text.
func FormatCounter(total int, query string) string {
	switch total {
	case 0:
		return fmt.Sprintf("No results for \"%s\"", query)
	case 1:
		return fmt.Sprintf("1 result for \"%s\"", query)
	default:
		return fmt.Sprintf("%d results for \"%s\"", total, query)
	}
}

// LoadMoreLabel formats the load-more control text.
func LoadMoreLabel(remaining, pageSize int) string {
	return fmt.Sprintf("Load %d more (%d remaining)", min(remaining, pageSize), remaining)
}
