// Package excerpt builds and parses the short highlighted passages shown under
// each search result.
//
// Excerpts travel between the index and the renderer as HTML fragments whose
// only meaningful element is <mark>. Parse turns a fragment into a Snippet
// (plain text plus highlight ranges) so renderers never handle markup.
package excerpt

import (
	"sort"
	"strings"
	"unicode"
)

const (
	// DefaultContextWindow is the number of bytes kept before/after the first match.
	DefaultContextWindow = 80
	// DefaultFallbackLength is the excerpt length when nothing matches.
	DefaultFallbackLength = 180
)

// Snippet is plain text with highlighted byte ranges.
type Snippet struct {
	Text       string
	Highlights []Highlight
}

// Highlight marks a highlighted region in a snippet.
type Highlight struct {
	Start int
	End   int
}

type matchPosition struct {
	start int
	end   int
}

// Extract returns the passage of content around the first cluster of query
// term matches, with every match inside it highlighted.
func Extract(content, query string) Snippet {
	content = collapseSpace(content)
	if content == "" {
		return Snippet{}
	}

	terms := queryTerms(query)
	if len(terms) == 0 {
		return fallback(content)
	}

	matches := findMatches(asciiLower(content), terms)
	if len(matches) == 0 {
		return fallback(content)
	}

	first := matches[0]
	start := max(0, first.start-DefaultContextWindow)
	end := min(len(content), first.end+DefaultContextWindow)
	start = expandToWordBoundary(content, start, -1)
	end = expandToWordBoundary(content, end, 1)

	var highlights []Highlight
	for _, m := range matches {
		if m.start >= start && m.end <= end {
			highlights = append(highlights, Highlight{Start: m.start - start, End: m.end - start})
		}
	}

	text := content[start:end]
	if start > 0 {
		text = "..." + text
		for i := range highlights {
			highlights[i].Start += 3
			highlights[i].End += 3
		}
	}
	if end < len(content) {
		text += "..."
	}

	return Snippet{Text: text, Highlights: highlights}
}

// queryTerms splits a query into lowercase searchable terms.
func queryTerms(query string) []string {
	var terms []string
	for _, word := range strings.Fields(asciiLower(query)) {
		cleaned := strings.TrimFunc(word, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
		if len(cleaned) >= 2 {
			terms = append(terms, cleaned)
		}
	}
	return terms
}

// findMatches finds non-overlapping term positions, sorted by position.
func findMatches(contentLower string, terms []string) []matchPosition {
	var matches []matchPosition

	for _, term := range terms {
		pos := 0
		for {
			idx := strings.Index(contentLower[pos:], term)
			if idx == -1 {
				break
			}
			start := pos + idx
			matches = append(matches, matchPosition{start: start, end: start + len(term)})
			pos = start + 1
		}
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].start < matches[j].start })

	// Drop matches overlapping an earlier, longer one ("bat" inside "batman").
	merged := matches[:0]
	for _, m := range matches {
		if n := len(merged); n > 0 && m.start < merged[n-1].end {
			if m.end > merged[n-1].end {
				merged[n-1].end = m.end
			}
			continue
		}
		merged = append(merged, m)
	}
	return merged
}

// expandToWordBoundary expands a position to the nearest word boundary.
// direction: -1 for backward, 1 for forward.
func expandToWordBoundary(content string, pos, direction int) int {
	if direction < 0 {
		for pos > 0 && content[pos-1] != ' ' {
			pos--
		}
	} else {
		for pos < len(content) && content[pos] != ' ' {
			pos++
		}
	}
	return pos
}

func fallback(content string) Snippet {
	if len(content) <= DefaultFallbackLength {
		return Snippet{Text: content}
	}

	end := DefaultFallbackLength
	for end > DefaultFallbackLength-30 && content[end] != ' ' {
		end--
	}
	return Snippet{Text: content[:end] + "..."}
}

// asciiLower lowercases ASCII letters only, so byte offsets stay aligned with
// the original string.
func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
