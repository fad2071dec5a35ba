package excerpt

import (
	"html"
	"io"
	"strings"

	xhtml "golang.org/x/net/html"
)

// Parse converts an excerpt fragment into a Snippet. Text inside <mark>
// elements becomes a highlight; every other tag is dropped and entities are
// decoded. Malformed markup degrades to whatever text the tokenizer recovers.
func Parse(fragment string) Snippet {
	z := xhtml.NewTokenizer(strings.NewReader(fragment))

	var (
		b          strings.Builder
		highlights []Highlight
		depth      int
		openAt     int
	)

	for {
		tt := z.Next()
		switch tt {
		case xhtml.ErrorToken:
			if z.Err() != io.EOF {
				return Snippet{Text: b.String(), Highlights: highlights}
			}
			// Unclosed <mark> runs to the end of the text.
			if depth > 0 && b.Len() > openAt {
				highlights = append(highlights, Highlight{Start: openAt, End: b.Len()})
			}
			return Snippet{Text: b.String(), Highlights: mergeHighlights(highlights)}

		case xhtml.TextToken:
			b.Write(z.Text())

		case xhtml.StartTagToken:
			name, _ := z.TagName()
			if string(name) == "mark" {
				if depth == 0 {
					openAt = b.Len()
				}
				depth++
			}

		case xhtml.EndTagToken:
			name, _ := z.TagName()
			if string(name) == "mark" && depth > 0 {
				depth--
				if depth == 0 && b.Len() > openAt {
					highlights = append(highlights, Highlight{Start: openAt, End: b.Len()})
				}
			}
		}
	}
}

// Markup renders a Snippet back into an excerpt fragment, escaping text and
// wrapping highlights in <mark>.
func Markup(s Snippet) string {
	var b strings.Builder
	pos := 0
	for _, h := range s.Highlights {
		if h.Start < pos || h.End > len(s.Text) || h.Start >= h.End {
			continue
		}
		b.WriteString(html.EscapeString(s.Text[pos:h.Start]))
		b.WriteString("<mark>")
		b.WriteString(html.EscapeString(s.Text[h.Start:h.End]))
		b.WriteString("</mark>")
		pos = h.End
	}
	b.WriteString(html.EscapeString(s.Text[pos:]))
	return b.String()
}

// Plain returns the text of a fragment with all markup removed.
func Plain(fragment string) string {
	return Parse(fragment).Text
}

// Segment is a run of snippet text that is either highlighted or not.
type Segment struct {
	Text        string
	Highlighted bool
}

// Segments splits a Snippet into alternating plain and highlighted runs.
func (s Snippet) Segments() []Segment {
	var segs []Segment
	pos := 0
	for _, h := range s.Highlights {
		if h.Start < pos || h.End > len(s.Text) || h.Start >= h.End {
			continue
		}
		if h.Start > pos {
			segs = append(segs, Segment{Text: s.Text[pos:h.Start]})
		}
		segs = append(segs, Segment{Text: s.Text[h.Start:h.End], Highlighted: true})
		pos = h.End
	}
	if pos < len(s.Text) {
		segs = append(segs, Segment{Text: s.Text[pos:]})
	}
	return segs
}

// mergeHighlights joins adjacent ranges such as "<mark>bat</mark><mark>man</mark>".
func mergeHighlights(hs []Highlight) []Highlight {
	if len(hs) < 2 {
		return hs
	}
	out := hs[:1]
	for _, h := range hs[1:] {
		last := &out[len(out)-1]
		if h.Start <= last.End {
			if h.End > last.End {
				last.End = h.End
			}
			continue
		}
		out = append(out, h)
	}
	return out
}
