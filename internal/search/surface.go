package search

import (
	"net/url"
	"strings"

	"github.com/reviewlog/logsearch/internal/excerpt"
)

// SkeletonCount is how many placeholder items the loading view shows.
const SkeletonCount = 3

// EmptyMessage is shown in the results area when a query matches nothing.
const EmptyMessage = "No results found. Try adjusting your search terms."

// Surface is the render target the controller paints into. Implementations
// fill fixed slots and never interpret document text as markup.
//
// The controller may call Surface methods from any goroutine while holding
// its own lock, so implementations must not call back into the controller.
type Surface interface {
	SetClearVisible(visible bool)
	ClearInput()
	FocusInput()

	SetCounter(text string)

	ShowResults(items []ResultSlots)
	ShowSkeleton(n int, withImages bool)
	ShowEmpty(message string)
	ShowError(message string)
	ClearResults()

	SetLoadMore(visible bool, label string)

	ScrollOffset() int
	SetScrollOffset(offset int)

	Announce(message string)
}

// ResultSlots is the filled result-item template.
type ResultSlots struct {
	Title    string
	URL      string
	ImageURL string // empty when images are off or the document has none
	ImageAlt string
	Kind     string // first value of the document's kind filter
	Excerpt  excerpt.Snippet
}

// KindFilter is the filter key documents use for their content kind.
const KindFilter = "kind"

// FillSlots maps a document onto the result-item slots.
func FillSlots(doc Document, showImages bool) ResultSlots {
	slots := ResultSlots{
		Title:   doc.Meta.Title,
		URL:     doc.URL,
		Excerpt: excerpt.Parse(doc.Excerpt),
	}
	if kinds := doc.Filters[KindFilter]; len(kinds) > 0 {
		slots.Kind = kinds[0]
	}
	if showImages && doc.Meta.Image != "" {
		slots.ImageURL = imageURL(doc.URL, doc.Meta.Image)
		slots.ImageAlt = doc.Meta.ImageAlt
	}
	return slots
}

// imageURL resolves a site-relative image path against the host of the
// document URL. Absolute image URLs are returned unchanged.
func imageURL(docURL, image string) string {
	if u, err := url.Parse(image); err == nil && u.IsAbs() {
		return image
	}
	u, err := url.Parse(docURL)
	if err != nil || u.Host == "" {
		return image
	}
	return u.Scheme + "://" + u.Host + "/" + strings.TrimLeft(image, "/")
}
