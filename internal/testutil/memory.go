package testutil

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/reviewlog/logsearch/internal/search"
)

// ErrNotFound is returned by MemoryIndex.Document for unknown IDs.
var ErrNotFound = errors.New("document not found")

// MemoryIndex is an in-memory search index. A document matches when every
// query term appears in its title or excerpt, case-insensitively.
type MemoryIndex struct {
	mu    sync.Mutex
	ids   []string
	docs  map[string]search.Document
	ready bool

	// InitErr is returned from Init when set.
	InitErr error
}

// NewMemoryIndex creates an empty index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{docs: make(map[string]search.Document)}
}

// Add stores doc under id. Documents rank in insertion order.
func (m *MemoryIndex) Add(id string, doc search.Document) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		m.ids = append(m.ids, id)
	}
	m.docs[id] = doc
}

// Init marks the index ready.
func (m *MemoryIndex) Init(ctx context.Context, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.InitErr != nil {
		return m.InitErr
	}
	m.mu.Lock()
	m.ready = true
	m.mu.Unlock()
	return nil
}

// Destroy marks the index unready.
func (m *MemoryIndex) Destroy(context.Context) error {
	m.mu.Lock()
	m.ready = false
	m.mu.Unlock()
	return nil
}

// Search returns handles for every matching document.
func (m *MemoryIndex) Search(ctx context.Context, query string, opts *search.Options) (*search.Results, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	terms := strings.Fields(strings.ToLower(query))

	m.mu.Lock()
	defer m.mu.Unlock()

	res := &search.Results{}
	for i, id := range m.ids {
		doc := m.docs[id]
		if !matches(doc, terms) {
			continue
		}
		res.UnfilteredResultCount++
		if !filtered(doc, opts) {
			continue
		}
		id := id
		res.Results = append(res.Results, search.NewResult(id, float64(len(m.ids)-i), nil, func(ctx context.Context) (*search.Document, error) {
			return m.Document(ctx, id, query)
		}))
	}
	sort.SliceStable(res.Results, func(i, j int) bool { return res.Results[i].Score > res.Results[j].Score })
	return res, nil
}

// Document returns a copy of the stored document.
func (m *MemoryIndex) Document(ctx context.Context, id, _ string) (*search.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &doc, nil
}

func matches(doc search.Document, terms []string) bool {
	if len(terms) == 0 {
		return false
	}
	hay := strings.ToLower(doc.Meta.Title + " " + doc.Excerpt)
	for _, t := range terms {
		if !strings.Contains(hay, t) {
			return false
		}
	}
	return true
}

func filtered(doc search.Document, opts *search.Options) bool {
	if opts == nil {
		return true
	}
	for key, want := range opts.Filters {
		found := false
		for _, v := range doc.Filters[key] {
			if v == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
