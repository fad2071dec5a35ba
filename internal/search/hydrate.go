package search

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// ErrDocumentNotFound is returned when a handle resolves to no document.
var ErrDocumentNotFound = errors.New("document not found")

// hydrate resolves handles concurrently, keeping their order. Any failure
// fails the whole page.
func hydrate(ctx context.Context, handles []Result) ([]Document, error) {
	if len(handles) == 0 {
		return nil, nil
	}

	docs := make([]Document, len(handles))
	g, gctx := errgroup.WithContext(ctx)
	for i, r := range handles {
		g.Go(func() error {
			doc, err := r.Data(gctx)
			if err != nil {
				return fmt.Errorf("load document %s: %w", r.ID, err)
			}
			if doc == nil {
				return fmt.Errorf("load document %s: %w", r.ID, ErrDocumentNotFound)
			}
			docs[i] = *doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}
