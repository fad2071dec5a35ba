package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reviewlog/logsearch/internal/db"
	"github.com/reviewlog/logsearch/internal/index/bundle"
	"github.com/reviewlog/logsearch/internal/models"
)

// BuildBundle writes a bundle directory holding a few movie and book reviews
// matching "batman", and returns its path.
func BuildBundle(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	database, err := db.New(db.DefaultConfig(bundle.Path(dir)))
	require.NoError(t, err)
	defer func() { _ = database.Close() }()

	_, _, err = database.ReplaceSource("movielog", []models.Review{
		{
			Slug: "batman-begins-2005", Kind: models.KindMovie, Title: "Batman Begins", Year: "2005",
			Excerpt: "Nolan reboots the caped crusader.", Stars: 4, Genres: "Action",
			URL: "https://www.franksmovielog.com/reviews/batman-begins-2005/",
		},
		{
			Slug: "the-dark-knight-2008", Kind: models.KindMovie, Title: "The Dark Knight", Year: "2008",
			Excerpt: "Batman faces the Joker in Gotham.", Stars: 5,
			URL: "https://www.franksmovielog.com/reviews/the-dark-knight-2008/",
		},
		{
			Slug: "heat-1995", Kind: models.KindMovie, Title: "Heat", Year: "1995",
			Excerpt: "Pacino and De Niro share a diner.", Stars: 5,
			URL: "https://www.franksmovielog.com/reviews/heat-1995/",
		},
	})
	require.NoError(t, err)
	_, _, err = database.ReplaceSource("booklog", []models.Review{
		{
			Slug: "batman-year-one", Kind: models.KindBook, Title: "Batman: Year One", Authors: "Frank Miller",
			Excerpt: "A gritty origin.", Stars: 3,
			URL: "https://www.franksbooklog.com/reviews/batman-year-one/",
		},
	})
	require.NoError(t, err)
	return dir
}

// OpenBundle builds a bundle and returns an initialized index over it.
func OpenBundle(t *testing.T) *bundle.Index {
	t.Helper()
	idx := bundle.New()
	require.NoError(t, idx.Init(t.Context(), BuildBundle(t)))
	t.Cleanup(func() { _ = idx.Destroy(context.Background()) })
	return idx
}
