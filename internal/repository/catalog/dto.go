package catalog

import (
	"github.com/kailas-cloud/bookrec/internal/domain/book"
	"github.com/kailas-cloud/bookrec/internal/snapshot"
)

// rowToBook converts a snapshot row into a validated domain book.
func rowToBook(r *snapshot.BookRow) (book.Book, error) {
	return book.New(r.Title, r.Rating, r.Topic, r.Summary, book.Attrs{
		Author:     r.Author,
		NumRatings: int(r.NumRatings),
		NumReviews: int(r.NumReviews),
		Pages:      int(r.Pages),
		Year:       int(r.Year),
		Publisher:  r.Publisher,
	})
}

// BookToRow converts a domain book back to its snapshot row.
func BookToRow(b *book.Book) snapshot.BookRow {
	return snapshot.BookRow{
		Title:      b.Title(),
		Author:     b.Author(),
		Rating:     b.Rating(),
		NumRatings: int64(b.NumRatings()),
		NumReviews: int64(b.NumReviews()),
		Pages:      int64(b.Pages()),
		Year:       int64(b.Year()),
		Publisher:  b.Publisher(),
		Summary:    b.Summary(),
		Topic:      b.Topic(),
	}
}
