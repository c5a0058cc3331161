package catalog

import "github.com/kailas-cloud/bookrec/internal/domain/book"

func titles(books []book.Book) []string {
	out := make([]string, len(books))
	for i := range books {
		out[i] = books[i].Title()
	}
	return out
}
