package bookrec

import (
	"github.com/kailas-cloud/bookrec/internal/domain/book"
	"github.com/kailas-cloud/bookrec/internal/domain/match"
	"github.com/kailas-cloud/bookrec/internal/domain/neighbor"
	"github.com/kailas-cloud/bookrec/internal/domain/sample"
	"github.com/kailas-cloud/bookrec/internal/snapshot"
	recommenduc "github.com/kailas-cloud/bookrec/internal/usecase/recommend"
)

func bookFromDomain(b *book.Book) Book {
	return Book{
		Title:      b.Title(),
		Author:     b.Author(),
		Rating:     b.Rating(),
		NumRatings: b.NumRatings(),
		NumReviews: b.NumReviews(),
		Pages:      b.Pages(),
		Year:       b.Year(),
		Publisher:  b.Publisher(),
		Summary:    b.Summary(),
		Topic:      b.Topic(),
	}
}

func booksFromDomain(bs []book.Book) []Book {
	out := make([]Book, len(bs))
	for i := range bs {
		out[i] = bookFromDomain(&bs[i])
	}
	return out
}

func neighborsFromDomain(ns []neighbor.Neighbor) []Neighbor {
	out := make([]Neighbor, len(ns))
	for i := range ns {
		b := ns[i].Book()
		out[i] = Neighbor{
			Book:       bookFromDomain(&b),
			Distance:   ns[i].Distance(),
			Similarity: ns[i].Similarity(),
		}
	}
	return out
}

func matchFromDomain(m *match.Result) Match {
	candidates := append([]string{}, m.Candidates()...)
	return Match{
		Kind:       MatchKind(m.Kind()),
		Query:      m.Query(),
		Title:      m.Title(),
		Candidates: candidates,
		Total:      m.Total(),
	}
}

func outcomeFromDomain(o *recommenduc.Outcome) Recommendation {
	return Recommendation{
		Match:          matchFromDomain(&o.Match),
		Seed:           o.Seed,
		RandomFallback: o.RandomFallback,
		Neighbors:      neighborsFromDomain(o.Neighbors),
	}
}

func explorationFromDomain(r *sample.Result) Exploration {
	return Exploration{
		Mode:      ExploreMode(r.Mode()),
		Requested: r.Requested(),
		Matched:   r.Matched(),
		Books:     booksFromDomain(r.Books()),
	}
}

func recordsToRows(records []Record) ([]snapshot.BookRow, []snapshot.EmbeddingRow) {
	rows := make([]snapshot.BookRow, len(records))
	embeddings := make([]snapshot.EmbeddingRow, 0, len(records))
	for i := range records {
		r := &records[i]
		rows[i] = snapshot.BookRow{
			Title:      r.Title,
			Author:     r.Author,
			Rating:     r.Rating,
			NumRatings: int64(r.NumRatings),
			NumReviews: int64(r.NumReviews),
			Pages:      int64(r.Pages),
			Year:       int64(r.Year),
			Publisher:  r.Publisher,
			Summary:    r.Summary,
			Topic:      r.Topic,
		}
		if r.Embedding != nil {
			embeddings = append(embeddings, snapshot.EmbeddingRow{Title: book.Key(r.Title), Vector: r.Embedding})
		}
	}
	return rows, embeddings
}
