package similar

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/kailas-cloud/bookrec/internal/repository/catalog"
	"github.com/kailas-cloud/bookrec/internal/snapshot"
)

type fixtureBook struct {
	title string
	vec   []float32
}

func newStore(t *testing.T, books ...fixtureBook) *catalog.Store {
	t.Helper()
	rows := make([]snapshot.BookRow, 0, len(books))
	emb := make([]snapshot.EmbeddingRow, 0, len(books))
	for _, b := range books {
		rows = append(rows, snapshot.BookRow{Title: b.title, Rating: 4, Topic: "science", Summary: b.title})
		emb = append(emb, snapshot.EmbeddingRow{Title: b.title, Vector: b.vec})
	}
	s, err := catalog.New(rows, emb)
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}
	return s
}

func newEngine(t *testing.T, books ...fixtureBook) *Engine {
	t.Helper()
	s := newStore(t, books...)
	return New(s, s.Embeddings())
}

// randomStore builds n books with random 8-dimensional embeddings.
func randomStore(t *testing.T, n int, seed uint64) *catalog.Store {
	t.Helper()
	r := rand.New(rand.NewPCG(seed, seed))
	books := make([]fixtureBook, n)
	for i := range books {
		v := make([]float32, 8)
		for j := range v {
			v[j] = float32(r.NormFloat64())
		}
		books[i] = fixtureBook{title: fmt.Sprintf("Book %02d", i), vec: v}
	}
	return newStore(t, books...)
}
