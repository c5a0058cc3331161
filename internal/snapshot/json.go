package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-json"

	"github.com/kailas-cloud/bookrec/internal/domain"
)

// jsonDocument is the on-disk layout of a JSON snapshot.
type jsonDocument struct {
	Books      []json.RawMessage    `json:"books"`
	Embeddings map[string][]float32 `json:"embeddings"`
}

func readJSON(path string) (*Snapshot, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, domain.NewLoadError(path, "read snapshot", err)
	}

	var doc jsonDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, domain.NewLoadError(path, "parse snapshot", err)
	}
	if doc.Books == nil {
		return nil, domain.NewLoadError(path, "missing books table", nil)
	}
	if doc.Embeddings == nil {
		return nil, domain.NewLoadError(path, "missing embeddings table", nil)
	}

	books := make([]BookRow, 0, len(doc.Books))
	for i, raw := range doc.Books {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, domain.NewLoadError(path, fmt.Sprintf("parse book %d", i), err)
		}
		present := make(map[string]bool, len(fields))
		for k, v := range fields {
			present[k] = string(v) != "null"
		}
		if missing := missingColumns(present); len(missing) > 0 {
			return nil, domain.NewLoadError(path,
				fmt.Sprintf("book %d: missing required columns %s", i, strings.Join(missing, ", ")), nil)
		}

		var row BookRow
		if err := json.Unmarshal(raw, &row); err != nil {
			return nil, domain.NewLoadError(path, fmt.Sprintf("decode book %d", i), err)
		}
		books = append(books, row)
	}

	keys := make([]string, 0, len(doc.Embeddings))
	for k := range doc.Embeddings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	embeddings := make([]EmbeddingRow, 0, len(keys))
	for _, k := range keys {
		embeddings = append(embeddings, EmbeddingRow{Title: k, Vector: doc.Embeddings[k]})
	}

	fp, err := fingerprint(path)
	if err != nil {
		return nil, domain.NewLoadError(path, "fingerprint snapshot", err)
	}

	return &Snapshot{Books: books, Embeddings: embeddings, Fingerprint: fp}, nil
}

// WriteJSON writes books and embeddings as a JSON snapshot.
func WriteJSON(path string, books []BookRow, embeddings []EmbeddingRow) error {
	doc := struct {
		Books      []BookRow            `json:"books"`
		Embeddings map[string][]float32 `json:"embeddings"`
	}{
		Books:      books,
		Embeddings: make(map[string][]float32, len(embeddings)),
	}
	for _, e := range embeddings {
		doc.Embeddings[e.Title] = e.Vector
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := os.WriteFile(filepath.Clean(path), data, 0o600); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}
