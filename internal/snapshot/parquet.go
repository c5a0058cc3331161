package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/kailas-cloud/bookrec/internal/domain"
)

// readParquet reads books.parquet and embeddings.parquet from dir.
func readParquet(dir string) (*Snapshot, error) {
	booksPath := filepath.Join(dir, BooksFile)
	embPath := filepath.Join(dir, EmbeddingsFile)

	cols, err := parquetColumns(booksPath)
	if err != nil {
		return nil, domain.NewLoadError(booksPath, "open books table", err)
	}
	if missing := missingColumns(cols); len(missing) > 0 {
		return nil, domain.NewLoadError(booksPath,
			"missing required columns "+strings.Join(missing, ", "), nil)
	}

	embCols, err := parquetColumns(embPath)
	if err != nil {
		return nil, domain.NewLoadError(embPath, "open embeddings table", err)
	}
	if !embCols["title"] || !embCols["vector"] {
		return nil, domain.NewLoadError(embPath, "embeddings table requires title and vector columns", nil)
	}

	books, err := parquet.ReadFile[BookRow](booksPath)
	if err != nil {
		return nil, domain.NewLoadError(booksPath, "read books table", err)
	}
	embeddings, err := parquet.ReadFile[EmbeddingRow](embPath)
	if err != nil {
		return nil, domain.NewLoadError(embPath, "read embeddings table", err)
	}

	fp, err := fingerprint(booksPath, embPath)
	if err != nil {
		return nil, domain.NewLoadError(dir, "fingerprint snapshot", err)
	}

	return &Snapshot{Books: books, Embeddings: embeddings, Fingerprint: fp}, nil
}

// parquetColumns returns the top-level column names of a parquet file.
func parquetColumns(path string) (map[string]bool, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer func() { _ = f.Close() }()

	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat: %w", err)
	}
	pf, err := parquet.OpenFile(f, st.Size())
	if err != nil {
		return nil, fmt.Errorf("parse parquet: %w", err)
	}

	cols := make(map[string]bool)
	for _, path := range pf.Schema().Columns() {
		if len(path) == 0 {
			continue
		}
		cols[path[0]] = true
	}
	return cols, nil
}

// WriteParquet writes books and embeddings as a parquet snapshot directory.
func WriteParquet(dir string, books []BookRow, embeddings []EmbeddingRow) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	if err := parquet.WriteFile(filepath.Join(dir, BooksFile), books); err != nil {
		return fmt.Errorf("write books table: %w", err)
	}
	if err := parquet.WriteFile(filepath.Join(dir, EmbeddingsFile), embeddings); err != nil {
		return fmt.Errorf("write embeddings table: %w", err)
	}
	return nil
}
