package snapshot

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/kailas-cloud/bookrec/internal/domain"
)

// optionalSQLiteColumns maps optional book columns to their defaults.
var optionalSQLiteColumns = []struct {
	name string
	zero string
}{
	{"author", "''"},
	{"num_ratings", "0"},
	{"num_reviews", "0"},
	{"pages", "0"},
	{"year", "0"},
	{"publisher", "''"},
}

func readSQLite(path string) (*Snapshot, error) {
	db, err := sql.Open("sqlite", "file:"+filepath.ToSlash(filepath.Clean(path))+"?mode=ro")
	if err != nil {
		return nil, domain.NewLoadError(path, "open sqlite snapshot", err)
	}
	defer func() { _ = db.Close() }()

	ctx := context.Background()

	cols, err := sqliteColumns(ctx, db, "books")
	if err != nil {
		return nil, domain.NewLoadError(path, "inspect books table", err)
	}
	if len(cols) == 0 {
		return nil, domain.NewLoadError(path, "missing books table", nil)
	}
	if missing := missingColumns(cols); len(missing) > 0 {
		return nil, domain.NewLoadError(path, "missing required columns "+strings.Join(missing, ", "), nil)
	}

	embCols, err := sqliteColumns(ctx, db, "embeddings")
	if err != nil {
		return nil, domain.NewLoadError(path, "inspect embeddings table", err)
	}
	if !embCols["title"] || !embCols["vector"] {
		return nil, domain.NewLoadError(path, "embeddings table requires title and vector columns", nil)
	}

	books, err := sqliteBooks(ctx, db, cols)
	if err != nil {
		return nil, domain.NewLoadError(path, "read books table", err)
	}
	embeddings, err := sqliteEmbeddings(ctx, db)
	if err != nil {
		return nil, domain.NewLoadError(path, "read embeddings table", err)
	}

	fp, err := fingerprint(path)
	if err != nil {
		return nil, domain.NewLoadError(path, "fingerprint snapshot", err)
	}

	return &Snapshot{Books: books, Embeddings: embeddings, Fingerprint: fp}, nil
}

// sqliteColumns returns the column names of table; empty when the table does not exist.
func sqliteColumns(ctx context.Context, db *sql.DB, table string) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, "SELECT name FROM pragma_table_info(?)", table)
	if err != nil {
		return nil, fmt.Errorf("table info %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	cols := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		cols[strings.ToLower(name)] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate columns: %w", err)
	}
	return cols, nil
}

func sqliteBooks(ctx context.Context, db *sql.DB, cols map[string]bool) ([]BookRow, error) {
	exprs := make([]string, 0, len(optionalSQLiteColumns))
	for _, c := range optionalSQLiteColumns {
		if cols[c.name] {
			exprs = append(exprs, fmt.Sprintf("COALESCE(%s, %s)", c.name, c.zero))
		} else {
			exprs = append(exprs, c.zero)
		}
	}

	//nolint:gosec // column expressions come from a fixed allow-list
	query := fmt.Sprintf(
		"SELECT title, rating, topic, summary, %s FROM books ORDER BY rowid",
		strings.Join(exprs, ", "),
	)
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("select books: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var books []BookRow
	for rows.Next() {
		var r BookRow
		if err := rows.Scan(
			&r.Title, &r.Rating, &r.Topic, &r.Summary,
			&r.Author, &r.NumRatings, &r.NumReviews, &r.Pages, &r.Year, &r.Publisher,
		); err != nil {
			return nil, fmt.Errorf("scan book %d: %w", len(books), err)
		}
		books = append(books, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate books: %w", err)
	}
	return books, nil
}

func sqliteEmbeddings(ctx context.Context, db *sql.DB) ([]EmbeddingRow, error) {
	rows, err := db.QueryContext(ctx, "SELECT title, vector FROM embeddings ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("select embeddings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []EmbeddingRow
	for rows.Next() {
		var (
			title string
			blob  []byte
		)
		if err := rows.Scan(&title, &blob); err != nil {
			return nil, fmt.Errorf("scan embedding %d: %w", len(out), err)
		}
		vec, err := DecodeVector(blob)
		if err != nil {
			return nil, fmt.Errorf("embedding %q: %w", title, err)
		}
		out = append(out, EmbeddingRow{Title: title, Vector: vec})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate embeddings: %w", err)
	}
	return out, nil
}

// WriteSQLite writes books and embeddings into a new SQLite snapshot file.
func WriteSQLite(path string, books []BookRow, embeddings []EmbeddingRow) error {
	db, err := sql.Open("sqlite", filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	defer func() { _ = db.Close() }()

	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmts := []string{
		`CREATE TABLE books (
			title TEXT NOT NULL, author TEXT, rating REAL NOT NULL,
			num_ratings INTEGER, num_reviews INTEGER, pages INTEGER, year INTEGER,
			publisher TEXT, summary TEXT NOT NULL, topic TEXT NOT NULL
		)`,
		`CREATE TABLE embeddings (title TEXT NOT NULL, vector BLOB NOT NULL)`,
	}
	for _, s := range stmts {
		if _, err := tx.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}

	for _, b := range books {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO books (title, author, rating, num_ratings, num_reviews, pages, year, publisher, summary, topic)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			b.Title, b.Author, b.Rating, b.NumRatings, b.NumReviews, b.Pages, b.Year, b.Publisher, b.Summary, b.Topic,
		); err != nil {
			return fmt.Errorf("insert book %q: %w", b.Title, err)
		}
	}
	for _, e := range embeddings {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO embeddings (title, vector) VALUES (?, ?)`, e.Title, EncodeVector(e.Vector),
		); err != nil {
			return fmt.Errorf("insert embedding %q: %w", e.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
