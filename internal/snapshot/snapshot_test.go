package snapshot

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/kailas-cloud/bookrec/internal/domain"
)

func testRows() ([]BookRow, []EmbeddingRow) {
	books := []BookRow{
		{Title: "The Hobbit", Author: "Tolkien", Rating: 4.3, NumRatings: 10, Summary: "a journey", Topic: "art"},
		{Title: "Dune", Author: "Herbert", Rating: 4.1, Pages: 412, Year: 1965, Summary: "spice", Topic: "science"},
	}
	embeddings := []EmbeddingRow{
		{Title: "dune", Vector: []float32{0, 1, 0.5}},
		{Title: "the hobbit", Vector: []float32{1, 0, 0.25}},
	}
	return books, embeddings
}

func assertRows(t *testing.T, snap *Snapshot) {
	t.Helper()
	if len(snap.Books) != 2 {
		t.Fatalf("expected 2 books, got %d", len(snap.Books))
	}
	if snap.Books[0].Title != "The Hobbit" || snap.Books[1].Title != "Dune" {
		t.Fatalf("unexpected book order: %q, %q", snap.Books[0].Title, snap.Books[1].Title)
	}
	if snap.Books[1].Pages != 412 || snap.Books[1].Year != 1965 {
		t.Fatalf("optional columns lost: %+v", snap.Books[1])
	}
	if snap.Books[0].Rating != 4.3 {
		t.Fatalf("expected rating 4.3, got %v", snap.Books[0].Rating)
	}
	if len(snap.Embeddings) != 2 {
		t.Fatalf("expected 2 embeddings, got %d", len(snap.Embeddings))
	}
	byTitle := map[string][]float32{}
	for _, e := range snap.Embeddings {
		byTitle[e.Title] = e.Vector
	}
	if v := byTitle["the hobbit"]; len(v) != 3 || v[0] != 1 || v[2] != 0.25 {
		t.Fatalf("unexpected hobbit vector: %v", v)
	}
	if len(snap.Fingerprint) != 64 {
		t.Fatalf("expected sha256 hex fingerprint, got %q", snap.Fingerprint)
	}
}

func TestRead_JSON(t *testing.T) {
	books, embeddings := testRows()
	path := filepath.Join(t.TempDir(), "catalog.json")
	if err := WriteJSON(path, books, embeddings); err != nil {
		t.Fatalf("write: %v", err)
	}

	snap, err := Read(path, FormatAuto)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	assertRows(t, snap)
	if snap.Source != path {
		t.Fatalf("expected source %q, got %q", path, snap.Source)
	}
	// Embeddings come back sorted by key.
	if snap.Embeddings[0].Title != "dune" {
		t.Fatalf("expected sorted embeddings, got %q first", snap.Embeddings[0].Title)
	}
}

func TestRead_Parquet(t *testing.T) {
	books, embeddings := testRows()
	dir := filepath.Join(t.TempDir(), "snap")
	if err := WriteParquet(dir, books, embeddings); err != nil {
		t.Fatalf("write: %v", err)
	}

	snap, err := Read(dir, FormatAuto)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	assertRows(t, snap)
}

func TestRead_SQLite(t *testing.T) {
	books, embeddings := testRows()
	path := filepath.Join(t.TempDir(), "catalog.db")
	if err := WriteSQLite(path, books, embeddings); err != nil {
		t.Fatalf("write: %v", err)
	}

	snap, err := Read(path, FormatAuto)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	assertRows(t, snap)
	if snap.Embeddings[0].Title != "dune" {
		t.Fatalf("expected rowid order, got %q first", snap.Embeddings[0].Title)
	}
}

func TestRead_FingerprintStable(t *testing.T) {
	books, embeddings := testRows()
	dir := t.TempDir()
	a := filepath.Join(dir, "a.json")
	b := filepath.Join(dir, "b.json")
	if err := WriteJSON(a, books, embeddings); err != nil {
		t.Fatal(err)
	}
	if err := WriteJSON(b, books, embeddings); err != nil {
		t.Fatal(err)
	}
	sa, err := Read(a, FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	sb, err := Read(b, FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	if sa.Fingerprint != sb.Fingerprint {
		t.Fatal("same content must produce the same fingerprint")
	}

	books[0].Rating = 4.4
	if err := WriteJSON(b, books, embeddings); err != nil {
		t.Fatal(err)
	}
	sb, err = Read(b, FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	if sa.Fingerprint == sb.Fingerprint {
		t.Fatal("different content must produce a different fingerprint")
	}
}

func TestRead_Errors(t *testing.T) {
	dir := t.TempDir()

	missingRating := filepath.Join(dir, "no-rating.json")
	writeFile(t, missingRating, `{"books":[{"title":"Dune","topic":"science","summary":"x"}],"embeddings":{}}`)

	nullTopic := filepath.Join(dir, "null-topic.json")
	writeFile(t, nullTopic, `{"books":[{"title":"Dune","rating":4,"topic":null,"summary":"x"}],"embeddings":{}}`)

	noEmbeddings := filepath.Join(dir, "no-emb.json")
	writeFile(t, noEmbeddings, `{"books":[]}`)

	garbage := filepath.Join(dir, "garbage.json")
	writeFile(t, garbage, `{not json`)

	unknownExt := filepath.Join(dir, "catalog.csv")
	writeFile(t, unknownExt, "title,rating\n")

	badSQLite := filepath.Join(dir, "bad.db")
	writeFile(t, badSQLite, "this is not a database")

	emptyParquetDir := filepath.Join(dir, "empty")
	if err := os.Mkdir(emptyParquetDir, 0o750); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		path   string
		format Format
	}{
		{"empty path", "", FormatAuto},
		{"missing file", filepath.Join(dir, "nope.json"), FormatAuto},
		{"unknown format", garbage, Format("xml")},
		{"undetectable", unknownExt, FormatAuto},
		{"malformed json", garbage, FormatAuto},
		{"missing required column", missingRating, FormatAuto},
		{"null required column", nullTopic, FormatAuto},
		{"missing embeddings table", noEmbeddings, FormatAuto},
		{"not a sqlite file", badSQLite, FormatAuto},
		{"parquet dir without tables", emptyParquetDir, FormatAuto},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(tt.path, tt.format)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, domain.ErrLoad) {
				t.Fatalf("expected ErrLoad, got %v", err)
			}
			var le *domain.LoadError
			if !errors.As(err, &le) {
				t.Fatalf("expected *LoadError, got %T", err)
			}
		})
	}
}

func TestRead_FormatMismatch(t *testing.T) {
	books, embeddings := testRows()
	path := filepath.Join(t.TempDir(), "catalog.sqlite")
	if err := WriteSQLite(path, books, embeddings); err != nil {
		t.Fatal(err)
	}

	_, err := Read(path, FormatJSON)
	if !errors.Is(err, domain.ErrLoad) {
		t.Fatalf("expected ErrLoad, got %v", err)
	}
}

func TestRead_SQLiteMissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	for _, stmt := range []string{
		`CREATE TABLE books (title TEXT, rating REAL, topic TEXT)`,
		`CREATE TABLE embeddings (title TEXT, vector BLOB)`,
		`INSERT INTO books VALUES ('Dune', 4.1, 'science')`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatal(err)
		}
	}
	_ = db.Close()

	_, err = Read(path, FormatAuto)
	if !errors.Is(err, domain.ErrLoad) {
		t.Fatalf("expected ErrLoad, got %v", err)
	}
	var le *domain.LoadError
	if !errors.As(err, &le) || le.Reason != "missing required columns summary" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		path  string
		isDir bool
		want  Format
	}{
		{"snap", true, FormatParquet},
		{"books.JSON", false, FormatJSON},
		{"books.db", false, FormatSQLite},
		{"books.sqlite3", false, FormatSQLite},
		{"books.csv", false, FormatAuto},
	}
	for _, tt := range tests {
		if got := Detect(tt.path, tt.isDir); got != tt.want {
			t.Errorf("Detect(%q, %v) = %q, want %q", tt.path, tt.isDir, got, tt.want)
		}
	}
}

func TestVectorCodec(t *testing.T) {
	in := []float32{1.5, -2, 0}
	out, err := DecodeVector(EncodeVector(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 3 || out[0] != 1.5 || out[1] != -2 {
		t.Fatalf("unexpected vector: %v", out)
	}
	if _, err := DecodeVector([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected error for truncated blob")
	}
}

func TestFormat_IsValid(t *testing.T) {
	if !FormatSQLite.IsValid() || !FormatAuto.IsValid() {
		t.Fatal("expected valid")
	}
	if Format("csv").IsValid() {
		t.Fatal("csv must be invalid")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}
