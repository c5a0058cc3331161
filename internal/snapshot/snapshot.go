// Package snapshot reads the immutable catalog snapshot (book metadata table plus
// the parallel embedding table) from JSON, Parquet or SQLite sources.
//
// Readers only decode rows and check that required columns exist. Semantic
// validation (ratings, duplicates, dimensions, joins) belongs to the catalog.
package snapshot

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kailas-cloud/bookrec/internal/domain"
)

// Format is a snapshot serialization.
type Format string

// Supported formats.
const (
	FormatAuto    Format = ""
	FormatJSON    Format = "json"
	FormatParquet Format = "parquet"
	FormatSQLite  Format = "sqlite"
)

// IsValid checks if the format is one of the supported values.
func (f Format) IsValid() bool {
	switch f {
	case FormatAuto, FormatJSON, FormatParquet, FormatSQLite:
		return true
	}
	return false
}

// Required book columns. A snapshot lacking any of them is malformed.
const (
	ColumnTitle   = "title"
	ColumnRating  = "rating"
	ColumnTopic   = "topic"
	ColumnSummary = "summary"
)

// RequiredColumns lists the book columns every snapshot must carry.
var RequiredColumns = []string{ColumnTitle, ColumnRating, ColumnTopic, ColumnSummary}

// Parquet table file names inside a snapshot directory.
const (
	BooksFile      = "books.parquet"
	EmbeddingsFile = "embeddings.parquet"
)

// BookRow is one row of the book metadata table.
type BookRow struct {
	Title      string  `json:"title" parquet:"title"`
	Author     string  `json:"author" parquet:"author,optional"`
	Rating     float64 `json:"rating" parquet:"rating"`
	NumRatings int64   `json:"num_ratings" parquet:"num_ratings,optional"`
	NumReviews int64   `json:"num_reviews" parquet:"num_reviews,optional"`
	Pages      int64   `json:"pages" parquet:"pages,optional"`
	Year       int64   `json:"year" parquet:"year,optional"`
	Publisher  string  `json:"publisher" parquet:"publisher,optional"`
	Summary    string  `json:"summary" parquet:"summary"`
	Topic      string  `json:"topic" parquet:"topic"`
}

// EmbeddingRow is one row of the embedding table, keyed by lowercase title.
type EmbeddingRow struct {
	Title  string    `parquet:"title"`
	Vector []float32 `parquet:"vector,list"`
}

// Snapshot is the decoded content of a snapshot source.
type Snapshot struct {
	Source      string
	Books       []BookRow
	Embeddings  []EmbeddingRow
	Fingerprint string
}

// Read decodes the snapshot at path. format may be FormatAuto to detect it
// from the path. Every failure is a *domain.LoadError.
func Read(path string, format Format) (*Snapshot, error) {
	if path == "" {
		return nil, domain.NewLoadError(path, "snapshot path is required", nil)
	}
	if !format.IsValid() {
		return nil, domain.NewLoadError(path, fmt.Sprintf("unknown snapshot format %q", format), nil)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, domain.NewLoadError(path, "snapshot not accessible", err)
	}

	if format == FormatAuto {
		format = Detect(path, info.IsDir())
		if format == FormatAuto {
			return nil, domain.NewLoadError(path, "cannot detect snapshot format", nil)
		}
	}

	var snap *Snapshot
	switch format {
	case FormatJSON:
		snap, err = readJSON(path)
	case FormatParquet:
		snap, err = readParquet(path)
	case FormatSQLite:
		snap, err = readSQLite(path)
	}
	if err != nil {
		return nil, err
	}
	snap.Source = path
	return snap, nil
}

// Detect guesses the format from the path: directories hold parquet tables,
// files are recognized by extension.
func Detect(path string, isDir bool) Format {
	if isDir {
		return FormatParquet
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite
	}
	return FormatAuto
}

// fingerprint hashes the given files in order.
func fingerprint(paths ...string) (string, error) {
	h := sha256.New()
	for _, p := range paths {
		f, err := os.Open(filepath.Clean(p))
		if err != nil {
			return "", fmt.Errorf("open %s: %w", p, err)
		}
		_, err = io.Copy(h, f)
		_ = f.Close()
		if err != nil {
			return "", fmt.Errorf("hash %s: %w", p, err)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// missingColumns returns the required columns absent from present, sorted.
func missingColumns(present map[string]bool) []string {
	var missing []string
	for _, c := range RequiredColumns {
		if !present[c] {
			missing = append(missing, c)
		}
	}
	sort.Strings(missing)
	return missing
}

// EncodeVector serializes a vector as little-endian float32 bytes.
func EncodeVector(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// DecodeVector parses little-endian float32 bytes.
func DecodeVector(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("invalid vector blob: len=%d (not multiple of 4)", len(data))
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec, nil
}
