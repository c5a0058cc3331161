// Package resolve maps free-text queries to catalog titles by case-insensitive prefix.
package resolve

import (
	"strings"

	"github.com/kailas-cloud/bookrec/internal/domain/match"
)

// DefaultMaxCandidates is how many titles are listed before a match counts as TooMany.
const DefaultMaxCandidates = 6

// Service resolves user queries against catalog titles.
type Service struct {
	catalog       Catalog
	maxCandidates int
}

// New creates a resolver. maxCandidates <= 0 falls back to DefaultMaxCandidates.
func New(c Catalog, maxCandidates int) *Service {
	if maxCandidates <= 0 {
		maxCandidates = DefaultMaxCandidates
	}
	return &Service{catalog: c, maxCandidates: maxCandidates}
}

// Normalize trims whitespace and surrounding double quotes.
func Normalize(query string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(query), `"`))
}

// Resolve classifies query as Empty, NoMatch, Exact, Ambiguous or TooMany.
// An exact (case-insensitive) title match wins regardless of how many titles share the prefix.
func (s *Service) Resolve(query string) match.Result {
	q := Normalize(query)
	books := s.catalog.All()

	if q == "" {
		hint := make([]string, 0, min(s.maxCandidates, len(books)))
		for i := 0; i < len(books) && len(hint) < s.maxCandidates; i++ {
			hint = append(hint, books[i].Title())
		}
		return match.NewEmpty(hint, len(books))
	}

	prefix := strings.ToLower(q)
	var (
		candidates []string
		exact      string
		total      int
	)
	for i := range books {
		key := books[i].Key()
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		total++
		if exact == "" && key == prefix {
			exact = books[i].Title()
		}
		if len(candidates) < s.maxCandidates {
			candidates = append(candidates, books[i].Title())
		}
	}

	switch {
	case exact != "":
		return match.NewExact(q, exact, total)
	case total == 0:
		return match.NewNoMatch(q)
	case total <= s.maxCandidates:
		return match.NewAmbiguous(q, candidates)
	default:
		return match.NewTooMany(q, candidates, total)
	}
}
