package bookrec

import "github.com/kailas-cloud/bookrec/internal/domain/book"

// DefaultTopics are the twelve topic labels of the reference dataset.
var DefaultTopics = append([]string(nil), book.DefaultTopics...)

// MatchKind classifies how a query resolved against catalog titles.
type MatchKind string

// Match kinds.
const (
	MatchEmpty     MatchKind = "empty"
	MatchNone      MatchKind = "no_match"
	MatchExact     MatchKind = "exact"
	MatchAmbiguous MatchKind = "ambiguous"
	MatchTooMany   MatchKind = "too_many"
)

// ExploreMode reports which fallback tier an exploration used.
type ExploreMode string

// Explore modes.
const (
	ModeFullMatch    ExploreMode = "full_match"
	ModePartialMatch ExploreMode = "partial_match"
	ModeFullRandom   ExploreMode = "full_random"
)

// Book is a catalog entry.
type Book struct {
	Title      string  `json:"title"`
	Author     string  `json:"author,omitempty"`
	Rating     float64 `json:"rating"`
	NumRatings int     `json:"num_ratings,omitempty"`
	NumReviews int     `json:"num_reviews,omitempty"`
	Pages      int     `json:"pages,omitempty"`
	Year       int     `json:"year,omitempty"`
	Publisher  string  `json:"publisher,omitempty"`
	Summary    string  `json:"summary"`
	Topic      string  `json:"topic"`
}

// Record is a book with its embedding, the input of NewFromRecords.
type Record struct {
	Book
	Embedding []float32
}

// Neighbor is a book ranked by cosine distance to a seed title.
type Neighbor struct {
	Book
	Distance   float64 `json:"distance"`
	Similarity float64 `json:"similarity"`
}

// Match is the outcome of resolving a free-text query.
type Match struct {
	Kind  MatchKind `json:"kind"`
	Query string    `json:"query"`
	// Title is the canonical title, set for MatchExact only.
	Title string `json:"title,omitempty"`
	// Candidates are listed titles in catalog order.
	Candidates []string `json:"candidates"`
	// Total counts matches before truncation.
	Total int `json:"total"`
}

// Recommendable reports whether the query named exactly one title.
func (m Match) Recommendable() bool { return m.Kind == MatchExact }

// Recommendation is the result of Similar.
type Recommendation struct {
	Match Match `json:"match"`
	// Seed is the title neighbors were computed for.
	Seed string `json:"seed,omitempty"`
	// RandomFallback is set when nothing matched and Seed was drawn at random.
	RandomFallback bool       `json:"random_fallback"`
	Neighbors      []Neighbor `json:"neighbors"`
}

// Recommended reports whether neighbors were computed.
func (r Recommendation) Recommended() bool { return r.Seed != "" }

// Exploration is the result of Explore.
type Exploration struct {
	Mode      ExploreMode `json:"mode"`
	Requested int         `json:"requested"`
	Matched   int         `json:"matched"`
	Books     []Book      `json:"books"`
}

// TopicCount is the number of books labeled with a topic.
type TopicCount struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}
