package chi

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/kailas-cloud/bookrec/internal/domain/book"
	"github.com/kailas-cloud/bookrec/internal/domain/match"
	"github.com/kailas-cloud/bookrec/internal/domain/neighbor"
	"github.com/kailas-cloud/bookrec/internal/domain/sample"
	recommenduc "github.com/kailas-cloud/bookrec/internal/usecase/recommend"
)

// ErrorCode is a machine-readable error code returned in ErrorResponse.
type ErrorCode string

// Error codes.
const (
	CodeBadRequest       ErrorCode = "bad_request"
	CodeValidationFailed ErrorCode = "validation_failed"
	CodeUnauthorized     ErrorCode = "unauthorized"
	CodeBookNotFound     ErrorCode = "book_not_found"
	CodeTitleNotFound    ErrorCode = "title_not_found"
	CodeDegenerateVector ErrorCode = "degenerate_vector"
	CodeRateLimited      ErrorCode = "rate_limited"
	CodeRouteNotFound    ErrorCode = "route_not_found"
	CodeMethodNotAllowed ErrorCode = "method_not_allowed"
	CodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// SimilarRequest is the body of POST /api/v1/recommendations/similar.
type SimilarRequest struct {
	Query string  `json:"query" validate:"max=512"`
	K     *int    `json:"k,omitempty" validate:"omitempty,gte=1"`
	Seed  *uint64 `json:"seed,omitempty"`
}

// ExploreRequest is the body of POST /api/v1/recommendations/explore.
type ExploreRequest struct {
	Topic     string   `json:"topic" validate:"required,max=128"`
	MinRating *float64 `json:"min_rating,omitempty" validate:"omitempty,gte=0"`
	K         *int     `json:"k,omitempty" validate:"omitempty,gte=1"`
	Seed      *uint64  `json:"seed,omitempty"`
}

// BookResponse is a catalog book.
type BookResponse struct {
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

// NeighborResponse is a book with its cosine distance to the seed title.
type NeighborResponse struct {
	BookResponse
	Distance   float64 `json:"distance"`
	Similarity float64 `json:"similarity"`
}

// MatchResponse describes how a query resolved against catalog titles.
type MatchResponse struct {
	Kind          match.Kind `json:"kind"`
	Query         string     `json:"query"`
	Title         string     `json:"title,omitempty"`
	Candidates    []string   `json:"candidates"`
	Total         int        `json:"total"`
	Recommendable bool       `json:"recommendable"`
}

// NeighborsResponse is the body of GET /api/v1/books/{title}/similar.
type NeighborsResponse struct {
	Title     string             `json:"title"`
	Neighbors []NeighborResponse `json:"neighbors"`
}

// SimilarResponse is the body of POST /api/v1/recommendations/similar.
type SimilarResponse struct {
	Match          MatchResponse      `json:"match"`
	Seed           string             `json:"seed,omitempty"`
	RandomFallback bool               `json:"random_fallback"`
	Neighbors      []NeighborResponse `json:"neighbors"`
}

// ExploreResponse is the body of POST /api/v1/recommendations/explore.
type ExploreResponse struct {
	Mode      sample.Mode    `json:"mode"`
	Requested int            `json:"requested"`
	Matched   int            `json:"matched"`
	Books     []BookResponse `json:"books"`
}

// TopicResponse is one topic with its book count.
type TopicResponse struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

// TopicListResponse is the body of GET /api/v1/topics.
type TopicListResponse struct {
	Items []TopicResponse `json:"items"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status      string            `json:"status"`
	Checks      map[string]string `json:"checks"`
	Books       int               `json:"books"`
	Fingerprint string            `json:"fingerprint,omitempty"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationMessage renders validator errors as "field: rule" pairs.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field(), rule))
	}
	return "invalid request: " + strings.Join(parts, ", ")
}

func bookToResponse(b *book.Book) BookResponse {
	return BookResponse{
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

func booksToResponse(books []book.Book) []BookResponse {
	out := make([]BookResponse, len(books))
	for i := range books {
		out[i] = bookToResponse(&books[i])
	}
	return out
}

func neighborsToResponse(ns []neighbor.Neighbor) []NeighborResponse {
	out := make([]NeighborResponse, len(ns))
	for i := range ns {
		b := ns[i].Book()
		out[i] = NeighborResponse{
			BookResponse: bookToResponse(&b),
			Distance:     ns[i].Distance(),
			Similarity:   ns[i].Similarity(),
		}
	}
	return out
}

func matchToResponse(m *match.Result) MatchResponse {
	candidates := m.Candidates()
	if candidates == nil {
		candidates = []string{}
	}
	return MatchResponse{
		Kind:          m.Kind(),
		Query:         m.Query(),
		Title:         m.Title(),
		Candidates:    candidates,
		Total:         m.Total(),
		Recommendable: m.Kind().Recommendable(),
	}
}

func outcomeToResponse(o *recommenduc.Outcome) SimilarResponse {
	return SimilarResponse{
		Match:          matchToResponse(&o.Match),
		Seed:           o.Seed,
		RandomFallback: o.RandomFallback,
		Neighbors:      neighborsToResponse(o.Neighbors),
	}
}

func sampleToResponse(r *sample.Result) ExploreResponse {
	return ExploreResponse{
		Mode:      r.Mode(),
		Requested: r.Requested(),
		Matched:   r.Matched(),
		Books:     booksToResponse(r.Books()),
	}
}

func topicsToResponse(topics []book.TopicCount) TopicListResponse {
	items := make([]TopicResponse, len(topics))
	for i, t := range topics {
		items[i] = TopicResponse{Topic: t.Topic, Count: t.Count}
	}
	return TopicListResponse{Items: items}
}
