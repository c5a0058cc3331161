package chi

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/bookrec/internal/domain"
	"github.com/kailas-cloud/bookrec/internal/domain/book"
	"github.com/kailas-cloud/bookrec/internal/logger"
	exploreuc "github.com/kailas-cloud/bookrec/internal/usecase/explore"
	healthuc "github.com/kailas-cloud/bookrec/internal/usecase/health"
	recommenduc "github.com/kailas-cloud/bookrec/internal/usecase/recommend"
)

const maxBodyBytes = 64 << 10

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Catalog is the read side of the book catalog used by the HTTP layer.
type Catalog interface {
	Lookup(title string) (book.Book, bool)
	Topics() []book.TopicCount
}

// Server serves the bookrec HTTP API.
type Server struct {
	recommend     *recommenduc.Service
	catalog       Catalog
	health        *healthuc.Service
	defaultK      int
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. defaultK applies when a request omits k.
func NewServer(
	recommend *recommenduc.Service,
	catalog Catalog,
	health *healthuc.Service,
	defaultK int,
	log *zap.Logger,
) *Server {
	if defaultK <= 0 {
		defaultK = 1
	}
	s := &Server{
		recommend: recommend,
		catalog:   catalog,
		health:    health,
		defaultK:  defaultK,
		logger:    log,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrTitleNotFound, http.StatusNotFound, CodeTitleNotFound),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, CodeBookNotFound),
		sentinelHandler(domain.ErrDegenerateVector, http.StatusUnprocessableEntity, CodeDegenerateVector),
		sentinelHandler(domain.ErrInvalidArgument, http.StatusBadRequest, CodeValidationFailed),
	}
	return s
}

// Routes registers every endpoint on r. Middlewares must already be attached.
func (s *Server) Routes(r chi.Router) {
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeRouteNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "method not allowed")
	})

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/resolve", s.ResolveTitle)
		r.Get("/topics", s.ListTopics)
		r.Get("/books/{title}", s.GetBook)
		r.Get("/books/{title}/similar", s.SimilarBooks)
		r.Post("/recommendations/similar", s.RecommendSimilar)
		r.Post("/recommendations/explore", s.Explore)
	})
}

// ResolveTitle handles GET /api/v1/resolve.
func (s *Server) ResolveTitle(w http.ResponseWriter, r *http.Request) {
	var q string
	if err := runtime.BindQueryParameter("form", true, false, "q", r.URL.Query(), &q); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid query parameter q")
		return
	}

	res := s.recommend.Resolve(q)
	writeJSON(w, http.StatusOK, matchToResponse(&res))
}

// ListTopics handles GET /api/v1/topics.
func (s *Server) ListTopics(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, topicsToResponse(s.catalog.Topics()))
}

// GetBook handles GET /api/v1/books/{title}.
func (s *Server) GetBook(w http.ResponseWriter, r *http.Request) {
	title, ok := s.titleParam(w, r)
	if !ok {
		return
	}

	b, found := s.catalog.Lookup(title)
	if !found {
		s.handleDomainError(w, r, fmt.Errorf("book %q: %w", title, domain.ErrNotFound))
		return
	}
	writeJSON(w, http.StatusOK, bookToResponse(&b))
}

// SimilarBooks handles GET /api/v1/books/{title}/similar.
func (s *Server) SimilarBooks(w http.ResponseWriter, r *http.Request) {
	title, ok := s.titleParam(w, r)
	if !ok {
		return
	}

	var k *int
	if err := runtime.BindQueryParameter("form", true, false, "k", r.URL.Query(), &k); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid query parameter k")
		return
	}

	ns, err := s.recommend.Nearest(r.Context(), title, s.kOrDefault(k))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, NeighborsResponse{Title: title, Neighbors: neighborsToResponse(ns)})
}

// RecommendSimilar handles POST /api/v1/recommendations/similar.
func (s *Server) RecommendSimilar(w http.ResponseWriter, r *http.Request) {
	var req SimilarRequest
	if !s.decode(w, r, &req) {
		return
	}

	out, err := s.recommend.Similar(r.Context(), req.Query, s.kOrDefault(req.K), rngFor(req.Seed))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, outcomeToResponse(&out))
}

// Explore handles POST /api/v1/recommendations/explore.
func (s *Server) Explore(w http.ResponseWriter, r *http.Request) {
	var req ExploreRequest
	if !s.decode(w, r, &req) {
		return
	}

	minRating := 0.0
	if req.MinRating != nil {
		minRating = *req.MinRating
	}

	res, err := s.recommend.Explore(r.Context(), req.Topic, minRating, s.kOrDefault(req.K), rngFor(req.Seed))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sampleToResponse(&res))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:      string(report.Status),
		Checks:      checks,
		Books:       report.Books,
		Fingerprint: report.Fingerprint,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) titleParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	var title string
	err := runtime.BindStyledParameterWithOptions("simple", "title", chi.URLParam(r, "title"), &title,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil || title == "" {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid path parameter title")
		return "", false
	}
	return title, true
}

// decode reads a JSON body into dst and validates it. It writes the error response itself.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, validationMessage(err))
		return false
	}
	return true
}

func (s *Server) kOrDefault(k *int) int {
	if k == nil {
		return s.defaultK
	}
	return *k
}

// rngFor returns a reproducible source for an explicit seed, a fresh one otherwise.
func rngFor(seed *uint64) *rand.Rand {
	if seed != nil {
		return exploreuc.NewRand(*seed)
	}
	return exploreuc.SeededRand()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// clientMessage returns a message safe to show to clients. Typed domain errors carry
// only caller-supplied values, anything else collapses to its sentinel.
func clientMessage(err error) string {
	var (
		tnf *domain.TitleNotFoundError
		dv  *domain.DegenerateVectorError
	)
	switch {
	case errors.As(err, &tnf):
		return tnf.Error()
	case errors.As(err, &dv):
		return dv.Error()
	case errors.Is(err, domain.ErrInvalidArgument):
		return err.Error()
	case errors.Is(err, domain.ErrNotFound):
		return "book not found"
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, clientMessage(err))
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContextOr(r.Context(), s.logger).With(zap.String("path", r.URL.Path))
	log.Warn("domain error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
