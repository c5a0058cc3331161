package match

// Kind classifies how a free-text query resolved against catalog titles.
type Kind string

// Match kind constants.
const (
	// Empty means the query was blank; the user must be prompted.
	Empty Kind = "empty"
	// NoMatch means no title starts with the query.
	NoMatch Kind = "no_match"
	// Exact means the query names exactly one catalog title.
	Exact Kind = "exact"
	// Ambiguous means a few titles share the prefix and none equals the query.
	Ambiguous Kind = "ambiguous"
	// TooMany means more titles share the prefix than can be listed.
	TooMany Kind = "too_many"
)

// IsValid checks if the kind is one of the supported values.
func (k Kind) IsValid() bool {
	switch k {
	case Empty, NoMatch, Exact, Ambiguous, TooMany:
		return true
	}
	return false
}

// Recommendable reports whether a recommendation may run without asking the user.
func (k Kind) Recommendable() bool {
	return k == Exact
}

// Result is the outcome of resolving a query.
type Result struct {
	kind       Kind
	query      string
	title      string
	candidates []string
	total      int
}

// NewEmpty creates an Empty result. hint lists titles shown to prompt the user.
func NewEmpty(hint []string, total int) Result {
	return Result{kind: Empty, candidates: hint, total: total}
}

// NewNoMatch creates a NoMatch result.
func NewNoMatch(query string) Result {
	return Result{kind: NoMatch, query: query}
}

// NewExact creates an Exact result carrying the canonical stored title.
func NewExact(query, title string, total int) Result {
	return Result{kind: Exact, query: query, title: title, candidates: []string{title}, total: total}
}

// NewAmbiguous creates an Ambiguous result.
func NewAmbiguous(query string, candidates []string) Result {
	return Result{kind: Ambiguous, query: query, candidates: candidates, total: len(candidates)}
}

// NewTooMany creates a TooMany result. candidates is the listed head, total the full match count.
func NewTooMany(query string, candidates []string, total int) Result {
	return Result{kind: TooMany, query: query, candidates: candidates, total: total}
}

// Kind returns the match kind.
func (r *Result) Kind() Kind { return r.kind }

// Query returns the normalized query.
func (r *Result) Query() string { return r.query }

// Title returns the resolved title (Exact only).
func (r *Result) Title() string { return r.title }

// Candidates returns the listed titles in catalog order.
func (r *Result) Candidates() []string { return r.candidates }

// Total returns the number of matching titles before truncation.
func (r *Result) Total() int { return r.total }
