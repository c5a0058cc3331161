package bookrec

import "github.com/kailas-cloud/bookrec/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrLoad             = domain.ErrLoad
	ErrNotFound         = domain.ErrNotFound
	ErrTitleNotFound    = domain.ErrTitleNotFound
	ErrDegenerateVector = domain.ErrDegenerateVector
	ErrInvalidArgument  = domain.ErrInvalidArgument
)

// Typed errors, for errors.As.
type (
	LoadError             = domain.LoadError
	TitleNotFoundError    = domain.TitleNotFoundError
	DegenerateVectorError = domain.DegenerateVectorError
)
