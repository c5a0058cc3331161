package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrLoad signals a missing, malformed or schema-violating snapshot.
	ErrLoad = errors.New("snapshot load failed")
	// ErrNotFound signals a title absent from the catalog.
	ErrNotFound = errors.New("not found")
	// ErrTitleNotFound signals a title absent from the embedding index.
	ErrTitleNotFound = errors.New("title not found in embedding index")
	// ErrDegenerateVector signals a zero-norm embedding.
	ErrDegenerateVector = errors.New("degenerate embedding vector")
	// ErrInvalidArgument signals a rejected query parameter.
	ErrInvalidArgument = errors.New("invalid argument")
)

// LoadError wraps ErrLoad with the snapshot location and the failing check.
type LoadError struct {
	Path   string
	Reason string
	Err    error
}

func (e *LoadError) Error() string {
	msg := ErrLoad.Error()
	if e.Path != "" {
		msg += " (" + e.Path + ")"
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *LoadError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrLoad}
	}
	return []error{ErrLoad, e.Err}
}

// NewLoadError creates a load error. err may be nil.
func NewLoadError(path, reason string, err error) error {
	return &LoadError{Path: path, Reason: reason, Err: err}
}

// TitleNotFoundError wraps ErrTitleNotFound with the requested title.
type TitleNotFoundError struct {
	Title string
}

func (e *TitleNotFoundError) Error() string {
	return fmt.Sprintf("%s: %q", ErrTitleNotFound.Error(), e.Title)
}

func (e *TitleNotFoundError) Unwrap() error { return ErrTitleNotFound }

// NewTitleNotFound creates a title-not-found error.
func NewTitleNotFound(title string) error {
	return &TitleNotFoundError{Title: title}
}

// DegenerateVectorError wraps ErrDegenerateVector with the offending title.
type DegenerateVectorError struct {
	Title string
}

func (e *DegenerateVectorError) Error() string {
	return fmt.Sprintf("%s: %q has zero norm", ErrDegenerateVector.Error(), e.Title)
}

func (e *DegenerateVectorError) Unwrap() error { return ErrDegenerateVector }

// NewDegenerateVector creates a degenerate-vector error.
func NewDegenerateVector(title string) error {
	return &DegenerateVectorError{Title: title}
}
