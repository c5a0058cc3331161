package cli

import (
	"errors"
	"fmt"
	"io"

	json "github.com/goccy/go-json"

	bookrec "github.com/kailas-cloud/bookrec/pkg/sdk"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Query failed
	ExitCommandError = 2 // Bad flags, unreadable snapshot
)

// ExitError carries the process exit code of a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error
	// Reported is set once the error was written to the user.
	Reported bool
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// Reported reports whether err was already printed by an OutputFormatter.
func Reported(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr) && exitErr.Reported
}

// ErrorCode classifies err for JSON output.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, bookrec.ErrLoad):
		return "load_failed"
	case errors.Is(err, bookrec.ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, bookrec.ErrTitleNotFound), errors.Is(err, bookrec.ErrNotFound):
		return "not_found"
	case errors.Is(err, bookrec.ErrDegenerateVector):
		return "degenerate_vector"
	}
	return "error"
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer
	Verbose   bool
}

// CLIResponse is the JSON envelope of every command.
type CLIResponse struct {
	Status string    `json:"status"` // "ok" or "error"
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Success writes data as JSON, or calls text for human-readable output.
func (f *OutputFormatter) Success(data any, text func(w io.Writer)) error {
	if f.Format == "json" {
		if err := json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: data}); err != nil {
			return fmt.Errorf("encode output: %w", err)
		}
		return nil
	}
	text(f.Writer)
	return nil
}

// Fail reports err in the configured format and returns it with an exit code attached.
func (f *OutputFormatter) Fail(err error) error {
	code := ErrorCode(err)
	if f.Format == "json" {
		_ = json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: err.Error()},
		})
	} else {
		fmt.Fprintf(f.errWriter(), "Error [%s]: %v\n", code, err)
	}

	exit := ExitFailure
	if code == "load_failed" || code == "invalid_argument" {
		exit = ExitCommandError
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		exitErr.Reported = true
		return err
	}
	return &ExitError{Code: exit, Message: code, Err: err, Reported: true}
}

func (f *OutputFormatter) errWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
