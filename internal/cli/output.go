package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/emiliopalmerini/abtest/internal/domain"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Data problem (bad schema, too little or degenerate data)
	ExitCommandError = 2 // Command error (bad flags, missing files, database errors)
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Message == "" && e.Err != nil {
		return e.Err.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// ExitCode extracts the exit code from an error. Errors caused by the data
// itself map to ExitFailure, everything else to ExitCommandError.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	if isDataError(err) {
		return ExitFailure
	}
	return ExitCommandError
}

func isDataError(err error) bool {
	for _, target := range []error{
		domain.ErrSchema,
		domain.ErrInvalidAssignment,
		domain.ErrInsufficientData,
		domain.ErrDegenerateRate,
		domain.ErrDivisionByZero,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// render writes v as JSON or YAML, or calls text for the human-readable form.
func render(w io.Writer, v any, text func(io.Writer) error) error {
	switch outputFormat {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return text(w)
	}
}
