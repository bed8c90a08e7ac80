package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/tsawler/tablewrap/element"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // The table could not be built or imported
	ExitCommandError = 2 // Bad arguments, unreadable files
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
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
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// writeJSON writes v followed by a newline.
func writeJSON(w io.Writer, v any, indent bool) error {
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

// writeElements prints els in the chosen format. A single element is
// written as a JSON object, several as an array.
func writeElements(w io.Writer, opts *RootOptions, els []*element.Table) error {
	if opts.Format == "json" {
		if len(els) == 1 {
			return writeJSON(w, els[0], opts.Indent)
		}
		return writeJSON(w, els, opts.Indent)
	}

	for i, el := range els {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		var out string
		switch opts.Format {
		case "markdown":
			out = el.ToMarkdown()
		case "csv":
			out = el.ToCSV()
		case "html":
			s, err := el.ToHTML()
			if err != nil {
				return err
			}
			out = s + "\n"
		}
		if _, err := io.WriteString(w, out); err != nil {
			return err
		}
	}
	return nil
}
