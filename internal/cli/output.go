package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mvasquez/invctl/internal/repo"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Domain-rule violation (not found, duplicate email, invalid input)
	ExitCommandError = 2 // Command error (bad flags, storage unavailable, uninitialized schema)
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code     int    // Exit code (use ExitFailure or ExitCommandError)
	Message  string // Error message
	Err      error  // Underlying error (optional)
	Reported bool   // True when the command already rendered the error
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
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer
	Verbose   bool
}

// NewFormatter builds a formatter wired to the command's output streams.
func NewFormatter(cmd *cobra.Command, opts *RootOptions) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status  string      `json:"status"`             // "ok" or "error"
	Data    interface{} `json:"data,omitempty"`     // success payload
	Error   *CLIError   `json:"error,omitempty"`    // error details
	TraceID string      `json:"trace_id,omitempty"` // correlation id
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`    // domain error code, e.g. "DUPLICATE_EMAIL"
	Message string `json:"message"` // human-readable message
}

// JSON reports whether the formatter emits JSON.
func (f *OutputFormatter) JSON() bool {
	return f.Format == "json"
}

// Success outputs a successful result. In JSON mode data is wrapped in the
// response envelope with a fresh trace id; in text mode the caller usually
// renders lines itself and passes a plain string here.
func (f *OutputFormatter) Success(data interface{}) error {
	if f.JSON() {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status:  "ok",
			Data:    data,
			TraceID: uuid.Must(uuid.NewV7()).String(),
		})
	}

	fmt.Fprintln(f.Writer, data)
	return nil
}

// Report renders err in the configured format and returns an ExitError
// carrying the matching exit code. Domain-rule violations exit 1 with the
// specific violated rule; storage and lifecycle failures exit 2.
func (f *OutputFormatter) Report(err error) error {
	code := repo.CodeOf(err)
	message := errMessage(err)

	if f.JSON() {
		_ = json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status:  "error",
			Error:   &CLIError{Code: string(code), Message: message},
			TraceID: uuid.Must(uuid.NewV7()).String(),
		})
	} else {
		fmt.Fprintf(f.ErrWriter, "Error [%s]: %s\n", code, message)
	}

	return &ExitError{Code: exitCodeFor(code), Message: message, Err: err, Reported: true}
}

// errMessage strips the code prefix a repo.Error carries, keeping just the
// human-readable part for display.
func errMessage(err error) string {
	var de *repo.Error
	if errors.As(err, &de) {
		if de.Entity != "" && de.ID != 0 {
			return fmt.Sprintf("%s (%s id=%d)", de.Message, de.Entity, de.ID)
		}
		return de.Message
	}
	return err.Error()
}

func exitCodeFor(code repo.ErrorCode) int {
	switch code {
	case repo.ErrCodeInvalidInput,
		repo.ErrCodeNotFound,
		repo.ErrCodeDuplicateEmail,
		repo.ErrCodeUserNotFound:
		return ExitFailure
	default:
		return ExitCommandError
	}
}
