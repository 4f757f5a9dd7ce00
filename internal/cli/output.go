package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/pythia/internal/querylang"
	"github.com/roach88/pythia/internal/querysql"
	"github.com/roach88/pythia/internal/search"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Query rejected (syntax, validation or dialect error)
	ExitCommandError = 2 // Command error (bad flags, configuration, database unreachable)
)

// Error codes reported in the output envelope.
const (
	ErrCodeGeneric    = "E001" // Generic/unknown error
	ErrCodeDatabase   = "E002" // Database open or query failure
	ErrCodeRequest    = "E003" // Page, size or context out of range
	ErrCodeSyntax     = "E101" // Query does not parse
	ErrCodeValidation = "E102" // Query parses but is semantically invalid
	ErrCodeDialect    = "E103" // Query needs a feature the dialect lacks
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
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status    string    `json:"status"`               // "ok" or "error"
	Data      any       `json:"data,omitempty"`       // success payload
	Error     *CLIError `json:"error,omitempty"`      // error details
	RequestID string    `json:"request_id,omitempty"` // search request correlation
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E001", "E101", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// QueryErrorDetails locates a query error in the query text.
type QueryErrorDetails struct {
	Kind   string `json:"kind"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
	Offset int    `json:"offset"`
	Length int    `json:"length"`
}

// Success outputs a successful result in the configured format.
// In text mode data is printed with its String method or %v.
func (f *OutputFormatter) Success(data any) error {
	return f.SuccessWithID(data, "")
}

// SuccessWithID is Success tagged with a request id.
func (f *OutputFormatter) SuccessWithID(data any, requestID string) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status:    "ok",
			Data:      data,
			RequestID: requestID,
		})
	}

	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %+v\n", details)
	}
	return nil
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}

// QueryFailure reports err and returns the ExitError the command should
// return. Query errors carry their position; request errors and everything
// else map to their own codes.
func (f *OutputFormatter) QueryFailure(err error) error {
	var qe *querylang.Error
	if errors.As(err, &qe) {
		code := ErrCodeValidation
		switch qe.Code {
		case querylang.CodeSyntax:
			code = ErrCodeSyntax
		case querylang.CodeDialect:
			code = ErrCodeDialect
		}
		details := QueryErrorDetails{
			Kind:   string(qe.Code),
			Line:   qe.Pos.Line,
			Column: qe.Pos.Column,
			Offset: qe.Pos.Offset,
			Length: qe.Pos.Length,
		}
		if outErr := f.Error(code, qe.Error(), details); outErr != nil {
			return outErr
		}
		return WrapExitError(ExitFailure, "query rejected", err)
	}

	code := ErrCodeGeneric
	switch {
	case errors.Is(err, search.ErrInvalidRequest), errors.Is(err, querysql.ErrInvalidPage):
		code = ErrCodeRequest
	case errors.Is(err, search.ErrDatabase):
		code = ErrCodeDatabase
	}
	if outErr := f.Error(code, err.Error(), nil); outErr != nil {
		return outErr
	}
	return WrapExitError(ExitCommandError, "command failed", err)
}
