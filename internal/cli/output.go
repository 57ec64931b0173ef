package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/uniterm/internal/catalog"
	"github.com/roach88/uniterm/internal/seq"
	"github.com/roach88/uniterm/internal/store"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Rejected input or failed scenarios (validation, unknown record, etc.)
	ExitCommandError = 2 // Command error (bad flags, unusable database, etc.)
)

// Output error codes. Catalogue codes (E001-E102) come from the catalog
// package.
const (
	CodeValidation    = "E201"
	CodeNotFound      = "E202"
	CodeStorage       = "E301"
	CodeClosed        = "E302"
	CodeSchemaVariant = "E303"
	CodeConfig        = "E401"
	CodeTestFailed    = "E_TEST_FAILED"
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
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

// Classify maps a core error to an output code and exit code.
func Classify(err error) (code string, exit int) {
	var catErr *catalog.Error
	switch {
	case seq.IsValidationError(err):
		return CodeValidation, ExitFailure
	case errors.Is(err, store.ErrNotFound):
		return CodeNotFound, ExitFailure
	case errors.Is(err, store.ErrSchemaVariant):
		return CodeSchemaVariant, ExitCommandError
	case errors.Is(err, store.ErrClosed):
		return CodeClosed, ExitCommandError
	case store.IsStorageError(err):
		return CodeStorage, ExitCommandError
	case errors.As(err, &catErr):
		return catErr.Code, ExitFailure
	}
	return catalog.CodeGeneric, ExitCommandError
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
	TraceIDs  TraceIDGenerator // defaults to UUIDv7Generator
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status  string    `json:"status"`             // "ok" or "error"
	Data    any       `json:"data,omitempty"`     // success payload
	Error   *CLIError `json:"error,omitempty"`    // error details
	TraceID string    `json:"trace_id,omitempty"` // unique per response
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E201", "E301", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

func (f *OutputFormatter) traceID() string {
	if f.TraceIDs == nil {
		return UUIDv7Generator{}.Generate()
	}
	return f.TraceIDs.Generate()
}

// JSON reports whether the formatter writes JSON.
func (f *OutputFormatter) JSON() bool {
	return f.Format == "json"
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.JSON() {
		return f.encode(CLIResponse{
			Status:  "ok",
			Data:    data,
			TraceID: f.traceID(),
		})
	}

	// Human-readable text output
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.JSON() {
		return f.encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
			TraceID: f.traceID(),
		})
	}

	// Human-readable error
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Fail reports err and returns the ExitError the command should return.
func (f *OutputFormatter) Fail(message string, err error) error {
	code, exit := Classify(err)

	var details any
	if field := seq.ValidationField(err); field != "" {
		details = map[string]string{"field": field}
	}
	_ = f.Error(code, fmt.Sprintf("%s: %v", message, err), details)
	return WrapExitError(exit, message, err)
}

func (f *OutputFormatter) encode(resp CLIResponse) error {
	encoder := json.NewEncoder(f.Writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(resp)
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
