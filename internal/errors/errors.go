// Package errors provides structured error types with helpful suggestions.
// Each error carries a type classification, a message, a suggestion for
// fixing the issue and an optional alternative. Remote storage providers
// return these so that the pipeline can log actionable causes.
//
// Error types cover a missing storage tool, listing, fetch and copy
// failures, permission problems and configuration errors.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorType categorizes the type of error
type ErrorType int

const (
	// ToolNotFoundError indicates the storage CLI is not on PATH
	ToolNotFoundError ErrorType = iota
	// ListError indicates a remote listing failed
	ListError
	// FetchError indicates a single-object download failed
	FetchError
	// CopyError indicates a recursive copy failed
	CopyError
	// PermissionError indicates a local or remote permission issue
	PermissionError
	// ConfigError indicates a configuration issue
	ConfigError
	// UnknownError is a catch-all for unexpected errors
	UnknownError
)

func (t ErrorType) String() string {
	switch t {
	case ToolNotFoundError:
		return "tool_not_found"
	case ListError:
		return "list_failed"
	case FetchError:
		return "fetch_failed"
	case CopyError:
		return "copy_failed"
	case PermissionError:
		return "permission_denied"
	case ConfigError:
		return "config"
	default:
		return "unknown"
	}
}

// Error represents an error with context and suggestions
type Error struct {
	Type        ErrorType
	Message     string
	Suggestion  string
	Alternative string
	Cause       error
	Target      string // remote URI or local path involved
	Output      string // captured stderr of the external tool, if any
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if e.Output != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Output)
	}
	return msg
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error
func New(errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Cause:   err,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *Error) WithSuggestion(suggestion string) *Error {
	e.Suggestion = suggestion
	return e
}

// WithAlternative adds an alternative solution to the error
func (e *Error) WithAlternative(alternative string) *Error {
	e.Alternative = alternative
	return e
}

// WithTarget records the URI or path the error concerns
func (e *Error) WithTarget(target string) *Error {
	e.Target = target
	return e
}

// WithOutput attaches trimmed tool output to the error
func (e *Error) WithOutput(output string) *Error {
	e.Output = strings.TrimSpace(output)
	return e
}

// DetectErrorType attempts to detect the error type from a generic error
func DetectErrorType(err error) ErrorType {
	if err == nil {
		return UnknownError
	}

	var e *Error
	if stderrors.As(err, &e) {
		return e.Type
	}

	errStr := strings.ToLower(err.Error())

	if strings.Contains(errStr, "executable file not found") {
		return ToolNotFoundError
	}
	if strings.Contains(errStr, "permission denied") || strings.Contains(errStr, "access denied") ||
		strings.Contains(errStr, "403") {
		return PermissionError
	}
	if strings.Contains(errStr, "config") || strings.Contains(errStr, "yaml") {
		return ConfigError
	}

	return UnknownError
}

// WrapWithDetection wraps an error and attempts to detect its type
func WrapWithDetection(err error, message string) *Error {
	errType := DetectErrorType(err)
	wrapped := Wrap(err, errType, message)

	switch errType {
	case ToolNotFoundError:
		wrapped.WithSuggestion("Install the Google Cloud SDK: https://cloud.google.com/sdk/docs/install").
			WithAlternative("Switch to the s3 backend in tilefetch.yaml")
	case PermissionError:
		wrapped.WithSuggestion("Check bucket permissions and local directory permissions").
			WithAlternative("Run 'gcloud auth login' if the bucket requires credentials")
	case ConfigError:
		wrapped.WithSuggestion("Check your tilefetch.yaml configuration file").
			WithAlternative("Run 'tilefetch config init --force' to regenerate the defaults")
	}

	return wrapped
}

// Common error constructors

// NewToolNotFoundError reports that the storage CLI could not be located
func NewToolNotFoundError(tool string, cause error) *Error {
	return &Error{
		Type:        ToolNotFoundError,
		Message:     fmt.Sprintf("'%s' was not found on PATH", tool),
		Suggestion:  "Install the Google Cloud SDK: https://cloud.google.com/sdk/docs/install",
		Alternative: "Set storage.tool to the full path of the binary",
		Cause:       cause,
		Target:      tool,
	}
}

// NewListError creates a listing error
func NewListError(uri string, cause error) *Error {
	return &Error{
		Type:       ListError,
		Message:    fmt.Sprintf("failed to list %s", uri),
		Suggestion: "Verify the tile exists in the bucket",
		Cause:      cause,
		Target:     uri,
	}
}

// NewFetchError creates a single-file download error
func NewFetchError(uri string, cause error) *Error {
	return &Error{
		Type:       FetchError,
		Message:    fmt.Sprintf("failed to fetch %s", uri),
		Suggestion: "Check that the product contains the metadata file",
		Cause:      cause,
		Target:     uri,
	}
}

// NewCopyError creates a recursive copy error
func NewCopyError(uri string, cause error) *Error {
	return &Error{
		Type:        CopyError,
		Message:     fmt.Sprintf("failed to copy %s", uri),
		Suggestion:  "Check free disk space and network connectivity",
		Alternative: "Remove the partial folder so the next run retries it",
		Cause:       cause,
		Target:      uri,
	}
}

// NewConfigError creates a configuration error
func NewConfigError(field string, cause error) *Error {
	return &Error{
		Type:        ConfigError,
		Message:     fmt.Sprintf("configuration error in field: %s", field),
		Suggestion:  "Check your tilefetch.yaml configuration file",
		Alternative: "Run 'tilefetch config init --force' to regenerate default configuration",
		Cause:       cause,
	}
}

// IsToolNotFound checks if an error is a missing-tool error
func IsToolNotFound(err error) bool {
	return typeOf(err) == ToolNotFoundError
}

// IsConfigError checks if an error is a configuration error
func IsConfigError(err error) bool {
	return typeOf(err) == ConfigError
}

// ContainsAny reports whether the error text, including captured tool
// output, contains any of the given markers.
func ContainsAny(err error, markers []string) bool {
	if err == nil {
		return false
	}
	text := err.Error()
	for _, m := range markers {
		if m != "" && strings.Contains(text, m) {
			return true
		}
	}
	return false
}

func typeOf(err error) ErrorType {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type
	}
	return UnknownError
}
