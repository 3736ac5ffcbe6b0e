package errors

import (
	stderrors "errors"
	"fmt"
)

// Error is the structured error type for rlzap.
// It carries enough context for matching, logging, and user presentation.
type Error struct {
	// Code is the unique error code (e.g., "ERR_402_OUT_OF_RANGE").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Validation, Internal).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Sentinels for errors.Is. Matching is by code, so any *Error carrying the
// same code matches regardless of message or details.
var (
	ErrConstruction      = &Error{Code: ErrCodeConstruction}
	ErrOutOfRange        = &Error{Code: ErrCodeOutOfRange}
	ErrInvalidRange      = &Error{Code: ErrCodeInvalidRange}
	ErrInvalidFormat     = &Error{Code: ErrCodeInvalidFormat}
	ErrUnboundReference  = &Error{Code: ErrCodeUnboundReference}
	ErrReferenceTooShort = &Error{Code: ErrCodeReferenceTooShort}
	ErrReferenceMismatch = &Error{Code: ErrCodeReferenceMismatch}
	ErrInvalidInput      = &Error{Code: ErrCodeInvalidInput}
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("[%s]", e.Code)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *Error) WithDetail(key, value string) *Error {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
func (e *Error) WithSuggestion(suggestion string) *Error {
	e.Suggestion = suggestion
	return e
}

// New creates a new Error with the given code and message.
// Category and severity are derived from the code.
func New(code string, message string, cause error) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Severity: severityFromCode(code),
		Cause:    cause,
	}
}

// Newf is New with a formatted message and no cause.
func Newf(code string, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...), nil)
}

// Wrap creates an Error from an existing error.
// The error's message becomes the Error message.
func Wrap(code string, err error) *Error {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *Error {
	return New(ErrCodeConfigInvalid, message, cause)
}

// IOError creates an I/O-related error.
func IOError(message string, cause error) *Error {
	return New(ErrCodeFileNotFound, message, cause)
}

// ValidationError creates a validation-related error.
func ValidationError(message string, cause error) *Error {
	return New(ErrCodeInvalidInput, message, cause)
}

// ConstructionError creates a build-fatal error. No partial index survives it.
func ConstructionError(message string, cause error) *Error {
	return New(ErrCodeConstruction, message, cause)
}

// FormatError creates an error for unrecognized or corrupt serialized bytes.
func FormatError(message string, cause error) *Error {
	return New(ErrCodeInvalidFormat, message, cause)
}

// RangeError reports a position or cursor move outside its valid bounds.
func RangeError(format string, args ...any) *Error {
	return Newf(ErrCodeOutOfRange, format, args...)
}

// InvalidRangeError reports a range whose start lies after its end.
func InvalidRangeError(start, end int) *Error {
	return Newf(ErrCodeInvalidRange, "range start %d is after end %d", start, end)
}

// UnboundReferenceError reports a copy-phrase query on an index with no reference.
func UnboundReferenceError(pos int) *Error {
	return Newf(ErrCodeUnboundReference, "position %d needs the reference but none is bound", pos).
		WithSuggestion("bind the reference with SetSource after loading the index")
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *Error {
	return New(ErrCodeInternal, message, cause)
}

// IsFatal checks if an error has fatal severity.
func IsFatal(err error) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Severity == SeverityFatal
	}
	return false
}

// GetCode extracts the error code from the first *Error in the chain.
// Returns empty string if there is none.
func GetCode(err error) string {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ""
}

// GetCategory extracts the category from the first *Error in the chain.
func GetCategory(err error) Category {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Category
	}
	return ""
}
