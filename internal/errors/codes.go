// Package errors provides structured error handling for rlzap.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: IO and serialized-format errors
//   - 4XX: Query and binding validation errors
//   - 5XX: Construction and internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates file, input and byte-format errors.
	CategoryIO Category = "IO"
	// CategoryValidation indicates a rejected query or binding.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates construction and unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal aborts the whole operation; nothing partial is produced.
	SeverityFatal Severity = "FATAL"
	// SeverityError fails the call; the receiver stays usable.
	SeverityError Severity = "ERROR"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	// IO errors (200-299)
	ErrCodeFileNotFound   = "ERR_201_FILE_NOT_FOUND"
	ErrCodeFilePermission = "ERR_202_FILE_PERMISSION"
	ErrCodeInvalidFormat  = "ERR_205_INVALID_FORMAT"
	ErrCodeInputParse     = "ERR_206_INPUT_PARSE"

	// Validation errors (400-499)
	ErrCodeInvalidInput      = "ERR_401_INVALID_INPUT"
	ErrCodeOutOfRange        = "ERR_402_OUT_OF_RANGE"
	ErrCodeInvalidRange      = "ERR_403_INVALID_RANGE"
	ErrCodeReferenceTooShort = "ERR_404_REFERENCE_TOO_SHORT"
	ErrCodeReferenceMismatch = "ERR_405_REFERENCE_MISMATCH"

	// Internal errors (500-599)
	ErrCodeConstruction     = "ERR_501_CONSTRUCTION_FAILED"
	ErrCodeUnboundReference = "ERR_502_UNBOUND_REFERENCE"
	ErrCodeInternal         = "ERR_509_INTERNAL"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	// Extract the leading digit (e.g. '1' from "ERR_101_CONFIG_NOT_FOUND")
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeConstruction, ErrCodeInvalidFormat:
		return SeverityFatal
	default:
		return SeverityError
	}
}
