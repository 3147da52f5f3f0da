package errs

import (
	"strings"
)

// FieldError represents a field-level validation error (typical for forms).
// It is the usual element type of HTTPError.Errors for validation failures.
//
//	{ "field": "email", "error": "invalid email format" }
type FieldError struct {
	// Field is the field name/key the error relates to (e.g. "email").
	Field string `json:"field"`

	// Error is the human-readable error message.
	Error string `json:"error"`
}

// HTTPError is the domain error understood by the global error handler.
//
// The handler answers it with Status and the body
//
//	{ "success": false, "message": Message, "errors": Errors }
//
// Errors is an ordered collection of sub-errors. Its elements are encoded
// as-is, so strings, FieldError values or any JSON-encodable value work.
type HTTPError struct {
	Status  int    `json:"-"`
	Message string `json:"message"`
	Errors  []any  `json:"errors"`
}

// New builds a domain error. Errors is never nil so it encodes as [].
func New(status int, message string, errors ...any) *HTTPError {
	if errors == nil {
		errors = []any{}
	}

	return &HTTPError{
		Status:  status,
		Message: message,
		Errors:  errors,
	}
}

// Error makes *HTTPError satisfy the built-in error interface.
func (e *HTTPError) Error() string {
	return e.Message
}

// Is reports whether target is also a *HTTPError.
//
// It does not compare Status or Message, only the type.
func (e *HTTPError) Is(target error) bool {
	_, ok := target.(*HTTPError)

	return ok
}

// WithMessage returns a copy of this HTTPError with Message replaced.
func (e *HTTPError) WithMessage(message string) *HTTPError {
	return &HTTPError{
		Status:  e.Status,
		Message: message,
		Errors:  e.Errors,
	}
}

// WithErrors returns a copy of this HTTPError with sub-errors appended.
func (e *HTTPError) WithErrors(errors ...any) *HTTPError {
	merged := make([]any, 0, len(e.Errors)+len(errors))
	merged = append(merged, e.Errors...)
	merged = append(merged, errors...)

	return &HTTPError{
		Status:  e.Status,
		Message: e.Message,
		Errors:  merged,
	}
}

// MakeUpperCaseWithUnderscores converts a string into an UPPER_CASE_WITH_UNDERSCORES format.
//
//	"Bad Request" -> "BAD_REQUEST"
//
// Used for machine-readable codes in logs.
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
