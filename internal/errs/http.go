package errs

import (
	"net/http"
)

// NewUnauthorizedError creates a 401 Unauthorized HTTPError.
func NewUnauthorizedError(message string) *HTTPError {
	return New(http.StatusUnauthorized, message)
}

// NewForbiddenError creates a 403 Forbidden HTTPError.
func NewForbiddenError(message string) *HTTPError {
	return New(http.StatusForbidden, message)
}

// NewBadRequestError creates a 400 Bad Request HTTPError.
//
// errors are optional sub-errors, typically []FieldError entries from
// request validation.
func NewBadRequestError(message string, errors ...any) *HTTPError {
	return New(http.StatusBadRequest, message, errors...)
}

// NewNotFoundError creates a 404 Not Found HTTPError.
func NewNotFoundError(message string, errors ...any) *HTTPError {
	return New(http.StatusNotFound, message, errors...)
}

// NewInternalServerError creates a 500 Internal Server Error HTTPError.
//
// The message is the generic status text, never the real internal error.
func NewInternalServerError() *HTTPError {
	return New(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}

// FromStatus creates an HTTPError for status using its standard status text.
func FromStatus(status int) *HTTPError {
	message := http.StatusText(status)
	if message == "" {
		message = http.StatusText(http.StatusInternalServerError)
	}

	return New(status, message)
}

// ValidationError converts a generic validation error into a 400 Bad Request HTTPError.
func ValidationError(err error) *HTTPError {
	return NewBadRequestError("Validation failed: " + err.Error())
}
