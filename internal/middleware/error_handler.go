package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/deppfellow/api-bootstrap/internal/errs"
)

// ErrorResponse is the body written for a domain error.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Errors  []any  `json:"errors"`
}

// InternalErrorResponse is the body written for every other error. It
// has no errors field.
type InternalErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// GlobalErrorHandler is the final error funnel for the entire HTTP server.
//
// A *errs.HTTPError is answered with its own status, message and
// sub-errors, unless its status cannot be written. Echo's own 4xx errors
// (unknown route, method not allowed) are first converted into domain
// errors. Anything else is logged and answered with a generic 500 that
// never includes the original message.
func (global *GlobalMiddlewares) GlobalErrorHandler(err error, c echo.Context) {
	logger := global.loggerFor(c)

	if c.Response().Committed {
		logger.Debug().Err(err).Msg("response already committed, error not written")
		return
	}

	var httpErr *errs.HTTPError
	if !errors.As(err, &httpErr) {
		var echoErr *echo.HTTPError
		if errors.As(err, &echoErr) && echoErr.Code < http.StatusInternalServerError {
			err = fromEchoError(echoErr)
		}
	}

	if errors.As(err, &httpErr) && isWritableStatus(httpErr.Status) {
		subErrors := httpErr.Errors
		if subErrors == nil {
			subErrors = []any{}
		}

		global.write(c, httpErr.Status, ErrorResponse{
			Success: false,
			Message: httpErr.Message,
			Errors:  subErrors,
		})
		return
	}

	logger.Error().Stack().
		Err(err).
		Int("status", http.StatusInternalServerError).
		Str("error_code", errs.MakeUpperCaseWithUnderscores(http.StatusText(http.StatusInternalServerError))).
		Msg("unhandled error")

	global.write(c, http.StatusInternalServerError, InternalErrorResponse{
		Success: false,
		Message: http.StatusText(http.StatusInternalServerError),
	})
}

func (global *GlobalMiddlewares) write(c echo.Context, status int, body any) {
	var err error
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}

	if err != nil {
		global.loggerFor(c).Error().Err(err).Int("status", status).Msg("failed to write error response")
	}
}

// isWritableStatus reports whether net/http accepts status in WriteHeader.
// A domain error carrying anything else is answered as an opaque 500.
func isWritableStatus(status int) bool {
	return status >= 100 && status <= 999
}

// fromEchoError converts Echo's own error type into a domain error.
func fromEchoError(echoErr *echo.HTTPError) *errs.HTTPError {
	if echoErr.Code == http.StatusNotFound {
		return errs.NewNotFoundError("Route not found")
	}

	if msg, ok := echoErr.Message.(string); ok && msg != "" {
		return errs.New(echoErr.Code, msg)
	}

	return errs.FromStatus(echoErr.Code)
}
