package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/deppfellow/api-bootstrap/internal/errs"
	"github.com/deppfellow/api-bootstrap/internal/lib/xss"
	"github.com/deppfellow/api-bootstrap/internal/server"
)

// contentSecurityPolicy is the default policy browsers get for API responses.
const contentSecurityPolicy = "default-src 'self';base-uri 'self';font-src 'self' https: data:;" +
	"form-action 'self';frame-ancestors 'self';img-src 'self' data:;object-src 'none';" +
	"script-src 'self';script-src-attr 'none';style-src 'self' https: 'unsafe-inline';" +
	"upgrade-insecure-requests"

// GlobalMiddlewares groups the global stages and the global error handler.
//
// Stages reach shared dependencies (config, root logger) through server.
type GlobalMiddlewares struct {
	server    *server.Server
	sanitizer *xss.Sanitizer
}

// NewGlobalMiddlewares constructs the middleware bundle.
func NewGlobalMiddlewares(s *server.Server) *GlobalMiddlewares {
	return &GlobalMiddlewares{
		server:    s,
		sanitizer: xss.New(),
	}
}

// CORS returns Echo's CORS middleware allowing cross-origin requests only
// from allowedOrigin.
//
// An empty allowedOrigin fails closed: no CORS headers are ever written.
// Echo's own default for an empty origin list would be "*".
func (global *GlobalMiddlewares) CORS(allowedOrigin string, allowCredentials bool) echo.MiddlewareFunc {
	if allowedOrigin == "" {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				c.Response().Header().Add(echo.HeaderVary, echo.HeaderOrigin)
				return next(c)
			}
		}
	}

	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{allowedOrigin},
		AllowCredentials: allowCredentials,
	})
}

// Secure returns Echo's secure headers middleware plus the cross-origin
// isolation headers Echo does not set itself.
func (global *GlobalMiddlewares) Secure() echo.MiddlewareFunc {
	secure := middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "0",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "SAMEORIGIN",
		HSTSMaxAge:            15552000,
		ContentSecurityPolicy: contentSecurityPolicy,
		ReferrerPolicy:        "no-referrer",
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return secure(func(c echo.Context) error {
			h := c.Response().Header()
			h.Set("Cross-Origin-Opener-Policy", "same-origin")
			h.Set("Cross-Origin-Resource-Policy", "same-origin")
			h.Set("Origin-Agent-Cluster", "?1")
			h.Set("X-DNS-Prefetch-Control", "off")
			h.Set("X-Download-Options", "noopen")
			h.Set("X-Permitted-Cross-Domain-Policies", "none")

			return next(c)
		})
	}
}

// RequestLogger returns Echo's request logger middleware writing one "API"
// line per request through the request-scoped zerolog logger.
func (global *GlobalMiddlewares) RequestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogError:   true,
		LogLatency: true,
		LogHost:    true,
		LogMethod:  true,
		LogURIPath: true,

		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			// The error handler has not written the response yet when a
			// stage returned an error, so derive the status from the error.
			// See https://github.com/labstack/echo/issues/2310#issuecomment-1288196898
			statusCode := v.Status
			if v.Error != nil {
				statusCode = statusOf(v.Error)
			}

			logger := global.loggerFor(c)

			var e *zerolog.Event
			switch {
			case statusCode >= 500:
				e = logger.Error().Err(v.Error)
			case statusCode >= 400:
				e = logger.Warn()
			default:
				e = logger.Info()
			}

			if requestID := GetRequestID(c); requestID != "" {
				e = e.Str("request_id", requestID)
			}

			e.
				Dur("latency", v.Latency).
				Int("status", statusCode).
				Str("method", v.Method).
				Str("uri", v.URI).
				Str("host", v.Host).
				Str("ip", c.RealIP()).
				Str("user_agent", c.Request().UserAgent()).
				Msg("API")

			return nil
		},
	})
}

// Recover returns Echo's panic recovery middleware.
//
// The recovered panic is returned up the chain as an ordinary error, so it
// reaches the global error handler like any other failure.
func (global *GlobalMiddlewares) Recover() echo.MiddlewareFunc {
	return middleware.RecoverWithConfig(middleware.RecoverConfig{
		DisableErrorHandler: true,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			global.loggerFor(c).Error().
				Err(err).
				Bytes("stack", stack).
				Msg("recovered from panic")

			return err
		},
	})
}

// loggerFor returns the request-scoped logger, or the root logger when
// ContextEnhancer has not run for this request.
func (global *GlobalMiddlewares) loggerFor(c echo.Context) *zerolog.Logger {
	if logger, ok := c.Get(LoggerKey).(*zerolog.Logger); ok {
		return logger
	}
	return global.server.Logger
}

// statusOf returns the status the error handler will answer err with.
func statusOf(err error) int {
	var httpErr *errs.HTTPError
	var echoErr *echo.HTTPError

	switch {
	case errors.As(err, &httpErr) && isWritableStatus(httpErr.Status):
		return httpErr.Status
	case errors.As(err, &echoErr) && echoErr.Code < http.StatusInternalServerError:
		return echoErr.Code
	default:
		return http.StatusInternalServerError
	}
}
