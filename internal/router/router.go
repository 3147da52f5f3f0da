// Package router initializes the HTTP router (using Echo).
//
// It registers the request pipeline in a fixed order, mounts the system
// routes and installs the global error handler as the final stage.
package router

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/api-bootstrap/internal/handler"
	"github.com/deppfellow/api-bootstrap/internal/middleware"
	"github.com/deppfellow/api-bootstrap/internal/server"
)

// Stage names, in the order NewRouter registers them.
const (
	StageRequestID       = "request_id"
	StageNewRelic        = "new_relic"
	StageTracing         = "tracing"
	StageContextLogger   = "context_logger"
	StageRequestLogger   = "request_logger"
	StageRecover         = "recover"
	StageCORS            = "cors"
	StageBodyParsing     = "body_parsing"
	StageCookieParsing   = "cookie_parsing"
	StageSecurityHeaders = "security_headers"
	StageXSSSanitization = "xss_sanitization"
	StageErrorHandler    = "error_handler"
)

// ErrSealed is returned by every registration made after InstallErrorHandler.
var ErrSealed = errors.New("router is sealed: error handler already installed")

// Router owns the Echo instance and the ordered list of registered stages.
//
// It is mutated only during bootstrap; once sealed it is read-only and safe
// to serve concurrent requests.
type Router struct {
	Echo *echo.Echo

	server      *server.Server
	middlewares *middleware.Middlewares

	stages []string
	sealed bool
}

// New creates an empty Router. No stage is registered yet.
func New(s *server.Server, mws *middleware.Middlewares) *Router {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	return &Router{
		Echo:        e,
		server:      s,
		middlewares: mws,
	}
}

// NewRouter builds the application: ambient stages, the request pipeline
// (CORS, body parsing, cookie parsing, security headers, XSS sanitization),
// the system routes and finally the error handler.
func NewRouter(s *server.Server, h *handler.Handlers) (*Router, error) {
	mws := middleware.NewMiddlewares(s)
	r := New(s, mws)

	ambient := []struct {
		name string
		mw   echo.MiddlewareFunc
	}{
		{StageRequestID, middleware.RequestID()},
		{StageNewRelic, mws.Tracing.NewRelicMiddleware()},
		{StageTracing, mws.Tracing.EnhanceTracing()},
		{StageContextLogger, mws.ContextEnhancer.EnhanceContext()},
		{StageRequestLogger, mws.Global.RequestLogger()},
		{StageRecover, mws.Global.Recover()},
	}
	for _, stage := range ambient {
		if err := r.Use(stage.name, stage.mw); err != nil {
			return nil, err
		}
	}

	cfg := s.Config.Server
	steps := []func() error{
		func() error { return r.ConfigureCORS(cfg.ClientURL, true) },
		func() error { return r.ConfigureBodyParsing(cfg.BodyLimit) },
		r.ConfigureCookieParsing,
		r.ConfigureSecurityHeaders,
		r.ConfigureXSSSanitization,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}

	registerSystemRoutes(r.Echo, h)

	if err := r.InstallErrorHandler(); err != nil {
		return nil, err
	}

	s.Logger.Debug().Strs("stages", r.Stages()).Msg("router initialized")

	return r, nil
}

// Use appends mw to the pipeline under name.
func (r *Router) Use(name string, mw echo.MiddlewareFunc) error {
	if r.sealed {
		return ErrSealed
	}

	r.Echo.Use(mw)
	r.stages = append(r.stages, name)

	return nil
}

// ConfigureCORS allows cross-origin requests from allowedOrigin only. An
// empty allowedOrigin allows none.
func (r *Router) ConfigureCORS(allowedOrigin string, allowCredentials bool) error {
	return r.Use(StageCORS, r.middlewares.Global.CORS(allowedOrigin, allowCredentials))
}

// ConfigureBodyParsing parses JSON bodies of at most maxBytes.
func (r *Router) ConfigureBodyParsing(maxBytes int64) error {
	return r.Use(StageBodyParsing, r.middlewares.Global.JSONBody(maxBytes))
}

// ConfigureCookieParsing exposes request cookies as a name to value map.
func (r *Router) ConfigureCookieParsing() error {
	return r.Use(StageCookieParsing, middleware.Cookies())
}

// ConfigureSecurityHeaders sets the default security response headers.
func (r *Router) ConfigureSecurityHeaders() error {
	return r.Use(StageSecurityHeaders, r.middlewares.Global.Secure())
}

// ConfigureXSSSanitization strips markup from query, path and body input.
func (r *Router) ConfigureXSSSanitization() error {
	return r.Use(StageXSSSanitization, r.middlewares.Global.XSSSanitizer())
}

// InstallErrorHandler makes the global error handler the last stage and
// seals the router.
func (r *Router) InstallErrorHandler() error {
	if r.sealed {
		return ErrSealed
	}

	r.Echo.HTTPErrorHandler = r.middlewares.Global.GlobalErrorHandler
	r.stages = append(r.stages, StageErrorHandler)
	r.sealed = true

	return nil
}

// Stages returns the registered stage names in registration order.
func (r *Router) Stages() []string {
	return append([]string(nil), r.stages...)
}

// Sealed reports whether InstallErrorHandler has run.
func (r *Router) Sealed() bool {
	return r.sealed
}

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.Echo.ServeHTTP(w, req)
}
