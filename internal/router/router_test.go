package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/api-bootstrap/internal/config"
	"github.com/deppfellow/api-bootstrap/internal/errs"
	"github.com/deppfellow/api-bootstrap/internal/handler"
	"github.com/deppfellow/api-bootstrap/internal/middleware"
	"github.com/deppfellow/api-bootstrap/internal/server"
)

const clientURL = "https://app.example.com"

func newTestServer(t *testing.T, logs *bytes.Buffer) *server.Server {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Server.ClientURL = clientURL

	logger := zerolog.New(logs)
	s, err := server.New(cfg, &logger, nil)
	require.NoError(t, err)

	return s
}

func newTestRouter(t *testing.T, logs *bytes.Buffer) *Router {
	t.Helper()

	s := newTestServer(t, logs)
	r, err := NewRouter(s, handler.NewHandlers(s))
	require.NoError(t, err)

	return r
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestNewRouter_StageOrder(t *testing.T) {
	var logs bytes.Buffer
	r := newTestRouter(t, &logs)

	assert.Equal(t, []string{
		StageRequestID,
		StageNewRelic,
		StageTracing,
		StageContextLogger,
		StageRequestLogger,
		StageRecover,
		StageCORS,
		StageBodyParsing,
		StageCookieParsing,
		StageSecurityHeaders,
		StageXSSSanitization,
		StageErrorHandler,
	}, r.Stages())
	assert.True(t, r.Sealed())
}

func TestRouter_SealedRejectsRegistration(t *testing.T) {
	var logs bytes.Buffer
	r := newTestRouter(t, &logs)
	before := r.Stages()

	assert.ErrorIs(t, r.ConfigureCORS(clientURL, true), ErrSealed)
	assert.ErrorIs(t, r.ConfigureBodyParsing(1024), ErrSealed)
	assert.ErrorIs(t, r.ConfigureCookieParsing(), ErrSealed)
	assert.ErrorIs(t, r.ConfigureSecurityHeaders(), ErrSealed)
	assert.ErrorIs(t, r.ConfigureXSSSanitization(), ErrSealed)
	assert.ErrorIs(t, r.Use("late", middleware.RequestID()), ErrSealed)
	assert.ErrorIs(t, r.InstallErrorHandler(), ErrSealed)

	assert.Equal(t, before, r.Stages())
}

func TestRouter_Status(t *testing.T) {
	var logs bytes.Buffer
	r := newTestRouter(t, &logs)

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "healthy", body["status"])
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
	assert.Equal(t, "nosniff", rec.Header().Get(echo.HeaderXContentTypeOptions))
}

func TestRouter_CORS(t *testing.T) {
	var logs bytes.Buffer
	r := newTestRouter(t, &logs)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	req.Header.Set(echo.HeaderOrigin, clientURL)
	rec := serve(r, req)

	assert.Equal(t, clientURL, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Equal(t, "true", rec.Header().Get(echo.HeaderAccessControlAllowCredentials))

	req = httptest.NewRequest(http.MethodGet, "/status", nil)
	req.Header.Set(echo.HeaderOrigin, "https://evil.example.com")
	rec = serve(r, req)

	assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestRouter_UnknownRoute(t *testing.T) {
	var logs bytes.Buffer
	r := newTestRouter(t, &logs)

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"success": false, "message": "Route not found", "errors": []}`, rec.Body.String())
	assert.Equal(t, "nosniff", rec.Header().Get(echo.HeaderXContentTypeOptions))
}

// TestRouter_PipelineOnRoutes drives the full pipeline through routes added
// before sealing.
func TestRouter_PipelineOnRoutes(t *testing.T) {
	var logs bytes.Buffer
	s := newTestServer(t, &logs)
	r := New(s, middleware.NewMiddlewares(s))

	require.NoError(t, r.Use(StageRequestID, middleware.RequestID()))
	require.NoError(t, r.Use(StageRecover, r.middlewares.Global.Recover()))
	require.NoError(t, r.ConfigureCORS(clientURL, true))
	require.NoError(t, r.ConfigureBodyParsing(config.DefaultBodyLimit))
	require.NoError(t, r.ConfigureCookieParsing())
	require.NoError(t, r.ConfigureSecurityHeaders())
	require.NoError(t, r.ConfigureXSSSanitization())

	reached := false
	var body any
	var cookies map[string]string
	r.Echo.POST("/echo", func(c echo.Context) error {
		reached = true
		body = middleware.GetBody(c)
		cookies = middleware.GetCookies(c)
		return c.JSON(http.StatusOK, body)
	})
	r.Echo.GET("/domain", func(c echo.Context) error {
		return errs.New(http.StatusNotFound, "Not found", "id missing")
	})
	r.Echo.GET("/boom", func(c echo.Context) error {
		return assert.AnError
	})
	r.Echo.GET("/panic", func(c echo.Context) error {
		panic("secret panic detail")
	})

	require.NoError(t, r.InstallErrorHandler())

	t.Run("body and cookies reach the route", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"msg": "<b>hi</b>"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.Header.Set("Cookie", "a=1; b=2")
		rec := serve(r, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, map[string]any{"msg": "hi"}, body)
		assert.Equal(t, map[string]string{"a": "1", "b": "2"}, cookies)
	})

	t.Run("oversized body never reaches the route", func(t *testing.T) {
		reached = false
		payload := `{"pad":"` + strings.Repeat("x", int(config.DefaultBodyLimit)) + `"}`
		req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(payload))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := serve(r, req)

		assert.False(t, reached)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"success": false, "message": "Internal Server Error"}`, rec.Body.String())
		assert.Contains(t, logs.String(), middleware.ErrBodyTooLarge.Error())
	})

	t.Run("domain error", func(t *testing.T) {
		rec := serve(r, httptest.NewRequest(http.MethodGet, "/domain", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"success": false, "message": "Not found", "errors": ["id missing"]}`, rec.Body.String())
	})

	t.Run("opaque error", func(t *testing.T) {
		rec := serve(r, httptest.NewRequest(http.MethodGet, "/boom", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"success": false, "message": "Internal Server Error"}`, rec.Body.String())
		assert.NotContains(t, rec.Body.String(), assert.AnError.Error())
	})

	t.Run("panic", func(t *testing.T) {
		rec := serve(r, httptest.NewRequest(http.MethodGet, "/panic", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"success": false, "message": "Internal Server Error"}`, rec.Body.String())
		assert.NotContains(t, rec.Body.String(), "secret panic detail")
	})
}

// TestRouter_ProbeBeforeSecurityHeaders verifies a stage registered between
// cookie parsing and security headers sees the earlier effects only.
func TestRouter_ProbeBeforeSecurityHeaders(t *testing.T) {
	var logs bytes.Buffer
	s := newTestServer(t, &logs)
	r := New(s, middleware.NewMiddlewares(s))

	var (
		allowOrigin string
		nosniff     string
		body        any
	)
	probe := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			allowOrigin = c.Response().Header().Get(echo.HeaderAccessControlAllowOrigin)
			nosniff = c.Response().Header().Get(echo.HeaderXContentTypeOptions)
			body = middleware.GetBody(c)
			return next(c)
		}
	}

	require.NoError(t, r.ConfigureCORS(clientURL, true))
	require.NoError(t, r.ConfigureBodyParsing(config.DefaultBodyLimit))
	require.NoError(t, r.ConfigureCookieParsing())
	require.NoError(t, r.Use("probe", probe))
	require.NoError(t, r.ConfigureSecurityHeaders())
	require.NoError(t, r.ConfigureXSSSanitization())
	r.Echo.POST("/", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})
	require.NoError(t, r.InstallErrorHandler())

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a": 1}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderOrigin, clientURL)
	rec := serve(r, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, clientURL, allowOrigin)
	assert.NotNil(t, body)
	assert.Empty(t, nosniff)
	assert.Equal(t, "nosniff", rec.Header().Get(echo.HeaderXContentTypeOptions))
	assert.Equal(t, []string{StageCORS, StageBodyParsing, StageCookieParsing, "probe",
		StageSecurityHeaders, StageXSSSanitization, StageErrorHandler}, r.Stages())
}

// TestRouter_CORSFailsClosed verifies no origin is allowed without CLIENT_URL.
func TestRouter_CORSFailsClosed(t *testing.T) {
	var logs bytes.Buffer
	s := newTestServer(t, &logs)
	s.Config.Server.ClientURL = ""

	r, err := NewRouter(s, handler.NewHandlers(s))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	req.Header.Set(echo.HeaderOrigin, "https://anything.example.com")
	rec := serve(r, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}
