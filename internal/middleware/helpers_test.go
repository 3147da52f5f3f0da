package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/api-bootstrap/internal/config"
	"github.com/deppfellow/api-bootstrap/internal/server"
)

// newTestServer returns a Server whose root logger writes JSON into buf.
func newTestServer(t *testing.T, buf *bytes.Buffer) *server.Server {
	t.Helper()

	logger := zerolog.New(buf)
	s, err := server.New(config.DefaultConfig(), &logger, nil)
	require.NoError(t, err)

	return s
}

// newTestEcho returns an Echo instance using the global error handler.
func newTestEcho(global *GlobalMiddlewares, mws ...echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = global.GlobalErrorHandler
	e.Use(mws...)
	return e
}

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}
