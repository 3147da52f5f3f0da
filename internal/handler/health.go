package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/api-bootstrap/internal/middleware"
	"github.com/deppfellow/api-bootstrap/internal/server"
)

// HealthHandler exposes the endpoint load balancers and uptime monitors use
// to check the service is running.
type HealthHandler struct {
	Handler
}

// StatusRequest is the (empty) input of GET /status.
type StatusRequest struct{}

// Validate implements validation.Validatable.
func (r *StatusRequest) Validate() error {
	return nil
}

// HealthResponse is the body of GET /status.
type HealthResponse struct {
	Success     bool      `json:"success"`
	Status      string    `json:"status"`
	Environment string    `json:"environment"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewHealthHandler constructs a HealthHandler with access to shared app dependencies.
func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
	}
}

// Status is the route handler for GET /status, run through Handle.
func (h *HealthHandler) Status() echo.HandlerFunc {
	return Handle(h.Handler, h.CheckHealth, http.StatusOK, func() *StatusRequest {
		return &StatusRequest{}
	})
}

// CheckHealth reports the service status, environment and the current UTC
// time. The service has no dependencies to probe.
func (h *HealthHandler) CheckHealth(c echo.Context, _ *StatusRequest) (HealthResponse, error) {
	middleware.GetLogger(c).Debug().
		Str("operation", "health_check").
		Msg("health check passed")

	return HealthResponse{
		Success:     true,
		Status:      "healthy",
		Environment: h.server.Config.Primary.Env,
		Timestamp:   time.Now().UTC(),
	}, nil
}
