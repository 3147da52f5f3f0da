package handler

import (
	"github.com/deppfellow/api-bootstrap/internal/server"
)

// Handlers is a container that groups all HTTP handlers, so router setup
// receives a single object.
type Handlers struct {
	Health *HealthHandler // Health serves the service status endpoint.
}

// NewHandlers constructs the handler container.
func NewHandlers(s *server.Server) *Handlers {
	return &Handlers{
		Health: NewHealthHandler(s),
	}
}
