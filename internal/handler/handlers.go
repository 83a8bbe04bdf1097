package handler

import (
	"github.com/deppfellow/client-directory/internal/server"
	"github.com/deppfellow/client-directory/internal/service"
)

// Handlers groups all HTTP handlers so router setup passes one value around.
type Handlers struct {
	Health  *HealthHandler
	OpenAPI *OpenAPIHandler
	Client  *ClientHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:  NewHealthHandler(s),
		OpenAPI: NewOpenAPIHandler(s),
		Client:  NewClientHandler(s, services.Clients),
	}
}
