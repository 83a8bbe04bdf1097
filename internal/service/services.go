package service

import (
	"github.com/deppfellow/client-directory/internal/repository"
	"github.com/deppfellow/client-directory/internal/server"
)

type Services struct {
	Clients *ClientService
}

func NewService(s *server.Server, repos *repository.Repositories) (*Services, error) {
	clientService := NewClientService(
		repos.Clients,
		s.Logger,
		s.Metrics,
		s.Config.Observability.Logging.SlowQueryThreshold,
	)

	return &Services{
		Clients: clientService,
	}, nil
}
