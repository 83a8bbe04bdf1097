package repository

import (
	"github.com/deppfellow/client-directory/internal/server"
)

// Repositories is a container for all repository instances.
type Repositories struct {
	Clients *ClientRepository
}

// NewRepositories constructs the repository container over the server's pool.
func NewRepositories(s *server.Server) *Repositories {
	return NewRepositoriesWithDB(s.DB.Pool)
}

// NewRepositoriesWithDB constructs the repository container over any handle.
// The CLI passes its single *pgx.Conn here.
func NewRepositoriesWithDB(db DBTX) *Repositories {
	return &Repositories{
		Clients: NewClientRepository(db),
	}
}
