package handler

import (
	"github.com/deppfellow/client-directory/internal/errs"
	"github.com/deppfellow/client-directory/internal/model"
	"github.com/deppfellow/client-directory/internal/server"
	"github.com/deppfellow/client-directory/internal/service"
	"github.com/labstack/echo/v4"
)

// ClientHandler exposes the client directory over HTTP.
type ClientHandler struct {
	Handler
	clients *service.ClientService
}

func NewClientHandler(s *server.Server, clients *service.ClientService) *ClientHandler {
	return &ClientHandler{
		Handler: NewHandler(s),
		clients: clients,
	}
}

func (h *ClientHandler) AddClient(c echo.Context, req *AddClientRequest) (*model.Client, error) {
	return h.clients.AddClient(c.Request().Context(), req.toModel())
}

func (h *ClientHandler) GetClient(c echo.Context, req *ClientIDRequest) (*model.Client, error) {
	return h.clients.GetClient(c.Request().Context(), req.ID)
}

// FindClients lists every client/phone row matching the query, ordered by
// client id then phone id.
func (h *ClientHandler) FindClients(c echo.Context, req *FindClientsRequest) ([]model.ClientRecord, error) {
	return h.clients.FindClients(c.Request().Context(), req.toModel())
}

// FindClient returns the first matching row, or 404.
func (h *ClientHandler) FindClient(c echo.Context, req *FindClientsRequest) (*model.ClientRecord, error) {
	rec, err := h.clients.FindClient(c.Request().Context(), req.toModel())
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, errs.NewNotFoundError("No client matches the given criteria", true, nil)
	}
	return rec, nil
}

func (h *ClientHandler) UpdateClient(c echo.Context, req *UpdateClientRequest) (*model.Client, error) {
	return h.clients.UpdateClient(c.Request().Context(), req.ID, req.toModel())
}

func (h *ClientHandler) DeleteClient(c echo.Context, req *ClientIDRequest) error {
	deleted, err := h.clients.DeleteClient(c.Request().Context(), req.ID)
	if err != nil {
		return err
	}
	if !deleted {
		return errs.NewNotFoundError("Client not found", true, nil)
	}
	return nil
}

func (h *ClientHandler) AddPhone(c echo.Context, req *AddPhoneRequest) (*model.Phone, error) {
	return h.clients.AddPhone(c.Request().Context(), req.ID, req.PhoneNumber)
}

func (h *ClientHandler) ListPhones(c echo.Context, req *ClientIDRequest) ([]model.Phone, error) {
	return h.clients.ListPhones(c.Request().Context(), req.ID)
}

// DeletePhones removes every phone of the client and returns them.
func (h *ClientHandler) DeletePhones(c echo.Context, req *ClientIDRequest) ([]model.Phone, error) {
	return h.clients.DeletePhone(c.Request().Context(), req.ID)
}
