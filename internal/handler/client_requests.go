package handler

import (
	"github.com/deppfellow/client-directory/internal/model"
	"github.com/deppfellow/client-directory/internal/validation"
)

// Request shapes mirror the column widths of client_info and client_phone.

type AddClientRequest struct {
	FirstName string  `json:"first_name" validate:"required,max=40"`
	LastName  string  `json:"last_name" validate:"required,max=60"`
	Email     *string `json:"email" validate:"omitempty,max=100"`
}

func (r *AddClientRequest) Validate() error {
	return validation.Struct(r)
}

func (r *AddClientRequest) toModel() model.NewClient {
	return model.NewClient{FirstName: r.FirstName, LastName: r.LastName, Email: r.Email}
}

// ClientIDRequest addresses one client by path parameter.
type ClientIDRequest struct {
	ID int64 `param:"id" json:"-" validate:"required,min=1,max=2147483647"`
}

func (r *ClientIDRequest) Validate() error {
	return validation.Struct(r)
}

type UpdateClientRequest struct {
	ID        int64   `param:"id" json:"-" validate:"required,min=1,max=2147483647"`
	FirstName *string `json:"first_name" validate:"omitempty,max=40"`
	LastName  *string `json:"last_name" validate:"omitempty,max=60"`
	Email     *string `json:"email" validate:"omitempty,max=100"`
}

func (r *UpdateClientRequest) Validate() error {
	return validation.Struct(r)
}

func (r *UpdateClientRequest) toModel() model.ClientUpdate {
	return model.ClientUpdate{FirstName: r.FirstName, LastName: r.LastName, Email: r.Email}
}

type AddPhoneRequest struct {
	ID          int64  `param:"id" json:"-" validate:"required,min=1,max=2147483647"`
	PhoneNumber string `json:"phone_number" validate:"required,max=12"`
}

func (r *AddPhoneRequest) Validate() error {
	return validation.Struct(r)
}

// FindClientsRequest carries the optional search criteria. Empty
// parameters place no constraint.
type FindClientsRequest struct {
	FirstName   string `query:"first_name" json:"-" validate:"max=40"`
	LastName    string `query:"last_name" json:"-" validate:"max=60"`
	Email       string `query:"email" json:"-" validate:"max=100"`
	PhoneNumber string `query:"phone_number" json:"-" validate:"max=12"`
}

func (r *FindClientsRequest) Validate() error {
	return validation.Struct(r)
}

func (r *FindClientsRequest) toModel() model.ClientFilter {
	return model.ClientFilter{
		FirstName:   model.NullIfEmpty(&r.FirstName),
		LastName:    model.NullIfEmpty(&r.LastName),
		Email:       model.NullIfEmpty(&r.Email),
		PhoneNumber: model.NullIfEmpty(&r.PhoneNumber),
	}
}
