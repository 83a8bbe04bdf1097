// Package model holds the directory's entities and the input types the
// repository accepts.
package model

import "strings"

// Client is a person record in the directory (table client_info).
type Client struct {
	ID        int64   `json:"client_id"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     *string `json:"email"`
}

// Phone is a phone number owned by exactly one Client (table client_phone).
type Phone struct {
	ID          int64  `json:"id"`
	ClientID    int64  `json:"client_id"`
	PhoneNumber string `json:"phone_number"`
}

// ClientRecord is one row of the client/phone left outer join.
// Phone fields are nil when the client has no phone.
type ClientRecord struct {
	Client
	PhoneID     *int64  `json:"phone_id"`
	PhoneNumber *string `json:"phone_number"`
}

// NewClient holds the fields for creating a client.
//
// Empty names are stored as NULL so the database rejects them; an empty
// email is stored as NULL (no email).
type NewClient struct {
	FirstName string
	LastName  string
	Email     *string
}

// ClientUpdate holds the fields that can be changed on a client.
// A nil or empty field is left untouched.
type ClientUpdate struct {
	FirstName *string
	LastName  *string
	Email     *string
}

// IsEmpty reports whether no field would be changed.
func (u ClientUpdate) IsEmpty() bool {
	return !IsSet(u.FirstName) && !IsSet(u.LastName) && !IsSet(u.Email)
}

// ClientFilter narrows FindClient/FindClients. A nil or empty criterion
// places no constraint on its column.
type ClientFilter struct {
	FirstName   *string
	LastName    *string
	Email       *string
	PhoneNumber *string
}

// IsSet reports whether an optional value carries a non-empty string.
func IsSet(v *string) bool {
	return v != nil && strings.TrimSpace(*v) != ""
}

// NullIfEmpty returns nil for unset values so they bind as SQL NULL.
func NullIfEmpty(v *string) *string {
	if !IsSet(v) {
		return nil
	}
	return v
}

// Ptr returns a pointer to v.
func Ptr(v string) *string {
	return &v
}
