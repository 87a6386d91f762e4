// Package user provides the user identity model owned by the session layer.
package user

import "time"

// User models the authenticated account as returned by the profile endpoint.
// It is replaced wholesale on every profile refresh or update.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Update carries the mutable profile fields for PUT /users/me. Nil fields are
// left unchanged server-side.
type Update struct {
	Name     *string `json:"name,omitempty"`
	Password *string `json:"password,omitempty"`
}
