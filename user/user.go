// Package user handles registration, credentials and profiles.
package user

import (
	"github.com/google/uuid"
)

// User is a registered client. Password holds a bcrypt hash and Token the
// opaque bearer credential issued at registration; neither is ever
// serialized to the API.
type User struct {
	ID       uuid.UUID `db:"id" json:"id"`
	Username string    `db:"username" json:"username"`
	Password string    `db:"password" json:"-"`
	Token    string    `db:"token" json:"-"`
	Name     string    `db:"name" json:"name"`
	Email    string    `db:"email" json:"email"`
	Phone    string    `db:"phone" json:"phone"`
	Address  string    `db:"address" json:"address"`
	ImageURL string    `db:"img" json:"img"`
	// Kilometers and Emission accumulate riding statistics shown in the app.
	Kilometers float64 `db:"kms" json:"kms"`
	Emission   float64 `db:"emissao" json:"emissao"`
}
