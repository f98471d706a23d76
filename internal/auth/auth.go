// Package auth is the access policy: which role may invoke an operation,
// and which records a client may see.
package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/poabike/rental-backend/user"
)

type Role string

const (
	// RoleDeveloper is the administrative role with unrestricted access.
	RoleDeveloper Role = "developer"
	// RoleClient is an end user: rentals and profile are scoped to the
	// user resolved from their bearer token.
	RoleClient Role = "client"
)

var ErrTokenRequired = errors.New("user token required")

// CanManageFleet gates bicycle and catraca write operations.
func (r Role) CanManageFleet() bool {
	return r == RoleDeveloper
}

// CanRent gates rental creation and finalization. Only end users ride.
func (r Role) CanRent() bool {
	return r == RoleClient
}

// Policy resolves bearer credentials and scopes client reads.
type Policy struct {
	users *user.Repository
}

func NewPolicy(users *user.Repository) *Policy {
	return &Policy{users: users}
}

// ResolveBearer maps an Authorization header to the user owning the token.
func (p *Policy) ResolveBearer(ctx context.Context, header string) (user.User, error) {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return user.User{}, ErrTokenRequired
	}
	return p.users.GetByToken(ctx, token)
}

// CanViewRecord reports whether a caller may read a record owned by
// ownerID. Developers see everything; clients only their own.
func CanViewRecord(role Role, callerID, ownerID uuid.UUID) bool {
	if role == RoleDeveloper {
		return true
	}
	return callerID == ownerID
}
