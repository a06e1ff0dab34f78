package domain

import (
	"context"
	"errors"
)

// Role classifies an account for notification routing and API access.
type Role string

const (
	// RoleAdmin receives every low-balance alert and may allocate credits.
	RoleAdmin Role = "admin"

	// RoleCustomer buys credits and spends them on generations.
	RoleCustomer Role = "customer"

	// RoleCollaborator spends credits allocated by an administrator.
	RoleCollaborator Role = "collaborator"
)

var validRoles = map[Role]bool{
	RoleAdmin:        true,
	RoleCustomer:     true,
	RoleCollaborator: true,
}

// IsValid checks if the role is a valid role
func (r Role) IsValid() bool {
	return validRoles[r]
}

// CanAllocate checks if the role can move credits between accounts
func (r Role) CanAllocate() bool {
	return r == RoleAdmin
}

// Caller is the authenticated principal of an API request.
type Caller struct {
	AccountID int64
	Role      Role
}

// CanActFor reports whether the caller may read or mutate resources owned
// by accountID.
func (c *Caller) CanActFor(accountID int64) bool {
	return c.Role == RoleAdmin || c.AccountID == accountID
}

type callerKey struct{}

// ContextWithCaller stores the caller in ctx.
func ContextWithCaller(ctx context.Context, c *Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

// CallerFromContext extracts the caller set by the auth middleware.
func CallerFromContext(ctx context.Context) (*Caller, bool) {
	c, ok := ctx.Value(callerKey{}).(*Caller)
	return c, ok
}

// Authentication errors
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrForbidden    = errors.New("operation not permitted for caller")
)
