// Package auth defines caller identity and bearer token handling.
package auth

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
)

// Role grants access to a set of endpoints.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// ErrUnknownRole is returned by ParseRole for values outside the enum.
var ErrUnknownRole = errors.New("unknown role")

// ParseRole converts s into a Role. Matching is case-insensitive.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleUser, RoleAdmin:
		return r, nil
	default:
		return "", errors.Wrapf(ErrUnknownRole, "%q", s)
	}
}

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID int64
	Email  string
	Role   Role
}

// IsAdmin reports whether the principal carries the ADMIN role.
func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the principal stored in ctx, if any.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
