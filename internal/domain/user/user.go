// Package user handles registration and password authentication.
package user

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/cafefusion/backend/internal/domain/auth"
)

var (
	// ErrNotFound is returned by a Repository for unknown emails.
	ErrNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when registering an email that already exists.
	ErrEmailTaken = errors.New("email is already registered")
	// ErrInvalidCredentials is returned for an unknown email or wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// User is a registered account.
type User struct {
	ID           int64
	FirstName    string
	LastName     string
	Email        string
	PasswordHash []byte
	Role         auth.Role
}

// Principal returns the identity carried in tokens issued for u.
func (u *User) Principal() auth.Principal {
	return auth.Principal{UserID: u.ID, Email: u.Email, Role: u.Role}
}

// Repository persists users. Emails are unique.
type Repository interface {
	// Create inserts u and sets its ID, or returns ErrEmailTaken.
	Create(ctx context.Context, u *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
}

// TokenIssuer signs bearer tokens.
type TokenIssuer interface {
	Issue(p auth.Principal) (string, error)
}
