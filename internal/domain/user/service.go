package user

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/cafefusion/backend/internal/domain/auth"
)

const (
	minPasswordLen = 8
	// bcrypt ignores input past 72 bytes.
	maxPasswordBytes = 72
)

// ValidationError describes a rejected registration field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Registration carries the fields of a sign-up request.
type Registration struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Role      auth.Role
}

func (r Registration) validate() error {
	switch {
	case strings.TrimSpace(r.FirstName) == "":
		return &ValidationError{Field: "firstName", Reason: "first name is required"}
	case strings.TrimSpace(r.LastName) == "":
		return &ValidationError{Field: "lastName", Reason: "last name is required"}
	case !strings.Contains(r.Email, "@"):
		return &ValidationError{Field: "email", Reason: "email must be a valid address"}
	case utf8.RuneCountInString(r.Password) < minPasswordLen:
		return &ValidationError{Field: "password", Reason: "password must be at least 8 characters"}
	case len(r.Password) > maxPasswordBytes:
		return &ValidationError{Field: "password", Reason: "password must be at most 72 bytes"}
	}
	return nil
}

// Service registers and authenticates users.
type Service struct {
	repo        Repository
	tokens      TokenIssuer
	allowAdmins bool
	cost        int
}

// Option configures a Service.
type Option func(*Service)

// WithAdminSignup lets registrations request the ADMIN role.
func WithAdminSignup(allow bool) Option {
	return func(s *Service) { s.allowAdmins = allow }
}

// WithBcryptCost overrides the password hashing cost.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

// NewService creates a user Service.
func NewService(repo Repository, tokens TokenIssuer, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		tokens: tokens,
		cost:   bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account and returns a token for it. A requested ADMIN
// role is downgraded to USER unless admin sign-up is enabled.
func (s *Service) Register(ctx context.Context, r Registration) (string, error) {
	r.Email = normalizeEmail(r.Email)
	if err := r.validate(); err != nil {
		return "", err
	}

	role := auth.RoleUser
	if r.Role == auth.RoleAdmin {
		if s.allowAdmins {
			role = auth.RoleAdmin
		} else {
			zctx.From(ctx).Warn("Admin sign-up disabled, registering as user", zap.String("email", r.Email))
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(r.Password), s.cost)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}

	u := &User{
		FirstName:    strings.TrimSpace(r.FirstName),
		LastName:     strings.TrimSpace(r.LastName),
		Email:        r.Email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return "", ErrEmailTaken
		}
		return "", errors.Wrap(err, "create user")
	}

	zctx.From(ctx).Info("User registered", zap.Int64("user_id", u.ID), zap.String("role", string(u.Role)))
	return s.tokens.Issue(u.Principal())
}

// Authenticate checks credentials and returns a fresh token.
func (s *Service) Authenticate(ctx context.Context, email, password string) (string, error) {
	u, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", errors.Wrap(err, "find user")
	}

	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return "", ErrInvalidCredentials
		}
		return "", errors.Wrap(err, "compare password")
	}

	return s.tokens.Issue(u.Principal())
}

// EnsureAdmin creates an ADMIN account unless the email is already taken.
// It reports whether a new account was created.
func (s *Service) EnsureAdmin(ctx context.Context, r Registration) (bool, error) {
	r.Email = normalizeEmail(r.Email)
	if err := r.validate(); err != nil {
		return false, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(r.Password), s.cost)
	if err != nil {
		return false, errors.Wrap(err, "hash password")
	}
	u := &User{
		FirstName:    strings.TrimSpace(r.FirstName),
		LastName:     strings.TrimSpace(r.LastName),
		Email:        r.Email,
		PasswordHash: hash,
		Role:         auth.RoleAdmin,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return false, nil
		}
		return false, errors.Wrap(err, "create admin")
	}
	return true, nil
}
