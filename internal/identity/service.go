// Package identity implements account registration, password
// authentication and role administration.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tkarolak/greenroom/internal/domain"
)

// Service implements identity business logic.
type Service struct {
	repo   Repository
	hasher *Hasher
}

// NewService creates a new identity service.
func NewService(repo Repository, hasher *Hasher) *Service {
	return &Service{
		repo:   repo,
		hasher: hasher,
	}
}

// RegisterInput holds data for creating an account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Register creates a new account with the user role. The password is
// stored only as a bcrypt digest. A duplicate email fails with
// ErrEmailExists.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        normalizeEmail(input.Email),
		PasswordHash: hash,
		Role:         domain.RoleUser,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrEmailExists) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// Authenticate verifies an email/password pair. Unknown email and wrong
// password both come back as ErrInvalidCredentials so the response never
// reveals which factor failed.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("look up user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// ListUsers returns every account.
func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// SetRole updates an account's role. Targeting an id that no longer
// exists is a no-op: promote and demote are fired from a previously
// rendered user list and must not fail when the list went stale.
func (s *Service) SetRole(ctx context.Context, id string, role domain.Role) error {
	if !role.IsValid() {
		return fmt.Errorf("invalid role %q", role)
	}
	if err := s.repo.SetUserRole(ctx, id, role); err != nil {
		return fmt.Errorf("set role: %w", err)
	}
	return nil
}

// EnsureAdmin creates the given admin account unless the email is
// already registered. It is idempotent and safe to run on every boot.
func (s *Service) EnsureAdmin(ctx context.Context, name, email, password string) error {
	normalized := normalizeEmail(email)

	_, err := s.repo.GetUserByEmail(ctx, normalized)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return fmt.Errorf("look up admin: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}

	if name = strings.TrimSpace(name); name == "" {
		name = "admin"
	}

	admin := &domain.User{
		Name:         name,
		Email:        normalized,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
	}

	if err := s.repo.CreateUser(ctx, admin); err != nil {
		// A concurrent boot may have won the insert; that is fine.
		if errors.Is(err, ErrEmailExists) {
			return nil
		}
		return fmt.Errorf("create admin: %w", err)
	}

	return nil
}

// normalizeEmail maps an address to its canonical stored form. Lookup
// and storage must agree on this or logins become case-sensitive.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
