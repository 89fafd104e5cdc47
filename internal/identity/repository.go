package identity

import (
	"context"

	"github.com/tkarolak/greenroom/internal/domain"
)

// Repository defines the interface for user storage.
type Repository interface {
	// CreateUser inserts a new user and fills in the store-assigned
	// ID and timestamps. A duplicate email fails with ErrEmailExists.
	CreateUser(ctx context.Context, user *domain.User) error

	// GetUserByEmail returns ErrUserNotFound when no account matches.
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// ListUsers returns every account. The portal operates at a scale
	// where a full scan is acceptable; there is no pagination.
	ListUsers(ctx context.Context) ([]domain.User, error)

	// SetUserRole updates the role of the given account. An unknown id
	// is a silent no-op, not an error.
	SetUserRole(ctx context.Context, id string, role domain.Role) error
}
