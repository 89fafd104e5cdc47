package sessions

import (
	"context"
	"time"

	"github.com/tkarolak/greenroom/internal/domain"
)

// Repository defines the interface for session storage. The stored
// record is the authority on liveness; the cookie only names it.
type Repository interface {
	// CreateSession inserts a new session record.
	CreateSession(ctx context.Context, session *domain.Session) error

	// GetSession returns ErrSessionNotFound when no record matches.
	GetSession(ctx context.Context, id string) (*domain.Session, error)

	// DeleteSession removes a session record. An unknown id is a
	// silent no-op so logout stays idempotent.
	DeleteSession(ctx context.Context, id string) error

	// DeleteExpiredSessions removes every record whose expiry is at or
	// before the given instant and reports how many went away.
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)

	// CountActiveSessions counts records that are still live at the
	// given instant.
	CountActiveSessions(ctx context.Context, now time.Time) (int64, error)
}
