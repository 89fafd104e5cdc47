// Package postgres provides PostgreSQL implementation of the sessions repository.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tkarolak/greenroom/internal/domain"
	"github.com/tkarolak/greenroom/internal/sessions"
)

// Repository implements the sessions.Repository interface using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreateSession inserts a new session row. The id is assigned by the
// caller because the signed cookie token has to carry it.
func (r *Repository) CreateSession(ctx context.Context, session *domain.Session) error {
	query := `
		INSERT INTO sessions (id, name, role, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, query,
		session.ID,
		session.Identity.Name,
		session.Identity.Role,
		session.CreatedAt,
		session.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by id.
func (r *Repository) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	query := `
		SELECT id, name, role, created_at, expires_at
		FROM sessions
		WHERE id = $1
	`
	var session domain.Session
	err := r.db.QueryRow(ctx, query, id).Scan(
		&session.ID,
		&session.Identity.Name,
		&session.Identity.Role,
		&session.CreatedAt,
		&session.ExpiresAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sessions.ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	return &session, nil
}

// DeleteSession removes a session row. Deleting a row that is already
// gone is not an error.
func (r *Repository) DeleteSession(ctx context.Context, id string) error {
	query := `DELETE FROM sessions WHERE id = $1`
	if _, err := r.db.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes every row expired at the given instant.
func (r *Repository) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	query := `DELETE FROM sessions WHERE expires_at <= $1`
	result, err := r.db.Exec(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return result.RowsAffected(), nil
}

// CountActiveSessions counts rows still live at the given instant.
func (r *Repository) CountActiveSessions(ctx context.Context, now time.Time) (int64, error) {
	query := `SELECT COUNT(*) FROM sessions WHERE expires_at > $1`
	var count int64
	if err := r.db.QueryRow(ctx, query, now).Scan(&count); err != nil {
		return 0, fmt.Errorf("count active sessions: %w", err)
	}
	return count, nil
}
