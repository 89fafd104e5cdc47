// Package sessions implements server-side login sessions with a fixed
// lifetime. A session is a database record keyed by a random id; the
// browser holds only a signed token naming that id. Expiry is decided
// against the stored record, so deleting the record logs the user out
// everywhere regardless of what cookies still float around.
package sessions

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/tkarolak/greenroom/internal/domain"
)

// Config contains session manager configuration.
type Config struct {
	Secret       string
	TTL          time.Duration
	CookieName   string
	CookieSecure bool
	CookieDomain string
}

// DefaultConfig returns default session configuration.
func DefaultConfig() Config {
	return Config{
		TTL:        time.Hour,
		CookieName: "greenroom_session",
	}
}

// Manager creates, resolves and destroys sessions.
type Manager struct {
	config Config
	repo   Repository
	codec  *TokenCodec
}

// NewManager creates a new session manager.
func NewManager(config Config, repo Repository) *Manager {
	return &Manager{
		config: config,
		repo:   repo,
		codec:  NewTokenCodec(config.Secret),
	}
}

// Create opens a session for the given identity snapshot and returns it
// together with the signed token to hand to the browser.
func (m *Manager) Create(ctx context.Context, identity domain.Identity) (*domain.Session, string, error) {
	now := time.Now()
	session := &domain.Session{
		ID:        uuid.NewString(),
		Identity:  identity,
		CreatedAt: now,
		ExpiresAt: now.Add(m.config.TTL),
	}

	if err := m.repo.CreateSession(ctx, session); err != nil {
		return nil, "", fmt.Errorf("create session: %w", err)
	}

	token, err := m.codec.Sign(session.ID)
	if err != nil {
		return nil, "", err
	}

	recordSessionCreated()
	return session, token, nil
}

// Resolve maps a cookie token to its live session. Tokens that fail
// verification, name no record, or name an expired record all come back
// as ErrNoSession; the lifetime is fixed at creation and resolving never
// extends it. Expired records found here are deleted on the spot rather
// than left for the janitor.
func (m *Manager) Resolve(ctx context.Context, token string) (*domain.Session, error) {
	id, err := m.codec.Verify(token)
	if err != nil {
		return nil, ErrNoSession
	}

	session, err := m.repo.GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("resolve session: %w", err)
	}

	if session.IsExpired(time.Now()) {
		if err := m.repo.DeleteSession(ctx, id); err == nil {
			recordSessionDestroyed(reasonExpired)
		}
		return nil, ErrNoSession
	}

	return session, nil
}

// Destroy removes the session the token names. Unverifiable tokens and
// already-gone records are fine; logout must succeed no matter how many
// times it runs.
func (m *Manager) Destroy(ctx context.Context, token string) error {
	id, err := m.codec.Verify(token)
	if err != nil {
		return nil
	}

	if err := m.repo.DeleteSession(ctx, id); err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}

	recordSessionDestroyed(reasonLogout)
	return nil
}

// CookieName returns the name of the session cookie.
func (m *Manager) CookieName() string {
	return m.config.CookieName
}

// NewCookie builds the Set-Cookie carrier for a signed token. HttpOnly
// keeps scripts away from it and SameSite=Lax keeps cross-site POSTs
// from riding along.
func (m *Manager) NewCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     m.config.CookieName,
		Value:    token,
		Path:     "/",
		Domain:   m.config.CookieDomain,
		MaxAge:   int(m.config.TTL.Seconds()),
		HttpOnly: true,
		Secure:   m.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearCookie builds the Set-Cookie that makes the browser drop the
// session cookie.
func (m *Manager) ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     m.config.CookieName,
		Value:    "",
		Path:     "/",
		Domain:   m.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}
