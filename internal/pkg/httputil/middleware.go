package httputil

import (
	"context"
	"errors"
	"net/http"

	"github.com/tkarolak/greenroom/internal/domain"
	"github.com/tkarolak/greenroom/internal/pkg/ctxlog"
	"github.com/tkarolak/greenroom/internal/sessions"
)

type contextKey string

// Context key for the resolved session.
const sessionKey contextKey = "session"

// SessionStore resolves cookie tokens into live sessions.
type SessionStore interface {
	CookieName() string
	Resolve(ctx context.Context, token string) (*domain.Session, error)
}

// SessionMiddleware resolves the session cookie into a session and puts
// it on the request context. It never blocks a request: a missing,
// tampered or expired cookie just leaves the request anonymous, and the
// gate middlewares downstream decide what anonymous is allowed to see.
func SessionMiddleware(store SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(store.CookieName())
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			session, err := store.Resolve(r.Context(), cookie.Value)
			if err != nil {
				if !errors.Is(err, sessions.ErrNoSession) {
					ctxlog.From(r.Context()).Error("failed to resolve session", "error", err)
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireLogin redirects anonymous requests to the login page.
func RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if CurrentSession(r.Context()) == nil {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin lets only admin sessions through; everything else gets
// the forbidden handler, anonymous requests included. Routes that want
// anonymous users redirected instead chain RequireLogin in front.
func RequireAdmin(forbidden http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := CurrentSession(r.Context())
			if session == nil || !session.Identity.Role.HasPermission(domain.RoleAdmin) {
				forbidden.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CurrentSession extracts the resolved session from context. It returns
// nil for anonymous requests.
func CurrentSession(ctx context.Context) *domain.Session {
	if session, ok := ctx.Value(sessionKey).(*domain.Session); ok {
		return session
	}
	return nil
}

// SecurityHeaders adds browser hardening headers to every response.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "same-origin")
		next.ServeHTTP(w, r)
	})
}
