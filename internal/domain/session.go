package domain

import "time"

// Identity is the point-in-time snapshot of a user taken when a session
// is created. Authorization decisions are made against this snapshot, not
// against the live user row: a role change only takes effect on re-login.
type Identity struct {
	Name string
	Role Role
}

// IsAdmin returns true if the snapshot carries the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// Session is a server-held record correlating a cookie-carried token with
// an authenticated identity snapshot and an expiry.
type Session struct {
	ID        string
	Identity  Identity
	CreatedAt time.Time
	ExpiresAt time.Time
}

// IsExpired reports whether the session has passed its expiry.
func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
