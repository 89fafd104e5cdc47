package sessions

import "errors"

// Session errors.
var (
	// ErrNoSession means the request carries no usable session: the
	// cookie is absent, the token fails verification, or the server-side
	// record is gone or expired. Callers treat it as anonymous, never as
	// a failure.
	ErrNoSession = errors.New("no active session")

	// ErrSessionNotFound is returned by repositories when no record
	// matches the given id.
	ErrSessionNotFound = errors.New("session not found")
)
