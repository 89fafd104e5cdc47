package identity

import "errors"

// Service errors.
var (
	// ErrInvalidCredentials covers both unknown email and password
	// mismatch so that callers cannot tell the two apart.
	ErrInvalidCredentials = errors.New("invalid email or password combination")
	ErrEmailExists        = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
)
