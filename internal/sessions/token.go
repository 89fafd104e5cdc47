package sessions

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenCodec signs and verifies the cookie-carried session token. The
// token is an HS256 JWT whose subject is the session id: the browser can
// read it but cannot mint or alter one without the server secret.
type TokenCodec struct {
	secret []byte
}

// NewTokenCodec creates a codec keyed with the given secret.
func NewTokenCodec(secret string) *TokenCodec {
	return &TokenCodec{secret: []byte(secret)}
}

// Sign wraps a session id into a signed token.
func (c *TokenCodec) Sign(sessionID string) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:  sessionID,
		IssuedAt: jwt.NewNumericDate(time.Now()),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}

// Verify checks the token signature and returns the session id it
// names. Any defect, wrong algorithm, bad signature or missing subject,
// comes back as ErrNoSession.
func (c *TokenCodec) Verify(raw string) (string, error) {
	token, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{},
		func(*jwt.Token) (interface{}, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return "", ErrNoSession
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrNoSession
	}
	return claims.Subject, nil
}
