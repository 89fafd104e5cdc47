package identity

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashCost is the fixed bcrypt work factor for new password digests.
const HashCost = 10

// Hasher produces and verifies salted bcrypt password digests.
// The zero cost falls back to HashCost. Safe for concurrent use.
type Hasher struct {
	cost int
}

// NewHasher creates a hasher with the fixed work factor.
func NewHasher() *Hasher {
	return &Hasher{cost: HashCost}
}

// Hash produces a salted one-way digest of the plaintext.
func (h *Hasher) Hash(plaintext string) (string, error) {
	cost := h.cost
	if cost == 0 {
		cost = HashCost
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether the plaintext matches the digest. A malformed
// digest verifies as false rather than erroring: callers treat any
// failure as a credential mismatch.
func (h *Hasher) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
