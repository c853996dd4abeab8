package application

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// Clock returns the current time. Services take one so expiry logic can be
// tested without sleeping. A nil Clock means time.Now.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

// tokenBytes is the entropy of generated access and recovery tokens.
const tokenBytes = 16

// newOpaqueToken returns prefix followed by tokenBytes of hex-encoded
// randomness from crypto/rand.
func newOpaqueToken(prefix string) (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return prefix + hex.EncodeToString(b), nil
}
