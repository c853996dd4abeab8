package model

import "time"

// AdminPrincipal is the identity reconstructed from a verified admin token.
// It is never persisted; the token itself is the session.
type AdminPrincipal struct {
	ClientID  string
	Role      string
	IssuedAt  *time.Time
	ExpiresAt *time.Time
	Claims    map[string]any
}
