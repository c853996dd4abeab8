package model

import "time"

// Credential binds a customer's email address to their current access token.
// Email and Token are each unique across all credentials.
type Credential struct {
	ID        string
	Email     string
	Token     string
	Status    CredentialStatus
	CreatedAt time.Time
	UpdatedAt time.Time
	LastLogin *time.Time
}

// IsActive reports whether the credential may be used to authenticate.
func (c Credential) IsActive() bool {
	return c.Status == CredentialStatusActive
}
