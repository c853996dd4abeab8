package model

import "time"

// RecoveryGrant is a short-lived, single-use proof that the requester
// controls Email. Used only ever moves from false to true.
type RecoveryGrant struct {
	Token     string
	Email     string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

// Usable reports whether the grant can still be redeemed at now.
// Expiry and consumption are each sufficient to make a grant inert.
func (g RecoveryGrant) Usable(now time.Time) bool {
	return !g.Used && now.Before(g.ExpiresAt)
}
