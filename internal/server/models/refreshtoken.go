package models

import "time"

// RefreshToken is a single-use credential for minting a new token pair.
// Redemption rotates it: the stored row is replaced, so a replayed token
// no longer matches anything.
type RefreshToken struct {
	ID        string
	UserID    string
	Token     string
	Expires   time.Time
	CreatedAt time.Time
}
