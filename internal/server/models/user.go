// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is a durable identity. Every core operation receives a user ID as an
// explicit argument; there is no ambient "current user" anywhere below the
// transport layer.
type User struct {
	ID           string
	UserName     string
	Salt         []byte
	PasswordHash []byte
	CreatedAt    time.Time
}
