package models

import "time"

// Repository is the unit of tenancy. The owner is always allowed access
// independent of the collaborator set; collaborators may read and ingest
// but never mutate or delete the repository itself.
type Repository struct {
	ID          string
	Name        string
	Description string
	OwnerID     string
	// CollaboratorIDs holds the distinct user IDs granted access by the
	// owner. The owner is never stored in this set.
	CollaboratorIDs []string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
