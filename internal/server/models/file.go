package models

import "time"

// File maps a display name, unique within its repository, to an ordered
// sequence of versions. A second upload under the same name appends a
// version instead of creating a new file.
type File struct {
	ID           string
	RepositoryID string
	// Name is the human-facing filename as originally uploaded.
	Name string
	// StorageKey is a convenience pointer to the latest version's blob.
	// It is derived state: always recomputable from the version ledger.
	StorageKey string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// FileWithVersions pairs a file with its versions ordered newest-first,
// the shape returned by listing operations.
type FileWithVersions struct {
	File     *File
	Versions []*Version
}
