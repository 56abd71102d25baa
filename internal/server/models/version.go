package models

import "time"

// Version is one immutable revision of a file. Numbers for a given file
// are strictly increasing from 1 with no reuse; a version is never edited
// once created, only superseded or removed by cascade deletion.
type Version struct {
	ID     string
	FileID string
	// Number is the server-assigned, monotonic version number.
	Number int64
	// StorageKey is the opaque blob-store key of this version's bytes.
	// Keys are never derived from the display name and never shared
	// between versions.
	StorageKey string
	// FileName is the original display name at time of upload.
	FileName    string
	UploaderID  string
	Size        int64
	ContentType string
	CreatedAt   time.Time
}
