package services

import (
	"fmt"

	"go.uber.org/multierr"
)

// CascadeFailure records one item that survived a cascade deletion attempt.
type CascadeFailure struct {
	VersionID  string
	StorageKey string
	Err        error
}

// CascadeError reports a cascade deletion that removed everything it could
// but left some blobs (and their version records) behind. The repository
// record is retained so the deletion can be retried later; it is never
// removed while children referencing it still exist.
type CascadeError struct {
	RepositoryID string
	Failures     []CascadeFailure
}

func (e *CascadeError) Error() string {
	return fmt.Sprintf("cascade deletion of repository %s incomplete: %d item(s) failed",
		e.RepositoryID, len(e.Failures))
}

// Unwrap exposes the combined underlying failures so callers can match the
// causes with errors.Is.
func (e *CascadeError) Unwrap() error {
	var errs []error
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	return multierr.Combine(errs...)
}
