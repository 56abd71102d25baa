// Package common defines shared constants and sentinel errors used across
// layers of FileKeeper. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Access control errors. ErrForbidden means the identity exists but
	// lacks the required relationship to the repository; ErrUnauthorized
	// means the caller could not be resolved to an identity at all.
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")

	// ErrConflict covers duplicate collaborators and version-number
	// collisions detected during ingest.
	ErrConflict = errors.New("conflict")

	// ErrStorageInconsistency means a version record exists but its blob
	// is missing from storage. Reportable, recoverable by re-upload.
	ErrStorageInconsistency = errors.New("storage inconsistency")

	// ErrTransientIO is a retryable blob-store failure (timeout, refused
	// connection). Surfaced only after retries are exhausted.
	ErrTransientIO = errors.New("transient storage error")

	ErrInternal = errors.New("internal error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)
