// Package access holds the authorization predicates for repository-scoped
// resources. Both are pure: no I/O beyond the repository state in hand.
package access

import (
	"slices"

	"github.com/dmitrijs2005/filekeeper/internal/server/models"
)

// CanAccess reports whether userID may read or ingest into repo:
// the owner always, collaborators by membership.
func CanAccess(userID string, repo *models.Repository) bool {
	if repo == nil {
		return false
	}
	if repo.OwnerID == userID {
		return true
	}
	return slices.Contains(repo.CollaboratorIDs, userID)
}

// IsOwner is the strict predicate for mutating operations (rename, describe,
// add collaborator, delete). Collaborator membership is insufficient.
func IsOwner(userID string, repo *models.Repository) bool {
	return repo != nil && repo.OwnerID == userID
}
