// Package services contains server-side business logic: the repository
// directory, the ingest/download paths and user account handling. Every
// operation receives the caller's user ID as an explicit argument.
package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/filekeeper/internal/common"
	"github.com/dmitrijs2005/filekeeper/internal/dbx"
	"github.com/dmitrijs2005/filekeeper/internal/server/access"
	"github.com/dmitrijs2005/filekeeper/internal/server/blob"
	"github.com/dmitrijs2005/filekeeper/internal/server/models"
	"github.com/dmitrijs2005/filekeeper/internal/server/repositories/repomanager"
)

// RepositoryService implements the repository directory operations:
// creation, listing, owner-only mutation and cascading deletion.
type RepositoryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	blobs       blob.Store
}

// NewRepositoryService constructs a RepositoryService. db may be nil when
// the manager is the in-memory implementation.
func NewRepositoryService(db *sql.DB, m repomanager.RepositoryManager, blobs blob.Store) *RepositoryService {
	return &RepositoryService{db: db, repomanager: m, blobs: blobs}
}

// Create registers a repository owned by userID.
func (s *RepositoryService) Create(ctx context.Context, userID, name, description string) (*models.Repository, error) {
	repo := &models.Repository{Name: name, Description: description, OwnerID: userID}

	created, err := s.repomanager.Repos(s.db).Create(ctx, repo)
	if err != nil {
		return nil, fmt.Errorf("error creating repository: %w", err)
	}
	return created, nil
}

// List returns the repositories userID owns or collaborates on.
func (s *RepositoryService) List(ctx context.Context, userID string) ([]*models.Repository, error) {
	result, err := s.repomanager.Repos(s.db).SelectForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing repositories: %w", err)
	}
	return result, nil
}

// Get returns a single repository. A missing repository yields ErrNotFound
// before any access decision; an existing one the caller has no relationship
// with yields ErrForbidden.
func (s *RepositoryService) Get(ctx context.Context, userID, repositoryID string) (*models.Repository, error) {
	repo, err := s.repomanager.Repos(s.db).GetByID(ctx, repositoryID)
	if err != nil {
		return nil, err
	}
	if !access.CanAccess(userID, repo) {
		return nil, common.ErrForbidden
	}
	return repo, nil
}

// UpdatePatch carries owner-initiated repository mutations. Nil fields are
// left unchanged.
type UpdatePatch struct {
	Name        *string
	Description *string
}

// Update applies the patch. Owner only.
func (s *RepositoryService) Update(ctx context.Context, userID, repositoryID string, patch UpdatePatch) (*models.Repository, error) {
	repoRepo := s.repomanager.Repos(s.db)

	repo, err := repoRepo.GetByID(ctx, repositoryID)
	if err != nil {
		return nil, err
	}
	if !access.IsOwner(userID, repo) {
		return nil, common.ErrForbidden
	}

	if patch.Name != nil {
		repo.Name = *patch.Name
	}
	if patch.Description != nil {
		repo.Description = *patch.Description
	}
	if err := repoRepo.Update(ctx, repo); err != nil {
		return nil, fmt.Errorf("error updating repository: %w", err)
	}
	return repoRepo.GetByID(ctx, repositoryID)
}

// AddCollaborator grants access to the user with the given username.
// Owner only; an unresolved username yields ErrNotFound, a duplicate grant
// (or an attempt to add the owner) yields ErrConflict.
func (s *RepositoryService) AddCollaborator(ctx context.Context, userID, repositoryID, collaboratorName string) (*models.Repository, error) {
	repoRepo := s.repomanager.Repos(s.db)

	repo, err := repoRepo.GetByID(ctx, repositoryID)
	if err != nil {
		return nil, err
	}
	if !access.IsOwner(userID, repo) {
		return nil, common.ErrForbidden
	}

	collaborator, err := s.repomanager.Users(s.db).GetByUserName(ctx, collaboratorName)
	if err != nil {
		return nil, err
	}
	if collaborator.ID == repo.OwnerID {
		// The owner is always allowed; never stored in the set.
		return nil, common.ErrConflict
	}

	if err := repoRepo.AddCollaborator(ctx, repositoryID, collaborator.ID); err != nil {
		return nil, err
	}
	return repoRepo.GetByID(ctx, repositoryID)
}

// Delete removes the repository and everything under it. Owner only.
//
// The whole cascade runs inside one transaction holding an exclusive lock on
// the repository row, which excludes concurrent ingests into the same
// repository (they re-check the row under a shared lock). Per version the
// blob is deleted before its record; a blob that refuses to delete keeps its
// version record, its file record and the repository record alive so the
// cascade can be retried. Such leftovers are committed and reported through
// a *CascadeError rather than rolled back or swallowed.
func (s *RepositoryService) Delete(ctx context.Context, userID, repositoryID string) error {
	// Cheap pre-checks before taking the exclusive lock.
	repo, err := s.repomanager.Repos(s.db).GetByID(ctx, repositoryID)
	if err != nil {
		return err
	}
	if !access.IsOwner(userID, repo) {
		return common.ErrForbidden
	}

	var cascadeErr *CascadeError

	err = s.repomanager.InTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		repoRepo := s.repomanager.Repos(tx)
		fileRepo := s.repomanager.Files(tx)
		versionRepo := s.repomanager.Versions(tx)

		locked, err := repoRepo.GetByIDForUpdate(ctx, repositoryID)
		if err != nil {
			return err
		}
		if !access.IsOwner(userID, locked) {
			return common.ErrForbidden
		}

		repoFiles, err := fileRepo.SelectByRepository(ctx, repositoryID)
		if err != nil {
			return err
		}

		var failed []CascadeFailure
		for _, f := range repoFiles {
			fileVersions, err := versionRepo.SelectByFile(ctx, f.ID)
			if err != nil {
				return err
			}

			fileClean := true
			for _, v := range fileVersions {
				// Blob first. Removing the record first would leak the
				// blob silently if the store call failed afterwards.
				if err := s.blobs.Delete(ctx, v.StorageKey); err != nil {
					failed = append(failed, CascadeFailure{
						VersionID:  v.ID,
						StorageKey: v.StorageKey,
						Err:        err,
					})
					fileClean = false
					continue
				}
				if err := versionRepo.Delete(ctx, v.ID); err != nil {
					return err
				}
			}

			if fileClean {
				if err := fileRepo.Delete(ctx, f.ID); err != nil {
					return err
				}
			}
		}

		if len(failed) > 0 {
			// Commit the partial progress; the repository record stays
			// until every child is gone.
			cascadeErr = &CascadeError{RepositoryID: repositoryID, Failures: failed}
			return nil
		}
		return repoRepo.Delete(ctx, repositoryID)
	})
	if err != nil {
		return fmt.Errorf("error deleting repository: %w", err)
	}
	if cascadeErr != nil {
		return cascadeErr
	}
	return nil
}
