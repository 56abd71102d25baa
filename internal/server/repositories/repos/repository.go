package repos

import (
	"context"

	"github.com/dmitrijs2005/filekeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, repo *models.Repository) (*models.Repository, error)
	GetByID(ctx context.Context, id string) (*models.Repository, error)
	// GetByIDForUpdate loads the repository under an exclusive row lock.
	// Cascade deletion holds this lock for the duration of the cascade so
	// that no concurrent ingest can resurrect records under it.
	GetByIDForUpdate(ctx context.Context, id string) (*models.Repository, error)
	// ExistsForShare re-checks existence under a shared row lock inside an
	// ingest transaction. It blocks while a cascade delete holds the
	// exclusive lock and fails with ErrNotFound once the delete commits.
	ExistsForShare(ctx context.Context, id string) error
	SelectForUser(ctx context.Context, userID string) ([]*models.Repository, error)
	Update(ctx context.Context, repo *models.Repository) error
	Delete(ctx context.Context, id string) error
	AddCollaborator(ctx context.Context, repositoryID, userID string) error
}
