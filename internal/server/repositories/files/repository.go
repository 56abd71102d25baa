package files

import (
	"context"

	"github.com/dmitrijs2005/filekeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, file *models.File) (*models.File, error)
	GetByID(ctx context.Context, id string) (*models.File, error)
	// GetByName resolves a display name within a repository; ingest uses
	// the ForUpdate variant so that concurrent uploads of the same name
	// serialize on the file row.
	GetByName(ctx context.Context, repositoryID, name string) (*models.File, error)
	GetByNameForUpdate(ctx context.Context, repositoryID, name string) (*models.File, error)
	SelectByRepository(ctx context.Context, repositoryID string) ([]*models.File, error)
	// UpdateStorageKey moves the latest-version convenience pointer.
	UpdateStorageKey(ctx context.Context, id, storageKey string) error
	Delete(ctx context.Context, id string) error
}
