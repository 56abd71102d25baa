package versions

import (
	"context"

	"github.com/dmitrijs2005/filekeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, version *models.Version) (*models.Version, error)
	GetByID(ctx context.Context, id string) (*models.Version, error)
	// MaxNumber returns the highest version number of a file, 0 if none.
	// Callers must hold the file row lock (or an equivalent serialization)
	// before combining this with Create.
	MaxNumber(ctx context.Context, fileID string) (int64, error)
	// SelectByFile returns versions ordered newest-first.
	SelectByFile(ctx context.Context, fileID string) ([]*models.Version, error)
	Delete(ctx context.Context, id string) error
}
