package versions

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/filekeeper/internal/common"
	"github.com/dmitrijs2005/filekeeper/internal/server/models"
	"github.com/google/uuid"
)

type InMemoryRepository struct {
	mu       sync.RWMutex
	versions map[string]*models.Version
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{versions: make(map[string]*models.Version)}
}

func (r *InMemoryRepository) Create(ctx context.Context, version *models.Version) (*models.Version, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, v := range r.versions {
		if v.FileID == version.FileID && v.Number == version.Number {
			return nil, common.ErrConflict
		}
	}

	version.ID = uuid.NewString()
	version.CreatedAt = time.Now()

	clone := *version
	r.versions[version.ID] = &clone
	c := clone
	return &c, nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*models.Version, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.versions[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	clone := *v
	return &clone, nil
}

func (r *InMemoryRepository) MaxNumber(ctx context.Context, fileID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var max int64
	for _, v := range r.versions {
		if v.FileID == fileID && v.Number > max {
			max = v.Number
		}
	}
	return max, nil
}

func (r *InMemoryRepository) SelectByFile(ctx context.Context, fileID string) ([]*models.Version, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*models.Version
	for _, v := range r.versions {
		if v.FileID == fileID {
			clone := *v
			result = append(result, &clone)
		}
	}
	slices.SortFunc(result, func(a, b *models.Version) int {
		switch {
		case a.Number > b.Number:
			return -1
		case a.Number < b.Number:
			return 1
		default:
			return 0
		}
	})
	return result, nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.versions[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.versions, id)
	return nil
}
