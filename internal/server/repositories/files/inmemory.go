package files

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
	mu    sync.RWMutex
	files map[string]*models.File
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{files: make(map[string]*models.File)}
}

func (r *InMemoryRepository) Create(ctx context.Context, file *models.File) (*models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, f := range r.files {
		if f.RepositoryID == file.RepositoryID && f.Name == file.Name {
			return nil, common.ErrConflict
		}
	}

	now := time.Now()
	file.ID = uuid.NewString()
	file.CreatedAt = now
	file.UpdatedAt = now

	clone := *file
	r.files[file.ID] = &clone
	c := clone
	return &c, nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*models.File, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.files[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	clone := *f
	return &clone, nil
}

func (r *InMemoryRepository) GetByName(ctx context.Context, repositoryID, name string) (*models.File, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, f := range r.files {
		if f.RepositoryID == repositoryID && f.Name == name {
			clone := *f
			return &clone, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *InMemoryRepository) GetByNameForUpdate(ctx context.Context, repositoryID, name string) (*models.File, error) {
	return r.GetByName(ctx, repositoryID, name)
}

func (r *InMemoryRepository) SelectByRepository(ctx context.Context, repositoryID string) ([]*models.File, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*models.File
	for _, f := range r.files {
		if f.RepositoryID == repositoryID {
			clone := *f
			result = append(result, &clone)
		}
	}
	slices.SortFunc(result, func(a, b *models.File) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return result, nil
}

func (r *InMemoryRepository) UpdateStorageKey(ctx context.Context, id, storageKey string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.files[id]
	if !ok {
		return common.ErrNotFound
	}
	f.StorageKey = storageKey
	f.UpdatedAt = time.Now()
	return nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.files[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.files, id)
	return nil
}
