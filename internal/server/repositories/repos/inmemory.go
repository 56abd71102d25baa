package repos

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/filekeeper/internal/common"
	"github.com/dmitrijs2005/filekeeper/internal/server/models"
	"github.com/google/uuid"
)

// InMemoryRepository is a map-backed Repository. Row-level locking methods
// degrade to plain reads; the in-memory manager serializes whole
// transactions with a store-wide mutex instead.
type InMemoryRepository struct {
	mu    sync.RWMutex
	repos map[string]*models.Repository
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{repos: make(map[string]*models.Repository)}
}

func (r *InMemoryRepository) Create(ctx context.Context, repo *models.Repository) (*models.Repository, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	repo.ID = uuid.NewString()
	repo.CreatedAt = now
	repo.UpdatedAt = now

	clone := cloneRepo(repo)
	r.repos[repo.ID] = clone
	return cloneRepo(clone), nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*models.Repository, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	repo, ok := r.repos[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return cloneRepo(repo), nil
}

func (r *InMemoryRepository) GetByIDForUpdate(ctx context.Context, id string) (*models.Repository, error) {
	return r.GetByID(ctx, id)
}

func (r *InMemoryRepository) ExistsForShare(ctx context.Context, id string) error {
	_, err := r.GetByID(ctx, id)
	return err
}

func (r *InMemoryRepository) SelectForUser(ctx context.Context, userID string) ([]*models.Repository, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*models.Repository
	for _, repo := range r.repos {
		if repo.OwnerID == userID || slices.Contains(repo.CollaboratorIDs, userID) {
			result = append(result, cloneRepo(repo))
		}
	}
	slices.SortFunc(result, func(a, b *models.Repository) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return result, nil
}

func (r *InMemoryRepository) Update(ctx context.Context, repo *models.Repository) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.repos[repo.ID]
	if !ok {
		return common.ErrNotFound
	}
	stored.Name = repo.Name
	stored.Description = repo.Description
	stored.UpdatedAt = time.Now()
	return nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.repos[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.repos, id)
	return nil
}

func (r *InMemoryRepository) AddCollaborator(ctx context.Context, repositoryID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	repo, ok := r.repos[repositoryID]
	if !ok {
		return common.ErrNotFound
	}
	if slices.Contains(repo.CollaboratorIDs, userID) {
		return common.ErrConflict
	}
	repo.CollaboratorIDs = append(repo.CollaboratorIDs, userID)
	return nil
}

func cloneRepo(repo *models.Repository) *models.Repository {
	clone := *repo
	clone.CollaboratorIDs = slices.Clone(repo.CollaboratorIDs)
	return &clone
}
