package repomanager

import (
	"context"
	"database/sql"
	"sync"

	"github.com/dmitrijs2005/filekeeper/internal/dbx"
	"github.com/dmitrijs2005/filekeeper/internal/server/repositories/files"
	"github.com/dmitrijs2005/filekeeper/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/filekeeper/internal/server/repositories/repos"
	"github.com/dmitrijs2005/filekeeper/internal/server/repositories/users"
	"github.com/dmitrijs2005/filekeeper/internal/server/repositories/versions"
)

// InMemoryRepositoryManager vends map-backed repositories. InTx degrades to
// a store-wide critical section: coarser than the per-row locks of the
// PostgreSQL manager, but it preserves the same guarantee the ingest and
// cascade paths rely on, that read-then-assign steps never interleave.
type InMemoryRepositoryManager struct {
	txMu sync.Mutex

	users         *users.InMemoryRepository
	refreshTokens *refreshtokens.InMemoryRepository
	repos         *repos.InMemoryRepository
	files         *files.InMemoryRepository
	versions      *versions.InMemoryRepository
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{
		users:         users.NewInMemoryRepository(),
		refreshTokens: refreshtokens.NewInMemoryRepository(),
		repos:         repos.NewInMemoryRepository(),
		files:         files.NewInMemoryRepository(),
		versions:      versions.NewInMemoryRepository(),
	}
}

func (m *InMemoryRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return nil
}

func (m *InMemoryRepositoryManager) InTx(ctx context.Context, db *sql.DB, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return fn(ctx, nil)
}

func (m *InMemoryRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return m.users
}

func (m *InMemoryRepositoryManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return m.refreshTokens
}

func (m *InMemoryRepositoryManager) Repos(db dbx.DBTX) repos.Repository {
	return m.repos
}

func (m *InMemoryRepositoryManager) Files(db dbx.DBTX) files.Repository {
	return m.files
}

func (m *InMemoryRepositoryManager) Versions(db dbx.DBTX) versions.Repository {
	return m.versions
}
