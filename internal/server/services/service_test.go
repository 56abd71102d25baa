package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/dmitrijs2005/filekeeper/internal/logging"
	"github.com/dmitrijs2005/filekeeper/internal/server/blob"
	"github.com/dmitrijs2005/filekeeper/internal/server/config"
	"github.com/dmitrijs2005/filekeeper/internal/server/models"
	"github.com/dmitrijs2005/filekeeper/internal/server/repositories/repomanager"
)

// --- helpers ---

// testEnv wires the in-memory manager and blob store behind the real
// services, so tests exercise the same code paths a server runs.
type testEnv struct {
	manager *repomanager.InMemoryRepositoryManager
	blobs   *blob.MemoryStore
	users   *UserService
	repos   *RepositoryService
	files   *FileService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	manager := repomanager.NewInMemoryRepositoryManager()
	blobs := blob.NewMemoryStore()
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	cfg := &config.Config{
		SecretKey:                    "test-secret",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 2 * time.Hour,
	}

	return &testEnv{
		manager: manager,
		blobs:   blobs,
		users:   NewUserService(nil, manager, cfg),
		repos:   NewRepositoryService(nil, manager, blobs),
		files:   NewFileService(nil, manager, blobs, logger),
	}
}

func (e *testEnv) registerUser(t *testing.T, name string) *models.User {
	t.Helper()
	u, err := e.users.Register(context.Background(), name, "password123")
	if err != nil {
		t.Fatalf("Register(%s) error: %v", name, err)
	}
	return u
}

func (e *testEnv) createRepo(t *testing.T, ownerID, name string) *models.Repository {
	t.Helper()
	r, err := e.repos.Create(context.Background(), ownerID, name, "")
	if err != nil {
		t.Fatalf("Create repository %s error: %v", name, err)
	}
	return r
}
