// Package httpapi is the thin JSON transport over the core services. It
// resolves bearer tokens to user IDs, decodes requests, and maps the error
// taxonomy onto HTTP status codes. No business rules live here.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/filekeeper/internal/logging"
	"github.com/dmitrijs2005/filekeeper/internal/server/services"
)

type Server struct {
	address        string
	logger         logging.Logger
	users          *services.UserService
	repos          *services.RepositoryService
	files          *services.FileService
	jwtSecret      []byte
	maxUploadBytes int64
}

func NewServer(address string, l logging.Logger, us *services.UserService,
	rs *services.RepositoryService, fs *services.FileService,
	secretKey string, maxUploadBytes int64) *Server {
	return &Server{
		address:        address,
		logger:         l.With("module", "http_server"),
		users:          us,
		repos:          rs,
		files:          fs,
		jwtSecret:      []byte(secretKey),
		maxUploadBytes: maxUploadBytes,
	}
}

// Handler builds the route table. Split out from Run so tests can drive the
// mux through httptest without a listener.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/auth/refresh", s.handleRefresh)

	mux.Handle("POST /api/repos", s.requireAuth(s.handleCreateRepository))
	mux.Handle("GET /api/repos", s.requireAuth(s.handleListRepositories))
	mux.Handle("GET /api/repos/{id}", s.requireAuth(s.handleGetRepository))
	mux.Handle("PUT /api/repos/{id}", s.requireAuth(s.handleUpdateRepository))
	mux.Handle("DELETE /api/repos/{id}", s.requireAuth(s.handleDeleteRepository))
	mux.Handle("POST /api/repos/{id}/collaborators", s.requireAuth(s.handleAddCollaborator))

	mux.Handle("POST /api/files/{repoID}/upload", s.requireAuth(s.handleUpload))
	mux.Handle("GET /api/files/{repoID}", s.requireAuth(s.handleListFiles))
	mux.Handle("GET /api/files/{repoID}/files/{fileID}/versions", s.requireAuth(s.handleListVersions))
	mux.Handle("GET /api/files/download/{versionID}", s.requireAuth(s.handleDownload))

	return mux
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.address,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", s.address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-errCh
	case err := <-errCh:
		return err
	}
}
