package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/filekeeper/internal/common"
	"github.com/dmitrijs2005/filekeeper/internal/dbx"
	"github.com/dmitrijs2005/filekeeper/internal/logging"
	"github.com/dmitrijs2005/filekeeper/internal/server/access"
	"github.com/dmitrijs2005/filekeeper/internal/server/blob"
	"github.com/dmitrijs2005/filekeeper/internal/server/models"
	"github.com/dmitrijs2005/filekeeper/internal/server/repositories/repomanager"
)

// maxIngestRetries bounds the recompute-and-retry loop on version-number
// conflicts. With row-level locking conflicts are rare; the unique
// constraint on (file_id, version_number) is the backstop.
const maxIngestRetries = 3

// FileService implements the file registry and version ledger operations:
// ingest, listing, version enumeration and download.
type FileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	blobs       blob.Store
	logger      logging.Logger
}

// NewFileService constructs a FileService. db may be nil when the manager
// is the in-memory implementation.
func NewFileService(db *sql.DB, m repomanager.RepositoryManager, blobs blob.Store, l logging.Logger) *FileService {
	return &FileService{db: db, repomanager: m, blobs: blobs, logger: l.With("module", "file_service")}
}

// Ingest stores data as a new version of the file named name within the
// repository, creating the file on first upload. The caller must be the
// owner or a collaborator.
//
// Bytes are persisted to the blob store under a fresh key before the
// metadata transaction; if the transaction fails the orphaned blob is
// removed best-effort. Inside the transaction the repository row is
// re-checked under a shared lock (so an ingest racing a cascade delete
// cannot resurrect records), the file row is locked, and the next version
// number is computed and committed as one atomic step.
func (s *FileService) Ingest(ctx context.Context, userID, repositoryID, name string, data []byte, contentType string) (*models.File, *models.Version, error) {
	repo, err := s.repomanager.Repos(s.db).GetByID(ctx, repositoryID)
	if err != nil {
		return nil, nil, err
	}
	if !access.CanAccess(userID, repo) {
		return nil, nil, common.ErrForbidden
	}

	storageKey, err := s.blobs.Put(ctx, data, contentType)
	if err != nil {
		return nil, nil, fmt.Errorf("error storing blob: %w", err)
	}

	var file *models.File
	var version *models.Version

	for attempt := 0; ; attempt++ {
		err = s.repomanager.InTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
			file, version = nil, nil

			if err := s.repomanager.Repos(tx).ExistsForShare(ctx, repositoryID); err != nil {
				return err
			}

			fileRepo := s.repomanager.Files(tx)
			versionRepo := s.repomanager.Versions(tx)

			f, err := fileRepo.GetByNameForUpdate(ctx, repositoryID, name)
			if errors.Is(err, common.ErrNotFound) {
				f, err = fileRepo.Create(ctx, &models.File{
					RepositoryID: repositoryID,
					Name:         name,
				})
			}
			if err != nil {
				return err
			}

			max, err := versionRepo.MaxNumber(ctx, f.ID)
			if err != nil {
				return err
			}

			v, err := versionRepo.Create(ctx, &models.Version{
				FileID:      f.ID,
				Number:      max + 1,
				StorageKey:  storageKey,
				FileName:    name,
				UploaderID:  userID,
				Size:        int64(len(data)),
				ContentType: contentType,
			})
			if err != nil {
				return err
			}

			if err := fileRepo.UpdateStorageKey(ctx, f.ID, storageKey); err != nil {
				return err
			}

			file, version = f, v
			return nil
		})

		if err == nil {
			return file, version, nil
		}
		if errors.Is(err, common.ErrConflict) && attempt < maxIngestRetries {
			continue
		}
		break
	}

	s.discardBlob(ctx, storageKey)
	return nil, nil, err
}

// discardBlob removes a blob whose metadata never committed. Best-effort:
// a failure here leaks an unreferenced blob, which is logged and harmless
// to correctness.
func (s *FileService) discardBlob(ctx context.Context, storageKey string) {
	if err := s.blobs.Delete(ctx, storageKey); err != nil {
		s.logger.Warn(ctx, "failed to discard orphaned blob", "storage_key", storageKey, "error", err.Error())
	}
}

// List returns every file of the repository, each with its versions ordered
// newest-first.
func (s *FileService) List(ctx context.Context, userID, repositoryID string) ([]*models.FileWithVersions, error) {
	repo, err := s.repomanager.Repos(s.db).GetByID(ctx, repositoryID)
	if err != nil {
		return nil, err
	}
	if !access.CanAccess(userID, repo) {
		return nil, common.ErrForbidden
	}

	repoFiles, err := s.repomanager.Files(s.db).SelectByRepository(ctx, repositoryID)
	if err != nil {
		return nil, fmt.Errorf("error listing files: %w", err)
	}

	versionRepo := s.repomanager.Versions(s.db)
	result := make([]*models.FileWithVersions, 0, len(repoFiles))
	for _, f := range repoFiles {
		fileVersions, err := versionRepo.SelectByFile(ctx, f.ID)
		if err != nil {
			return nil, fmt.Errorf("error listing versions: %w", err)
		}
		result = append(result, &models.FileWithVersions{File: f, Versions: fileVersions})
	}
	return result, nil
}

// Versions returns the versions of one file, newest-first. The file must
// belong to the given repository; a mismatch yields ErrNotFound so that
// version lists cannot be enumerated across repositories by guessing ids.
func (s *FileService) Versions(ctx context.Context, userID, repositoryID, fileID string) ([]*models.Version, error) {
	repo, err := s.repomanager.Repos(s.db).GetByID(ctx, repositoryID)
	if err != nil {
		return nil, err
	}
	if !access.CanAccess(userID, repo) {
		return nil, common.ErrForbidden
	}

	file, err := s.repomanager.Files(s.db).GetByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if file.RepositoryID != repositoryID {
		return nil, common.ErrNotFound
	}

	return s.repomanager.Versions(s.db).SelectByFile(ctx, fileID)
}

// Download resolves a version to its repository, checks access and returns
// the bytes along with the original filename. A version record whose blob
// is gone yields ErrStorageInconsistency, distinct from ErrNotFound.
func (s *FileService) Download(ctx context.Context, userID, versionID string) ([]byte, string, error) {
	version, err := s.repomanager.Versions(s.db).GetByID(ctx, versionID)
	if err != nil {
		return nil, "", err
	}

	file, err := s.repomanager.Files(s.db).GetByID(ctx, version.FileID)
	if err != nil {
		return nil, "", err
	}

	repo, err := s.repomanager.Repos(s.db).GetByID(ctx, file.RepositoryID)
	if err != nil {
		return nil, "", err
	}
	if !access.CanAccess(userID, repo) {
		return nil, "", common.ErrForbidden
	}

	data, err := s.blobs.Get(ctx, version.StorageKey)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, "", fmt.Errorf("version %s: %w", versionID, common.ErrStorageInconsistency)
		}
		return nil, "", err
	}
	return data, version.FileName, nil
}
