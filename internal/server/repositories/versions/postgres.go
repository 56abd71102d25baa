// Package versions provides PostgreSQL-backed storage for the version
// ledger: the ordered, immutable revisions of each file.
package versions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/filekeeper/internal/common"
	"github.com/dmitrijs2005/filekeeper/internal/dbx"
	"github.com/dmitrijs2005/filekeeper/internal/server/models"
)

// PostgresRepository implements version storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a version record. A duplicate (file_id, version_number)
// pair trips the unique constraint and yields ErrConflict; ingest retries
// with a recomputed number.
func (r *PostgresRepository) Create(ctx context.Context, version *models.Version) (*models.Version, error) {
	query := `
		INSERT INTO versions (file_id, version_number, storage_key, file_name, uploader_id, size, content_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		version.FileID, version.Number, version.StorageKey, version.FileName,
		version.UploaderID, version.Size, version.ContentType).Scan(&version.ID, &version.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return version, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Version, error) {
	query := `
		SELECT id, file_id, version_number, storage_key, file_name, uploader_id, size, content_type, created_at
		FROM versions WHERE id = $1
	`
	version := &models.Version{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&version.ID, &version.FileID, &version.Number, &version.StorageKey, &version.FileName,
		&version.UploaderID, &version.Size, &version.ContentType, &version.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return version, nil
}

func (r *PostgresRepository) MaxNumber(ctx context.Context, fileID string) (int64, error) {
	query := `SELECT COALESCE(MAX(version_number), 0) FROM versions WHERE file_id = $1`

	var max int64
	if err := r.db.QueryRowContext(ctx, query, fileID).Scan(&max); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return max, nil
}

func (r *PostgresRepository) SelectByFile(ctx context.Context, fileID string) ([]*models.Version, error) {
	query := `
		SELECT id, file_id, version_number, storage_key, file_name, uploader_id, size, content_type, created_at
		FROM versions WHERE file_id = $1
		ORDER BY version_number DESC
	`
	rows, err := r.db.QueryContext(ctx, query, fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to select versions: %w", err)
	}
	defer rows.Close()

	var result []*models.Version
	for rows.Next() {
		var item models.Version
		if err := rows.Scan(&item.ID, &item.FileID, &item.Number, &item.StorageKey, &item.FileName,
			&item.UploaderID, &item.Size, &item.ContentType, &item.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM versions WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
