// Package files provides PostgreSQL-backed storage for the file registry:
// the mapping from a display name within a repository to its version ledger.
package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/filekeeper/internal/common"
	"github.com/dmitrijs2005/filekeeper/internal/dbx"
	"github.com/dmitrijs2005/filekeeper/internal/server/models"
)

// PostgresRepository implements file storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a file record. A concurrent insert of the same name in the
// same repository trips the unique constraint and yields ErrConflict, which
// the ingest path treats as a retry signal.
func (r *PostgresRepository) Create(ctx context.Context, file *models.File) (*models.File, error) {
	query := `
		INSERT INTO files (repository_id, name, storage_key)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		file.RepositoryID, file.Name, file.StorageKey).Scan(&file.ID, &file.CreatedAt, &file.UpdatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return file, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.File, error) {
	query := `
		SELECT id, repository_id, name, storage_key, created_at, updated_at
		FROM files WHERE id = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetByName(ctx context.Context, repositoryID, name string) (*models.File, error) {
	query := `
		SELECT id, repository_id, name, storage_key, created_at, updated_at
		FROM files WHERE repository_id = $1 AND name = $2
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, repositoryID, name))
}

// GetByNameForUpdate locks the file row until the surrounding transaction
// ends, serializing version assignment per file. Must be called inside a
// transaction.
func (r *PostgresRepository) GetByNameForUpdate(ctx context.Context, repositoryID, name string) (*models.File, error) {
	query := `
		SELECT id, repository_id, name, storage_key, created_at, updated_at
		FROM files WHERE repository_id = $1 AND name = $2
		FOR UPDATE
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, repositoryID, name))
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.File, error) {
	file := &models.File{}
	err := row.Scan(&file.ID, &file.RepositoryID, &file.Name, &file.StorageKey,
		&file.CreatedAt, &file.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return file, nil
}

// SelectByRepository returns all files of a repository ordered by creation.
func (r *PostgresRepository) SelectByRepository(ctx context.Context, repositoryID string) ([]*models.File, error) {
	query := `
		SELECT id, repository_id, name, storage_key, created_at, updated_at
		FROM files WHERE repository_id = $1
		ORDER BY created_at
	`
	rows, err := r.db.QueryContext(ctx, query, repositoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to select files: %w", err)
	}
	defer rows.Close()

	var result []*models.File
	for rows.Next() {
		var item models.File
		if err := rows.Scan(&item.ID, &item.RepositoryID, &item.Name, &item.StorageKey,
			&item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) UpdateStorageKey(ctx context.Context, id, storageKey string) error {
	query := `UPDATE files SET storage_key = $2, updated_at = now() WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, storageKey)
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

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM files WHERE id = $1`
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
