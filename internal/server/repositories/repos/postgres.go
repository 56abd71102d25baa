// Package repos provides PostgreSQL-backed storage for the repository
// directory: repository identity, ownership and the collaborator set.
package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/filekeeper/internal/common"
	"github.com/dmitrijs2005/filekeeper/internal/dbx"
	"github.com/dmitrijs2005/filekeeper/internal/server/models"
)

// PostgresRepository implements repository storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a repository and returns it with DB-assigned fields.
func (r *PostgresRepository) Create(ctx context.Context, repo *models.Repository) (*models.Repository, error) {
	query := `
		INSERT INTO repositories (name, description, owner_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		repo.Name, repo.Description, repo.OwnerID).Scan(&repo.ID, &repo.CreatedAt, &repo.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return repo, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Repository, error) {
	return r.get(ctx, id, "")
}

// GetByIDForUpdate loads the repository row under FOR UPDATE. Must be called
// inside a transaction.
func (r *PostgresRepository) GetByIDForUpdate(ctx context.Context, id string) (*models.Repository, error) {
	return r.get(ctx, id, "FOR UPDATE")
}

func (r *PostgresRepository) get(ctx context.Context, id string, lock string) (*models.Repository, error) {
	query := `
		SELECT id, name, description, owner_id, created_at, updated_at
		FROM repositories WHERE id = $1 ` + lock

	repo := &models.Repository{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&repo.ID, &repo.Name, &repo.Description, &repo.OwnerID, &repo.CreatedAt, &repo.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if err := r.loadCollaborators(ctx, repo); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *PostgresRepository) loadCollaborators(ctx context.Context, repo *models.Repository) error {
	query := `
		SELECT user_id FROM repository_collaborators
		WHERE repository_id = $1
		ORDER BY created_at
	`
	rows, err := r.db.QueryContext(ctx, query, repo.ID)
	if err != nil {
		return fmt.Errorf("failed to select collaborators: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return err
		}
		repo.CollaboratorIDs = append(repo.CollaboratorIDs, userID)
	}
	return rows.Err()
}

// ExistsForShare takes a shared lock on the repository row, blocking while a
// cascade delete holds the exclusive lock. Must be called inside a transaction.
func (r *PostgresRepository) ExistsForShare(ctx context.Context, id string) error {
	query := `SELECT id FROM repositories WHERE id = $1 FOR SHARE`

	var got string
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&got); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// SelectForUser returns repositories the user owns or collaborates on,
// with collaborator sets populated.
func (r *PostgresRepository) SelectForUser(ctx context.Context, userID string) ([]*models.Repository, error) {
	query := `
		SELECT DISTINCT r.id, r.name, r.description, r.owner_id, r.created_at, r.updated_at
		FROM repositories r
		LEFT JOIN repository_collaborators c ON c.repository_id = r.id
		WHERE r.owner_id = $1 OR c.user_id = $1
		ORDER BY r.created_at
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select repositories: %w", err)
	}
	defer rows.Close()

	var result []*models.Repository
	for rows.Next() {
		var item models.Repository
		if err := rows.Scan(&item.ID, &item.Name, &item.Description, &item.OwnerID,
			&item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, repo := range result {
		if err := r.loadCollaborators(ctx, repo); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// Update persists name and description changes. Collaborators are managed
// through AddCollaborator only.
func (r *PostgresRepository) Update(ctx context.Context, repo *models.Repository) error {
	query := `
		UPDATE repositories SET name = $2, description = $3, updated_at = now()
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, repo.ID, repo.Name, repo.Description)
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

// Delete removes the repository record. The cascade coordinator calls this
// only after every file and version under the repository is gone.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM repositories WHERE id = $1`
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

// AddCollaborator grants a user access. A duplicate grant yields ErrConflict.
func (r *PostgresRepository) AddCollaborator(ctx context.Context, repositoryID, userID string) error {
	query := `
		INSERT INTO repository_collaborators (repository_id, user_id)
		VALUES ($1, $2)
	`
	if _, err := r.db.ExecContext(ctx, query, repositoryID, userID); err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrConflict
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
