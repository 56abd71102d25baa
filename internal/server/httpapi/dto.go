package httpapi

import (
	"time"

	"github.com/dmitrijs2005/filekeeper/internal/server/models"
)

// Response DTOs. Storage keys are internal and never cross the boundary.

type userResponse struct {
	ID       string `json:"id"`
	UserName string `json:"username"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type repositoryResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Owner         string    `json:"owner"`
	Collaborators []string  `json:"collaborators"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type versionResponse struct {
	ID            string    `json:"id"`
	FileID        string    `json:"file_id"`
	VersionNumber int64     `json:"version_number"`
	FileName      string    `json:"file_name"`
	Uploader      string    `json:"uploader"`
	Size          int64     `json:"size"`
	ContentType   string    `json:"content_type"`
	CreatedAt     time.Time `json:"created_at"`
}

type fileResponse struct {
	ID         string            `json:"id"`
	Repository string            `json:"repository_id"`
	Name       string            `json:"name"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
	Versions   []versionResponse `json:"versions"`
}

func toRepositoryResponse(repo *models.Repository) repositoryResponse {
	collaborators := repo.CollaboratorIDs
	if collaborators == nil {
		collaborators = []string{}
	}
	return repositoryResponse{
		ID:            repo.ID,
		Name:          repo.Name,
		Description:   repo.Description,
		Owner:         repo.OwnerID,
		Collaborators: collaborators,
		CreatedAt:     repo.CreatedAt,
		UpdatedAt:     repo.UpdatedAt,
	}
}

func toVersionResponse(v *models.Version) versionResponse {
	return versionResponse{
		ID:            v.ID,
		FileID:        v.FileID,
		VersionNumber: v.Number,
		FileName:      v.FileName,
		Uploader:      v.UploaderID,
		Size:          v.Size,
		ContentType:   v.ContentType,
		CreatedAt:     v.CreatedAt,
	}
}

func toFileResponse(f *models.FileWithVersions) fileResponse {
	resp := fileResponse{
		ID:         f.File.ID,
		Repository: f.File.RepositoryID,
		Name:       f.File.Name,
		CreatedAt:  f.File.CreatedAt,
		UpdatedAt:  f.File.UpdatedAt,
		Versions:   []versionResponse{},
	}
	for _, v := range f.Versions {
		resp.Versions = append(resp.Versions, toVersionResponse(v))
	}
	return resp
}
