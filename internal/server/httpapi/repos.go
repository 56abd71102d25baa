package httpapi

import (
	"net/http"
	"strings"

	"github.com/dmitrijs2005/filekeeper/internal/server/services"
)

type repositoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) handleCreateRepository(w http.ResponseWriter, r *http.Request) {
	var req repositoryRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		s.respondError(w, r, &badRequestError{msg: "name is required"})
		return
	}

	repo, err := s.repos.Create(r.Context(), callerID(r), req.Name, req.Description)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, toRepositoryResponse(repo))
}

func (s *Server) handleListRepositories(w http.ResponseWriter, r *http.Request) {
	repos, err := s.repos.List(r.Context(), callerID(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	resp := make([]repositoryResponse, 0, len(repos))
	for _, repo := range repos {
		resp = append(resp, toRepositoryResponse(repo))
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetRepository(w http.ResponseWriter, r *http.Request) {
	repo, err := s.repos.Get(r.Context(), callerID(r), r.PathValue("id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, toRepositoryResponse(repo))
}

func (s *Server) handleUpdateRepository(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		s.respondError(w, r, &badRequestError{msg: "name must not be empty"})
		return
	}

	repo, err := s.repos.Update(r.Context(), callerID(r), r.PathValue("id"), services.UpdatePatch{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, toRepositoryResponse(repo))
}

func (s *Server) handleDeleteRepository(w http.ResponseWriter, r *http.Request) {
	if err := s.repos.Delete(r.Context(), callerID(r), r.PathValue("id")); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddCollaborator(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserName string `json:"username"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if req.UserName == "" {
		s.respondError(w, r, &badRequestError{msg: "username is required"})
		return
	}

	repo, err := s.repos.AddCollaborator(r.Context(), callerID(r), r.PathValue("id"), req.UserName)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, toRepositoryResponse(repo))
}
