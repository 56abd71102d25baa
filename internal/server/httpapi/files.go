package httpapi

import (
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
)

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		s.respondError(w, r, &badRequestError{msg: "invalid multipart form"})
		return
	}

	part, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, &badRequestError{msg: "form field 'file' is required"})
		return
	}
	defer part.Close()

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		name = header.Filename
	}
	if name == "" {
		s.respondError(w, r, &badRequestError{msg: "file name is required"})
		return
	}

	data, err := io.ReadAll(part)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	file, version, err := s.files.Ingest(r.Context(), callerID(r), r.PathValue("repoID"), name, data, contentType)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	resp := toVersionResponse(version)
	resp.FileID = file.ID
	s.respondJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	files, err := s.files.List(r.Context(), callerID(r), r.PathValue("repoID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	resp := make([]fileResponse, 0, len(files))
	for _, f := range files {
		resp = append(resp, toFileResponse(f))
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListVersions(w http.ResponseWriter, r *http.Request) {
	versions, err := s.files.Versions(r.Context(), callerID(r), r.PathValue("repoID"), r.PathValue("fileID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	resp := make([]versionResponse, 0, len(versions))
	for _, v := range versions {
		resp = append(resp, toVersionResponse(v))
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	data, fileName, err := s.files.Download(r.Context(), callerID(r), r.PathValue("versionID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Content-Disposition",
		mime.FormatMediaType("attachment", map[string]string{"filename": fileName}))
	_, _ = w.Write(data)
}
