package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/filekeeper/internal/logging"
	"github.com/dmitrijs2005/filekeeper/internal/server/blob"
	"github.com/dmitrijs2005/filekeeper/internal/server/config"
	"github.com/dmitrijs2005/filekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/filekeeper/internal/server/services"
)

// newTestServer wires the real services over the in-memory manager and blob
// store behind an httptest server.
func newTestServer(t *testing.T) (*httptest.Server, *blob.MemoryStore) {
	t.Helper()

	manager := repomanager.NewInMemoryRepositoryManager()
	blobs := blob.NewMemoryStore()
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	cfg := &config.Config{
		SecretKey:                    "test-secret",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 2 * time.Hour,
	}

	us := services.NewUserService(nil, manager, cfg)
	rs := services.NewRepositoryService(nil, manager, blobs)
	fs := services.NewFileService(nil, manager, blobs, logger)

	srv := NewServer(":0", logger, us, rs, fs, cfg.SecretKey, 1<<20)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, blobs
}

func doJSON(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal error: %v", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("NewRequest error: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func registerAndLogin(t *testing.T, baseURL, username string) string {
	t.Helper()

	resp := doJSON(t, http.MethodPost, baseURL+"/api/auth/register", "",
		map[string]string{"username": username, "password": "password123"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPost, baseURL+"/api/auth/login", "",
		map[string]string{"username": username, "password": "password123"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status %d", resp.StatusCode)
	}
	pair := decodeBody[tokenPairResponse](t, resp)
	return pair.AccessToken
}

func createRepo(t *testing.T, baseURL, token, name string) repositoryResponse {
	t.Helper()
	resp := doJSON(t, http.MethodPost, baseURL+"/api/repos", token,
		map[string]string{"name": name})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create repo status %d", resp.StatusCode)
	}
	return decodeBody[repositoryResponse](t, resp)
}

func uploadFile(t *testing.T, baseURL, token, repoID, name string, payload []byte) versionResponse {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", name)
	if err != nil {
		t.Fatalf("CreateFormFile error: %v", err)
	}
	if _, err := part.Write(payload); err != nil {
		t.Fatalf("write part error: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer error: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost,
		fmt.Sprintf("%s/api/files/%s/upload", baseURL, repoID), &buf)
	if err != nil {
		t.Fatalf("NewRequest error: %v", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("upload error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("upload status %d: %s", resp.StatusCode, body)
	}
	var v versionResponse
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode version: %v", err)
	}
	return v
}

func TestAuthFlow(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/auth/register", "",
		map[string]string{"username": "alice", "password": "password123"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status %d", resp.StatusCode)
	}
	user := decodeBody[userResponse](t, resp)
	if user.ID == "" || user.UserName != "alice" {
		t.Fatalf("unexpected user: %+v", user)
	}

	// Duplicate username conflicts.
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/auth/register", "",
		map[string]string{"username": "alice", "password": "other"})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate register status %d, want 409", resp.StatusCode)
	}

	// Wrong password is a 401.
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/auth/login", "",
		map[string]string{"username": "alice", "password": "wrong"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad login status %d, want 401", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/auth/login", "",
		map[string]string{"username": "alice", "password": "password123"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status %d", resp.StatusCode)
	}
	pair := decodeBody[tokenPairResponse](t, resp)

	// Refresh rotates the pair.
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/auth/refresh", "",
		map[string]string{"refresh_token": pair.RefreshToken})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("refresh status %d", resp.StatusCode)
	}
	rotated := decodeBody[tokenPairResponse](t, resp)
	if rotated.RefreshToken == pair.RefreshToken {
		t.Fatal("refresh token was not rotated")
	}
}

func TestRegister_MissingFields(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/auth/register", "",
		map[string]string{"username": "  "})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", resp.StatusCode)
	}
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/repos", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("no token status %d, want 401", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/repos", "bogus-token", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bogus token status %d, want 401", resp.StatusCode)
	}
}

func TestRepositoryLifecycle(t *testing.T) {
	ts, _ := newTestServer(t)
	token := registerAndLogin(t, ts.URL, "alice")

	repo := createRepo(t, ts.URL, token, "project")
	if repo.Name != "project" {
		t.Fatalf("unexpected repo: %+v", repo)
	}

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/repos", token, nil)
	list := decodeBody[[]repositoryResponse](t, resp)
	if len(list) != 1 || list[0].ID != repo.ID {
		t.Fatalf("unexpected listing: %+v", list)
	}

	resp = doJSON(t, http.MethodPut, ts.URL+"/api/repos/"+repo.ID, token,
		map[string]string{"name": "renamed"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update status %d", resp.StatusCode)
	}
	updated := decodeBody[repositoryResponse](t, resp)
	if updated.Name != "renamed" {
		t.Fatalf("unexpected repo: %+v", updated)
	}

	resp = doJSON(t, http.MethodDelete, ts.URL+"/api/repos/"+repo.ID, token, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/repos/"+repo.ID, token, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("get after delete status %d, want 404", resp.StatusCode)
	}
}

func TestCollaboratorFlow(t *testing.T) {
	ts, _ := newTestServer(t)
	ownerToken := registerAndLogin(t, ts.URL, "owner")
	collabToken := registerAndLogin(t, ts.URL, "collab")

	repo := createRepo(t, ts.URL, ownerToken, "shared")

	// Before the grant the collaborator sees a 403.
	resp := doJSON(t, http.MethodGet, ts.URL+"/api/repos/"+repo.ID, collabToken, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("pre-grant status %d, want 403", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/repos/"+repo.ID+"/collaborators", ownerToken,
		map[string]string{"username": "collab"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add collaborator status %d", resp.StatusCode)
	}

	// Duplicate grant conflicts.
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/repos/"+repo.ID+"/collaborators", ownerToken,
		map[string]string{"username": "collab"})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate grant status %d, want 409", resp.StatusCode)
	}

	// The collaborator can now read but not delete.
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/repos/"+repo.ID, collabToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("post-grant status %d", resp.StatusCode)
	}
	resp = doJSON(t, http.MethodDelete, ts.URL+"/api/repos/"+repo.ID, collabToken, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("collaborator delete status %d, want 403", resp.StatusCode)
	}
}

func TestUploadListDownload(t *testing.T) {
	ts, _ := newTestServer(t)
	token := registerAndLogin(t, ts.URL, "alice")
	repo := createRepo(t, ts.URL, token, "project")

	payload := []byte("file contents")
	v1 := uploadFile(t, ts.URL, token, repo.ID, "notes.txt", payload)
	if v1.VersionNumber != 1 {
		t.Fatalf("want version 1, got %d", v1.VersionNumber)
	}
	v2 := uploadFile(t, ts.URL, token, repo.ID, "notes.txt", []byte("revised"))
	if v2.VersionNumber != 2 {
		t.Fatalf("want version 2, got %d", v2.VersionNumber)
	}

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/files/"+repo.ID, token, nil)
	files := decodeBody[[]fileResponse](t, resp)
	if len(files) != 1 || len(files[0].Versions) != 2 {
		t.Fatalf("unexpected listing: %+v", files)
	}
	if files[0].Versions[0].VersionNumber != 2 {
		t.Fatal("versions must be newest-first")
	}

	resp = doJSON(t, http.MethodGet,
		fmt.Sprintf("%s/api/files/%s/files/%s/versions", ts.URL, repo.ID, v1.FileID), token, nil)
	versions := decodeBody[[]versionResponse](t, resp)
	if len(versions) != 2 {
		t.Fatalf("unexpected versions: %+v", versions)
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/files/download/"+v1.ID, token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("download status %d", resp.StatusCode)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "notes.txt") {
		t.Fatalf("unexpected Content-Disposition: %q", cd)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !bytes.Equal(body, payload) {
		t.Fatalf("unexpected body: %q", body)
	}
}

func TestDownload_StrangerGets403(t *testing.T) {
	ts, _ := newTestServer(t)
	ownerToken := registerAndLogin(t, ts.URL, "owner")
	strangerToken := registerAndLogin(t, ts.URL, "stranger")

	repo := createRepo(t, ts.URL, ownerToken, "project")
	v := uploadFile(t, ts.URL, ownerToken, repo.ID, "a.txt", []byte("a"))

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/files/download/"+v.ID, strangerToken, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("status %d, want 403", resp.StatusCode)
	}
}

func TestUpload_MissingFilePart(t *testing.T) {
	ts, _ := newTestServer(t)
	token := registerAndLogin(t, ts.URL, "alice")
	repo := createRepo(t, ts.URL, token, "project")

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	_ = w.WriteField("name", "orphan.txt")
	_ = w.Close()

	req, _ := http.NewRequest(http.MethodPost,
		fmt.Sprintf("%s/api/files/%s/upload", ts.URL, repo.ID), &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", resp.StatusCode)
	}
}

func TestMissingBlobGives500(t *testing.T) {
	ts, blobs := newTestServer(t)
	token := registerAndLogin(t, ts.URL, "alice")
	repo := createRepo(t, ts.URL, token, "project")

	v := uploadFile(t, ts.URL, token, repo.ID, "a.txt", []byte("a"))

	// Remove the blob behind the metadata's back.
	for _, key := range blobs.Keys() {
		if err := blobs.Delete(context.Background(), key); err != nil {
			t.Fatalf("Delete error: %v", err)
		}
	}

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/files/download/"+v.ID, token, nil)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status %d, want 500", resp.StatusCode)
	}
}
