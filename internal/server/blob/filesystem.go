package blob

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/filekeeper/internal/common"
)

// FilesystemStore implements Store on the local filesystem. Blobs live as
// files under a base path, with storage keys mapping to relative paths.
// Suitable for development and single-node deployments.
type FilesystemStore struct {
	basePath string
}

// NewFilesystemStore resolves the base path and creates it if missing.
func NewFilesystemStore(basePath string) (*FilesystemStore, error) {
	if basePath == "" {
		return nil, errors.New("base path required")
	}

	absPath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("resolve base path: %w", err)
	}
	if err := os.MkdirAll(absPath, 0o755); err != nil {
		return nil, fmt.Errorf("create base path: %w", err)
	}

	return &FilesystemStore{basePath: absPath}, nil
}

func (f *FilesystemStore) fullPath(key string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	return filepath.Join(f.basePath, filepath.FromSlash(key)), nil
}

// Put writes the blob under a fresh key using a tmp file and rename, so a
// crashed write never leaves a partial blob under a live key.
func (f *FilesystemStore) Put(ctx context.Context, data []byte, contentType string) (string, error) {
	key := NewStorageKey()

	path, err := f.fullPath(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrTransientIO, err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrTransientIO, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("%w: %v", common.ErrTransientIO, err)
	}

	return key, nil
}

func (f *FilesystemStore) Get(ctx context.Context, key string) ([]byte, error) {
	path, err := f.fullPath(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", common.ErrTransientIO, err)
	}
	return data, nil
}

func (f *FilesystemStore) Delete(ctx context.Context, key string) error {
	path, err := f.fullPath(key)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("%w: %v", common.ErrTransientIO, err)
	}
	return nil
}
