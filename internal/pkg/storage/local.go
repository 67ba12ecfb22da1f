package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type LocalStorage struct {
	basePath string
	baseURL  string // e.g., "http://localhost:8080/uploads"
}

func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	// Create base directory if not exists
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &LocalStorage{
		basePath: basePath,
		baseURL:  baseURL,
	}, nil
}

// resolve sanitizes ref against directory traversal and anchors it
// under basePath. The separator suffix matters: a bare prefix check
// would accept sibling directories like basePath+"evil".
func (s *LocalStorage) resolve(ref string) (string, string, error) {
	cleanRef := filepath.Clean(ref)
	fullPath := filepath.Join(s.basePath, cleanRef)
	if fullPath == s.basePath || !strings.HasPrefix(fullPath, s.basePath+string(os.PathSeparator)) {
		return "", "", fmt.Errorf("invalid blob ref: %s", ref)
	}
	return cleanRef, fullPath, nil
}

func (s *LocalStorage) Upload(ctx context.Context, blob io.Reader, ref string, contentType string) (string, error) {
	cleanRef, fullPath, err := s.resolve(ref)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, blob); err != nil {
		// Cleanup on error
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return cleanRef, nil
}

func (s *LocalStorage) Delete(ctx context.Context, ref string) error {
	_, fullPath, err := s.resolve(ref)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return nil // Already purged
		}
		return fmt.Errorf("failed to delete blob: %w", err)
	}

	return nil
}

func (s *LocalStorage) GetURL(ctx context.Context, ref string, expiry time.Duration) (string, error) {
	// Local storage serves static URLs; expiry only matters for
	// presigned backends.
	cleanRef, _, err := s.resolve(ref)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s", s.baseURL, filepath.ToSlash(cleanRef)), nil
}

func (s *LocalStorage) Exists(ctx context.Context, ref string) (bool, error) {
	_, fullPath, err := s.resolve(ref)
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(fullPath); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}
