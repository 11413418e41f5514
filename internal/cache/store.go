// Package cache implements the write-once filesystem store behind the response cache.
package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store keeps cached response bodies as files under <baseDir>/<bucket>/<name>.
type Store struct {
	baseDir string
}

// New creates the base directory if needed and checks it is a writable directory.
func New(baseDir string) (*Store, error) {
	if strings.TrimSpace(baseDir) == "" {
		return nil, fmt.Errorf("base directory is required")
	}

	info, err := os.Stat(baseDir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if mkErr := os.MkdirAll(baseDir, 0o750); mkErr != nil {
			return nil, fmt.Errorf("failed to create base directory: %w", mkErr)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to stat base directory: %w", err)
	case !info.IsDir():
		return nil, fmt.Errorf("base directory path is not a directory")
	}

	testFile := filepath.Join(baseDir, ".writable_test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		return nil, fmt.Errorf("base directory is not writable: %w", err)
	}
	if err := os.Remove(testFile); err != nil {
		return nil, fmt.Errorf("failed to clean up test file: %w", err)
	}

	return &Store{baseDir: baseDir}, nil
}

// Get returns the stored bytes and whether the entry exists.
func (s *Store) Get(bucket, name string) ([]byte, bool, error) {
	path, err := s.path(bucket, name)
	if err != nil {
		return nil, false, err
	}

	// #nosec G304 -- path is confined to baseDir by s.path.
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache entry %s: %w", path, err)
	}
	return data, true, nil
}

// Put stores data under bucket/name unless an entry already exists; entries are never replaced.
func (s *Store) Put(bucket, name string, data []byte) error {
	path, err := s.path(bucket, name)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		return nil
	}

	tmp, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // gone after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close cache entry: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to move cache entry into place: %w", err)
	}
	return nil
}

// Path returns the file location for bucket/name.
func (s *Store) Path(bucket, name string) (string, error) {
	return s.path(bucket, name)
}

func (s *Store) path(bucket, name string) (string, error) {
	if strings.TrimSpace(bucket) == "" || strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("bucket and name are required")
	}

	fullPath := filepath.Join(s.baseDir, bucket, name)

	cleanBaseDir := filepath.Clean(s.baseDir)
	if !strings.HasPrefix(filepath.Clean(fullPath), cleanBaseDir+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal detected")
	}
	return fullPath, nil
}
