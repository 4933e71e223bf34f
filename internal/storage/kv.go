package storage

import (
	"context"
	"os"
	"path/filepath"
)

const fileExt = ".json"

// KV is the key-value store the task list is persisted to.
type KV interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// FileKV keeps one file per key under a base directory.
type FileKV struct {
	basePath string
}

// NewFileKV creates a FileKV rooted at path. The directory is created on first write.
func NewFileKV(path string) *FileKV {
	return &FileKV{basePath: path}
}

// BasePath returns the directory values are stored in.
func (f *FileKV) BasePath() string {
	return f.basePath
}

func (f *FileKV) keyPath(key string) string {
	return filepath.Join(f.basePath, SanitizeKey(key)+fileExt)
}

// Get reads the value stored for key.
func (f *FileKV) Get(_ context.Context, key string) (string, bool, error) {
	content, err := os.ReadFile(f.keyPath(key))
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(content), true, nil
}

// Set replaces the value stored for key. The write goes through a temp file
// so a crash never leaves a half-written value behind.
func (f *FileKV) Set(_ context.Context, key, value string) error {
	//nolint:gosec // G301: 0755 is appropriate for user-accessible data directory
	if err := os.MkdirAll(f.basePath, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.basePath, ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err = tmp.WriteString(value); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.keyPath(key))
}
