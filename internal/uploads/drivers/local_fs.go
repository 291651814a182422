package drivers

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// LocalFSDriver stores evidence binaries on local disk, sharded into
// year/month subdirectories so a busy field office never ends up with one
// enormous flat directory.
type LocalFSDriver struct {
	baseDir   string
	publicURL string
}

// NewLocalFSDriver creates a LocalFSDriver rooted at baseDir. publicURL is
// the base used for generated links (e.g. /api/uploads).
func NewLocalFSDriver(baseDir, publicURL string) (*LocalFSDriver, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &LocalFSDriver{baseDir: baseDir, publicURL: publicURL}, nil
}

func (d *LocalFSDriver) path(key string) string {
	now := time.Now().UTC()
	return filepath.Join(d.baseDir, fmt.Sprintf("%04d", now.Year()), fmt.Sprintf("%02d", now.Month()), key)
}

// find locates a key regardless of the shard it was written into.
func (d *LocalFSDriver) find(key string) (string, error) {
	var found string
	err := filepath.WalkDir(d.baseDir, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() && entry.Name() == key {
			found = path
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if found == "" {
		return "", os.ErrNotExist
	}
	return found, nil
}

func (d *LocalFSDriver) Save(ctx context.Context, key string, body io.Reader, contentType string) error {
	fullPath := d.path(key)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("failed to create shard directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, body); err != nil {
		os.Remove(fullPath)
		return fmt.Errorf("failed to save file content: %w", err)
	}
	return nil
}

func (d *LocalFSDriver) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	fullPath, err := d.find(key)
	if err != nil {
		return nil, fmt.Errorf("file %s not found: %w", key, err)
	}
	return os.Open(fullPath)
}

func (d *LocalFSDriver) Delete(ctx context.Context, key string) error {
	fullPath, err := d.find(key)
	if err != nil {
		return nil
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (d *LocalFSDriver) URL(ctx context.Context, key string, expires time.Duration) (string, error) {
	if d.publicURL == "" {
		return key, nil
	}
	return fmt.Sprintf("%s/%s", d.publicURL, key), nil
}
