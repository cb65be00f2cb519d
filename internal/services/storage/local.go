package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalBackend stores files under a root directory and serves them from
// baseURL.
type LocalBackend struct {
	root      string
	baseURL   string
	overwrite bool
}

func NewLocalBackend(root, baseURL string, overwrite bool) (*LocalBackend, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return &LocalBackend{
		root:      root,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		overwrite: overwrite,
	}, nil
}

func (b *LocalBackend) Name() string { return "local" }

// Root returns the directory files are stored under.
func (b *LocalBackend) Root() string { return b.root }

func (b *LocalBackend) path(key string) string {
	return filepath.Join(b.root, filepath.FromSlash(CleanKey(key)))
}

// Save writes data atomically through a temporary file in the destination
// directory.
func (b *LocalBackend) Save(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key = CleanKey(key)
	dest := b.path(key)

	if !b.overwrite {
		if _, err := os.Stat(dest); err == nil {
			return "", &ConflictError{Key: key}
		}
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	tmp := filepath.Join(filepath.Dir(dest), ".tmp-"+uuid.New().String())
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("failed to move file into place: %w", err)
	}

	return b.URL(key), nil
}

func (b *LocalBackend) Open(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(b.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

// Delete removes key. Missing files are not an error.
func (b *LocalBackend) Delete(ctx context.Context, key string) error {
	err := os.Remove(b.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (b *LocalBackend) Exists(ctx context.Context, key string) (bool, error) {
	_, err := os.Stat(b.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (b *LocalBackend) URL(key string) string {
	u := &url.URL{Path: "/" + CleanKey(key)}
	return b.baseURL + u.EscapedPath()
}

// KeyFor converts an absolute path under the root back into a key.
func (b *LocalBackend) KeyFor(path string) (string, bool) {
	rel, err := filepath.Rel(b.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func (b *LocalBackend) HealthCheck(ctx context.Context) error {
	info, err := os.Stat(b.root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", b.root)
	}
	return nil
}
