package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/phambaophuc/image-thumbnails/internal/config"
	storage_go "github.com/supabase-community/storage-go"
)

// listPageSize bounds each listing request made by Exists.
const listPageSize = 1000

// SupabaseBackend stores files in a Supabase Storage bucket.
type SupabaseBackend struct {
	sbClient  *storage_go.Client
	bucket    string
	overwrite bool
}

func NewSupabaseBackend(cfg *config.Config) (*SupabaseBackend, error) {
	if cfg.Supabase.URL == "" || cfg.Supabase.BUCKET == "" {
		return nil, fmt.Errorf("supabase storage requires SUPABASE_URL and SUPABASE_BUCKET")
	}

	sbClient := storage_go.NewClient(cfg.Supabase.URL+"/storage/v1", cfg.Supabase.KEY, nil)

	return &SupabaseBackend{
		sbClient:  sbClient,
		bucket:    cfg.Supabase.BUCKET,
		overwrite: cfg.Storage.Overwrite,
	}, nil
}

func (s *SupabaseBackend) Name() string { return "supabase" }

// Save uploads data to the bucket, upserting unless overwriting is disabled.
func (s *SupabaseBackend) Save(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	key = CleanKey(key)

	if !s.overwrite {
		exists, err := s.Exists(ctx, key)
		if err != nil {
			return "", err
		}
		if exists {
			return "", &ConflictError{Key: key}
		}
	}

	upsert := s.overwrite
	_, err := s.sbClient.UploadFile(s.bucket, key, bytes.NewReader(data), storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to supabase: %w", err)
	}

	return s.URL(key), nil
}

// Open downloads key. The API reports a missing object as a generic 400, so
// a failed download is confirmed with a listing before mapping to
// ErrNotFound.
func (s *SupabaseBackend) Open(ctx context.Context, key string) ([]byte, error) {
	key = CleanKey(key)
	data, err := s.sbClient.DownloadFile(s.bucket, key)
	if err != nil {
		if exists, exErr := s.Exists(ctx, key); exErr == nil && !exists {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("failed to download from supabase: %w", err)
	}
	return data, nil
}

// Delete removes file from Supabase Storage
func (s *SupabaseBackend) Delete(ctx context.Context, key string) error {
	if _, err := s.sbClient.RemoveFile(s.bucket, []string{CleanKey(key)}); err != nil {
		return fmt.Errorf("failed to delete from supabase: %w", err)
	}
	return nil
}

// Exists pages through the key's directory looking for its base name.
func (s *SupabaseBackend) Exists(ctx context.Context, key string) (bool, error) {
	key = CleanKey(key)
	dir, name := path.Split(key)
	prefix := strings.TrimSuffix(dir, "/")

	for offset := 0; ; {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		files, err := s.sbClient.ListFiles(s.bucket, prefix, storage_go.FileSearchOptions{
			Limit:  listPageSize,
			Offset: offset,
		})
		if err != nil {
			return false, fmt.Errorf("failed to list supabase files: %w", err)
		}
		for _, f := range files {
			if f.Name == name {
				return true, nil
			}
		}
		if len(files) < listPageSize {
			return false, nil
		}
		offset += len(files)
	}
}

func (s *SupabaseBackend) URL(key string) string {
	return s.sbClient.GetPublicUrl(s.bucket, CleanKey(key)).SignedURL
}

func (s *SupabaseBackend) HealthCheck(ctx context.Context) error {
	if _, err := s.sbClient.ListFiles(s.bucket, "", storage_go.FileSearchOptions{}); err != nil {
		return fmt.Errorf("supabase unreachable: %w", err)
	}
	return nil
}
