package storage

import (
	"fmt"

	"github.com/phambaophuc/image-thumbnails/internal/config"
)

// New builds the backend selected by STORAGE_BACKEND.
func New(cfg *config.Config) (Backend, error) {
	switch cfg.Storage.Backend {
	case "", "local":
		return NewLocalBackend(cfg.Storage.UploadPath, cfg.Storage.BaseURL, cfg.Storage.Overwrite)
	case "supabase":
		return NewSupabaseBackend(cfg)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
