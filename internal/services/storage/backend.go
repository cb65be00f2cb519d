package storage

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrConflict is matched by every *ConflictError.
	ErrConflict = errors.New("storage: destination already exists")

	// ErrNotFound is returned when a key does not exist.
	ErrNotFound = errors.New("storage: file not found")
)

// ConflictError is returned by Save when overwriting is disabled and the key
// is already taken. Callers may retry with a different name.
type ConflictError struct {
	Key string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("there is already a file named %s", e.Key)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// Backend stores bytes by key.
type Backend interface {
	Name() string
	Save(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Open(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	URL(key string) string
	HealthCheck(ctx context.Context) error
}
