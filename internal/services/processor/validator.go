package processor

import (
	"fmt"
	"image"
	"io"
)

// ValidateImage checks that r holds at most maxSize bytes of decodable image
// data and rewinds it for further processing. Only the header is decoded.
func ValidateImage(r io.ReadSeeker, maxSize int64) (string, error) {
	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return "", fmt.Errorf("failed to determine file size: %w", err)
	}
	if maxSize > 0 && size > maxSize {
		return "", fmt.Errorf("%w: %d bytes exceeds maximum %d", ErrFileTooLarge, size, maxSize)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind file: %w", err)
	}

	_, format, err := image.DecodeConfig(r)
	if err != nil {
		return "", &UnreadableImageError{Err: err}
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind file: %w", err)
	}
	return format, nil
}
