package utils

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"
)

var downloadClient = &http.Client{
	Timeout: 30 * time.Second,
}

// DownloadImage fetches an image over HTTP, reading at most maxSize bytes.
// The body must sniff as an image.
func DownloadImage(ctx context.Context, imageURL string, maxSize int64) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := downloadClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(io.LimitReader(resp.Body, maxSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image data: %w", err)
	}
	if int64(len(imageData)) > maxSize {
		return nil, "", fmt.Errorf("image exceeds %d bytes", maxSize)
	}
	if len(imageData) == 0 {
		return nil, "", fmt.Errorf("empty image data")
	}

	contentType := DetectContentType(imageData)
	if !IsValidImageType(contentType) {
		return nil, "", fmt.Errorf("invalid content type: %s", contentType)
	}

	return imageData, contentType, nil
}

// DetectContentType sniffs the MIME type of data.
func DetectContentType(data []byte) string {
	return http.DetectContentType(data)
}

// IsValidImageType checks if content type is a valid image type
func IsValidImageType(contentType string) bool {
	validTypes := []string{
		"image/jpeg",
		"image/jpg",
		"image/png",
		"image/gif",
		"image/webp",
		"image/bmp",
		"image/tiff",
	}

	ct := strings.ToLower(contentType)
	for _, validType := range validTypes {
		if strings.Contains(ct, validType) {
			return true
		}
	}
	return false
}

// ExtensionError reports a filename whose extension is not allowed.
type ExtensionError struct {
	Filename string
	Allowed  []string
}

func (e *ExtensionError) Error() string {
	return fmt.Sprintf("%s: only %s files are allowed", e.Filename, strings.Join(e.Allowed, ", "))
}

// ValidateExtension checks the extension of filename against allowed,
// case-insensitively. An empty list allows everything.
func ValidateExtension(filename string, allowed []string) error {
	if len(allowed) == 0 {
		return nil
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	for _, a := range allowed {
		if ext == strings.ToLower(strings.TrimPrefix(a, ".")) {
			return nil
		}
	}
	return &ExtensionError{Filename: filename, Allowed: allowed}
}

// FilenameFromURL returns the last path segment of rawURL, or fallback.
func FilenameFromURL(rawURL, fallback string) string {
	if i := strings.IndexAny(rawURL, "?#"); i >= 0 {
		rawURL = rawURL[:i]
	}
	name := path.Base(rawURL)
	if name == "." || name == "/" || name == "" || !strings.Contains(name, ".") {
		return fallback
	}
	return name
}
