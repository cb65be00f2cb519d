package storage

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ThumbnailFormat returns the extension thumbnails of original are written
// with: the override when set, otherwise the original's own extension.
func ThumbnailFormat(original, override string) string {
	if override != "" {
		return strings.ToLower(override)
	}
	return strings.TrimPrefix(path.Ext(original), ".")
}

// ThumbFilename derives the key of a thumbnail from the key of its original
// by inserting the thumbnail name before the extension:
// "uploads/photo.jpg" with "125x125" becomes "uploads/photo_125x125.jpg".
func ThumbFilename(original, thumbName, format string) string {
	base := strings.TrimSuffix(original, path.Ext(original))
	ext := ThumbnailFormat(original, format)
	if ext == "" {
		return fmt.Sprintf("%s_%s", base, thumbName)
	}
	return fmt.Sprintf("%s_%s.%s", base, thumbName, ext)
}

// IsThumbFilename reports whether key is the name of one of the given
// thumbnails rather than an original.
func IsThumbFilename(key string, thumbNames []string) bool {
	base := strings.TrimSuffix(path.Base(key), path.Ext(key))
	for _, name := range thumbNames {
		if strings.HasSuffix(base, "_"+name) {
			return true
		}
	}
	return false
}

// UniqueKey returns key with a timestamp and short random suffix inserted
// before the extension.
func UniqueKey(key string) string {
	ext := path.Ext(key)
	name := strings.TrimSuffix(key, ext)
	return fmt.Sprintf("%s_%d_%s%s", name, time.Now().Unix(), uuid.New().String()[:8], ext)
}

// CleanKey normalizes a key to a slash-separated relative path with no "..".
func CleanKey(key string) string {
	return strings.TrimPrefix(path.Clean("/"+key), "/")
}
