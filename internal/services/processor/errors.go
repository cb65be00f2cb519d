package processor

import (
	"errors"
	"fmt"
)

var (
	// ErrOptimizeUnsupported is returned by a Provider when the requested
	// format has no second compression pass. Encode retries without it.
	ErrOptimizeUnsupported = errors.New("optimize not supported for format")

	// ErrFileTooLarge is returned by ValidateImage when the input exceeds the
	// allowed size.
	ErrFileTooLarge = errors.New("file too large")
)

// ParseError reports a malformed crop or geometry specification. It is a
// configuration error the caller can recover from.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("cannot parse %q", e.Input)
	}
	return fmt.Sprintf("cannot parse %q: %s", e.Input, e.Reason)
}

// UnreadableImageError wraps a decode failure. Callers should surface it as
// an invalid upload rather than a server error.
type UnreadableImageError struct {
	Err error
}

func (e *UnreadableImageError) Error() string {
	return fmt.Sprintf("unable to read the uploaded image: %v", e.Err)
}

func (e *UnreadableImageError) Unwrap() error { return e.Err }

// UnsupportedFormatError is returned when an output format cannot be encoded.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported output format: %q", e.Format)
}

// UnsupportedColorspaceError is returned for colorspaces other than RGB and
// GRAY.
type UnsupportedColorspaceError struct {
	Colorspace string
}

func (e *UnsupportedColorspaceError) Error() string {
	return fmt.Sprintf("unsupported colorspace: %q", e.Colorspace)
}

// IsUnreadable reports whether err was caused by undecodable image data.
func IsUnreadable(err error) bool {
	var target *UnreadableImageError
	return errors.As(err, &target)
}
