package processor

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"strings"
	"sync"
)

// DefaultQuality is used when a spec leaves quality unset.
const DefaultQuality = 95

// Format is a canonical output format name.
type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
	FormatGIF  Format = "gif"
	FormatBMP  Format = "bmp"
	FormatTIFF Format = "tiff"
)

var formatAliases = map[string]Format{
	"jpeg": FormatJPEG,
	"jpg":  FormatJPEG,
	"png":  FormatPNG,
	"gif":  FormatGIF,
	"bmp":  FormatBMP,
	"tif":  FormatTIFF,
	"tiff": FormatTIFF,
}

// ParseFormat resolves a case-insensitive format name or file extension,
// mapping the common "jpg" alias to JPEG.
func ParseFormat(name string) (Format, error) {
	f, ok := formatAliases[strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "."))]
	if !ok {
		return "", &UnsupportedFormatError{Format: name}
	}
	return f, nil
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	return "image/" + string(f)
}

// Extension returns the conventional file extension for f, without a dot.
func (f Format) Extension() string {
	if f == FormatJPEG {
		return "jpg"
	}
	return string(f)
}

// EncodedArtifact is an encoded thumbnail.
type EncodedArtifact struct {
	Data   []byte
	Format Format
	Width  int
	Height int
}

var bufferPool = sync.Pool{
	New: func() any { return new(bytes.Buffer) },
}

// Encode encodes img in the named format. Encoding is first attempted with
// optimization enabled; formats that cannot optimize are retried without it.
// quality only affects lossy formats and is clamped to [1, 100], with 0
// selecting DefaultQuality.
func (e *Engine) Encode(img image.Image, format string, quality int) (*EncodedArtifact, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}
	if quality == 0 {
		quality = DefaultQuality
	}
	quality = clamp(quality, 1, 100)

	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufferPool.Put(buf)

	err = e.provider.Encode(buf, img, f, EncodeOptions{Quality: quality, Optimize: true})
	if errors.Is(err, ErrOptimizeUnsupported) {
		buf.Reset()
		err = e.provider.Encode(buf, img, f, EncodeOptions{Quality: quality})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", f, err)
	}

	data := make([]byte, buf.Len())
	copy(data, buf.Bytes())

	size := SizeOf(img)
	return &EncodedArtifact{
		Data:   data,
		Format: f,
		Width:  size.Width,
		Height: size.Height,
	}, nil
}
