package processor

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// Provider is the native image library boundary: decoding, resampling,
// cropping and format-specific encoding.
type Provider interface {
	Decode(r io.Reader) (image.Image, string, error)
	Resize(img image.Image, width, height int) image.Image
	Crop(img image.Image, rect image.Rectangle) image.Image
	Encode(w io.Writer, img image.Image, format Format, opts EncodeOptions) error
}

// EncodeOptions are the knobs handed to Provider.Encode.
type EncodeOptions struct {
	Quality  int
	Optimize bool
}

// ImagingProvider implements Provider with disintegration/imaging.
type ImagingProvider struct {
	Filter imaging.ResampleFilter
}

// NewImagingProvider returns a provider resampling with Lanczos.
func NewImagingProvider() *ImagingProvider {
	return &ImagingProvider{Filter: imaging.Lanczos}
}

// Decode reads the whole input, sniffs the format and decodes it with EXIF
// auto-orientation applied.
func (p *ImagingProvider) Decode(r io.Reader) (image.Image, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image: %w", err)
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", err
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", err
	}
	return img, format, nil
}

func (p *ImagingProvider) Resize(img image.Image, width, height int) image.Image {
	return imaging.Resize(img, width, height, p.Filter)
}

func (p *ImagingProvider) Crop(img image.Image, rect image.Rectangle) image.Image {
	return imaging.Crop(img, rect)
}

// Encode writes img in the given format. JPEG, GIF, BMP and TIFF have no
// second compression pass, so Optimize is rejected for them with
// ErrOptimizeUnsupported; PNG maps it to best compression.
func (p *ImagingProvider) Encode(w io.Writer, img image.Image, format Format, opts EncodeOptions) error {
	target, err := imaging.FormatFromExtension(string(format))
	if err != nil {
		return &UnsupportedFormatError{Format: string(format)}
	}

	var encodeOpts []imaging.EncodeOption
	switch target {
	case imaging.JPEG:
		if opts.Optimize {
			return ErrOptimizeUnsupported
		}
		encodeOpts = append(encodeOpts, imaging.JPEGQuality(opts.Quality))
	case imaging.PNG:
		level := png.DefaultCompression
		if opts.Optimize {
			level = png.BestCompression
		}
		encodeOpts = append(encodeOpts, imaging.PNGCompressionLevel(level))
	default:
		if opts.Optimize {
			return ErrOptimizeUnsupported
		}
	}

	return imaging.Encode(w, img, target, encodeOpts...)
}
