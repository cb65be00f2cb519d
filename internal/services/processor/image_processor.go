package processor

import (
	"fmt"
	"image"
	"io"
)

// ThumbnailSpec describes one named thumbnail. A Quality of 0 selects
// DefaultQuality, so a literal quality of 0 cannot be requested.
type ThumbnailSpec struct {
	Name       string
	Geometry   Geometry
	Crop       CropSpec
	Upscale    bool
	Format     string
	Quality    int
	Colorspace Colorspace
}

// Validate checks the geometry, format override, quality and colorspace.
func (s ThumbnailSpec) Validate() error {
	if err := s.Geometry.Validate(); err != nil {
		return err
	}
	if s.Format != "" {
		if _, err := ParseFormat(s.Format); err != nil {
			return err
		}
	}
	if s.Quality < 0 || s.Quality > 100 {
		return fmt.Errorf("quality %d out of range 0-100", s.Quality)
	}
	if s.Colorspace != "" {
		if _, err := ParseColorspace(string(s.Colorspace)); err != nil {
			return err
		}
	}
	return nil
}

// Options control a single CreateThumbnail call.
type Options struct {
	Upscale    bool
	Crop       CropSpec
	Colorspace Colorspace
}

// Engine runs the colorspace, scale, crop and encode pipeline. It keeps no
// state besides its provider and is safe for concurrent use; input images
// are never modified.
type Engine struct {
	provider Provider
}

func NewEngine(provider Provider) *Engine {
	if provider == nil {
		provider = NewImagingProvider()
	}
	return &Engine{provider: provider}
}

// Decode decodes r with the engine's provider. Any failure is reported as an
// *UnreadableImageError.
func (e *Engine) Decode(r io.Reader) (image.Image, string, error) {
	img, format, err := e.provider.Decode(r)
	if err != nil {
		return nil, "", &UnreadableImageError{Err: err}
	}
	return img, format, nil
}

// CreateThumbnail normalizes the colorspace of img, scales it toward
// geometry and crops it according to opts.Crop. Without cropping the result
// fits inside geometry and may be smaller when upscaling is off.
//
// Square geometries follow the same scale-then-crop order as every other
// geometry.
func (e *Engine) CreateThumbnail(img image.Image, geometry Geometry, opts Options) (image.Image, error) {
	if err := geometry.Validate(); err != nil {
		return nil, err
	}
	cs := opts.Colorspace
	if cs == "" {
		cs = ColorspaceRGB
	}

	result, err := Normalize(img, cs)
	if err != nil {
		return nil, err
	}

	result = e.scale(result, geometry, opts.Upscale, opts.Crop)
	if cs == ColorspaceGray {
		// The provider resamples into NRGBA.
		result = toGray(result)
	}

	result, err = e.crop(result, geometry, opts.Crop)
	if err != nil {
		return nil, err
	}
	if cs == ColorspaceGray {
		result = toGray(result)
	}
	return result, nil
}

// Thumbnail renders spec from an already decoded source. The output format
// is the spec's override, or srcFormat when none is set.
func (e *Engine) Thumbnail(img image.Image, srcFormat string, spec ThumbnailSpec) (*EncodedArtifact, error) {
	thumb, err := e.CreateThumbnail(img, spec.Geometry, Options{
		Upscale:    spec.Upscale,
		Crop:       spec.Crop,
		Colorspace: spec.Colorspace,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create thumbnail %q: %w", spec.Name, err)
	}

	format := spec.Format
	if format == "" {
		format = srcFormat
	}
	return e.Encode(thumb, format, spec.Quality)
}
