package processor

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"io"
	"testing"
)

// recordingProvider wraps ImagingProvider and records Encode calls.
type recordingProvider struct {
	*ImagingProvider
	calls    []EncodeOptions
	encodeFn func(w io.Writer, img image.Image, format Format, opts EncodeOptions) error
}

func (p *recordingProvider) Encode(w io.Writer, img image.Image, format Format, opts EncodeOptions) error {
	p.calls = append(p.calls, opts)
	if p.encodeFn != nil {
		return p.encodeFn(w, img, format, opts)
	}
	return p.ImagingProvider.Encode(w, img, format, opts)
}

func newRecordingProvider() *recordingProvider {
	return &recordingProvider{ImagingProvider: NewImagingProvider()}
}

func TestEncode_JPGAlias(t *testing.T) {
	provider := newRecordingProvider()
	engine := NewEngine(provider)
	img := createInMemoryImage(20, 10, color.RGBA{200, 100, 50, 255})

	for _, name := range []string{"jpg", "JPG", "Jpeg", ".jpg"} {
		t.Run(name, func(t *testing.T) {
			artifact, err := engine.Encode(img, name, 80)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			if artifact.Format != FormatJPEG {
				t.Errorf("format: got %s, want jpeg", artifact.Format)
			}
			_, format, err := image.DecodeConfig(bytes.NewReader(artifact.Data))
			if err != nil {
				t.Fatalf("failed to decode output: %v", err)
			}
			if format != "jpeg" {
				t.Errorf("decoded format: got %s, want jpeg", format)
			}
		})
	}
}

func TestEncode_OptimizeFallback(t *testing.T) {
	img := createInMemoryImage(8, 8, color.RGBA{1, 2, 3, 255})

	t.Run("jpeg retries without optimize", func(t *testing.T) {
		provider := newRecordingProvider()
		if _, err := NewEngine(provider).Encode(img, "jpeg", 70); err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		if len(provider.calls) != 2 {
			t.Fatalf("calls: got %d, want 2", len(provider.calls))
		}
		if !provider.calls[0].Optimize || provider.calls[1].Optimize {
			t.Errorf("expected optimize then plain, got %+v", provider.calls)
		}
		if provider.calls[1].Quality != 70 {
			t.Errorf("quality: got %d, want 70", provider.calls[1].Quality)
		}
	})

	t.Run("png optimizes on first attempt", func(t *testing.T) {
		provider := newRecordingProvider()
		if _, err := NewEngine(provider).Encode(img, "png", 70); err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		if len(provider.calls) != 1 || !provider.calls[0].Optimize {
			t.Errorf("expected a single optimized call, got %+v", provider.calls)
		}
	})

	t.Run("other errors propagate", func(t *testing.T) {
		boom := errors.New("disk on fire")
		provider := newRecordingProvider()
		provider.encodeFn = func(io.Writer, image.Image, Format, EncodeOptions) error { return boom }

		_, err := NewEngine(provider).Encode(img, "png", 70)
		if !errors.Is(err, boom) {
			t.Errorf("error = %v, want %v", err, boom)
		}
		if len(provider.calls) != 1 {
			t.Errorf("calls: got %d, want 1", len(provider.calls))
		}
	})
}

func TestEncode_Quality(t *testing.T) {
	img := createInMemoryImage(8, 8, color.RGBA{1, 2, 3, 255})

	tests := []struct {
		quality int
		want    int
	}{
		{0, DefaultQuality},
		{-5, 1},
		{150, 100},
		{42, 42},
	}
	for _, tt := range tests {
		provider := newRecordingProvider()
		if _, err := NewEngine(provider).Encode(img, "jpeg", tt.quality); err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		if got := provider.calls[len(provider.calls)-1].Quality; got != tt.want {
			t.Errorf("quality %d: got %d, want %d", tt.quality, got, tt.want)
		}
	}
}

func TestEncode_UnsupportedFormat(t *testing.T) {
	img := createInMemoryImage(4, 4, color.RGBA{1, 2, 3, 255})

	for _, name := range []string{"webp", "", "svg"} {
		_, err := NewEngine(nil).Encode(img, name, 80)
		var formatErr *UnsupportedFormatError
		if !errors.As(err, &formatErr) {
			t.Errorf("Encode(%q) error = %v, want *UnsupportedFormatError", name, err)
		}
	}
}

func TestEncode_AllFormats(t *testing.T) {
	img := createInMemoryImage(12, 9, color.RGBA{10, 200, 30, 255})
	engine := NewEngine(nil)

	for _, name := range []string{"jpeg", "png", "gif", "bmp", "tiff"} {
		t.Run(name, func(t *testing.T) {
			artifact, err := engine.Encode(img, name, 90)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			cfg, format, err := image.DecodeConfig(bytes.NewReader(artifact.Data))
			if err != nil {
				t.Fatalf("failed to decode output: %v", err)
			}
			if format != name {
				t.Errorf("format: got %s, want %s", format, name)
			}
			if cfg.Width != 12 || cfg.Height != 9 {
				t.Errorf("dimensions: got %dx%d, want 12x9", cfg.Width, cfg.Height)
			}
		})
	}
}

func TestFormat_ContentTypeAndExtension(t *testing.T) {
	if got := FormatJPEG.ContentType(); got != "image/jpeg" {
		t.Errorf("ContentType: got %s", got)
	}
	if got := FormatJPEG.Extension(); got != "jpg" {
		t.Errorf("Extension: got %s", got)
	}
	if got := FormatPNG.Extension(); got != "png" {
		t.Errorf("Extension: got %s", got)
	}
}
