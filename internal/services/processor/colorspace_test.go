package processor

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func TestColorMode(t *testing.T) {
	transparent := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	opaque := createInMemoryImage(2, 2, color.RGBA{1, 2, 3, 255})

	tests := []struct {
		name string
		img  image.Image
		want Mode
	}{
		{"gray", image.NewGray(image.Rect(0, 0, 2, 2)), ModeGray},
		{"paletted", image.NewPaletted(image.Rect(0, 0, 2, 2), color.Palette{color.Black}), ModePalette},
		{"ycbcr", image.NewYCbCr(image.Rect(0, 0, 2, 2), image.YCbCrSubsampleRatio420), ModeRGB},
		{"opaque rgba", opaque, ModeRGB},
		{"transparent nrgba", transparent, ModeRGBA},
		{"cmyk", image.NewCMYK(image.Rect(0, 0, 2, 2)), ModeOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ColorMode(tt.img); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNormalize_RGB(t *testing.T) {
	t.Run("alpha passes through", func(t *testing.T) {
		src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
		src.SetNRGBA(1, 1, color.NRGBA{10, 20, 30, 128})

		got, err := Normalize(src, ColorspaceRGB)
		if err != nil {
			t.Fatalf("Normalize failed: %v", err)
		}
		if got != image.Image(src) {
			t.Error("RGBA image should be returned unchanged")
		}
	})

	t.Run("transparent palette becomes RGBA", func(t *testing.T) {
		palette := color.Palette{color.NRGBA{0, 0, 0, 0}, color.NRGBA{255, 0, 0, 255}}
		src := image.NewPaletted(image.Rect(0, 0, 2, 1), palette)
		src.SetColorIndex(1, 0, 1)

		got, err := Normalize(src, ColorspaceRGB)
		if err != nil {
			t.Fatalf("Normalize failed: %v", err)
		}
		nrgba, ok := got.(*image.NRGBA)
		if !ok {
			t.Fatalf("got %T, want *image.NRGBA", got)
		}
		if a := nrgba.NRGBAAt(0, 0).A; a != 0 {
			t.Errorf("transparent pixel alpha: got %d, want 0", a)
		}
		if c := nrgba.NRGBAAt(1, 0); c != (color.NRGBA{255, 0, 0, 255}) {
			t.Errorf("opaque pixel: got %v", c)
		}
	})

	t.Run("everything else becomes opaque RGB", func(t *testing.T) {
		palette := color.Palette{color.NRGBA{0, 0, 255, 255}}
		sources := []image.Image{
			image.NewPaletted(image.Rect(0, 0, 2, 2), palette),
			image.NewGray(image.Rect(0, 0, 2, 2)),
			image.NewCMYK(image.Rect(0, 0, 2, 2)),
			createInMemoryImage(2, 2, color.RGBA{9, 9, 9, 255}),
		}
		for _, src := range sources {
			got, err := Normalize(src, ColorspaceRGB)
			if err != nil {
				t.Fatalf("Normalize(%T) failed: %v", src, err)
			}
			if mode := ColorMode(got); mode != ModeRGB {
				t.Errorf("Normalize(%T) mode = %s, want RGB", src, mode)
			}
		}
	})
}

func TestNormalize_Gray(t *testing.T) {
	src := createInMemoryImage(3, 3, color.RGBA{255, 255, 255, 255})

	got, err := Normalize(src, ColorspaceGray)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	gray, ok := got.(*image.Gray)
	if !ok {
		t.Fatalf("got %T, want *image.Gray", got)
	}
	if y := gray.GrayAt(1, 1).Y; y != 255 {
		t.Errorf("luminance: got %d, want 255", y)
	}
}

func TestNormalize_Unsupported(t *testing.T) {
	_, err := Normalize(image.NewGray(image.Rect(0, 0, 1, 1)), Colorspace("CMYK"))
	var csErr *UnsupportedColorspaceError
	if !errors.As(err, &csErr) {
		t.Errorf("error = %v, want *UnsupportedColorspaceError", err)
	}
}

func TestParseColorspace(t *testing.T) {
	tests := []struct {
		input string
		want  Colorspace
	}{
		{"", ColorspaceRGB},
		{"rgb", ColorspaceRGB},
		{"GRAY", ColorspaceGray},
		{"grey", ColorspaceGray},
		{"L", ColorspaceGray},
	}
	for _, tt := range tests {
		got, err := ParseColorspace(tt.input)
		if err != nil {
			t.Fatalf("ParseColorspace(%q) failed: %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("ParseColorspace(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}

	if _, err := ParseColorspace("CMYK"); err == nil {
		t.Error("ParseColorspace(CMYK) should fail")
	}
}
