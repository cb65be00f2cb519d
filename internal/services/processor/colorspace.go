package processor

import (
	"image"
	"image/draw"
	"strings"

	"github.com/disintegration/imaging"
)

// Colorspace is the target color mode of a thumbnail.
type Colorspace string

const (
	ColorspaceRGB  Colorspace = "RGB"
	ColorspaceGray Colorspace = "GRAY"
)

// ParseColorspace accepts "rgb", "gray" and "grey" in any case. The empty
// string selects RGB.
func ParseColorspace(s string) (Colorspace, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "RGB":
		return ColorspaceRGB, nil
	case "GRAY", "GREY", "L":
		return ColorspaceGray, nil
	default:
		return "", &UnsupportedColorspaceError{Colorspace: s}
	}
}

// Mode is the color mode of a decoded image.
type Mode int

const (
	ModeOther Mode = iota
	ModeGray
	ModeRGB
	ModeRGBA
	ModePalette
)

func (m Mode) String() string {
	switch m {
	case ModeGray:
		return "L"
	case ModeRGB:
		return "RGB"
	case ModeRGBA:
		return "RGBA"
	case ModePalette:
		return "P"
	default:
		return "other"
	}
}

type opaquer interface {
	Opaque() bool
}

// ColorMode classifies img. Truecolor images count as RGBA only when they
// actually carry transparency.
func ColorMode(img image.Image) Mode {
	switch src := img.(type) {
	case *image.Gray, *image.Gray16:
		return ModeGray
	case *image.Paletted:
		return ModePalette
	case *image.YCbCr:
		return ModeRGB
	case *image.RGBA, *image.NRGBA, *image.RGBA64, *image.NRGBA64:
		if src.(opaquer).Opaque() {
			return ModeRGB
		}
		return ModeRGBA
	default:
		return ModeOther
	}
}

// hasTransparency reports whether a palette contains a non-opaque entry.
func hasTransparency(p *image.Paletted) bool {
	for _, c := range p.Palette {
		if _, _, _, a := c.RGBA(); a != 0xffff {
			return true
		}
	}
	return false
}

// Normalize converts img to the requested colorspace. For RGB, images with
// transparency pass through and palettes with a transparent entry become
// NRGBA; everything else becomes opaque NRGBA. GRAY yields *image.Gray.
func Normalize(img image.Image, cs Colorspace) (image.Image, error) {
	switch cs {
	case ColorspaceRGB:
		switch ColorMode(img) {
		case ModeRGBA:
			return img, nil
		case ModePalette:
			if hasTransparency(img.(*image.Paletted)) {
				return imaging.Clone(img), nil
			}
		}
		return toOpaque(img), nil
	case ColorspaceGray:
		return toGray(img), nil
	default:
		return nil, &UnsupportedColorspaceError{Colorspace: string(cs)}
	}
}

func toOpaque(img image.Image) *image.NRGBA {
	dst := imaging.Clone(img)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xff
	}
	return dst
}

func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	b := img.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
