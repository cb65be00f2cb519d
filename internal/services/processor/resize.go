package processor

import (
	"image"
	"math"
)

// ScaleFactor returns the factor that makes an image of size cover the
// geometry (when cropping) or fit inside it (when not).
func ScaleFactor(size, geometry Geometry, crop bool) float64 {
	fx := float64(geometry.Width) / float64(size.Width)
	fy := float64(geometry.Height) / float64(size.Height)
	if crop {
		return math.Max(fx, fy)
	}
	return math.Min(fx, fy)
}

// ScaledSize applies factor to size, rounding each axis and never going
// below one pixel.
func ScaledSize(size Geometry, factor float64) Geometry {
	return Geometry{
		Width:  max(1, int(math.Round(float64(size.Width)*factor))),
		Height: max(1, int(math.Round(float64(size.Height)*factor))),
	}
}

// scale resizes img toward geometry. Images are only enlarged when upscale
// is set.
func (e *Engine) scale(img image.Image, geometry Geometry, upscale bool, crop CropSpec) image.Image {
	size := SizeOf(img)
	factor := ScaleFactor(size, geometry, Crops(crop))
	if factor >= 1 && !upscale {
		return img
	}

	target := ScaledSize(size, factor)
	if target == size {
		return img
	}
	return e.provider.Resize(img, target.Width, target.Height)
}
