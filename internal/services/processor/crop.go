package processor

import (
	"fmt"
	"image"
	"math"
)

// ResolveOffsets returns the left/top offsets of a window placed inside an
// image of the given size according to a geometric crop spec. CropSmart
// needs pixel data and is handled by ResolveCropBox.
func ResolveOffsets(size, window Geometry, spec CropSpec) (int, int, error) {
	dx := max(size.Width-window.Width, 0)
	dy := max(size.Height-window.Height, 0)

	switch s := spec.(type) {
	case CropCentered:
		return dx / 2, dy / 2, nil
	case CropAnchored:
		x, err := ResolveOffset(s.X, dx)
		if err != nil {
			return 0, 0, err
		}
		y, err := ResolveOffset(s.Y, dy)
		if err != nil {
			return 0, 0, err
		}
		return x, y, nil
	case CropEdges:
		return s.X.offset(dx), s.Y.offset(dy), nil
	default:
		return 0, 0, &ParseError{Input: fmt.Sprint(spec), Reason: "not a positional crop"}
	}
}

// ResolveCropBox places a window of the given size inside img. A window
// larger than the image is shrunk uniformly until it fits, so the box keeps
// the requested aspect ratio and is always valid.
func ResolveCropBox(img image.Image, window Geometry, spec CropSpec) (CropBox, error) {
	size := SizeOf(img)
	window = fitWindow(size, window)

	switch spec.(type) {
	case nil, CropNone:
		return CropBox{}, &ParseError{Input: "", Reason: "no crop requested"}
	case CropSmart:
		return SmartCropBox(img, window), nil
	}

	left, top, err := ResolveOffsets(size, window, spec)
	if err != nil {
		return CropBox{}, err
	}
	return CropBox{
		Left:   left,
		Top:    top,
		Right:  left + window.Width,
		Bottom: top + window.Height,
	}, nil
}

// fitWindow scales window by min(W/w, H/h, 1). The constrained axis takes
// the image extent exactly; the other is rounded and kept at least 1.
func fitWindow(size, window Geometry) Geometry {
	if window.Width <= 0 || window.Height <= 0 {
		return Geometry{Width: min(max(window.Width, 1), size.Width), Height: min(max(window.Height, 1), size.Height)}
	}
	if window.Width <= size.Width && window.Height <= size.Height {
		return window
	}
	fx := float64(size.Width) / float64(window.Width)
	fy := float64(size.Height) / float64(window.Height)
	if fx <= fy {
		h := int(math.Round(float64(window.Height) * fx))
		return Geometry{Width: size.Width, Height: clamp(h, 1, size.Height)}
	}
	w := int(math.Round(float64(window.Width) * fy))
	return Geometry{Width: clamp(w, 1, size.Width), Height: size.Height}
}

// crop cuts the window described by spec out of img. Images that already fit
// the window are returned unchanged.
func (e *Engine) crop(img image.Image, geometry Geometry, spec CropSpec) (image.Image, error) {
	if !Crops(spec) {
		return img, nil
	}

	box, err := ResolveCropBox(img, geometry, spec)
	if err != nil {
		return nil, err
	}
	if box.Size() == SizeOf(img) {
		return img, nil
	}

	b := img.Bounds()
	return e.provider.Crop(img, box.Rect().Add(b.Min)), nil
}
