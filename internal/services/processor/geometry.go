package processor

import (
	"fmt"
	"image"
	"regexp"
	"strconv"
)

var geometryPattern = regexp.MustCompile(`^(\d+)x(\d+)$`)

// Geometry is a target width and height in pixels.
type Geometry struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// ParseGeometry parses strings such as "125x125".
func ParseGeometry(s string) (Geometry, error) {
	m := geometryPattern.FindStringSubmatch(s)
	if m == nil {
		return Geometry{}, &ParseError{Input: s, Reason: "expected WIDTHxHEIGHT"}
	}
	w, _ := strconv.Atoi(m[1])
	h, _ := strconv.Atoi(m[2])
	g := Geometry{Width: w, Height: h}
	if err := g.Validate(); err != nil {
		return Geometry{}, err
	}
	return g, nil
}

// Validate checks that both dimensions are positive.
func (g Geometry) Validate() error {
	if g.Width <= 0 || g.Height <= 0 {
		return &ParseError{Input: g.String(), Reason: "width and height must be positive"}
	}
	return nil
}

func (g Geometry) String() string {
	return fmt.Sprintf("%dx%d", g.Width, g.Height)
}

// IsSquare reports whether width equals height.
func (g Geometry) IsSquare() bool {
	return g.Width == g.Height
}

// SizeOf returns the dimensions of img.
func SizeOf(img image.Image) Geometry {
	b := img.Bounds()
	return Geometry{Width: b.Dx(), Height: b.Dy()}
}

// CropBox is a resolved crop rectangle in image coordinates. Left and Top
// are inclusive, Right and Bottom exclusive.
type CropBox struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
}

// Rect converts the box to an image.Rectangle.
func (b CropBox) Rect() image.Rectangle {
	return image.Rect(b.Left, b.Top, b.Right, b.Bottom)
}

// Size returns the dimensions of the box.
func (b CropBox) Size() Geometry {
	return Geometry{Width: b.Right - b.Left, Height: b.Bottom - b.Top}
}

// Valid reports whether the box is non-empty and inside an image of the
// given size.
func (b CropBox) Valid(size Geometry) bool {
	return b.Left >= 0 && b.Left < b.Right && b.Right <= size.Width &&
		b.Top >= 0 && b.Top < b.Bottom && b.Bottom <= size.Height
}
