package processor

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func TestResolveCropBox(t *testing.T) {
	img := createInMemoryImage(200, 100, color.RGBA{255, 0, 0, 255})
	window := Geometry{Width: 100, Height: 100}

	tests := []struct {
		name string
		spec CropSpec
		want CropBox
	}{
		{"centered", CropCentered{}, CropBox{50, 0, 150, 100}},
		{"anchored left", CropAnchored{X: "0%", Y: "50%"}, CropBox{0, 0, 100, 100}},
		{"anchored right", CropAnchored{X: "100%", Y: "50%"}, CropBox{100, 0, 200, 100}},
		{"anchored pixels", CropAnchored{X: "10px", Y: "10px"}, CropBox{10, 0, 110, 100}},
		{"edges from left", CropEdges{X: EdgeOffset{Percent: 25}}, CropBox{25, 0, 125, 100}},
		{"edges from right", CropEdges{X: EdgeOffset{Percent: 25, FromEnd: true}}, CropBox{75, 0, 175, 100}},
		{"edges keep left", CropEdges{}, CropBox{0, 0, 100, 100}},
		{"edges keep right", CropEdges{X: EdgeOffset{FromEnd: true}}, CropBox{100, 0, 200, 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveCropBox(img, window, tt.spec)
			if err != nil {
				t.Fatalf("ResolveCropBox failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
			if !got.Valid(SizeOf(img)) {
				t.Errorf("box %+v is not valid for %v", got, SizeOf(img))
			}
		})
	}
}

func TestResolveCropBox_WindowLargerThanImage(t *testing.T) {
	img := createInMemoryImage(50, 40, color.RGBA{0, 0, 255, 255})

	got, err := ResolveCropBox(img, Geometry{Width: 100, Height: 100}, CropCentered{})
	if err != nil {
		t.Fatalf("ResolveCropBox failed: %v", err)
	}
	want := CropBox{5, 0, 45, 40}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestResolveCropBox_WindowKeepsAspect(t *testing.T) {
	tests := []struct {
		size, window Geometry
		want         Geometry
	}{
		{Geometry{1000, 17}, Geometry{100, 100}, Geometry{17, 17}},
		{Geometry{50, 80}, Geometry{100, 100}, Geometry{50, 50}},
		{Geometry{100, 50}, Geometry{200, 50}, Geometry{100, 25}},
		{Geometry{30, 30}, Geometry{300, 100}, Geometry{30, 10}},
		{Geometry{60, 40}, Geometry{50, 30}, Geometry{50, 30}},
	}
	for _, tt := range tests {
		img := createInMemoryImage(tt.size.Width, tt.size.Height, color.RGBA{0, 0, 255, 255})
		for _, spec := range []CropSpec{CropCentered{}, CropSmart{}} {
			box, err := ResolveCropBox(img, tt.window, spec)
			if err != nil {
				t.Fatalf("ResolveCropBox(%v, %v) failed: %v", tt.size, tt.window, err)
			}
			if got := box.Size(); got != tt.want {
				t.Errorf("%v in %v (%T): got %v, want %v", tt.window, tt.size, spec, got, tt.want)
			}
			if !box.Valid(tt.size) {
				t.Errorf("box %+v is not valid for %v", box, tt.size)
			}
		}
	}
}

func TestResolveCropBox_NoCrop(t *testing.T) {
	img := createInMemoryImage(10, 10, color.RGBA{0, 0, 255, 255})

	for _, spec := range []CropSpec{nil, CropNone{}} {
		_, err := ResolveCropBox(img, Geometry{Width: 5, Height: 5}, spec)
		var parseErr *ParseError
		if !errors.As(err, &parseErr) {
			t.Errorf("spec %#v: error = %v, want *ParseError", spec, err)
		}
	}
}

func TestResolveCropBox_OffsetBounds(t *testing.T) {
	img := image.NewRGBA(image.Rect(10, 20, 110, 70))

	got, err := ResolveCropBox(img, Geometry{Width: 50, Height: 50}, CropAnchored{X: "100%", Y: "0%"})
	if err != nil {
		t.Fatalf("ResolveCropBox failed: %v", err)
	}
	// Boxes are relative to the image origin.
	want := CropBox{50, 0, 100, 50}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestResolveOffsets_Smart(t *testing.T) {
	_, _, err := ResolveOffsets(Geometry{Width: 10, Height: 10}, Geometry{Width: 5, Height: 5}, CropSmart{})
	if err == nil {
		t.Error("ResolveOffsets should reject smart crops")
	}
}

func TestCropBox_Valid(t *testing.T) {
	size := Geometry{Width: 100, Height: 50}

	tests := []struct {
		name string
		box  CropBox
		want bool
	}{
		{"full", CropBox{0, 0, 100, 50}, true},
		{"inner", CropBox{10, 10, 20, 20}, true},
		{"empty width", CropBox{10, 0, 10, 50}, false},
		{"negative", CropBox{-1, 0, 10, 50}, false},
		{"too wide", CropBox{0, 0, 101, 50}, false},
		{"too tall", CropBox{0, 0, 100, 51}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.box.Valid(size); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}
