package processor

import (
	"fmt"
	"strings"
)

// CropSpec is one of CropNone, CropCentered, CropAnchored, CropSmart or
// CropEdges. A nil CropSpec means no cropping.
type CropSpec interface {
	fmt.Stringer
	cropSpec()
}

// CropNone disables cropping; the scaled image is returned to fit inside
// the target geometry.
type CropNone struct{}

// CropCentered crops the middle of the scaled image. It is what a boolean
// `crop: true` means.
type CropCentered struct{}

// CropAnchored positions the crop window with per-axis offsets of the form
// "<n>%" or "<n>px".
type CropAnchored struct {
	X string
	Y string
}

// CropSmart trims the lower-entropy edges first.
type CropSmart struct{}

// CropEdges removes a percentage of each axis' overflow, anchored to the
// left/top side unless FromEnd is set.
type CropEdges struct {
	X EdgeOffset
	Y EdgeOffset
}

// EdgeOffset is one axis of an edge crop.
type EdgeOffset struct {
	Percent int
	FromEnd bool
}

func (CropNone) cropSpec()     {}
func (CropCentered) cropSpec() {}
func (CropAnchored) cropSpec() {}
func (CropSmart) cropSpec()    {}
func (CropEdges) cropSpec()    {}

func (CropNone) String() string     { return "" }
func (CropCentered) String() string { return "center" }
func (CropSmart) String() string    { return "smart" }

func (c CropAnchored) String() string { return c.X + " " + c.Y }

func (c CropEdges) String() string {
	return c.X.String() + "," + c.Y.String()
}

func (o EdgeOffset) String() string {
	if o.FromEnd {
		return fmt.Sprintf("-%d", o.Percent)
	}
	return fmt.Sprintf("%d", o.Percent)
}

// Crops reports whether spec requests any cropping.
func Crops(spec CropSpec) bool {
	if spec == nil {
		return false
	}
	_, none := spec.(CropNone)
	return !none
}

// ParseCropSpec turns a configuration string into a CropSpec. The empty
// string and "false" disable cropping, "true" and "center" center-crop,
// "smart" selects entropy cropping. Strings matching the edge grammar
// "[-]N,[-]M" take precedence over offset strings such as "50% 0%",
// "left" or "10px bottom".
func ParseCropSpec(s string) (CropSpec, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "false", "none":
		return CropNone{}, nil
	case "true", "center":
		return CropCentered{}, nil
	case "smart":
		return CropSmart{}, nil
	}

	if edges, ok, err := parseEdgeCrop(s); ok {
		if err != nil {
			return nil, err
		}
		return edges, nil
	}

	x, y, err := ResolveAxisSpecs(s)
	if err != nil {
		return nil, err
	}
	for _, component := range []string{x, y} {
		if _, _, err := parseOffsetComponent(component); err != nil {
			return nil, err
		}
	}
	return CropAnchored{X: x, Y: y}, nil
}
