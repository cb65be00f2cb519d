package processor

import (
	"errors"
	"strconv"
	"testing"
)

func TestResolveOffset_Percent(t *testing.T) {
	for _, epsilon := range []int{0, 1, 7, 33, 100, 1001} {
		for p := 0; p <= 100; p++ {
			got, err := ResolveOffset(strconv.Itoa(p)+"%", epsilon)
			if err != nil {
				t.Fatalf("ResolveOffset(%d%%, %d) failed: %v", p, epsilon, err)
			}
			if got < 0 || got > epsilon {
				t.Errorf("ResolveOffset(%d%%, %d) = %d, outside [0, %d]", p, epsilon, got, epsilon)
			}
			if p == 0 && got != 0 {
				t.Errorf("ResolveOffset(0%%, %d) = %d, want 0", epsilon, got)
			}
			if p == 100 && got != epsilon {
				t.Errorf("ResolveOffset(100%%, %d) = %d, want %d", epsilon, got, epsilon)
			}
		}
	}
}

func TestResolveOffset(t *testing.T) {
	tests := []struct {
		name      string
		component string
		epsilon   int
		want      int
	}{
		{"half", "50%", 33, 16},
		{"over 100 percent clamps", "150%", 40, 40},
		{"huge percent clamps", "99999999999999999%", 4000, 4000},
		{"huge percent with wide epsilon", "9223372036854775%", 1000000, 1000000},
		{"pixels", "12px", 40, 12},
		{"pixels clamp to epsilon", "80px", 40, 40},
		{"negative epsilon", "50%", -20, 0},
		{"negative epsilon pixels", "5px", -20, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveOffset(tt.component, tt.epsilon)
			if err != nil {
				t.Fatalf("ResolveOffset failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestResolveOffset_Malformed(t *testing.T) {
	for _, component := range []string{"abc", "50", "-5%", "5 %", "px", "%", "1.5%", ""} {
		t.Run(component, func(t *testing.T) {
			_, err := ResolveOffset(component, 10)
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Errorf("ResolveOffset(%q) error = %v, want *ParseError", component, err)
			}
		})
	}
}

func TestResolveAxisSpecs(t *testing.T) {
	tests := []struct {
		crop  string
		wantX string
		wantY string
	}{
		{"center", "50%", "50%"},
		{"50% 50%", "50%", "50%"},
		{"left", "0%", "50%"},
		{"right", "100%", "50%"},
		{"top", "50%", "0%"},
		{"bottom", "50%", "100%"},
		{"25%", "25%", "25%"},
		{"10px", "10px", "10px"},
		{"left top", "0%", "0%"},
		{"right bottom", "100%", "100%"},
		{"10px 75%", "10px", "75%"},
		{"center bottom", "50%", "100%"},
	}

	for _, tt := range tests {
		t.Run(tt.crop, func(t *testing.T) {
			x, y, err := ResolveAxisSpecs(tt.crop)
			if err != nil {
				t.Fatalf("ResolveAxisSpecs failed: %v", err)
			}
			if x != tt.wantX || y != tt.wantY {
				t.Errorf("got (%s, %s), want (%s, %s)", x, y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestResolveAxisSpecs_CenterEqualsHalf(t *testing.T) {
	cx, cy, err := ResolveAxisSpecs("center")
	if err != nil {
		t.Fatal(err)
	}
	hx, hy, err := ResolveAxisSpecs("50% 50%")
	if err != nil {
		t.Fatal(err)
	}
	if cx != hx || cy != hy {
		t.Errorf("center = (%s, %s), 50%% 50%% = (%s, %s)", cx, cy, hx, hy)
	}
}

func TestResolveAxisSpecs_TooManyTokens(t *testing.T) {
	_, _, err := ResolveAxisSpecs("50% 50% 50%")
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Errorf("error = %v, want *ParseError", err)
	}
}

func TestParseCropSpec(t *testing.T) {
	tests := []struct {
		input string
		want  CropSpec
	}{
		{"", CropNone{}},
		{"false", CropNone{}},
		{"true", CropCentered{}},
		{"center", CropCentered{}},
		{"Center", CropCentered{}},
		{"smart", CropSmart{}},
		{"left", CropAnchored{X: "0%", Y: "50%"}},
		{"50% 0%", CropAnchored{X: "50%", Y: "0%"}},
		{"20px", CropAnchored{X: "20px", Y: "20px"}},
		{"10,20", CropEdges{X: EdgeOffset{Percent: 10}, Y: EdgeOffset{Percent: 20}}},
		{"-10,20", CropEdges{X: EdgeOffset{Percent: 10, FromEnd: true}, Y: EdgeOffset{Percent: 20}}},
		{"0,-100", CropEdges{X: EdgeOffset{Percent: 0}, Y: EdgeOffset{Percent: 100, FromEnd: true}}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCropSpec(tt.input)
			if err != nil {
				t.Fatalf("ParseCropSpec failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestParseCropSpec_Malformed(t *testing.T) {
	for _, input := range []string{"abc", "50", "50% 50% 50%", "10,101", "left abc", "50%  50%"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseCropSpec(input)
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Errorf("ParseCropSpec(%q) error = %v, want *ParseError", input, err)
			}
		})
	}
}

func TestCrops(t *testing.T) {
	if Crops(nil) {
		t.Error("nil spec should not crop")
	}
	if Crops(CropNone{}) {
		t.Error("CropNone should not crop")
	}
	if !Crops(CropSmart{}) {
		t.Error("CropSmart should crop")
	}
}

func TestParseGeometry(t *testing.T) {
	g, err := ParseGeometry("125x80")
	if err != nil {
		t.Fatalf("ParseGeometry failed: %v", err)
	}
	if g.Width != 125 || g.Height != 80 {
		t.Errorf("got %v, want 125x80", g)
	}

	for _, bad := range []string{"0x10", "10x0", "10", "x10", "10x10x10", "axb"} {
		if _, err := ParseGeometry(bad); err == nil {
			t.Errorf("ParseGeometry(%q) should fail", bad)
		}
	}
}
