package processor

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	cropOffsetPattern = regexp.MustCompile(`^(\d+)(%|px)$`)
	edgeCropPattern   = regexp.MustCompile(`^(-?)(\d+),(-?)(\d+)$`)
)

// Named anchors expressed as percentages of the overflow.
var (
	xAnchorPercent = map[string]string{
		"left":   "0%",
		"center": "50%",
		"right":  "100%",
	}
	yAnchorPercent = map[string]string{
		"top":    "0%",
		"center": "50%",
		"bottom": "100%",
	}
)

// ResolveOffset converts a single "<n>%" or "<n>px" component into a pixel
// offset along one axis. epsilon is the difference between the image and the
// crop window on that axis. The result is always in [0, epsilon].
func ResolveOffset(component string, epsilon int) (int, error) {
	value, percent, err := parseOffsetComponent(component)
	if err != nil {
		return 0, err
	}
	if percent {
		value = epsilon * min(value, 100) / 100
	}
	return clamp(value, 0, max(epsilon, 0)), nil
}

// ResolveAxisSpecs splits a crop string into its X and Y components. A single
// token applies to both axes unless it is a named anchor, in which case the
// other axis is centered. Two tokens map to X and Y with anchors substituted.
func ResolveAxisSpecs(crop string) (string, string, error) {
	tokens := strings.Split(crop, " ")
	switch len(tokens) {
	case 1:
		token := tokens[0]
		if x, ok := xAnchorPercent[token]; ok {
			return x, "50%", nil
		}
		if y, ok := yAnchorPercent[token]; ok {
			return "50%", y, nil
		}
		if token == "" {
			return "", "", &ParseError{Input: crop, Reason: "empty crop option"}
		}
		return token, token, nil
	case 2:
		x, y := tokens[0], tokens[1]
		if v, ok := xAnchorPercent[x]; ok {
			x = v
		}
		if v, ok := yAnchorPercent[y]; ok {
			y = v
		}
		return x, y, nil
	default:
		return "", "", &ParseError{Input: crop, Reason: "expected one or two values"}
	}
}

func parseOffsetComponent(component string) (int, bool, error) {
	m := cropOffsetPattern.FindStringSubmatch(component)
	if m == nil {
		return 0, false, &ParseError{Input: component, Reason: "expected <n>% or <n>px"}
	}
	value, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false, &ParseError{Input: component, Reason: err.Error()}
	}
	return value, m[2] == "%", nil
}

// parseEdgeCrop reports ok when s has the edge-crop shape; err is set when
// the shape matched but a value is out of range.
func parseEdgeCrop(s string) (CropEdges, bool, error) {
	m := edgeCropPattern.FindStringSubmatch(s)
	if m == nil {
		return CropEdges{}, false, nil
	}
	x, errX := strconv.Atoi(m[2])
	y, errY := strconv.Atoi(m[4])
	if errX != nil || errY != nil || x > 100 || y > 100 {
		return CropEdges{}, true, &ParseError{Input: s, Reason: "edge percentages must be between 0 and 100"}
	}
	return CropEdges{
		X: EdgeOffset{Percent: x, FromEnd: m[1] == "-"},
		Y: EdgeOffset{Percent: y, FromEnd: m[3] == "-"},
	}, true, nil
}

// offset returns the left/top offset for removing o.Percent of delta.
func (o EdgeOffset) offset(delta int) int {
	if delta <= 0 {
		return 0
	}
	remove := delta * o.Percent / 100
	if o.FromEnd {
		return delta - remove
	}
	return remove
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
