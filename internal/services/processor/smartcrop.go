package processor

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// smartCropStep is the widest strip examined per iteration.
const smartCropStep = 10

// SmartCropBox shrinks the full image down to window by repeatedly trimming
// the edge strip with the lower Shannon entropy. Horizontal trimming runs
// first, then vertical. On a tie the left/top strip is kept and the
// right/bottom one is trimmed.
func SmartCropBox(img image.Image, window Geometry) CropBox {
	src := toNRGBA(img)
	size := SizeOf(src)
	channels := entropyChannels(img, src)

	box := CropBox{Right: size.Width, Bottom: size.Height}

	dx := size.Width - min(window.Width, size.Width)
	for dx > 0 {
		slice := min(dx, smartCropStep)
		left := Entropy(src, image.Rect(box.Left, box.Top, box.Left+slice, box.Bottom), channels)
		right := Entropy(src, image.Rect(box.Right-slice, box.Top, box.Right, box.Bottom), channels)
		if left >= right {
			box.Right -= slice
		} else {
			box.Left += slice
		}
		dx -= slice
	}

	dy := size.Height - min(window.Height, size.Height)
	for dy > 0 {
		slice := min(dy, smartCropStep)
		top := Entropy(src, image.Rect(box.Left, box.Top, box.Right, box.Top+slice), channels)
		bottom := Entropy(src, image.Rect(box.Left, box.Bottom-slice, box.Right, box.Bottom), channels)
		if top >= bottom {
			box.Bottom -= slice
		} else {
			box.Top += slice
		}
		dy -= slice
	}

	return box
}

// entropyChannels decides once per image how many channel histograms
// Entropy builds: one for luminance images, four when the image carries any
// transparency, three otherwise.
func entropyChannels(img image.Image, src *image.NRGBA) int {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return 1
	}
	if !src.Opaque() {
		return 4
	}
	return 3
}

// Entropy returns the Shannon entropy, in bits, of the channel histogram of
// region. channels is 1 for luminance (the R byte of a gray pixel), 3 for
// RGB or 4 for RGBA; each channel contributes its own 256 bins.
func Entropy(img *image.NRGBA, region image.Rectangle, channels int) float64 {
	region = region.Intersect(img.Bounds())
	if region.Empty() {
		return 0
	}
	channels = clamp(channels, 1, 4)

	hist := make([]int, 256*channels)
	for y := region.Min.Y; y < region.Max.Y; y++ {
		row := img.Pix[img.PixOffset(region.Min.X, y):img.PixOffset(region.Max.X, y)]
		for i := 0; i+3 < len(row); i += 4 {
			for c := 0; c < channels; c++ {
				hist[c*256+int(row[i+c])]++
			}
		}
	}

	return histogramEntropy(hist)
}

func histogramEntropy(hist []int) float64 {
	total := 0
	for _, n := range hist {
		total += n
	}
	if total == 0 {
		return 0
	}

	var entropy float64
	for _, n := range hist {
		if n == 0 {
			continue
		}
		p := float64(n) / float64(total)
		entropy -= p * math.Log2(p)
	}
	return entropy
}

func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Bounds().Min == (image.Point{}) {
		return n
	}
	return imaging.Clone(img)
}
