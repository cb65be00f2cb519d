package processor

import (
	"image"
	"image/color"
	"math/rand"
)

// createInMemoryImage creates a solid RGBA image
func createInMemoryImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createNoiseImage creates deterministic random noise
func createNoiseImage(width, height int, seed int64) *image.RGBA {
	rng := rand.New(rand.NewSource(seed))
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	rng.Read(img.Pix)
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}
	return img
}

// createSplitImage fills columns [0, split) with noise and the rest with a
// flat color. When noiseRight is set the halves are swapped.
func createSplitImage(width, height, split int, noiseRight bool) *image.RGBA {
	noise := createNoiseImage(width, height, 42)
	flat := color.RGBA{120, 130, 140, 255}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			isNoise := x < split
			if noiseRight {
				isNoise = x >= split
			}
			if isNoise {
				img.Set(x, y, noise.At(x, y))
			} else {
				img.Set(x, y, flat)
			}
		}
	}
	return img
}

// createBandImage fills rows [0, split) with a flat color and the rest with
// noise.
func createBandImage(width, height, split int) *image.RGBA {
	noise := createNoiseImage(width, height, 7)
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if y < split {
				img.Set(x, y, color.RGBA{10, 10, 10, 255})
			} else {
				img.Set(x, y, noise.At(x, y))
			}
		}
	}
	return img
}
