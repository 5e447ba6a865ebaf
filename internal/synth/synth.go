// Package synth draws deterministic test scenes: textured checkerboards and
// frames that contain a scaled, translated copy of them.
package synth

import (
	"image"
	"image/color"
	"math/rand"

	"github.com/disintegration/imaging"
	"gocv.io/x/gocv"
)

// Checkerboard returns a size x size board of cell x cell squares. Every square
// gets its own gray level so no two corners look alike.
func Checkerboard(size, cell int, seed int64) *image.NRGBA {
	rng := rand.New(rand.NewSource(seed))
	img := imaging.New(size, size, color.White)
	for cy := 0; cy < size; cy += cell {
		for cx := 0; cx < size; cx += cell {
			v := uint8(rng.Intn(256))
			if (cx/cell+cy/cell)%2 == 0 {
				v = v / 3
			} else {
				v = 170 + v/3
			}
			c := color.NRGBA{v, v, v, 255}
			for y := cy; y < cy+cell && y < size; y++ {
				for x := cx; x < cx+cell && x < size; x++ {
					img.SetNRGBA(x, y, c)
				}
			}
		}
	}
	return img
}

// Scene pastes src, scaled by factor, at offset onto a uniform gray canvas.
func Scene(src image.Image, width, height int, factor float64, offset image.Point) *image.NRGBA {
	b := src.Bounds()
	scaled := imaging.Resize(src, int(float64(b.Dx())*factor), int(float64(b.Dy())*factor), imaging.Box)
	canvas := imaging.New(width, height, color.NRGBA{128, 128, 128, 255})
	return imaging.Paste(canvas, scaled, offset)
}

// Blank returns a uniform canvas with nothing to detect.
func Blank(width, height int) *image.NRGBA {
	return imaging.New(width, height, color.NRGBA{128, 128, 128, 255})
}

// Frame converts img into a BGR Mat as a camera would deliver it.
func Frame(img image.Image) (gocv.Mat, error) {
	return gocv.ImageToMatRGB(img)
}
