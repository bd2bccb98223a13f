package utils

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"github.com/MeKo-Tech/qrloc/internal/bitmap"
	"github.com/MeKo-Tech/qrloc/internal/geometry"
)

// BitmapToImage renders a 1-bit bitmap as an 8-bit grayscale image.
func BitmapToImage(bmp *bitmap.Bitmap) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, bmp.Width(), bmp.Height()))
	for y := 0; y < bmp.Height(); y++ {
		row := bmp.Row(y)
		base := y * img.Stride
		for x, px := range row {
			if px {
				img.Pix[base+x] = 0xff
			}
		}
	}
	return img
}

// MarkerColor is the outline color used by DrawMarkers.
var MarkerColor = color.NRGBA{R: 0xff, A: 0xff}

// DrawMarkers returns a copy of img with each marker's bounding box
// outlined. The input image is not modified.
func DrawMarkers(img image.Image, markers []geometry.Marker[int]) *image.NRGBA {
	dst := imaging.Clone(img)
	for _, m := range markers {
		drawBox(dst, m.Min.X, m.Min.Y, m.Max.X, m.Max.Y)
	}
	return dst
}

// drawBox outlines the half-open box [x0,x1) x [y0,y1).
func drawBox(dst *image.NRGBA, x0, y0, x1, y1 int) {
	b := dst.Bounds()
	setIf := func(x, y int) {
		if image.Pt(x, y).In(b) {
			dst.SetNRGBA(x, y, MarkerColor)
		}
	}
	for x := x0; x < x1; x++ {
		setIf(x, y0)
		setIf(x, y1-1)
	}
	for y := y0; y < y1; y++ {
		setIf(x0, y)
		setIf(x1-1, y)
	}
}
