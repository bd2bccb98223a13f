// Package testutil generates synthetic finder-pattern fixtures for tests.
package testutil

import (
	"image"
	"image/color"

	"github.com/MeKo-Tech/qrloc/internal/bitmap"
)

// moduleBlack reports whether module (mx, my) of a finder pattern is black:
// the 7x7 border ring plus the 3x3 center block.
func moduleBlack(mx, my int) bool {
	if mx == 0 || mx == 6 || my == 0 || my == 6 {
		return true
	}
	return mx >= 2 && mx <= 4 && my >= 2 && my <= 4
}

// DrawFinderPattern paints a finder pattern onto bmp with its top-left
// pixel at (x0, y0). module is the side of one module in pixels, so the
// pattern covers a 7*module square. The caller must keep it inside the
// bitmap.
func DrawFinderPattern(bmp *bitmap.Bitmap, x0, y0, module int) {
	for my := 0; my < 7; my++ {
		for mx := 0; mx < 7; mx++ {
			if !moduleBlack(mx, my) {
				continue
			}
			for dy := 0; dy < module; dy++ {
				for dx := 0; dx < module; dx++ {
					bmp.Set(x0+mx*module+dx, y0+my*module+dy, false)
				}
			}
		}
	}
}

// PatternBitmap returns a white w x h bitmap with finder patterns drawn at
// the given top-left positions.
func PatternBitmap(w, h, module int, positions ...image.Point) *bitmap.Bitmap {
	bmp := bitmap.New(w, h)
	for _, p := range positions {
		DrawFinderPattern(bmp, p.X, p.Y, module)
	}
	return bmp
}

// PatternImage returns a white w x h grayscale image with finder patterns
// drawn at the given top-left positions. Useful for exercising the
// binarize-then-scan path end to end.
func PatternImage(w, h, module int, positions ...image.Point) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	for _, p := range positions {
		for my := 0; my < 7; my++ {
			for mx := 0; mx < 7; mx++ {
				if !moduleBlack(mx, my) {
					continue
				}
				for dy := 0; dy < module; dy++ {
					for dx := 0; dx < module; dx++ {
						img.SetGray(p.X+mx*module+dx, p.Y+my*module+dy, color.Gray{})
					}
				}
			}
		}
	}
	return img
}
