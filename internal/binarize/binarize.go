// Package binarize converts raw pixel frames into 1-bit bitmaps using a
// histogram-driven adaptive threshold.
package binarize

import (
	"image"

	"github.com/MeKo-Tech/qrloc/internal/bitmap"
	"github.com/MeKo-Tech/qrloc/internal/mempool"
)

// LumaSource is the input contract for binarization: per-pixel 8-bit
// brightness plus dimensions. Capture and decoding of the underlying image
// format stay with the caller.
type LumaSource interface {
	Width() int
	Height() int
	// LumaAt returns the 8-bit luma of the pixel at (x, y).
	LumaAt(x, y int) uint8
}

// Histogram is a 256-bucket luma histogram.
type Histogram [256]int

// Threshold derives a global binarization threshold from the histogram by
// iterated mean splitting: partition the histogram at the current
// threshold, take the luma-weighted mean of each side, and move the
// threshold to the midpoint of the two means until it no longer changes.
// Bucket counts are seeded at 1 so empty sides never divide by zero, which
// also makes the procedure total on degenerate single-value histograms.
func (h *Histogram) Threshold() uint8 {
	accum := func(lo, hi, seed int) (sum, cnt int) {
		cnt = seed
		for v := lo; v < hi; v++ {
			sum += h[v] * v
			cnt += h[v]
		}
		return sum, cnt
	}

	thresh := 128
	blackSum, blackCnt := accum(0, 128, 1)
	whiteSum, whiteCnt := accum(128, 256, 1)
	next := (blackSum/blackCnt + whiteSum/whiteCnt) / 2

	// Each step moves histogram mass between the two running sides instead
	// of recomputing them; the interval between the old and new threshold
	// strictly narrows, so the loop terminates.
	for next != thresh {
		lo, hi := next, thresh
		if lo > hi {
			lo, hi = hi, lo
		}
		diffSum, diffCnt := accum(lo, hi, 0)

		if next < thresh {
			blackSum -= diffSum
			blackCnt -= diffCnt
			whiteSum += diffSum
			whiteCnt += diffCnt
		} else {
			blackSum += diffSum
			blackCnt += diffCnt
			whiteSum -= diffSum
			whiteCnt -= diffCnt
		}

		thresh = next
		next = (blackSum/blackCnt + whiteSum/whiteCnt) / 2
	}

	return uint8(thresh)
}

// Binarize converts a luma source into a bitmap: pixels strictly brighter
// than the adaptive threshold become white. It never fails; a flat frame
// simply binarizes to a uniform bitmap.
func Binarize(src LumaSource) *bitmap.Bitmap {
	w, h := src.Width(), src.Height()

	// Single luma pass shared by the histogram and the threshold sweep.
	lumas := mempool.GetByte(w * h)
	defer mempool.PutByte(lumas)

	var histo Histogram
	i := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			l := src.LumaAt(x, y)
			lumas[i] = l
			histo[l]++
			i++
		}
	}
	thresh := histo.Threshold()

	data := mempool.GetBool(w * h)
	for i, l := range lumas {
		data[i] = l > thresh
	}
	return bitmap.FromData(w, h, data)
}

// FromImage binarizes a decoded image, converting pixels to luma on the
// fly.
func FromImage(img image.Image) *bitmap.Bitmap {
	return Binarize(NewImageLuma(img))
}

// ImageLuma adapts an image.Image to the LumaSource contract.
type ImageLuma struct {
	img    image.Image
	gray   *image.Gray
	bounds image.Rectangle
}

// NewImageLuma wraps img as a luma source. *image.Gray inputs are read
// directly; everything else goes through the stdlib gray conversion
// (ITU-R BT.601 weights).
func NewImageLuma(img image.Image) *ImageLuma {
	s := &ImageLuma{img: img, bounds: img.Bounds()}
	if g, ok := img.(*image.Gray); ok {
		s.gray = g
	}
	return s
}

// Width returns the source width in pixels.
func (s *ImageLuma) Width() int { return s.bounds.Dx() }

// Height returns the source height in pixels.
func (s *ImageLuma) Height() int { return s.bounds.Dy() }

// LumaAt returns the 8-bit luma of the pixel at (x, y), relative to the
// image's bounds origin.
func (s *ImageLuma) LumaAt(x, y int) uint8 {
	if s.gray != nil {
		return s.gray.GrayAt(s.bounds.Min.X+x, s.bounds.Min.Y+y).Y
	}
	r, g, b, _ := s.img.At(s.bounds.Min.X+x, s.bounds.Min.Y+y).RGBA()
	// 16-bit channels; same weights as color.GrayModel.
	return uint8((19595*r + 38470*g + 7471*b + 1<<15) >> 24)
}
