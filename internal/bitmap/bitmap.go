// Package bitmap provides the 1-bit row-major pixel grid that the scan
// pipeline operates on. True is white, false is black.
package bitmap

import (
	"fmt"
	"iter"

	"github.com/MeKo-Tech/qrloc/internal/mempool"
)

// Bitmap is a dense row-major boolean pixel grid. A bitmap is owned by
// exactly one pipeline stage at a time and is never mutated concurrently.
type Bitmap struct {
	width  int
	height int
	data   []bool
}

// New creates an all-white bitmap of the given dimensions. The backing
// buffer comes from the shared pool; call Release when the bitmap is no
// longer needed to return it.
func New(width, height int) *Bitmap {
	if width < 0 || height < 0 {
		panic(fmt.Sprintf("bitmap: invalid dimensions %dx%d", width, height))
	}
	data := mempool.GetBool(width * height)
	for i := range data {
		data[i] = true
	}
	return &Bitmap{width: width, height: height, data: data}
}

// FromData wraps an existing buffer. len(data) must equal width*height.
func FromData(width, height int, data []bool) *Bitmap {
	if len(data) != width*height {
		panic(fmt.Sprintf("bitmap: buffer length %d does not match %dx%d", len(data), width, height))
	}
	return &Bitmap{width: width, height: height, data: data}
}

// Release returns the backing buffer to the pool. The bitmap must not be
// used afterwards.
func (b *Bitmap) Release() {
	mempool.PutBool(b.data)
	b.data = nil
	b.width = 0
	b.height = 0
}

// Width returns the bitmap width in pixels.
func (b *Bitmap) Width() int { return b.width }

// Height returns the bitmap height in pixels.
func (b *Bitmap) Height() int { return b.height }

// Get returns the pixel at (x, y). It panics when the coordinates are out
// of range; use GetOK or GetClamped for tolerant access.
func (b *Bitmap) Get(x, y int) bool {
	if uint(x) >= uint(b.width) || uint(y) >= uint(b.height) {
		panic(fmt.Sprintf("bitmap: pixel (%d,%d) out of range %dx%d", x, y, b.width, b.height))
	}
	return b.data[y*b.width+x]
}

// Set writes the pixel at (x, y). It panics when the coordinates are out
// of range.
func (b *Bitmap) Set(x, y int, v bool) {
	if uint(x) >= uint(b.width) || uint(y) >= uint(b.height) {
		panic(fmt.Sprintf("bitmap: pixel (%d,%d) out of range %dx%d", x, y, b.width, b.height))
	}
	b.data[y*b.width+x] = v
}

// GetOK returns the pixel at (x, y) and whether the coordinates were in
// range. Out-of-range access yields (false, false).
func (b *Bitmap) GetOK(x, y int) (bool, bool) {
	if uint(x) >= uint(b.width) || uint(y) >= uint(b.height) {
		return false, false
	}
	return b.data[y*b.width+x], true
}

// GetClamped returns the pixel at (x, y) with both coordinates saturated
// into the valid range. It never fails on a non-empty bitmap.
func (b *Bitmap) GetClamped(x, y int) bool {
	if x < 0 {
		x = 0
	} else if x >= b.width {
		x = b.width - 1
	}
	if y < 0 {
		y = 0
	} else if y >= b.height {
		y = b.height - 1
	}
	return b.data[y*b.width+x]
}

// Row returns the mutable pixel slice for row y.
func (b *Bitmap) Row(y int) []bool {
	if uint(y) >= uint(b.height) {
		panic(fmt.Sprintf("bitmap: row %d out of range %d", y, b.height))
	}
	return b.data[y*b.width : (y+1)*b.width]
}

// Rows iterates rows top to bottom. Each row is itself a lazy, restartable
// pixel sequence; ranging over the same sequence twice yields two
// independent, equal iterations.
func (b *Bitmap) Rows() iter.Seq2[int, iter.Seq[bool]] {
	return func(yield func(int, iter.Seq[bool]) bool) {
		for y := 0; y < b.height; y++ {
			if !yield(y, pixelSeq(b.Row(y))) {
				return
			}
		}
	}
}

// RowsReverse iterates rows bottom to top, yielding the exact reverse of
// the Rows sequence. Pixels within each row still run left to right.
func (b *Bitmap) RowsReverse() iter.Seq2[int, iter.Seq[bool]] {
	return func(yield func(int, iter.Seq[bool]) bool) {
		for y := b.height - 1; y >= 0; y-- {
			if !yield(y, pixelSeq(b.Row(y))) {
				return
			}
		}
	}
}

func pixelSeq(row []bool) iter.Seq[bool] {
	return func(yield func(bool) bool) {
		for _, px := range row {
			if !yield(px) {
				return
			}
		}
	}
}
