// Package scanner locates finder patterns (the three large squares in the
// corners of a matrix barcode) in a binarized bitmap by run-length ratio
// matching.
package scanner

import (
	"iter"

	"github.com/MeKo-Tech/qrloc/internal/bitmap"
	"github.com/MeKo-Tech/qrloc/internal/geometry"
)

// DefaultRatios is the expected sequence of adjacent run-length ratios for
// a finder pattern: five runs sized 1:1:3:1:1 yield four ratios.
func DefaultRatios() []float64 {
	return []float64{1.0, 1.0 / 3.0, 3.0, 1.0}
}

// Config holds the scan tuning knobs. They are injected rather than
// hardwired so callers and tests can trade strictness for speed.
type Config struct {
	// Stride is the row sampling interval; only every Stride-th row is
	// walked for run transitions.
	Stride int `mapstructure:"stride" yaml:"stride" json:"stride"`
	// Tolerance is the maximum absolute deviation of a measured run ratio
	// from its expected value. Lower is stricter.
	Tolerance float64 `mapstructure:"tolerance" yaml:"tolerance" json:"tolerance"`
	// Ratios is the expected run-ratio signature. Nil means DefaultRatios.
	Ratios []float64 `mapstructure:"-" yaml:"-" json:"-"`
}

// DefaultConfig returns the scan defaults.
func DefaultConfig() Config {
	return Config{
		Stride:    4,
		Tolerance: 0.65,
		Ratios:    DefaultRatios(),
	}
}

// Scanner finds finder-pattern markers in bitmaps. Its scratch buffers are
// reused across rows and frames, so a Scanner is not safe for concurrent
// use; give each worker its own.
type Scanner struct {
	cfg Config

	// Ratios of sizes of successive pixel runs in the current row.
	ratioBuf *ring[float64]
	// X-coordinates of the last few run transitions.
	xBuf *ring[int]
	// Markers whose boxes may still overlap rows below the current one,
	// keyed by index into the result slice.
	active map[int]struct{}
	// Run-size scratch for the cross-axis confirmation passes.
	sizes []int
}

// New creates a Scanner. Zero or missing config fields fall back to
// defaults.
func New(cfg Config) *Scanner {
	if cfg.Stride <= 0 {
		cfg.Stride = 4
	}
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = 0.65
	}
	if len(cfg.Ratios) == 0 {
		cfg.Ratios = DefaultRatios()
	}
	return &Scanner{
		cfg:      cfg,
		ratioBuf: newRing[float64](len(cfg.Ratios)),
		xBuf:     newRing[int](len(cfg.Ratios) + 2),
		active:   make(map[int]struct{}),
		sizes:    make([]int, len(cfg.Ratios)+1),
	}
}

// FindMarkers scans sampled rows of the bitmap and returns every confirmed
// finder-pattern marker in discovery order (top to bottom, then left to
// right). Zero markers is a normal result.
func (s *Scanner) FindMarkers(bmp *bitmap.Bitmap) []geometry.Marker[int] {
	markers := make([]geometry.Marker[int], 0, 4)
	clear(s.active)

	for y := 0; y < bmp.Height(); y += s.cfg.Stride {
		s.scanRow(bmp, y, &markers)

		// Retire markers the scan has moved entirely below; they can no
		// longer be re-hit.
		for i := range s.active {
			if y > markers[i].Max.Y {
				delete(s.active, i)
			}
		}

		s.ratioBuf.Clear()
		s.xBuf.Clear()
	}

	return markers
}

// scanRow walks the run transitions of one row and confirms any candidate
// whose ratio window matches the finder signature.
func (s *Scanner) scanRow(bmp *bitmap.Bitmap, y int, markers *[]geometry.Marker[int]) {
	row := bmp.Row(y)
	if len(row) == 0 {
		return
	}

	// Advance through the first run; its length doubles as the
	// x-coordinate of the first transition.
	runColor := !row[0]
	first := 1
	for first < len(row) && row[first] != runColor {
		first++
	}
	if first == len(row) {
		return // uniform row
	}
	s.xBuf.Push(first)

	lastLen := first
	count := 1 // the transition pixel opens the new run

	for x := first + 1; x < len(row); x++ {
		px := row[x]
		if px == runColor {
			count++
			continue
		}

		// A run just completed.
		runColor = px
		s.xBuf.Push(x)
		s.ratioBuf.Push(float64(lastLen) / float64(count))
		lastLen = count
		count = 1

		// A full black-white-black-white-black window closes exactly when
		// the color moves from black back to white.
		if !runColor || !s.ratioBuf.Full() {
			continue
		}

		startX := s.xBuf.PeekOldest()
		if s.insideActive(*markers, startX, x) {
			continue
		}
		if !s.matchRatios() {
			continue
		}

		width := x - startX
		xMid := startX + width/2
		yMin, yMax, ok := s.confirmColumn(bmp, xMid, y, width)
		if !ok {
			continue
		}

		// The middle row has to match as well; this also fine-tunes the
		// horizontal extent against noise.
		yMid := yMin + (yMax-yMin)/2
		xMin, xMax, ok := s.confirmRow(bmp, xMid, yMid, width)
		if !ok {
			continue
		}

		s.active[len(*markers)] = struct{}{}
		*markers = append(*markers, geometry.NewMarker(xMin, yMin, xMid, yMid, xMax, yMax))
	}
}

// insideActive reports whether the candidate x-range [startX, endX] lies
// entirely within the x-range of a marker that is still active.
func (s *Scanner) insideActive(markers []geometry.Marker[int], startX, endX int) bool {
	for i := range s.active {
		m := markers[i]
		if startX >= m.Min.X && endX <= m.Max.X {
			return true
		}
	}
	return false
}

// matchRatios compares the ratio window against the expected signature.
func (s *Scanner) matchRatios() bool {
	i := 0
	for got := range s.ratioBuf.Values() {
		if d := got - s.cfg.Ratios[i]; d <= -s.cfg.Tolerance || d >= s.cfg.Tolerance {
			return false
		}
		i++
	}
	return true
}

// confirmColumn re-runs the run-ratio match vertically, walking the column
// at x outward from y in both directions. On success it returns the
// pattern's row extent [yMin, yMax), yMax exclusive.
func (s *Scanner) confirmColumn(bmp *bitmap.Bitmap, x, y, width int) (int, int, bool) {
	back := lineSeq(bmp, x, y-1, 0, -1, width)
	fwd := lineSeq(bmp, x, y, 0, 1, width)
	return s.confirmLine(back, fwd, y)
}

// confirmRow re-runs the run-ratio match horizontally at row y, walking
// outward from x. The walk spans half the candidate width plus 25% margin
// on each side.
func (s *Scanner) confirmRow(bmp *bitmap.Bitmap, x, y, width int) (int, int, bool) {
	span := width * 5 / 8
	back := lineSeq(bmp, x-1, y, -1, 0, span)
	fwd := lineSeq(bmp, x, y, 1, 0, span)
	return s.confirmLine(back, fwd, x)
}

// confirmLine matches one line of a finder pattern by iterating outward
// from the center in both directions, accumulating run sizes into the
// shared scratch. The backward sequence must start one pixel before mid;
// the forward sequence starts at mid itself. Returns the matched extent
// (min inclusive, max exclusive).
func (s *Scanner) confirmLine(back, fwd iter.Seq[bool], mid int) (int, int, bool) {
	sizes := s.sizes
	for i := range sizes {
		sizes[i] = 0
	}
	center := len(sizes) / 2

	idx := center
	color := false
	minC := mid
	for px := range back {
		if px != color {
			color = px
			if idx == 0 {
				break
			}
			idx--
		}
		sizes[idx]++
		minC--
	}

	idx = center
	color = false
	maxC := mid
	for px := range fwd {
		if px != color {
			color = px
			if idx == len(sizes)-1 {
				break
			}
			idx++
		}
		sizes[idx]++
		maxC++
	}

	// An unreached run keeps size 0; the float division then yields ±Inf
	// or NaN, which always misses the tolerance window.
	for i, want := range s.cfg.Ratios {
		got := float64(sizes[i]) / float64(sizes[i+1])
		if d := got - want; !(d > -s.cfg.Tolerance && d < s.cfg.Tolerance) {
			return 0, 0, false
		}
	}
	return minC, maxC, true
}

// lineSeq yields up to limit pixels from (x, y) stepping by (dx, dy),
// stopping early at the bitmap border.
func lineSeq(bmp *bitmap.Bitmap, x, y, dx, dy, limit int) iter.Seq[bool] {
	return func(yield func(bool) bool) {
		for i := 0; i < limit; i++ {
			px, ok := bmp.GetOK(x+i*dx, y+i*dy)
			if !ok {
				return
			}
			if !yield(px) {
				return
			}
		}
	}
}
