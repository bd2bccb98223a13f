package pipeline

import (
	"image"
	"log/slog"
	"time"

	"github.com/MeKo-Tech/qrloc/internal/binarize"
	"github.com/MeKo-Tech/qrloc/internal/bitmap"
	"github.com/MeKo-Tech/qrloc/internal/corners"
	"github.com/MeKo-Tech/qrloc/internal/geometry"
	"github.com/MeKo-Tech/qrloc/internal/rectify"
)

// ScanResult is the outcome of scanning one frame. Markers may hold any
// count including zero; Corners and Rectified are only set when exactly
// three markers resolved into a usable geometry.
type ScanResult struct {
	Markers   []geometry.Marker[int] `json:"markers"`
	Corners   *corners.Set           `json:"corners,omitempty"`
	Rectified *bitmap.Bitmap         `json:"-"`

	Width    int           `json:"width"`
	Height   int           `json:"height"`
	Duration time.Duration `json:"durationNs"`
}

// Release returns the result's rectified bitmap to the buffer pool. Safe
// to call when no rectified output was produced.
func (r *ScanResult) Release() {
	if r.Rectified != nil {
		r.Rectified.Release()
		r.Rectified = nil
	}
}

// Scan binarizes a decoded image and scans it. The frame passes through
// every stage synchronously on the calling goroutine.
func (p *Pipeline) Scan(img image.Image) *ScanResult {
	start := time.Now()
	bmp := binarize.FromImage(img)
	defer bmp.Release()

	res := p.scanBitmap(bmp)
	res.Duration = time.Since(start)
	return res
}

// ScanBitmap scans an already-binarized frame. The caller keeps ownership
// of the bitmap.
func (p *Pipeline) ScanBitmap(bmp *bitmap.Bitmap) *ScanResult {
	start := time.Now()
	res := p.scanBitmap(bmp)
	res.Duration = time.Since(start)
	return res
}

func (p *Pipeline) scanBitmap(bmp *bitmap.Bitmap) *ScanResult {
	res := &ScanResult{
		Width:  bmp.Width(),
		Height: bmp.Height(),
	}

	res.Markers = p.scanner.FindMarkers(bmp)
	slog.Debug("Marker scan completed",
		"width", res.Width, "height", res.Height, "markers", len(res.Markers))

	set, ok := corners.Resolve(res.Markers)
	if !ok {
		// Routine: the code is not fully in view, or the geometry is
		// degenerate.
		return res
	}
	res.Corners = &set
	slog.Debug("Corners resolved",
		"topLeft", set.TopLeft, "topRight", set.TopRight, "botLeft", set.BotLeft)

	if !p.cfg.Rectify {
		return res
	}
	if out, ok := rectify.Rectify(bmp, set); ok {
		res.Rectified = out
		slog.Debug("Frame rectified", "side", out.Width())
	}
	return res
}
