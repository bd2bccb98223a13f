package pipeline

import (
	"context"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/qrloc/internal/testutil"
)

func threeMarkerImage() *image.Gray {
	return testutil.PatternImage(90, 90, 2,
		image.Pt(10, 10), image.Pt(60, 10), image.Pt(10, 60))
}

func TestScanFullPipeline(t *testing.T) {
	p := NewBuilder().Build()
	res := p.Scan(threeMarkerImage())
	defer res.Release()

	require.Len(t, res.Markers, 3)
	require.NotNil(t, res.Corners)
	assert.InDelta(t, 10, res.Corners.TopLeft.X, 1e-6)
	assert.InDelta(t, 10, res.Corners.TopLeft.Y, 1e-6)
	assert.InDelta(t, 74, res.Corners.TopRight.X, 1e-6)
	assert.InDelta(t, 74, res.Corners.BotLeft.Y, 1e-6)

	require.NotNil(t, res.Rectified)
	assert.Equal(t, 64, res.Rectified.Width())
	assert.Equal(t, 64, res.Rectified.Height())
	// Top-left of the rectified output is the first marker's border.
	assert.False(t, res.Rectified.Get(0, 0))

	assert.Equal(t, 90, res.Width)
	assert.Equal(t, 90, res.Height)
	assert.Positive(t, res.Duration)
}

func TestScanPartialView(t *testing.T) {
	p := NewBuilder().Build()

	// Two markers: detection is incomplete, not an error.
	res := p.Scan(testutil.PatternImage(90, 90, 2, image.Pt(10, 10), image.Pt(60, 10)))
	defer res.Release()

	assert.Len(t, res.Markers, 2)
	assert.Nil(t, res.Corners)
	assert.Nil(t, res.Rectified)
}

func TestScanEmptyFrame(t *testing.T) {
	p := NewBuilder().Build()
	res := p.Scan(testutil.PatternImage(64, 64, 1))
	defer res.Release()

	assert.Empty(t, res.Markers)
	assert.Nil(t, res.Corners)
	assert.Nil(t, res.Rectified)
}

func TestScanRectifyDisabled(t *testing.T) {
	p := NewBuilder().WithRectify(false).Build()
	res := p.Scan(threeMarkerImage())
	defer res.Release()

	require.NotNil(t, res.Corners)
	assert.Nil(t, res.Rectified)
}

func TestScanBitmapKeepsOwnership(t *testing.T) {
	bmp := testutil.PatternBitmap(90, 90, 2,
		image.Pt(10, 10), image.Pt(60, 10), image.Pt(10, 60))
	defer bmp.Release()

	p := NewBuilder().Build()
	res := p.ScanBitmap(bmp)
	defer res.Release()
	require.Len(t, res.Markers, 3)

	// The input bitmap is still usable afterwards.
	assert.False(t, bmp.Get(10, 10))
}

func TestBuilderOverrides(t *testing.T) {
	p := NewBuilder().
		WithStride(1).
		WithTolerance(0.5).
		WithParallel(ParallelConfig{MaxWorkers: 2}).
		Build()

	cfg := p.Config()
	assert.Equal(t, 1, cfg.Scan.Stride)
	assert.InDelta(t, 0.5, cfg.Scan.Tolerance, 0)
	assert.Equal(t, 2, cfg.Parallel.MaxWorkers)

	// Invalid values keep the defaults.
	cfg = NewBuilder().WithStride(0).WithTolerance(-1).Build().Config()
	assert.Equal(t, 4, cfg.Scan.Stride)
	assert.InDelta(t, 0.65, cfg.Scan.Tolerance, 0)
}

func TestStreamClosesResults(t *testing.T) {
	frames := make(chan image.Image, 2)
	results := make(chan *ScanResult, 2)

	frames <- threeMarkerImage()
	frames <- testutil.PatternImage(64, 64, 1)
	close(frames)

	NewBuilder().Build().Stream(frames, results)

	first, ok := <-results
	require.True(t, ok)
	assert.Len(t, first.Markers, 3)
	first.Release()

	second, ok := <-results
	require.True(t, ok)
	assert.Empty(t, second.Markers)
	second.Release()

	_, ok = <-results
	assert.False(t, ok, "results channel should be closed after frames close")
}

func TestSubmitEveryThrottles(t *testing.T) {
	src := make(chan image.Image, 6)
	dst := make(chan image.Image, 6)

	imgs := make([]image.Image, 6)
	for i := range imgs {
		imgs[i] = image.NewGray(image.Rect(0, 0, 1, 1))
		src <- imgs[i]
	}
	close(src)

	SubmitEvery(2, src, dst)

	var got []image.Image
	for img := range dst {
		got = append(got, img)
	}
	require.Len(t, got, 3)
	assert.Same(t, imgs[0], got[0])
	assert.Same(t, imgs[2], got[1])
	assert.Same(t, imgs[4], got[2])
}

func TestScanAllParallelPreservesOrder(t *testing.T) {
	images := []image.Image{
		threeMarkerImage(),
		testutil.PatternImage(64, 64, 1),
		testutil.PatternImage(90, 90, 2, image.Pt(10, 10)),
		threeMarkerImage(),
		testutil.PatternImage(64, 64, 1),
	}

	p := NewBuilder().Build()
	results, err := p.ScanAllParallel(context.Background(), images, ParallelConfig{MaxWorkers: 4})
	require.NoError(t, err)
	require.Len(t, results, len(images))

	wantMarkers := []int{3, 0, 1, 3, 0}
	for i, res := range results {
		require.NotNil(t, res, "result %d", i)
		assert.Len(t, res.Markers, wantMarkers[i], "result %d", i)
		res.Release()
	}
}

func TestScanAllParallelEmptyInput(t *testing.T) {
	_, err := NewBuilder().Build().ScanAllParallel(context.Background(), nil, ParallelConfig{})
	assert.Error(t, err)
}

func TestScanAllParallelCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	images := []image.Image{threeMarkerImage(), threeMarkerImage()}
	_, err := NewBuilder().Build().ScanAllParallel(ctx, images, ParallelConfig{MaxWorkers: 2})
	assert.Error(t, err)
}

func TestScanResultReleaseIdempotent(t *testing.T) {
	res := NewBuilder().Build().Scan(threeMarkerImage())
	require.NotNil(t, res.Rectified)
	res.Release()
	res.Release() // second call is a no-op
	assert.Nil(t, res.Rectified)
}
