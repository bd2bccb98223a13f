package utils

import (
	"image"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/qrloc/internal/testutil"
)

func TestIsSupportedImage(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"frame.png", true},
		{"frame.PNG", true},
		{"frame.jpg", true},
		{"frame.jpeg", true},
		{"frame.bmp", true},
		{"frame.gif", false},
		{"frame", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsSupportedImage(tt.path), tt.path)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	src := testutil.PatternImage(40, 40, 2, image.Pt(5, 5))
	path := filepath.Join(t.TempDir(), "frame.png")

	require.NoError(t, SaveImage(src, path))

	img, meta, err := LoadImage(path)
	require.NoError(t, err)
	assert.Equal(t, "png", meta.Format)
	assert.Equal(t, 40, meta.Width)
	assert.Equal(t, 40, meta.Height)
	assert.Positive(t, meta.SizeBytes)

	// Spot-check pattern pixels survived the round trip.
	r, _, _, _ := img.At(5, 5).RGBA()
	assert.Zero(t, r, "pattern border should be black")
	r, _, _, _ = img.At(0, 0).RGBA()
	assert.Equal(t, uint32(0xffff), r, "background should be white")
}

func TestLoadImageErrors(t *testing.T) {
	_, _, err := LoadImage("")
	assert.Error(t, err)

	_, _, err = LoadImage("frame.gif")
	assert.Error(t, err)

	_, _, err = LoadImage(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)

	var perr *ImageProcessingError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "load", perr.Operation)
}

func TestSaveImageNil(t *testing.T) {
	err := SaveImage(nil, filepath.Join(t.TempDir(), "out.png"))
	assert.Error(t, err)
}

func TestBatchLoadImages(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.png")
	require.NoError(t, SaveImage(testutil.PatternImage(10, 10, 1), good))

	results := BatchLoadImages([]string{good, filepath.Join(dir, "missing.png")})
	require.Len(t, results, 2)
	assert.NoError(t, results[0].Err)
	assert.NotNil(t, results[0].Img)
	assert.Error(t, results[1].Err)
}
