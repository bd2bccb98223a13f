package corners

import (
	"image"
	"math"
	"testing"

	"github.com/MeKo-Tech/qrloc/internal/geometry"
	"github.com/MeKo-Tech/qrloc/internal/scanner"
	"github.com/MeKo-Tech/qrloc/internal/testutil"
)

// boxMarker builds a marker with the given midpoint and a square box of the
// given half-width around it.
func boxMarker(x, y, half int) geometry.Marker[int] {
	return geometry.NewMarker(x-half, y-half, x, y, x+half, y+half)
}

func near(p geometry.Point[float64], x, y float64) bool {
	return math.Abs(p.X-x) < 1e-6 && math.Abs(p.Y-y) < 1e-6
}

func TestResolveRequiresThreeMarkers(t *testing.T) {
	markers := []geometry.Marker[int]{
		boxMarker(20, 20, 7),
		boxMarker(80, 20, 7),
		boxMarker(20, 80, 7),
		boxMarker(80, 80, 7),
	}

	for _, n := range []int{0, 1, 2, 4} {
		if _, ok := Resolve(markers[:n]); ok {
			t.Errorf("Resolve with %d markers: got corners, want absence", n)
		}
	}
}

func TestResolveAxisAligned(t *testing.T) {
	// Unrotated code: markers at the corners of an axis-aligned right
	// triangle. The resolved corners are the outer box corners.
	markers := []geometry.Marker[int]{
		boxMarker(20, 20, 7), // top-left
		boxMarker(80, 20, 7), // top-right
		boxMarker(20, 80, 7), // bottom-left
	}

	set, ok := Resolve(markers)
	if !ok {
		t.Fatal("Resolve returned absence for a clean axis-aligned triangle")
	}
	if !near(set.TopLeft, 13, 13) {
		t.Errorf("top-left = %v, want (13,13)", set.TopLeft)
	}
	if !near(set.TopRight, 87, 13) {
		t.Errorf("top-right = %v, want (87,13)", set.TopRight)
	}
	if !near(set.BotLeft, 13, 87) {
		t.Errorf("bottom-left = %v, want (13,87)", set.BotLeft)
	}
}

func TestResolveOrderIndependent(t *testing.T) {
	tl := boxMarker(20, 20, 7)
	tr := boxMarker(80, 20, 7)
	bl := boxMarker(20, 80, 7)

	perms := [][]geometry.Marker[int]{
		{tl, tr, bl}, {tl, bl, tr},
		{tr, tl, bl}, {tr, bl, tl},
		{bl, tl, tr}, {bl, tr, tl},
	}
	for i, p := range perms {
		set, ok := Resolve(p)
		if !ok {
			t.Fatalf("permutation %d: absence", i)
		}
		if !near(set.TopLeft, 13, 13) || !near(set.TopRight, 87, 13) || !near(set.BotLeft, 13, 87) {
			t.Errorf("permutation %d: corners %+v", i, set)
		}
	}
}

func TestResolveRejectsCollinearMarkers(t *testing.T) {
	markers := []geometry.Marker[int]{
		boxMarker(20, 20, 7),
		boxMarker(50, 50, 7),
		boxMarker(80, 80, 7),
	}
	if set, ok := Resolve(markers); ok {
		t.Errorf("collinear markers resolved to %+v, want absence", set)
	}
}

func TestResolveFromScannedBitmap(t *testing.T) {
	bmp := testutil.PatternBitmap(90, 90, 2,
		image.Pt(10, 10), image.Pt(60, 10), image.Pt(10, 60))
	defer bmp.Release()

	markers := scanner.New(scanner.DefaultConfig()).FindMarkers(bmp)
	set, ok := Resolve(markers)
	if !ok {
		t.Fatalf("absence for a 3-pattern bitmap (markers: %v)", markers)
	}
	if !near(set.TopLeft, 10, 10) {
		t.Errorf("top-left = %v, want (10,10)", set.TopLeft)
	}
	if !near(set.TopRight, 74, 10) {
		t.Errorf("top-right = %v, want (74,10)", set.TopRight)
	}
	if !near(set.BotLeft, 10, 74) {
		t.Errorf("bottom-left = %v, want (10,74)", set.BotLeft)
	}
}
