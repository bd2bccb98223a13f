package scanner

import (
	"image"
	"testing"

	"github.com/MeKo-Tech/qrloc/internal/geometry"
	"github.com/MeKo-Tech/qrloc/internal/testutil"
)

func TestFindMarkersExactPattern(t *testing.T) {
	// One-pixel modules, pattern top-left at (10, 8).
	bmp := testutil.PatternBitmap(40, 30, 1, image.Pt(10, 8))
	defer bmp.Release()

	markers := New(DefaultConfig()).FindMarkers(bmp)
	if len(markers) != 1 {
		t.Fatalf("found %d markers, want 1", len(markers))
	}

	m := markers[0]
	if m.Min != geometry.Pt(10, 8) || m.Max != geometry.Pt(17, 15) {
		t.Errorf("box = %v..%v, want (10,8)..(17,15)", m.Min, m.Max)
	}
	if m.Mid != geometry.Pt(13, 11) {
		t.Errorf("mid = %v, want (13,11)", m.Mid)
	}
}

func TestFindMarkersLargerModules(t *testing.T) {
	tests := []struct {
		name           string
		module, x0, y0 int
		w, h           int
	}{
		{"module2", 2, 10, 10, 60, 60},
		{"module3", 3, 12, 9, 70, 60},
		{"module4", 4, 5, 17, 80, 80},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bmp := testutil.PatternBitmap(tt.w, tt.h, tt.module, image.Pt(tt.x0, tt.y0))
			defer bmp.Release()

			markers := New(DefaultConfig()).FindMarkers(bmp)
			if len(markers) != 1 {
				t.Fatalf("found %d markers, want 1", len(markers))
			}

			side := 7 * tt.module
			m := markers[0]
			if m.Min != geometry.Pt(tt.x0, tt.y0) {
				t.Errorf("min = %v, want (%d,%d)", m.Min, tt.x0, tt.y0)
			}
			if m.Max != geometry.Pt(tt.x0+side, tt.y0+side) {
				t.Errorf("max = %v, want (%d,%d)", m.Max, tt.x0+side, tt.y0+side)
			}
			if m.Mid != geometry.Pt(tt.x0+side/2, tt.y0+side/2) {
				t.Errorf("mid = %v, want (%d,%d)", m.Mid, tt.x0+side/2, tt.y0+side/2)
			}
		})
	}
}

func TestFindMarkersThreeCorners(t *testing.T) {
	bmp := testutil.PatternBitmap(90, 90, 2,
		image.Pt(10, 10), image.Pt(60, 10), image.Pt(10, 60))
	defer bmp.Release()

	markers := New(DefaultConfig()).FindMarkers(bmp)
	if len(markers) != 3 {
		t.Fatalf("found %d markers, want 3", len(markers))
	}

	wantMins := []geometry.Point[int]{
		geometry.Pt(10, 10), geometry.Pt(60, 10), geometry.Pt(10, 60),
	}
	for i, want := range wantMins {
		if markers[i].Min != want {
			t.Errorf("marker %d min = %v, want %v", i, markers[i].Min, want)
		}
	}
}

func TestFindMarkersDuplicateSuppression(t *testing.T) {
	// Stride 1 revisits every signature row of the pattern; the active-set
	// containment check must collapse them to a single marker.
	bmp := testutil.PatternBitmap(50, 50, 3, image.Pt(11, 13))
	defer bmp.Release()

	cfg := DefaultConfig()
	cfg.Stride = 1
	markers := New(cfg).FindMarkers(bmp)
	if len(markers) != 1 {
		t.Fatalf("found %d markers, want 1", len(markers))
	}
}

func TestFindMarkersStackedPatterns(t *testing.T) {
	// Two patterns in the same columns, one below the other. Once the scan
	// passes the first box the marker retires and the second is reported.
	bmp := testutil.PatternBitmap(40, 80, 2, image.Pt(10, 4), image.Pt(10, 40))
	defer bmp.Release()

	cfg := DefaultConfig()
	cfg.Stride = 1
	markers := New(cfg).FindMarkers(bmp)
	if len(markers) != 2 {
		t.Fatalf("found %d markers, want 2", len(markers))
	}
	if markers[0].Min.Y != 4 || markers[1].Min.Y != 40 {
		t.Errorf("marker rows = %d, %d; want 4, 40",
			markers[0].Min.Y, markers[1].Min.Y)
	}
}

func TestFindMarkersNoneOnPlainInput(t *testing.T) {
	bmp := testutil.PatternBitmap(64, 64, 1) // all white
	defer bmp.Release()

	s := New(DefaultConfig())
	if got := s.FindMarkers(bmp); len(got) != 0 {
		t.Errorf("all-white bitmap: found %d markers, want 0", len(got))
	}

	// Alternating 1px stripes have ratio signature 1:1:1:1, not 1:1:3:1.
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			bmp.Set(x, y, x%2 == 0)
		}
	}
	if got := s.FindMarkers(bmp); len(got) != 0 {
		t.Errorf("striped bitmap: found %d markers, want 0", len(got))
	}
}

func TestFindMarkersRejectsWrongRatios(t *testing.T) {
	// Five equal-width runs: matches 1:1:1:1:1 instead of 1:1:3:1:1.
	bmp := testutil.PatternBitmap(60, 30, 1) // all white
	defer bmp.Release()
	for y := 8; y < 20; y++ {
		for _, span := range [][2]int{{10, 14}, {18, 22}, {26, 30}} {
			for x := span[0]; x < span[1]; x++ {
				bmp.Set(x, y, false)
			}
		}
	}

	cfg := DefaultConfig()
	cfg.Stride = 1
	if got := New(cfg).FindMarkers(bmp); len(got) != 0 {
		t.Errorf("equal-run input: found %d markers, want 0", len(got))
	}
}

func TestFindMarkersScannerIsReusable(t *testing.T) {
	s := New(DefaultConfig())

	bmp1 := testutil.PatternBitmap(40, 30, 1, image.Pt(10, 8))
	defer bmp1.Release()
	if got := s.FindMarkers(bmp1); len(got) != 1 {
		t.Fatalf("first frame: %d markers, want 1", len(got))
	}

	bmp2 := testutil.PatternBitmap(40, 30, 1) // empty frame
	defer bmp2.Release()
	if got := s.FindMarkers(bmp2); len(got) != 0 {
		t.Fatalf("second frame: %d markers, want 0 (stale state?)", len(got))
	}

	bmp3 := testutil.PatternBitmap(40, 30, 1, image.Pt(4, 4))
	defer bmp3.Release()
	if got := s.FindMarkers(bmp3); len(got) != 1 {
		t.Fatalf("third frame: %d markers, want 1", len(got))
	}
}

func TestConfigDefaultsApplied(t *testing.T) {
	s := New(Config{})
	if s.cfg.Stride != 4 || s.cfg.Tolerance != 0.65 || len(s.cfg.Ratios) != 4 {
		t.Errorf("zero config not defaulted: %+v", s.cfg)
	}
}
