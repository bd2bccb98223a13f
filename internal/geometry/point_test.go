package geometry

import (
	"math"
	"testing"
)

func TestDist(t *testing.T) {
	tests := []struct {
		a, b Point[float64]
		want float64
	}{
		{Pt(0.0, 0.0), Pt(3.0, 4.0), 5.0},
		{Pt(1.0, 1.0), Pt(1.0, 1.0), 0.0},
		{Pt(0.0, 0.0), Pt(1.0, 1.0), math.Sqrt2},
		{Pt(-2.0, -3.0), Pt(-2.0, 5.0), 8.0},
	}

	for _, tt := range tests {
		got := Dist(tt.a, tt.b)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Dist(%v, %v) = %f, want %f", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestAngle(t *testing.T) {
	tests := []struct {
		a, b Point[float64]
		want float64
	}{
		{Pt(0.0, 0.0), Pt(1.0, 0.0), 0},
		{Pt(0.0, 0.0), Pt(0.0, 1.0), math.Pi / 2},
		{Pt(0.0, 0.0), Pt(-1.0, 0.0), math.Pi},
		{Pt(0.0, 0.0), Pt(0.0, -1.0), -math.Pi / 2},
		{Pt(2.0, 2.0), Pt(3.0, 3.0), math.Pi / 4},
	}

	for _, tt := range tests {
		got := Angle(tt.a, tt.b)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Angle(%v, %v) = %f, want %f", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestPointToF64(t *testing.T) {
	p := Pt(3, 7).ToF64()
	if p.X != 3.0 || p.Y != 7.0 {
		t.Errorf("ToF64() = %v, want {3 7}", p)
	}
}

func TestIsFinite(t *testing.T) {
	if !Pt(1.0, 2.0).IsFinite() {
		t.Error("expected finite point")
	}
	if Pt(math.NaN(), 0.0).IsFinite() {
		t.Error("expected NaN point to be non-finite")
	}
	if Pt(0.0, math.Inf(1)).IsFinite() {
		t.Error("expected Inf point to be non-finite")
	}
}

func TestMarkerEdgeMidpoints(t *testing.T) {
	m := NewMarker(10, 20, 13, 23, 17, 27)

	if got := m.Up(); got != Pt(13, 20) {
		t.Errorf("Up() = %v, want {13 20}", got)
	}
	if got := m.Down(); got != Pt(13, 27) {
		t.Errorf("Down() = %v, want {13 27}", got)
	}
	if got := m.Left(); got != Pt(10, 23) {
		t.Errorf("Left() = %v, want {10 23}", got)
	}
	if got := m.Right(); got != Pt(17, 23) {
		t.Errorf("Right() = %v, want {17 23}", got)
	}
}
