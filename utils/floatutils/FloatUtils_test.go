package floatutils

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r1"
)

func TestClip(t *testing.T) {
	if got := Clip(1.5, -1.0, 1.0); got != 1.0 {
		t.Errorf("clip: got %v, want 1.0", got)
	}
	if got := Clip(-1.5, -1.0, 1.0); got != -1.0 {
		t.Errorf("clip: got %v, want -1.0", got)
	}
	if got := Clip(0.25, -1.0, 1.0); got != 0.25 {
		t.Errorf("clip: got %v, want 0.25", got)
	}
}

func TestClipInterval(t *testing.T) {
	interval := r1.Interval{Min: -0.5, Max: 0.5}
	if got := ClipInterval(2.0, interval); got != 0.5 {
		t.Errorf("clipInterval: got %v, want 0.5", got)
	}
}

func TestClipSlice(t *testing.T) {
	values := []float64{-20.0, 0.0, 20.0}
	clipped := ClipSlice(values, -10.0, 10.0)

	want := []float64{-10.0, 0.0, 10.0}
	for i := range want {
		if clipped[i] != want[i] {
			t.Errorf("clipSlice: index %v got %v, want %v", i, clipped[i],
				want[i])
		}
	}

	// Argument slice is left unmodified
	if values[0] != -20.0 || values[2] != 20.0 {
		t.Error("clipSlice: should not modify its argument")
	}
}

func TestLegal(t *testing.T) {
	if !Legal(0.0) || !Legal(-13.2) {
		t.Error("legal: finite values should be legal")
	}
	if Legal(math.NaN()) {
		t.Error("legal: NaN should not be legal")
	}
	if Legal(math.Inf(1)) || Legal(math.Inf(-1)) {
		t.Error("legal: ±Inf should not be legal")
	}
}

func TestMinMax(t *testing.T) {
	if got := Min(3.0, -1.0, 2.0); got != -1.0 {
		t.Errorf("min: got %v, want -1.0", got)
	}
	if got := Max(3.0, -1.0, 2.0); got != 3.0 {
		t.Errorf("max: got %v, want 3.0", got)
	}
}
