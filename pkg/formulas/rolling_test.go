package formulas

import (
	"math"
	"testing"
)

func TestRollingMean(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5}

	got := RollingMean(data, 2)
	// Leading partial window backfilled with the first complete value
	want := []float64{1.5, 1.5, 2.5, 3.5, 4.5}

	if len(got) != len(want) {
		t.Fatalf("Expected %d values, got %d", len(want), len(got))
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > epsilon {
			t.Errorf("Index %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestRollingStdDev(t *testing.T) {
	data := []float64{1, 3, 1, 3}

	got := RollingStdDev(data, 2)
	if len(got) != len(data) {
		t.Fatalf("Expected %d values, got %d", len(data), len(got))
	}

	// Every window {1,3} or {3,1} has population stddev 1
	for i, v := range got {
		if math.Abs(v-1) > epsilon {
			t.Errorf("Index %d: expected 1, got %v", i, v)
		}
	}
}

func TestRollingWindowBounds(t *testing.T) {
	if RollingMean([]float64{1, 2, 3}, 1) != nil {
		t.Error("Expected nil for window < 2")
	}
	if RollingMean([]float64{1, 2}, 3) != nil {
		t.Error("Expected nil when the series is shorter than the window")
	}
	if RollingStdDev([]float64{1}, 2) != nil {
		t.Error("Expected nil when the series is shorter than the window")
	}
}
