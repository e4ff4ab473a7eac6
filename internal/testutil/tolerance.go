package testutil

import (
	"fmt"
	"math"
	"testing"
)

// RequireSliceNearlyEqual fails t if got and want differ in length or if
// any pair differs by more than eps. eps 0 demands bit equality.
func RequireSliceNearlyEqual(t *testing.T, got, want []float64, eps float64) {
	t.Helper()

	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}

	for i := range got {
		if diff := math.Abs(got[i] - want[i]); diff > eps || math.IsNaN(diff) && !sameNaN(got[i], want[i]) {
			t.Fatalf("index %d: got %v, want %v (diff %v > eps %v)", i, got[i], want[i], diff, eps)
		}
	}
}

// RequirePlanesNearlyEqual is RequireSliceNearlyEqual over channel planes.
func RequirePlanesNearlyEqual(t *testing.T, got, want [][]float64, eps float64) {
	t.Helper()

	if len(got) != len(want) {
		t.Fatalf("channel mismatch: got %d, want %d", len(got), len(want))
	}

	for c := range got {
		if d, err := MaxAbsDiff(got[c], want[c]); err != nil || d > eps {
			t.Fatalf("channel %d: max diff %v > eps %v (err %v)", c, d, eps, err)
		}
	}
}

// RequireFinite fails t if any element is NaN or Inf.
func RequireFinite(t *testing.T, data []float64) {
	t.Helper()

	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("index %d: non-finite value %v", i, v)
		}
	}
}

// MaxAbsDiff returns the largest absolute difference between a and b.
func MaxAbsDiff(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("length mismatch: %d vs %d", len(a), len(b))
	}

	worst := 0.0
	for i := range a {
		worst = math.Max(worst, math.Abs(a[i]-b[i]))
	}

	return worst, nil
}

func sameNaN(a, b float64) bool {
	return math.IsNaN(a) && math.IsNaN(b)
}
