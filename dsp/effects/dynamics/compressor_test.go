package dynamics

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-mix/internal/testutil"
)

func TestCompressorDerivedParameters(t *testing.T) {
	tests := []struct {
		amount             float64
		thresholdDB, ratio float64
		makeup             float64
	}{
		{0.2, -10, 1.8, 1.1},
		{0.5, -17.5, 3, 1.25},
		{1, -30, 5, 1.5},
	}

	for _, tt := range tests {
		c, err := NewCompressor(tt.amount)
		if err != nil {
			t.Fatal(err)
		}

		if math.Abs(c.ThresholdDB()-tt.thresholdDB) > 1e-12 ||
			math.Abs(c.Ratio()-tt.ratio) > 1e-12 ||
			math.Abs(c.MakeupGain()-tt.makeup) > 1e-12 {
			t.Fatalf("amount %v: got thr=%v ratio=%v makeup=%v", tt.amount, c.ThresholdDB(), c.Ratio(), c.MakeupGain())
		}

		if want := math.Pow(10, tt.thresholdDB/20); math.Abs(c.Threshold()-want) > 1e-12+testutil.FastMathSlack {
			t.Fatalf("linear threshold = %v, want %v", c.Threshold(), want)
		}
	}
}

func TestCompressorEarlyOutSkipsMakeup(t *testing.T) {
	c, err := NewCompressor(1)
	if err != nil {
		t.Fatal(err)
	}

	// -30 dBFS is about 0.0316; keep everything below it.
	in := testutil.DeterministicSine(440, 44100, 0.03, 512)
	planes := [][]float64{append([]float64(nil), in...)}

	if c.Process(planes) {
		t.Fatal("Process reported compression for a signal below threshold")
	}

	testutil.RequireSliceNearlyEqual(t, planes[0], in, 0)
}

func TestCompressorReducesOvershoot(t *testing.T) {
	c, err := NewCompressor(0.5)
	if err != nil {
		t.Fatal(err)
	}

	thr := c.Threshold()
	planes := [][]float64{{0.9, -0.9, thr / 2}}

	if !c.Process(planes) {
		t.Fatal("Process did not compress")
	}

	over := 0.9 - thr
	want := 0.9 * (1 - over*(1-1/c.Ratio())/(0.9+1e-6)) * c.MakeupGain()

	testutil.RequireSliceNearlyEqual(t, planes[0], []float64{want, -want, thr / 2 * c.MakeupGain()}, 1e-12)

	if want >= 0.9*c.MakeupGain() {
		t.Fatalf("compressed peak %v not reduced", want)
	}
}

func TestCompressorBatchWideDecision(t *testing.T) {
	c, err := NewCompressor(1)
	if err != nil {
		t.Fatal(err)
	}

	quiet := [][]float64{{0.01, 0.01}}
	loud := [][]float64{{0.5, 0.5}}

	if !c.ProcessBatch([][][]float64{quiet, loud}) {
		t.Fatal("batch with a loud item should be compressed")
	}

	// The quiet item has no overshoot but still receives makeup gain.
	testutil.RequireSliceNearlyEqual(t, quiet[0], []float64{0.015, 0.015}, 1e-15)
}
