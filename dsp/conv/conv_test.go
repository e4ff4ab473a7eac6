package conv

import (
	"errors"
	"testing"

	"github.com/cwbudde/algo-mix/dsp/core"
	"github.com/cwbudde/algo-mix/internal/testutil"
)

func TestDirectKnownValues(t *testing.T) {
	got, err := Direct([]float64{1, 2, 3}, []float64{0, 1, 0.5})
	if err != nil {
		t.Fatal(err)
	}

	testutil.RequireSliceNearlyEqual(t, got, []float64{0, 1, 2.5, 4, 1.5}, 1e-15)
}

func TestEmptyInputs(t *testing.T) {
	if _, err := Convolve(nil, []float64{1}); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("err = %v, want ErrEmptyInput", err)
	}

	if _, err := ConvolveTruncated([]float64{1}, nil); !errors.Is(err, ErrEmptyKernel) {
		t.Fatalf("err = %v, want ErrEmptyKernel", err)
	}

	if _, err := Convolve([]float64{1}, []float64{1}, WithStrategy(Strategy(42))); !errors.Is(err, ErrStrategy) {
		t.Fatalf("err = %v, want ErrStrategy", err)
	}
}

func TestStrategiesAgree(t *testing.T) {
	tests := []struct {
		name   string
		signal []float64
		kernel []float64
	}{
		{"short dense", testutil.DeterministicNoise(1, 1, 300), testutil.DeterministicNoise(2, 1, 7)},
		{"long dense", testutil.DeterministicNoise(3, 1, 1500), testutil.DeterministicNoise(4, 0.1, 700)},
		{"echo", testutil.DeterministicNoise(5, 1, 2000), echoKernel(333, 0.5, 4)},
		{"kernel longer than signal", testutil.DeterministicNoise(6, 1, 50), echoKernel(40, 0.9, 3)},
	}

	strategies := []Strategy{StrategyDirect, StrategySparse, StrategyFFT, StrategyAuto}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want, err := Convolve(tt.signal, tt.kernel, WithStrategy(StrategyDirect), WithBackend(core.BackendGeneric))
			if err != nil {
				t.Fatal(err)
			}

			for _, s := range strategies {
				got, err := Convolve(tt.signal, tt.kernel, WithStrategy(s))
				if err != nil {
					t.Fatalf("%v: %v", s, err)
				}

				testutil.RequireSliceNearlyEqual(t, got, want, 1e-9)

				trunc, err := ConvolveTruncated(tt.signal, tt.kernel, WithStrategy(s))
				if err != nil {
					t.Fatalf("%v: %v", s, err)
				}

				testutil.RequireSliceNearlyEqual(t, trunc, want[:len(tt.signal)], 1e-9)
			}
		})
	}
}

func TestSelectStrategy(t *testing.T) {
	tests := []struct {
		name   string
		kernel []float64
		want   Strategy
	}{
		{"short", make([]float64, 64), StrategyDirect},
		{"echo", echoKernel(1000, 0.4, 16), StrategySparse},
		{"dense", testutil.DeterministicNoise(1, 1, 65), StrategyFFT},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SelectStrategy(tt.kernel); got != tt.want {
				t.Fatalf("SelectStrategy = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTaps(t *testing.T) {
	taps := Taps([]float64{1, 0, 0, 0.5, 0, 0.25})
	want := []Tap{{0, 1}, {3, 0.5}, {5, 0.25}}

	if len(taps) != len(want) {
		t.Fatalf("len = %d, want %d", len(taps), len(want))
	}

	for i := range want {
		if taps[i] != want[i] {
			t.Fatalf("tap %d = %+v, want %+v", i, taps[i], want[i])
		}
	}
}

func TestOverlapAddOddBlockCount(t *testing.T) {
	kernel := testutil.DeterministicNoise(8, 1, 20)
	signal := testutil.DeterministicNoise(9, 1, 3*64+5)

	oa, err := NewOverlapAdd(kernel, 64)
	if err != nil {
		t.Fatal(err)
	}

	if oa.BlockSize() != 64 || oa.KernelLen() != 20 || oa.FFTSize() != 128 {
		t.Fatalf("block=%d kernel=%d fft=%d", oa.BlockSize(), oa.KernelLen(), oa.FFTSize())
	}

	got, err := oa.Process(signal)
	if err != nil {
		t.Fatal(err)
	}

	want, _ := Direct(signal, kernel)
	testutil.RequireSliceNearlyEqual(t, got, want, 1e-9)
}

func echoKernel(d int, fb float64, echoes int) []float64 {
	k := make([]float64, d*echoes+1)
	amp := 1.0
	for i := 0; i <= echoes; i++ {
		k[i*d] = amp
		amp *= fb
	}

	return k
}

func BenchmarkConvolveTruncatedEcho(b *testing.B) {
	signal := testutil.DeterministicNoise(1, 1, 44100)
	kernel := echoKernel(15435, 0.4, 4)

	for _, s := range []Strategy{StrategySparse, StrategyFFT} {
		b.Run(s.String(), func(b *testing.B) {
			b.ReportAllocs()

			for b.Loop() {
				_, _ = ConvolveTruncated(signal, kernel, WithStrategy(s))
			}
		})
	}
}
