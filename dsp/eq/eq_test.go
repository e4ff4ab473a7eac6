package eq

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-mix/dsp/buffer"
	"github.com/cwbudde/algo-mix/dsp/core"
	"github.com/cwbudde/algo-mix/internal/testutil"
)

const sr = 44100.0

func rms(x []float64) float64 {
	sum := 0.0
	for _, v := range x {
		sum += v * v
	}

	return math.Sqrt(sum / float64(len(x)))
}

func TestFlatIsBitIdentical(t *testing.T) {
	in := [][]float64{
		testutil.DeterministicNoise(1, 1.7, 512),
		testutil.DeterministicSine(440, sr, 0.5, 512),
	}
	planes := buffer.ClonePlanes(in)

	if err := Apply(planes, sr, Flat()); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	for c := range in {
		testutil.RequireSliceNearlyEqual(t, planes[c], in[c], 0)
	}
}

func TestDesignSkipsUnityBands(t *testing.T) {
	tests := []struct {
		name string
		g    Gains
		sr   float64
		want int
	}{
		{"flat", Flat(), sr, 0},
		{"low only", Gains{Low: 2, Mid: 1, High: 1}, sr, 1},
		{"all", Gains{Low: 0, Mid: 2, High: 0.5}, sr, 3},
		{"high above nyquist", Gains{Low: 1, Mid: 1, High: 2}, 8000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(Design(tt.g, tt.sr)); got != tt.want {
				t.Fatalf("len(Design) = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBandResponses(t *testing.T) {
	tests := []struct {
		name   string
		g      Gains
		freq   float64
		wantDB float64
	}{
		{"low boost", Gains{Low: 2, Mid: 1, High: 1}, 30, 6.02},
		{"mid cut", Gains{Low: 1, Mid: 0.5, High: 1}, 1000, -6.02},
		{"high boost", Gains{Low: 1, Mid: 1, High: 2}, 16000, 6.02},
		{"low kill", Gains{Low: 0, Mid: 1, High: 1}, 20, -60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := 0.0
			for _, c := range Design(tt.g, sr) {
				db += c.MagnitudeDB(tt.freq, sr)
			}

			if math.Abs(db-tt.wantDB) > 0.5 {
				t.Fatalf("gain at %v Hz = %.2f dB, want about %.2f", tt.freq, db, tt.wantDB)
			}
		})
	}
}

func TestKillLowAttenuatesBass(t *testing.T) {
	n := 8192
	planes := [][]float64{testutil.DeterministicSine(60, sr, 0.5, n)}
	before := rms(planes[0][n/2:])

	if err := Apply(planes, sr, Gains{Low: 0, Mid: 1, High: 1}); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	after := rms(planes[0][n/2:])
	if after > before*0.05 {
		t.Fatalf("rms after kill = %v, before = %v", after, before)
	}
}

func TestStageOutputClamped(t *testing.T) {
	planes := [][]float64{testutil.DeterministicSine(100, sr, 0.9, 4096)}

	if err := Apply(planes, sr, Gains{Low: 3, Mid: 3, High: 3}); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	for i, v := range planes[0] {
		if math.Abs(v) > 1 {
			t.Fatalf("sample %d = %v exceeds 1", i, v)
		}
	}
}

func TestBackendsAgree(t *testing.T) {
	in := testutil.DeterministicNoise(9, 0.3, 1000)
	g := Gains{Low: 1.5, Mid: 0.7, High: 2}

	auto := [][]float64{append([]float64(nil), in...)}
	generic := [][]float64{append([]float64(nil), in...)}

	if err := Apply(auto, sr, g, core.WithBackend(core.BackendAuto)); err != nil {
		t.Fatal(err)
	}

	if err := Apply(generic, sr, g, core.WithBackend(core.BackendGeneric)); err != nil {
		t.Fatal(err)
	}

	testutil.RequireSliceNearlyEqual(t, auto[0], generic[0], 1e-12)
}

func TestChannelsIndependent(t *testing.T) {
	sig := testutil.DeterministicNoise(4, 0.5, 256)
	planes := [][]float64{append([]float64(nil), sig...), append([]float64(nil), sig...)}

	bank, err := NewBank(Gains{Low: 2, Mid: 1, High: 0.5}, core.WithSampleRate(sr))
	if err != nil {
		t.Fatal(err)
	}

	bank.Process(planes)
	testutil.RequireSliceNearlyEqual(t, planes[1], planes[0], 0)

	if bank.Stages() != 2 {
		t.Fatalf("Stages() = %d, want 2", bank.Stages())
	}
}

func TestInvalidGains(t *testing.T) {
	for _, g := range []Gains{
		{Low: -1, Mid: 1, High: 1},
		{Low: 1, Mid: math.NaN(), High: 1},
		{Low: 1, Mid: 1, High: math.Inf(1)},
	} {
		if _, err := NewBank(g); !errors.Is(err, ErrInvalidGain) {
			t.Fatalf("NewBank(%+v) err = %v, want ErrInvalidGain", g, err)
		}
	}
}

func TestClamp(t *testing.T) {
	got := Gains{Low: -1, Mid: 5, High: 0.5}.Clamp()
	if got != (Gains{Low: 0, Mid: 3, High: 0.5}) {
		t.Fatalf("Clamp() = %+v", got)
	}
}

func BenchmarkApply(b *testing.B) {
	src := [][]float64{
		testutil.DeterministicNoise(1, 0.5, 44100),
		testutil.DeterministicNoise(2, 0.5, 44100),
	}
	g := Gains{Low: 1.5, Mid: 0.8, High: 1.2}
	b.ReportAllocs()

	for b.Loop() {
		planes := buffer.ClonePlanes(src)
		_ = Apply(planes, sr, g)
	}
}
