package testutil

import (
	"testing"

	"github.com/cwbudde/algo-mix/dsp/buffer"
)

// Audio builds a batch-one buffer from float64 channels.
func Audio(sampleRate int, channels ...[]float64) buffer.Audio {
	item := make([][]float32, len(channels))
	for c, ch := range channels {
		item[c] = Float32s(ch)
	}

	return buffer.FromSamples(sampleRate, item...)
}

// Float32s narrows samples to float32.
func Float32s(x []float64) []float32 {
	out := make([]float32, len(x))
	for i, v := range x {
		out[i] = float32(v)
	}

	return out
}

// Float64s widens samples to float64.
func Float64s(x []float32) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = float64(v)
	}

	return out
}

// RequireAudioNearlyEqual fails t unless got and want share sample rate
// and shape and every sample is within eps.
func RequireAudioNearlyEqual(t *testing.T, got, want buffer.Audio, eps float64) {
	t.Helper()

	if got.SampleRate != want.SampleRate {
		t.Fatalf("sample rate: got %d, want %d", got.SampleRate, want.SampleRate)
	}

	if got.Batch() != want.Batch() {
		t.Fatalf("batch: got %d, want %d", got.Batch(), want.Batch())
	}

	for b := range got.Waveform {
		if len(got.Waveform[b]) != len(want.Waveform[b]) {
			t.Fatalf("batch %d channels: got %d, want %d", b, len(got.Waveform[b]), len(want.Waveform[b]))
		}

		for c := range got.Waveform[b] {
			g := Float64s(got.Waveform[b][c])
			w := Float64s(want.Waveform[b][c])

			if d, err := MaxAbsDiff(g, w); err != nil || d > eps {
				t.Fatalf("batch %d channel %d: max diff %v > eps %v (err %v)", b, c, d, eps, err)
			}
		}
	}
}
