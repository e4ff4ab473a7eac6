// Package testutil holds deterministic test signals and tolerance
// assertions shared by the DSP and mixer tests.
package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine returns length samples of amplitude*sin(2*pi*f*n/fs).
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	step := 2 * math.Pi * freqHz / sampleRate

	return generate(length, func(i int) float64 {
		return amplitude * math.Sin(step*float64(i))
	})
}

// DeterministicNoise returns uniform noise in [-amplitude, amplitude)
// from a fixed seed.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	rng := rand.New(rand.NewSource(seed))

	return generate(length, func(int) float64 {
		return (rng.Float64()*2 - 1) * amplitude
	})
}

// Impulse returns a unit impulse at pos. An out-of-range pos yields silence.
func Impulse(length, pos int) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}

	return out
}

// DC returns a constant signal.
func DC(value float64, length int) []float64 {
	return generate(length, func(int) float64 { return value })
}

// Ones returns n samples of 1.
func Ones(n int) []float64 {
	return DC(1, n)
}

func generate(length int, fn func(i int) float64) []float64 {
	out := make([]float64, max(length, 0))
	for i := range out {
		out[i] = fn(i)
	}

	return out
}
