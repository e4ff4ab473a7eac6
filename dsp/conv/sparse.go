package conv

import vecmath "github.com/cwbudde/algo-vecmath"

// Tap is one non-zero kernel coefficient.
type Tap struct {
	Offset int
	Gain   float64
}

// Taps returns the non-zero coefficients of kernel in offset order.
func Taps(kernel []float64) []Tap {
	taps := make([]Tap, 0, countTaps(kernel, len(kernel)))
	for i, g := range kernel {
		if g != 0 {
			taps = append(taps, Tap{Offset: i, Gain: g})
		}
	}

	return taps
}

// SparseTo convolves a with the kernel described by taps into dst.
// Samples past len(dst) are discarded.
func SparseTo(dst, a []float64, taps []Tap) {
	sparseTo(dst, a, taps, true)
}

func sparseTo(dst, a []float64, taps []Tap, vector bool) {
	for i := range dst {
		dst[i] = 0
	}

	var temp []float64
	if vector {
		temp = make([]float64, len(a))
	}

	for _, tap := range taps {
		if tap.Offset >= len(dst) {
			continue
		}

		n := min(len(a), len(dst)-tap.Offset)
		out := dst[tap.Offset : tap.Offset+n]

		if !vector {
			for i, x := range a[:n] {
				out[i] += tap.Gain * x
			}

			continue
		}

		vecmath.ScaleBlock(temp[:n], a[:n], tap.Gain)
		vecmath.AddBlockInPlace(out, temp[:n])
	}
}

// countTaps counts non-zero coefficients, stopping early at limit.
func countTaps(kernel []float64, limit int) int {
	n := 0
	for _, g := range kernel {
		if g != 0 {
			n++
			if n >= limit {
				return n
			}
		}
	}

	return n
}
