//go:build !fastmath

package core

import "math"

// mathLog10 computes log10(x) using standard library math.
func mathLog10(x float64) float64 {
	return math.Log10(x)
}

// mathPow10 computes 10^x using standard library math.
func mathPow10(x float64) float64 {
	return math.Pow(10, x)
}

// mathTanh computes tanh(x) using standard library math.
func mathTanh(x float64) float64 {
	return math.Tanh(x)
}
