//go:build fastmath

package core

import (
	"math"

	"github.com/meko-christian/algo-approx"
)

const (
	ln10 = 2.30258509299404568401799145468436421

	// Beyond this |x| tanh is 1 to double precision.
	tanhSaturation = 19.0
)

// mathLog10 computes log10(x) using fast approximation.
// Uses the identity: log10(x) = ln(x) / ln(10)
func mathLog10(x float64) float64 {
	return approx.FastLog(x) / ln10
}

// mathPow10 computes 10^x using fast approximation.
func mathPow10(x float64) float64 {
	return approx.FastExp(x * ln10)
}

// mathTanh computes tanh(x) = (e^2x - 1) / (e^2x + 1) using fast exp.
func mathTanh(x float64) float64 {
	if x > tanhSaturation {
		return 1
	}

	if x < -tanhSaturation {
		return -1
	}

	e := approx.FastExp(2 * x)
	if math.IsInf(e, 1) {
		return 1
	}

	return (e - 1) / (e + 1)
}
