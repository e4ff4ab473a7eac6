package spatial

import vecmath "github.com/cwbudde/algo-vecmath"

// PanGains returns the left and right gains for a pan or balance position
// in [-1, 1]:
//
//	left  = 1 - max(0, pan)
//	right = 1 + min(0, pan)
func PanGains(pan float64) (left, right float64) {
	return 1 - max(0, pan), 1 + min(0, pan)
}

// Balance scales left and right in place by PanGains(balance).
// A centred balance leaves both buffers untouched.
func Balance(left, right []float64, balance float64) {
	lg, rg := PanGains(balance)

	if lg != 1 {
		vecmath.ScaleBlockInPlace(left, lg)
	}

	if rg != 1 {
		vecmath.ScaleBlockInPlace(right, rg)
	}
}
