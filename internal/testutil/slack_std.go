//go:build !fastmath

package testutil

// FastMathSlack is extra absolute tolerance for values computed through the
// dB and tanh helpers of dsp/core. It is zero for the standard math build.
const FastMathSlack = 0.0
