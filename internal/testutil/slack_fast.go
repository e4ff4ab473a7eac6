//go:build fastmath

package testutil

// FastMathSlack is extra absolute tolerance for values computed through the
// dB and tanh helpers of dsp/core. It covers the approximation error of
// FastLog (about 1.1e-4 dB) and FastExp.
const FastMathSlack = 5e-4
