//go:build fastmath

package core

// FastLog and FastExp approximation error.
const fastMathSlack = 5e-4
