//go:build !fastmath

package core

const fastMathSlack = 0.0
