// Package design provides RBJ "Audio EQ Cookbook" biquad coefficient
// designers for the tone controls and colour filters of the mixer.
//
// Each designer returns [biquad.Coefficients] normalized to a0 = 1. Invalid
// input (non-positive sample rate, frequency outside (0, Nyquist)) yields the
// zero Coefficients value, which callers detect with IsZero and skip.
package design
