// Package delay implements the feed-forward multi-tap echo of the mixer's
// channel strip.
//
// The echo is a finite impulse response: taps at multiples of the delay
// time with amplitudes feedback^i. [Apply] convolves whole buffers through
// dsp/conv and keeps the input length.
package delay
