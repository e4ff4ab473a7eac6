// Package conv provides linear convolution with several interchangeable
// strategies:
//
//   - Direct: O(N*M) time-domain convolution, best for short kernels.
//   - Sparse: time-domain convolution that visits only non-zero kernel
//     taps, best for long kernels made of a few impulses (echo kernels).
//   - FFT overlap-add: block convolution via algo-fft, best for long dense
//     kernels.
//
// All strategies compute the same result up to floating-point rounding.
// [Convolve] returns the full N+M-1 result; [ConvolveTruncated] returns only
// the first N samples, the form used by feed-forward effects that must not
// change the signal length.
//
// # Algorithm Selection
//
// With [StrategyAuto], [SelectStrategy] picks:
//   - Direct for kernels up to 64 samples
//   - Sparse when the kernel has at most 64 non-zero taps
//   - FFT overlap-add otherwise
package conv
