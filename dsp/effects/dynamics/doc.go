// Package dynamics provides the memoryless gate and compressor used by the
// mixer, plus a sidechain ducker.
//
// Included processors:
//   - Gate: hard gate that zeroes samples not strictly above its threshold.
//   - Compressor: static compressor with a ratio, threshold and makeup gain
//     all derived from a single 0..1 amount. It has no attack or release.
//   - Duck: sidechain ducking of one signal by the envelope of another,
//     using centred moving averages for attack and release smoothing.
//
// All processors operate in place on float64 channel planes.
package dynamics
