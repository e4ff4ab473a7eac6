// Package levels meters finished audio: per-channel peak, RMS and crest
// factor, and integrated loudness after ITU-R BS.1770.
//
// Loudness is measured offline over the whole buffer. Channels are
// K-weighted, cut into 400 ms blocks with 75 % overlap, and gated first at
// -70 LUFS and then 10 LU below the mean of the surviving blocks. A buffer
// shorter than one block, or one with no block above the absolute gate,
// reports -Inf.
package levels
