// Package eq implements the three-band serial tone control used by mixer
// channel strips and the master bus.
//
// Gains are linear multipliers: 1 leaves a band untouched, values at or
// below 0.001 kill the band at a -60 dB floor. Bands run in series as a
// 250 Hz low shelf, a 1 kHz peaking filter and a 4 kHz high shelf, all at
// Q 0.707. When every gain is exactly 1 the input is returned unmodified.
package eq
