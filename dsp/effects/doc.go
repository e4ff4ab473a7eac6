// Package effects provides the master color stage of the mixer.
//
// Color chains a high-pass low cut, tanh drive, a low-pass high cut and a
// hard ceiling. Each sub-stage is skipped at its neutral setting, so
// DefaultColorParams leaves audio bit-identical.
//
// Subpackages:
//   - github.com/cwbudde/algo-mix/dsp/effects/dynamics
//   - github.com/cwbudde/algo-mix/dsp/effects/spatial
package effects
