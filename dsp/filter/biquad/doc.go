// Package biquad provides biquad (second-order IIR) filter runtime primitives.
//
// A [Section] implements Direct Form II Transposed processing for a single
// second-order section defined by [Coefficients]. Sections can be cascaded
// via [Chain], optionally clamping each stage's output the way whole-buffer
// filtering in the mixer expects.
//
// Block processing dispatches to a kernel chosen from the CPU features the
// configured [core.Backend] allows. Every kernel computes the same recurrence,
// so output does not depend on the backend beyond floating-point rounding.
//
// Coefficient design (shelves, peaking, pass filters) lives in dsp/filter/design.
package biquad
