package biquad

import "github.com/cwbudde/algo-mix/dsp/core"

// Chain is an ordered cascade of biquad sections processed in series.
//
// When a stage limit is set, each section's output is clamped to
// [-limit, limit] before it feeds the next section. Whole-buffer tone
// controls in the mixer run with a limit of 1.
type Chain struct {
	sections []Section
	limit    float64
}

// NewChain creates a cascade from zero or more coefficient sets.
// Each Coefficients value becomes one Section in the cascade.
func NewChain(coeffs []Coefficients, opts ...Option) *Chain {
	o := applyOptions(opts)
	k := kernelFor(o.backend)

	c := &Chain{sections: make([]Section, len(coeffs))}
	for i := range coeffs {
		c.sections[i].Coefficients = coeffs[i]
		c.sections[i].kernel = k
	}

	return c
}

// SetStageLimit enables per-stage output clamping. A limit <= 0 disables it.
func (c *Chain) SetStageLimit(limit float64) {
	c.limit = limit
}

// StageLimit returns the per-stage clamp, or 0 when disabled.
func (c *Chain) StageLimit() float64 { return c.limit }

// ProcessBlock filters a block in-place through the full cascade.
func (c *Chain) ProcessBlock(buf []float64) {
	for i := range c.sections {
		c.sections[i].ProcessBlock(buf)
		if c.limit > 0 {
			core.ClampBlock(buf, c.limit)
		}
	}
}

// ProcessPlanes filters every plane independently, resetting state before each.
func (c *Chain) ProcessPlanes(planes [][]float64) {
	for _, p := range planes {
		c.Reset()
		c.ProcessBlock(p)
	}
}

// Reset clears all section states.
func (c *Chain) Reset() {
	for i := range c.sections {
		c.sections[i].Reset()
	}
}

// NumSections returns the number of biquad sections.
func (c *Chain) NumSections() int {
	return len(c.sections)
}

// Section returns a pointer to the i-th section for inspection.
func (c *Chain) Section(i int) *Section {
	return &c.sections[i]
}

// MagnitudeDB returns the cascaded small-signal magnitude response in dB.
func (c *Chain) MagnitudeDB(freqHz, sampleRate float64) float64 {
	db := 0.0
	for i := range c.sections {
		db += c.sections[i].MagnitudeDB(freqHz, sampleRate)
	}

	return db
}
