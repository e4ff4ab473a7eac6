package biquad

import (
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-mix/dsp/core"
)

// Coefficients holds the transfer function coefficients for a single
// second-order section (biquad). a0 is normalized to 1 and not stored.
//
// The sign convention follows Direct Form II Transposed:
//
//	y  = B0*x + d0
//	d0 = B1*x - A1*y + d1
//	d1 = B2*x - A2*y
type Coefficients struct {
	B0, B1, B2 float64 // feedforward (numerator)
	A1, A2     float64 // feedback (denominator)
}

// IsZero reports whether c is the zero value designers return for invalid input.
func (c Coefficients) IsZero() bool {
	return c == Coefficients{}
}

// Response computes the complex frequency response H(e^jw) at freqHz.
func (c Coefficients) Response(freqHz, sampleRate float64) complex128 {
	w := 2 * math.Pi * freqHz / sampleRate
	ejw := cmplx.Exp(complex(0, -w))
	ej2w := cmplx.Exp(complex(0, -2*w))

	num := complex(c.B0, 0) + complex(c.B1, 0)*ejw + complex(c.B2, 0)*ej2w
	den := complex(1, 0) + complex(c.A1, 0)*ejw + complex(c.A2, 0)*ej2w

	return num / den
}

// MagnitudeDB returns 20*log10(|H(f)|).
func (c Coefficients) MagnitudeDB(freqHz, sampleRate float64) float64 {
	return 20 * math.Log10(cmplx.Abs(c.Response(freqHz, sampleRate)))
}

// Option configures a Section or Chain.
type Option func(*options)

type options struct {
	backend core.Backend
}

// WithBackend selects the block kernel family. Default is core.BackendAuto.
func WithBackend(b core.Backend) Option {
	return func(o *options) { o.backend = b }
}

func applyOptions(opts []Option) options {
	o := options{backend: core.BackendAuto}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return o
}

// Section is a single biquad filter with coefficients and internal state.
type Section struct {
	Coefficients

	d0, d1 float64
	kernel kernelEntry
}

// NewSection returns a Section initialized with the given coefficients
// and zero state.
func NewSection(c Coefficients, opts ...Option) *Section {
	o := applyOptions(opts)
	return &Section{Coefficients: c, kernel: kernelFor(o.backend)}
}

// ProcessSample filters one input sample and returns the output.
func (s *Section) ProcessSample(x float64) float64 {
	y := s.B0*x + s.d0
	s.d0 = s.B1*x - s.A1*y + s.d1
	s.d1 = s.B2*x - s.A2*y

	return y
}

// ProcessBlock filters a block of samples in-place. Zero-alloc.
func (s *Section) ProcessBlock(buf []float64) {
	if s.kernel.process == nil {
		s.kernel = kernelFor(core.BackendAuto)
	}

	s.d0, s.d1 = s.kernel.process(s.Coefficients, s.d0, s.d1, buf)
}

// Kernel returns the name of the block kernel in use.
func (s *Section) Kernel() string {
	return s.kernel.name
}

// Reset clears the delay line to zero.
func (s *Section) Reset() {
	s.d0 = 0
	s.d1 = 0
}

// State returns the current delay-line state [d0, d1].
func (s *Section) State() [2]float64 {
	return [2]float64{s.d0, s.d1}
}
