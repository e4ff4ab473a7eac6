package conv

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-mix/dsp/core"
	vecmath "github.com/cwbudde/algo-vecmath"
)

// Errors returned by convolution functions.
var (
	ErrEmptyInput     = errors.New("conv: empty input")
	ErrEmptyKernel    = errors.New("conv: empty kernel")
	ErrLengthMismatch = errors.New("conv: buffer length mismatch")
	ErrStrategy       = errors.New("conv: unknown strategy")
)

const (
	// directMaxKernel is the longest kernel Auto convolves directly.
	directMaxKernel = 64
	// sparseMaxTaps is the most non-zero taps Auto convolves sparsely.
	sparseMaxTaps = 64
	// vectorMinKernel is the shortest kernel that uses block vector ops.
	vectorMinKernel = 4
)

// Strategy selects the convolution algorithm.
type Strategy int

const (
	// StrategyAuto picks a strategy from the kernel shape.
	StrategyAuto Strategy = iota
	// StrategyDirect forces time-domain convolution over every tap.
	StrategyDirect
	// StrategySparse forces time-domain convolution over non-zero taps.
	StrategySparse
	// StrategyFFT forces FFT overlap-add.
	StrategyFFT
)

func (s Strategy) String() string {
	switch s {
	case StrategyAuto:
		return "auto"
	case StrategyDirect:
		return "direct"
	case StrategySparse:
		return "sparse"
	case StrategyFFT:
		return "fft"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// Option configures a convolution call.
type Option func(*options)

type options struct {
	strategy Strategy
	backend  core.Backend
}

// WithStrategy forces a convolution strategy. Default is StrategyAuto.
func WithStrategy(s Strategy) Option {
	return func(o *options) { o.strategy = s }
}

// WithBackend selects vectorized (auto) or scalar (generic) inner loops
// for the direct and sparse strategies.
func WithBackend(b core.Backend) Option {
	return func(o *options) { o.backend = b }
}

func applyOptions(opts []Option) options {
	o := options{strategy: StrategyAuto, backend: core.BackendAuto}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return o
}

// SelectStrategy returns the strategy StrategyAuto resolves to for kernel.
func SelectStrategy(kernel []float64) Strategy {
	if len(kernel) <= directMaxKernel {
		return StrategyDirect
	}

	if countTaps(kernel, sparseMaxTaps+1) <= sparseMaxTaps {
		return StrategySparse
	}

	return StrategyFFT
}

// Convolve returns the full linear convolution of a and kernel, with
// length len(a)+len(kernel)-1.
func Convolve(a, kernel []float64, opts ...Option) ([]float64, error) {
	if err := checkInputs(a, kernel); err != nil {
		return nil, err
	}

	return convolve(a, kernel, len(a)+len(kernel)-1, applyOptions(opts))
}

// ConvolveTruncated returns the first len(a) samples of the linear
// convolution of a and kernel.
func ConvolveTruncated(a, kernel []float64, opts ...Option) ([]float64, error) {
	if err := checkInputs(a, kernel); err != nil {
		return nil, err
	}

	return convolve(a, kernel, len(a), applyOptions(opts))
}

func checkInputs(a, kernel []float64) error {
	if len(a) == 0 {
		return ErrEmptyInput
	}

	if len(kernel) == 0 {
		return ErrEmptyKernel
	}

	return nil
}

func convolve(a, kernel []float64, outLen int, o options) ([]float64, error) {
	strategy := o.strategy
	if strategy == StrategyAuto {
		strategy = SelectStrategy(kernel)
	}

	vector := o.backend != core.BackendGeneric

	switch strategy {
	case StrategyDirect:
		dst := make([]float64, outLen)
		directTo(dst, a, kernel, vector)

		return dst, nil
	case StrategySparse:
		dst := make([]float64, outLen)
		sparseTo(dst, a, Taps(kernel), vector)

		return dst, nil
	case StrategyFFT:
		oa, err := NewOverlapAdd(kernel, 0)
		if err != nil {
			return nil, err
		}

		full, err := oa.Process(a)
		if err != nil {
			return nil, err
		}

		return full[:outLen], nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrStrategy, strategy)
	}
}

// Direct performs direct time-domain linear convolution of a and b.
// Returns a new slice of length len(a) + len(b) - 1.
func Direct(a, b []float64) ([]float64, error) {
	return Convolve(a, b, WithStrategy(StrategyDirect))
}

// DirectTo convolves a and b into dst, which may be shorter than the full
// result; samples past len(dst) are discarded.
func DirectTo(dst, a, b []float64) {
	directTo(dst, a, b, true)
}

func directTo(dst, a, b []float64, vector bool) {
	core.Zero(dst)

	m := len(b)
	if !vector || m < vectorMinKernel {
		for i, x := range a {
			for j := 0; j < m && i+j < len(dst); j++ {
				dst[i+j] += x * b[j]
			}
		}

		return
	}

	temp := make([]float64, m)
	for i, x := range a {
		if i >= len(dst) {
			break
		}

		k := min(m, len(dst)-i)
		vecmath.ScaleBlock(temp[:k], b[:k], x)
		vecmath.AddBlockInPlace(dst[i:i+k], temp[:k])
	}
}
