package spatial

import (
	"fmt"
	"math"

	vecmath "github.com/cwbudde/algo-vecmath"
)

const (
	defaultWidenerWidth = 1.0

	minWidenerWidth = 0.0
	maxWidenerWidth = 2.0
)

// StereoWidenerOption mutates stereo widener construction parameters.
type StereoWidenerOption func(*stereoWidenerConfig) error

type stereoWidenerConfig struct {
	width float64
}

// WithWidth sets the stereo width factor.
// 0 = mono, 1 = unchanged, 2 = side signal doubled.
func WithWidth(width float64) StereoWidenerOption {
	return func(cfg *stereoWidenerConfig) error {
		if width < minWidenerWidth || width > maxWidenerWidth ||
			math.IsNaN(width) || math.IsInf(width, 0) {
			return fmt.Errorf("stereo widener width must be in [%g, %g]: %f",
				minWidenerWidth, maxWidenerWidth, width)
		}

		cfg.width = width

		return nil
	}
}

// StereoWidener adjusts the width of a stereo image using mid/side processing.
//
// Left and right are encoded into mid = (L+R)/2 and side = (L-R)/2, the side
// signal is scaled by the width, and the pair is decoded back as mid+side
// and mid-side. It holds no signal state.
type StereoWidener struct {
	width float64
	mid   []float64
}

// NewStereoWidener creates a widener with width 1 unless overridden.
func NewStereoWidener(opts ...StereoWidenerOption) (*StereoWidener, error) {
	cfg := stereoWidenerConfig{width: defaultWidenerWidth}

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	return &StereoWidener{width: cfg.width}, nil
}

// Width returns the configured width.
func (w *StereoWidener) Width() float64 { return w.width }

// ProcessStereo widens one sample pair.
func (w *StereoWidener) ProcessStereo(left, right float64) (float64, float64) {
	mid := (left + right) * 0.5
	side := (left - right) * 0.5 * w.width

	return mid + side, mid - side
}

// ProcessStereoInPlace widens paired left/right buffers in place. Both
// buffers must have the same length. Width 1 leaves them untouched.
func (w *StereoWidener) ProcessStereoInPlace(left, right []float64) error {
	if len(left) != len(right) {
		return fmt.Errorf("stereo widener: left and right buffers must have equal length: %d != %d",
			len(left), len(right))
	}

	if w.width == 1 {
		return nil
	}

	if cap(w.mid) < len(left) {
		w.mid = make([]float64, len(left))
	}

	mid := w.mid[:len(left)]
	vecmath.AddMulBlock(mid, left, right, 0.5)

	for i, m := range mid {
		side := (left[i] - right[i]) * 0.5 * w.width
		left[i] = m + side
		right[i] = m - side
	}

	return nil
}
