package delay

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-mix/dsp/conv"
	"github.com/cwbudde/algo-mix/dsp/core"
)

const (
	defaultTime     = 0.35
	defaultFeedback = 0.4
	defaultMix      = 0.0
	defaultEchoes   = 4

	minTime     = 0.01
	maxTime     = 2.0
	maxFeedback = 0.95
	minEchoes   = 1
	maxEchoes   = 16

	// Mix at or below mixFloor, or time at or below timeFloor, bypasses the echo.
	mixFloor  = 0.01
	timeFloor = 0.001
)

var (
	// ErrInvalidEchoes is returned when the echo count is not positive.
	ErrInvalidEchoes = errors.New("delay: echo count must be > 0")
	// ErrInvalidParam is returned for non-finite parameters.
	ErrInvalidParam = errors.New("delay: invalid parameter")
)

// Params configures the echo. Time is in seconds.
type Params struct {
	Time     float64 `json:"time"`
	Feedback float64 `json:"feedback"`
	Mix      float64 `json:"mix"`
	Echoes   int     `json:"echoes"`
}

// DefaultParams returns the channel strip defaults (echo disabled by zero mix).
func DefaultParams() Params {
	return Params{
		Time:     defaultTime,
		Feedback: defaultFeedback,
		Mix:      defaultMix,
		Echoes:   defaultEchoes,
	}
}

// Clamp returns p with every field limited to its accepted range. A time
// at or below the bypass floor is kept so the echo stays bypassed.
func (p Params) Clamp() Params {
	time := p.Time
	if time > timeFloor {
		time = core.Clamp(time, minTime, maxTime)
	}

	echoes := p.Echoes
	if echoes < minEchoes {
		echoes = minEchoes
	} else if echoes > maxEchoes {
		echoes = maxEchoes
	}

	return Params{
		Time:     time,
		Feedback: core.Clamp(p.Feedback, 0, maxFeedback),
		Mix:      core.Clamp(p.Mix, 0, 1),
		Echoes:   echoes,
	}
}

// Validate reports values no clamp can repair.
func (p Params) Validate() error {
	if p.Echoes <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidEchoes, p.Echoes)
	}

	for _, f := range []struct {
		name string
		v    float64
	}{{"time", p.Time}, {"feedback", p.Feedback}, {"mix", p.Mix}} {
		if !core.IsFinite(f.v) {
			return fmt.Errorf("%w: %s=%v", ErrInvalidParam, f.name, f.v)
		}
	}

	return nil
}

// IsBypass reports whether Apply leaves buffers at sampleRate untouched.
func (p Params) IsBypass(sampleRate float64) bool {
	return p.Mix <= mixFloor || p.Time <= timeFloor || DelaySamples(p.Time, sampleRate) == 0
}

// DelaySamples converts a delay time to whole samples, truncating.
func DelaySamples(time, sampleRate float64) int {
	return int(time * sampleRate)
}

// Kernel returns the echo impulse response for a tap spacing of d samples:
// length d*echoes+1, value feedback^i at index i*d and zero elsewhere.
func Kernel(d int, feedback float64, echoes int) []float64 {
	if d <= 0 || echoes < 0 {
		return []float64{1}
	}

	kernel := make([]float64, d*echoes+1)

	amp := 1.0
	for i := 0; i <= echoes; i++ {
		kernel[i*d] = amp
		amp *= feedback
	}

	return kernel
}

// Apply mixes the echo into every plane in place:
//
//	out = dry*(1-mix) + wet*mix
//
// where wet is the kernel convolution truncated to the input length.
// Bypassed parameters leave the planes bit-identical.
func Apply(planes [][]float64, sampleRate float64, p Params, opts ...conv.Option) error {
	if p.IsBypass(sampleRate) {
		return nil
	}

	if err := p.Validate(); err != nil {
		return err
	}

	kernel := Kernel(DelaySamples(p.Time, sampleRate), p.Feedback, p.Echoes)
	dry := 1 - p.Mix

	for c, plane := range planes {
		if len(plane) == 0 {
			continue
		}

		wet, err := conv.ConvolveTruncated(plane, kernel, opts...)
		if err != nil {
			return fmt.Errorf("delay: channel %d: %w", c, err)
		}

		for i, x := range plane {
			plane[i] = x*dry + wet[i]*p.Mix
		}
	}

	return nil
}
