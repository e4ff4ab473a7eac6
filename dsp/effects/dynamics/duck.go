package dynamics

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-mix/dsp/core"
)

const (
	defaultDuckThreshold = 0.02
	defaultDuckRatio     = 4.0
	defaultDuckAttack    = 0.1
	defaultDuckRelease   = 0.5
	defaultDuckMakeup    = 1.0

	minDuckThreshold = 0.001
	maxDuckThreshold = 0.5
	minDuckRatio     = 1.1
	maxDuckRatio     = 20.0
	minDuckAttack    = 0.01
	maxDuckAttack    = 1.0
	minDuckRelease   = 0.01
	maxDuckRelease   = 2.0
	minDuckMakeup    = 1.0
	maxDuckMakeup    = 2.0

	// duckDepth scales the overshoot before it becomes attenuation.
	duckDepth = 2.0
)

// ErrInvalidDuck is returned for out-of-range ducking parameters.
var ErrInvalidDuck = errors.New("dynamics: invalid duck parameters")

// DuckParams configures sidechain ducking. Attack and Release are in seconds.
type DuckParams struct {
	Threshold float64 `json:"threshold"`
	Ratio     float64 `json:"ratio"`
	Attack    float64 `json:"attack"`
	Release   float64 `json:"release"`
	Makeup    float64 `json:"makeup"`
}

// DefaultDuckParams returns the default ducking settings.
func DefaultDuckParams() DuckParams {
	return DuckParams{
		Threshold: defaultDuckThreshold,
		Ratio:     defaultDuckRatio,
		Attack:    defaultDuckAttack,
		Release:   defaultDuckRelease,
		Makeup:    defaultDuckMakeup,
	}
}

// Clamp returns p with every field limited to its accepted range.
func (p DuckParams) Clamp() DuckParams {
	return DuckParams{
		Threshold: core.Clamp(p.Threshold, minDuckThreshold, maxDuckThreshold),
		Ratio:     core.Clamp(p.Ratio, minDuckRatio, maxDuckRatio),
		Attack:    core.Clamp(p.Attack, minDuckAttack, maxDuckAttack),
		Release:   core.Clamp(p.Release, minDuckRelease, maxDuckRelease),
		Makeup:    core.Clamp(p.Makeup, minDuckMakeup, maxDuckMakeup),
	}
}

// Validate checks every field against its range.
func (p DuckParams) Validate() error {
	checks := []struct {
		name   string
		v      float64
		lo, hi float64
	}{
		{"threshold", p.Threshold, minDuckThreshold, maxDuckThreshold},
		{"ratio", p.Ratio, minDuckRatio, maxDuckRatio},
		{"attack", p.Attack, minDuckAttack, maxDuckAttack},
		{"release", p.Release, minDuckRelease, maxDuckRelease},
		{"makeup", p.Makeup, minDuckMakeup, maxDuckMakeup},
	}

	for _, c := range checks {
		if !core.IsFinite(c.v) || c.v < c.lo || c.v > c.hi {
			return fmt.Errorf("%w: %s must be in [%g, %g]: %g", ErrInvalidDuck, c.name, c.lo, c.hi, c.v)
		}
	}

	return nil
}

// Duck attenuates music in place wherever voice is loud.
//
// The control signal is the mean absolute voice level across channels,
// zero-padded or truncated to the music length. It is smoothed by a
// centred moving average over the attack window, mapped to a gain of
// 1 - 2*(env-threshold)*(1-1/ratio) above the threshold, clamped to
// [0, 1], smoothed again over half the release window, and multiplied
// into every music channel together with the makeup gain.
func Duck(music, voice [][]float64, sampleRate float64, p DuckParams) error {
	if err := p.Validate(); err != nil {
		return err
	}

	if sampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be > 0: %g", ErrInvalidDuck, sampleRate)
	}

	gain := DuckGain(voice, musicLen(music), sampleRate, p)

	for _, ch := range music {
		for i := range ch {
			ch[i] *= gain[i] * p.Makeup
		}
	}

	return nil
}

// DuckGain returns the per-sample ducking gain (without makeup) that Duck
// would apply to a signal of length n.
func DuckGain(voice [][]float64, n int, sampleRate float64, p DuckParams) []float64 {
	control := make([]float64, n)
	if len(voice) > 0 {
		for _, ch := range voice {
			for i := 0; i < n && i < len(ch); i++ {
				x := ch[i]
				if x < 0 {
					x = -x
				}

				control[i] += x
			}
		}

		inv := 1 / float64(len(voice))
		for i := range control {
			control[i] *= inv
		}
	}

	env := control
	if k := oddWindow(sampleRate * p.Attack); k > 1 {
		env = movingAverage(control, k)
	}

	slope := duckDepth * (1 - 1/p.Ratio)
	gain := make([]float64, n)
	for i, e := range env {
		g := 1.0
		if e > p.Threshold {
			g = 1 - (e-p.Threshold)*slope
		}

		gain[i] = core.Clamp(g, 0, 1)
	}

	if p.Release > 0 {
		gain = movingAverage(gain, oddWindow(sampleRate*p.Release*0.5))
	}

	return gain
}

func musicLen(planes [][]float64) int {
	if len(planes) == 0 {
		return 0
	}

	return len(planes[0])
}

// oddWindow truncates samples to an integer window and rounds even sizes up.
func oddWindow(samples float64) int {
	k := int(samples)
	if k%2 == 0 {
		k++
	}

	return k
}

// movingAverage is a centred box filter of odd width k. Samples outside x
// count as zero and the divisor is always k.
func movingAverage(x []float64, k int) []float64 {
	n := len(x)
	out := make([]float64, n)
	if n == 0 {
		return out
	}

	prefix := make([]float64, n+1)
	for i, v := range x {
		prefix[i+1] = prefix[i] + v
	}

	half := k / 2
	inv := 1 / float64(k)
	for i := range out {
		lo := max(i-half, 0)
		hi := min(i+half+1, n)
		out[i] = (prefix[hi] - prefix[lo]) * inv
	}

	return out
}
