package eq

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-mix/dsp/core"
	"github.com/cwbudde/algo-mix/dsp/filter/biquad"
	"github.com/cwbudde/algo-mix/dsp/filter/design"
)

const (
	// LowFreq is the low-shelf corner frequency in Hz.
	LowFreq = 250.0
	// MidFreq is the peaking band centre frequency in Hz.
	MidFreq = 1000.0
	// HighFreq is the high-shelf corner frequency in Hz.
	HighFreq = 4000.0
	// BandQ is the quality factor shared by all three bands.
	BandQ = 0.707

	// MaxGain is the largest accepted linear band gain.
	MaxGain = 3.0
)

// ErrInvalidGain is returned for negative, NaN or infinite gains.
var ErrInvalidGain = errors.New("eq: invalid gain")

// Gains holds linear band gains.
type Gains struct {
	Low  float64 `json:"low"`
	Mid  float64 `json:"mid"`
	High float64 `json:"high"`
}

// Flat returns unity gains.
func Flat() Gains {
	return Gains{Low: 1, Mid: 1, High: 1}
}

// IsFlat reports whether all gains are exactly 1.
func (g Gains) IsFlat() bool {
	return g.Low == 1 && g.Mid == 1 && g.High == 1
}

// Clamp returns g with every gain limited to [0, MaxGain].
func (g Gains) Clamp() Gains {
	return Gains{
		Low:  core.Clamp(g.Low, 0, MaxGain),
		Mid:  core.Clamp(g.Mid, 0, MaxGain),
		High: core.Clamp(g.High, 0, MaxGain),
	}
}

// Validate reports gains no clamp can repair.
func (g Gains) Validate() error {
	for _, b := range []struct {
		name string
		v    float64
	}{{"low", g.Low}, {"mid", g.Mid}, {"high", g.High}} {
		if !core.IsFinite(b.v) || b.v < 0 {
			return fmt.Errorf("%w: %s=%v", ErrInvalidGain, b.name, b.v)
		}
	}

	return nil
}

// Design returns the biquad sections for g at sampleRate, omitting bands
// whose gain is exactly 1 or whose corner lies at or above Nyquist.
func Design(g Gains, sampleRate float64) []biquad.Coefficients {
	coeffs := make([]biquad.Coefficients, 0, 3)

	add := func(c biquad.Coefficients) {
		if !c.IsZero() {
			coeffs = append(coeffs, c)
		}
	}

	if g.Low != 1 {
		add(design.LowShelf(LowFreq, core.GainToDB(g.Low), BandQ, sampleRate))
	}

	if g.Mid != 1 {
		add(design.Peak(MidFreq, core.GainToDB(g.Mid), BandQ, sampleRate))
	}

	if g.High != 1 {
		add(design.HighShelf(HighFreq, core.GainToDB(g.High), BandQ, sampleRate))
	}

	return coeffs
}

// Bank applies a fixed three-band setting. Each stage output is clamped
// to [-1, 1]. A Bank is not safe for concurrent use.
type Bank struct {
	gains Gains
	chain *biquad.Chain
}

// NewBank designs a bank for g at the configured sample rate and backend.
func NewBank(g Gains, opts ...core.ProcessorOption) (*Bank, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	cfg := core.ApplyProcessorOptions(opts...)

	chain := biquad.NewChain(Design(g, cfg.SampleRate), biquad.WithBackend(cfg.Backend))
	chain.SetStageLimit(1)

	return &Bank{gains: g, chain: chain}, nil
}

// Gains returns the configured gains.
func (b *Bank) Gains() Gains { return b.gains }

// Stages returns the number of active filter stages.
func (b *Bank) Stages() int { return b.chain.NumSections() }

// Process filters every plane in place, each from zero state.
func (b *Bank) Process(planes [][]float64) {
	if b.gains.IsFlat() {
		return
	}

	b.chain.ProcessPlanes(planes)
}

// Apply filters planes in place with a freshly designed bank.
func Apply(planes [][]float64, sampleRate float64, g Gains, opts ...core.ProcessorOption) error {
	if g.IsFlat() {
		return nil
	}

	opts = append([]core.ProcessorOption{core.WithSampleRate(sampleRate)}, opts...)

	bank, err := NewBank(g, opts...)
	if err != nil {
		return err
	}

	bank.Process(planes)

	return nil
}
