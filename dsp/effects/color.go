package effects

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-mix/dsp/core"
	"github.com/cwbudde/algo-mix/dsp/filter/biquad"
	"github.com/cwbudde/algo-mix/dsp/filter/design"
)

const (
	defaultColorLoCut   = 20.0
	defaultColorDrive   = 0.0
	defaultColorHiCut   = 20000.0
	defaultColorCeiling = 1.0

	minColorLoCut   = 20.0
	maxColorLoCut   = 200.0
	minColorHiCut   = 8000.0
	maxColorHiCut   = 20000.0
	minColorCeiling = 0.1
	maxColorCeiling = 1.0

	colorFilterQ = design.DefaultQ
)

// ErrInvalidColor is returned for NaN or infinite color parameters.
var ErrInvalidColor = errors.New("effects: invalid color parameter")

// ColorParams configures the master color stage.
//
// LoCut is a high-pass corner in Hz, active above 20 Hz. Drive in [0, 1]
// adds tanh saturation. HiCut is a low-pass corner in Hz, active below
// 20 kHz. Ceiling in [0.1, 1] hard-clips the result when below 1.
type ColorParams struct {
	LoCut   float64 `json:"locut"`
	Drive   float64 `json:"drive"`
	HiCut   float64 `json:"hicut"`
	Ceiling float64 `json:"ceiling"`
}

// DefaultColorParams returns a color setting that leaves audio untouched.
func DefaultColorParams() ColorParams {
	return ColorParams{
		LoCut:   defaultColorLoCut,
		Drive:   defaultColorDrive,
		HiCut:   defaultColorHiCut,
		Ceiling: defaultColorCeiling,
	}
}

// Clamp returns p with every field limited to its range.
func (p ColorParams) Clamp() ColorParams {
	return ColorParams{
		LoCut:   core.Clamp(p.LoCut, minColorLoCut, maxColorLoCut),
		Drive:   core.Clamp(p.Drive, 0, 1),
		HiCut:   core.Clamp(p.HiCut, minColorHiCut, maxColorHiCut),
		Ceiling: core.Clamp(p.Ceiling, minColorCeiling, maxColorCeiling),
	}
}

// Validate reports parameters no clamp can repair.
func (p ColorParams) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{{"locut", p.LoCut}, {"drive", p.Drive}, {"hicut", p.HiCut}, {"ceiling", p.Ceiling}} {
		if !core.IsFinite(f.v) {
			return fmt.Errorf("%w: %s=%v", ErrInvalidColor, f.name, f.v)
		}
	}

	return nil
}

// IsBypass reports whether every color sub-stage is inactive.
func (p ColorParams) IsBypass() bool {
	return p.LoCut <= defaultColorLoCut && p.Drive <= 0 &&
		p.HiCut >= defaultColorHiCut && p.Ceiling >= defaultColorCeiling
}

// Color runs low cut, drive, high cut and ceiling in that order. Filter
// stage outputs are clamped to [-1, 1]. A Color is not safe for
// concurrent use.
type Color struct {
	params ColorParams
	loCut  *biquad.Chain
	hiCut  *biquad.Chain
}

// NewColor designs the color filters for p at the configured sample rate.
func NewColor(p ColorParams, opts ...core.ProcessorOption) (*Color, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	cfg := core.ApplyProcessorOptions(opts...)
	c := &Color{params: p}

	if p.LoCut > defaultColorLoCut {
		c.loCut = newClampedChain(design.Highpass(p.LoCut, colorFilterQ, cfg.SampleRate), cfg.Backend)
	}

	if p.HiCut < defaultColorHiCut {
		c.hiCut = newClampedChain(design.Lowpass(p.HiCut, colorFilterQ, cfg.SampleRate), cfg.Backend)
	}

	return c, nil
}

func newClampedChain(coeffs biquad.Coefficients, backend core.Backend) *biquad.Chain {
	if coeffs.IsZero() {
		return nil
	}

	chain := biquad.NewChain([]biquad.Coefficients{coeffs}, biquad.WithBackend(backend))
	chain.SetStageLimit(1)

	return chain
}

// Params returns the configured parameters.
func (c *Color) Params() ColorParams { return c.params }

// Process colors every plane in place. Filters start from zero state on
// each plane.
func (c *Color) Process(planes [][]float64) {
	if c.loCut != nil {
		c.loCut.ProcessPlanes(planes)
	}

	if c.params.Drive > 0 {
		for _, p := range planes {
			Saturate(p, c.params.Drive)
		}
	}

	if c.hiCut != nil {
		c.hiCut.ProcessPlanes(planes)
	}

	if c.params.Ceiling < defaultColorCeiling {
		for _, p := range planes {
			core.ClampBlock(p, c.params.Ceiling)
		}
	}
}

// Saturate applies tanh drive in place:
//
//	boost = 1 + 3*drive
//	y     = tanh(x*boost) / boost * (1 + 0.5*drive)
//
// Drive <= 0 leaves buf untouched.
func Saturate(buf []float64, drive float64) {
	if drive <= 0 {
		return
	}

	boost := 1 + 3*drive
	post := (1 + 0.5*drive) / boost

	for i, x := range buf {
		buf[i] = core.Tanh(x*boost) * post
	}
}

// ApplyColor colors planes in place with a freshly designed stage.
func ApplyColor(planes [][]float64, sampleRate float64, p ColorParams, opts ...core.ProcessorOption) error {
	if err := p.Validate(); err != nil {
		return err
	}

	if p.IsBypass() {
		return nil
	}

	opts = append([]core.ProcessorOption{core.WithSampleRate(sampleRate)}, opts...)

	c, err := NewColor(p, opts...)
	if err != nil {
		return err
	}

	c.Process(planes)

	return nil
}
