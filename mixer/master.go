package mixer

import (
	vecmath "github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-mix/dsp/core"
	"github.com/cwbudde/algo-mix/dsp/effects"
	"github.com/cwbudde/algo-mix/dsp/effects/dynamics"
	"github.com/cwbudde/algo-mix/dsp/effects/spatial"
	"github.com/cwbudde/algo-mix/dsp/eq"
)

const (
	// DefaultMasterVolume is the unity master fader.
	DefaultMasterVolume = 1.0
	// MaxMasterVolume is the largest accepted master fader gain.
	MaxMasterVolume = 2.0
	// MaxWidth is the widest accepted stereo width.
	MaxWidth = 2.0
)

// MasterConfig holds the master bus controls.
type MasterConfig struct {
	Volume  float64
	Gate    float64
	Comp    float64
	EQ      eq.Gains
	Balance float64
	Width   float64
	Drive   float64
	LoCut   float64
	HiCut   float64
	Ceiling float64
}

// DefaultMaster returns master settings that leave the summed mix
// untouched apart from the final clamp.
func DefaultMaster() MasterConfig {
	c := effects.DefaultColorParams()

	return MasterConfig{
		Volume:  DefaultMasterVolume,
		EQ:      eq.Flat(),
		Width:   1,
		Drive:   c.Drive,
		LoCut:   c.LoCut,
		HiCut:   c.HiCut,
		Ceiling: c.Ceiling,
	}
}

// Color returns the color stage parameters.
func (m MasterConfig) Color() effects.ColorParams {
	return effects.ColorParams{LoCut: m.LoCut, Drive: m.Drive, HiCut: m.HiCut, Ceiling: m.Ceiling}
}

// Dynamics returns the gate and compressor amounts.
func (m MasterConfig) Dynamics() dynamics.Params {
	return dynamics.Params{Gate: m.Gate, Comp: m.Comp}
}

// Clamp returns a copy of m with every control limited to its range.
func (m MasterConfig) Clamp() MasterConfig {
	c := m.Color().Clamp()
	d := m.Dynamics().Clamp()

	return MasterConfig{
		Volume:  core.Clamp(m.Volume, 0, MaxMasterVolume),
		Gate:    d.Gate,
		Comp:    d.Comp,
		EQ:      m.EQ.Clamp(),
		Balance: core.Clamp(m.Balance, -1, 1),
		Width:   core.Clamp(m.Width, 0, MaxWidth),
		Drive:   c.Drive,
		LoCut:   c.LoCut,
		HiCut:   c.HiCut,
		Ceiling: c.Ceiling,
	}
}

// Validate reports non-finite controls.
func (m MasterConfig) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"volume", m.Volume},
		{"gate", m.Gate},
		{"comp", m.Comp},
		{"eq.low", m.EQ.Low},
		{"eq.mid", m.EQ.Mid},
		{"eq.high", m.EQ.High},
		{"balance", m.Balance},
		{"width", m.Width},
		{"drive", m.Drive},
		{"locut", m.LoCut},
		{"hicut", m.HiCut},
		{"ceiling", m.Ceiling},
	} {
		if !core.IsFinite(f.v) {
			return &ConfigurationError{Field: f.name, Track: MasterTrack, Value: f.v, Reason: "must be finite"}
		}
	}

	return nil
}

// MasterBus processes the summed stereo mix: color, dynamics, EQ, width,
// balance, then volume with a hard clamp to [-1, 1].
type MasterBus struct {
	backend core.Backend
}

// NewMasterBus returns a master bus using the configured backend.
func NewMasterBus(opts ...core.ProcessorOption) *MasterBus {
	return &MasterBus{backend: core.ApplyProcessorOptions(opts...).Backend}
}

// Process runs the master chain in place over stereo batch items and
// returns how many samples the final clamp limited. The compressor's
// threshold check spans the whole batch.
func (m *MasterBus) Process(items [][][]float64, sampleRate float64, cfg MasterConfig) (int, error) {
	opts := []core.ProcessorOption{core.WithSampleRate(sampleRate), core.WithBackend(m.backend)}

	color := cfg.Color()
	if !color.IsBypass() {
		c, err := effects.NewColor(color, opts...)
		if err != nil {
			return 0, &ComputeError{Component: "color", Track: MasterTrack, Err: err}
		}

		for _, planes := range items {
			c.Process(planes)
		}
	}

	if err := dynamics.ApplyBatch(items, cfg.Dynamics()); err != nil {
		return 0, &ComputeError{Component: "dynamics", Track: MasterTrack, Err: err}
	}

	if !cfg.EQ.IsFlat() {
		bank, err := eq.NewBank(cfg.EQ, opts...)
		if err != nil {
			return 0, &ComputeError{Component: "eq", Track: MasterTrack, Err: err}
		}

		for _, planes := range items {
			bank.Process(planes)
		}
	}

	if cfg.Width != 1 {
		w, err := spatial.NewStereoWidener(spatial.WithWidth(cfg.Width))
		if err != nil {
			return 0, &ComputeError{Component: "width", Track: MasterTrack, Err: err}
		}

		for _, planes := range items {
			if err := w.ProcessStereoInPlace(planes[0], planes[1]); err != nil {
				return 0, &ComputeError{Component: "width", Track: MasterTrack, Err: err}
			}
		}
	}

	clipped := 0

	for _, planes := range items {
		spatial.Balance(planes[0], planes[1], cfg.Balance)

		for _, p := range planes {
			vecmath.ScaleBlockInPlace(p, cfg.Volume)
			clipped += countOver(p, 1)
			core.ClampBlock(p, 1)
		}
	}

	return clipped, nil
}

func countOver(buf []float64, limit float64) int {
	n := 0

	for _, v := range buf {
		if v > limit || v < -limit {
			n++
		}
	}

	return n
}
