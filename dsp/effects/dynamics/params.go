package dynamics

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-mix/dsp/core"
)

// ErrInvalidAmount is returned when a gate or compressor amount is outside [0, 1].
var ErrInvalidAmount = errors.New("dynamics: amount must be in [0, 1]")

// Params holds the two dynamics amounts of a channel strip or master bus.
type Params struct {
	Gate float64 `json:"gate"`
	Comp float64 `json:"comp"`
}

// IsBypass reports whether neither gate nor compressor is engaged.
func (p Params) IsBypass() bool {
	return p.Gate == 0 && p.Comp == 0
}

// Clamp returns p with both amounts limited to [0, 1].
func (p Params) Clamp() Params {
	return Params{
		Gate: core.Clamp(p.Gate, 0, 1),
		Comp: core.Clamp(p.Comp, 0, 1),
	}
}

// Validate reports amounts outside [0, 1] or non-finite.
func (p Params) Validate() error {
	if err := validateAmount("gate", p.Gate); err != nil {
		return err
	}

	return validateAmount("comp", p.Comp)
}

func validateAmount(name string, v float64) error {
	if !core.IsFinite(v) || v < 0 || v > 1 {
		return fmt.Errorf("%w: %s=%v", ErrInvalidAmount, name, v)
	}

	return nil
}

// Apply runs the gate and then the compressor over one set of planes.
// Planes are left untouched when p is a bypass.
func Apply(planes [][]float64, p Params) error {
	return ApplyBatch([][][]float64{planes}, p)
}

// ApplyBatch is Apply over several batch items. The compressor's
// threshold check spans the whole batch, so either every item receives
// compression and makeup gain or none does.
func ApplyBatch(items [][][]float64, p Params) error {
	if p.IsBypass() {
		return nil
	}

	if err := p.Validate(); err != nil {
		return err
	}

	if p.Gate > 0 {
		g, err := NewGate(p.Gate)
		if err != nil {
			return err
		}

		for _, planes := range items {
			g.Process(planes)
		}
	}

	if p.Comp > 0 {
		c, err := NewCompressor(p.Comp)
		if err != nil {
			return err
		}

		c.ProcessBatch(items)
	}

	return nil
}
