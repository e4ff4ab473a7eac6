package dynamics

import "github.com/cwbudde/algo-mix/dsp/core"

const (
	compThresholdTopDB   = -5.0
	compThresholdRangeDB = 25.0
	compRatioRange       = 4.0
	compMakeupRange      = 0.5

	// compEpsilon keeps the gain reduction finite for silent samples.
	compEpsilon = 1e-6
)

// Compressor is a static (memoryless) compressor driven by one amount in
// [0, 1]:
//
//	thresholdDB = -5 - 25*amount
//	ratio       = 1 + 4*amount
//	makeup      = 1 + 0.5*amount
//
// Each sample's overshoot above the linear threshold is reduced by
// (1 - 1/ratio). When no sample exceeds the threshold the buffer is left
// unchanged and makeup gain is not applied either.
type Compressor struct {
	amount      float64
	thresholdDB float64
	threshold   float64
	ratio       float64
	makeup      float64
}

// NewCompressor creates a compressor for an amount in [0, 1].
func NewCompressor(amount float64) (*Compressor, error) {
	if err := validateAmount("comp", amount); err != nil {
		return nil, err
	}

	thresholdDB := compThresholdTopDB - amount*compThresholdRangeDB

	return &Compressor{
		amount:      amount,
		thresholdDB: thresholdDB,
		threshold:   core.DBToLinear(thresholdDB),
		ratio:       1 + amount*compRatioRange,
		makeup:      1 + amount*compMakeupRange,
	}, nil
}

// Amount returns the configured amount.
func (c *Compressor) Amount() float64 { return c.amount }

// ThresholdDB returns the threshold in dBFS.
func (c *Compressor) ThresholdDB() float64 { return c.thresholdDB }

// Threshold returns the linear threshold.
func (c *Compressor) Threshold() float64 { return c.threshold }

// Ratio returns the compression ratio.
func (c *Compressor) Ratio() float64 { return c.ratio }

// MakeupGain returns the linear makeup gain.
func (c *Compressor) MakeupGain() float64 { return c.makeup }

// Exceeds reports whether any sample in items is above the threshold.
func (c *Compressor) Exceeds(items [][][]float64) bool {
	for _, planes := range items {
		for _, p := range planes {
			for _, x := range p {
				if x < 0 {
					x = -x
				}

				if x-c.threshold > 0 {
					return true
				}
			}
		}
	}

	return false
}

// Process compresses one set of planes in place and reports whether
// compression was applied.
func (c *Compressor) Process(planes [][]float64) bool {
	return c.ProcessBatch([][][]float64{planes})
}

// ProcessBatch compresses all items in place. The threshold check spans
// every item.
func (c *Compressor) ProcessBatch(items [][][]float64) bool {
	if !c.Exceeds(items) {
		return false
	}

	slope := 1 - 1/c.ratio

	for _, planes := range items {
		for _, p := range planes {
			for i, x := range p {
				amp := x
				if amp < 0 {
					amp = -amp
				}

				over := amp - c.threshold
				if over < 0 {
					over = 0
				}

				x *= 1 - over*slope/(amp+compEpsilon)
				p[i] = x * c.makeup
			}
		}
	}

	return true
}
