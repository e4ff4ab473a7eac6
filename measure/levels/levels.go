package levels

import (
	"errors"
	"fmt"
	"math"

	vecmath "github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-mix/dsp/buffer"
	"github.com/cwbudde/algo-mix/dsp/core"
)

// ErrInvalidAudio is returned when the buffer cannot be measured.
var ErrInvalidAudio = errors.New("levels: invalid audio")

// ChannelStats holds the level statistics of one channel.
type ChannelStats struct {
	Peak    float64 // max |x|
	PeakDB  float64 // dBFS, -Inf for silence
	RMS     float64
	RMSDB   float64
	Crest   float64 // peak / RMS, 0 for silence
	CrestDB float64
	DC      float64 // mean
}

// ItemReport holds the levels of one batch item.
type ItemReport struct {
	Channels []ChannelStats
	// Loudness is the integrated loudness in LUFS.
	Loudness float64
}

// Report holds the levels of every batch item of a buffer.
type Report struct {
	SampleRate int
	Length     int
	Items      []ItemReport
}

// Peak returns the largest channel peak over all items.
func (r Report) Peak() float64 {
	peak := 0.0
	for _, item := range r.Items {
		for _, ch := range item.Channels {
			peak = math.Max(peak, ch.Peak)
		}
	}

	return peak
}

// Measure computes the level report of a.
func Measure(a buffer.Audio) (Report, error) {
	if err := a.Validate(); err != nil {
		return Report{}, fmt.Errorf("%w: %w", ErrInvalidAudio, err)
	}

	r := Report{SampleRate: a.SampleRate, Length: a.Len(), Items: make([]ItemReport, a.Batch())}

	for b, item := range a.Waveform {
		planes := buffer.ToPlanes(item)

		stats := make([]ChannelStats, len(planes))
		for c, p := range planes {
			stats[c] = Channel(p)
		}

		r.Items[b] = ItemReport{
			Channels: stats,
			Loudness: Integrated(planes, float64(a.SampleRate)),
		}
	}

	return r, nil
}

// Channel computes the level statistics of one signal.
func Channel(x []float64) ChannelStats {
	if len(x) == 0 {
		return ChannelStats{PeakDB: math.Inf(-1), RMSDB: math.Inf(-1), CrestDB: math.Inf(-1)}
	}

	n := float64(len(x))
	peak := vecmath.MaxAbs(x)
	rms := math.Sqrt(vecmath.DotProduct(x, x) / n)

	crest := 0.0
	if rms > 0 {
		crest = peak / rms
	}

	return ChannelStats{
		Peak:    peak,
		PeakDB:  ampToDB(peak),
		RMS:     rms,
		RMSDB:   ampToDB(rms),
		Crest:   crest,
		CrestDB: ampToDB(crest),
		DC:      vecmath.Sum(x) / n,
	}
}

func ampToDB(a float64) float64 {
	return core.LinearToDB(a)
}
