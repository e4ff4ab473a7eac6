package mixer

import (
	"github.com/cwbudde/algo-mix/dsp/buffer"
	"github.com/cwbudde/algo-mix/dsp/conv"
	"github.com/cwbudde/algo-mix/dsp/core"
	"github.com/cwbudde/algo-mix/dsp/delay"
	"github.com/cwbudde/algo-mix/dsp/effects/dynamics"
	"github.com/cwbudde/algo-mix/dsp/eq"
)

// ChannelStrip runs the per-track chain: dynamics, EQ, delay, then mono
// upmix. Volume and pan are applied by the engine at summation.
type ChannelStrip struct {
	backend core.Backend
}

// NewChannelStrip returns a strip using the configured backend.
func NewChannelStrip(opts ...core.ProcessorOption) *ChannelStrip {
	return &ChannelStrip{backend: core.ApplyProcessorOptions(opts...).Backend}
}

// Process runs the buffer of track through the strip and returns a stereo
// copy. The input is not modified. Track controls are clamped first;
// errors carry the given track index.
func (s *ChannelStrip) Process(a buffer.Audio, t TrackConfig, track int) (buffer.Audio, error) {
	if err := checkBuffer(a, track); err != nil {
		return buffer.Audio{}, err
	}

	if err := t.validate(track); err != nil {
		return buffer.Audio{}, err
	}

	items := itemsToPlanes(a)

	items, err := s.process(items, float64(a.SampleRate), t.Clamp(), track)
	if err != nil {
		return buffer.Audio{}, err
	}

	out := buffer.Audio{Waveform: make([][][]float32, len(items)), SampleRate: a.SampleRate}
	for b, planes := range items {
		out.Waveform[b] = buffer.FromPlanes(planes)
	}

	return out, nil
}

// process runs the chain in place over the batch items of one track.
// The compressor's threshold check spans the whole batch.
func (s *ChannelStrip) process(items [][][]float64, sampleRate float64, t TrackConfig, track int) ([][][]float64, error) {
	if err := dynamics.ApplyBatch(items, t.Dynamics); err != nil {
		return nil, &ComputeError{Component: "dynamics", Track: track, Err: err}
	}

	if !t.EQ.IsFlat() {
		bank, err := eq.NewBank(t.EQ, core.WithSampleRate(sampleRate), core.WithBackend(s.backend))
		if err != nil {
			return nil, &ComputeError{Component: "eq", Track: track, Err: err}
		}

		for _, planes := range items {
			bank.Process(planes)
		}
	}

	if !t.Delay.IsBypass(sampleRate) {
		for _, planes := range items {
			if err := delay.Apply(planes, sampleRate, t.Delay, conv.WithBackend(s.backend)); err != nil {
				return nil, &ComputeError{Component: "delay", Track: track, Err: err}
			}
		}
	}

	for b, planes := range items {
		items[b] = buffer.Upmix(planes)
	}

	return items, nil
}

func itemsToPlanes(a buffer.Audio) [][][]float64 {
	items := make([][][]float64, len(a.Waveform))
	for b, item := range a.Waveform {
		items[b] = buffer.ToPlanes(item)
	}

	return items
}
