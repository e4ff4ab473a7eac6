package buffer

import (
	"errors"
	"fmt"
)

var (
	// ErrEmpty is returned for an Audio with no batch items, channels or samples.
	ErrEmpty = errors.New("buffer: empty waveform")
	// ErrRagged is returned when channels or batch items differ in shape.
	ErrRagged = errors.New("buffer: ragged waveform")
	// ErrSampleRate is returned for a non-positive sample rate.
	ErrSampleRate = errors.New("buffer: invalid sample rate")
)

// Audio is a batch of multi-channel waveforms at one sample rate.
type Audio struct {
	Waveform   [][][]float32
	SampleRate int
}

// Zeros returns a silent Audio of the given shape.
func Zeros(batch, channels, length, sampleRate int) Audio {
	w := make([][][]float32, batch)
	for b := range w {
		w[b] = make([][]float32, channels)
		for c := range w[b] {
			w[b][c] = make([]float32, length)
		}
	}

	return Audio{Waveform: w, SampleRate: sampleRate}
}

// FromSamples wraps a single mono or multi-channel item as a batch of one.
// The channel slices are not copied.
func FromSamples(sampleRate int, channels ...[]float32) Audio {
	return Audio{Waveform: [][][]float32{channels}, SampleRate: sampleRate}
}

// Batch returns the number of batch items.
func (a Audio) Batch() int { return len(a.Waveform) }

// Channels returns the channel count of the first batch item.
func (a Audio) Channels() int {
	if len(a.Waveform) == 0 {
		return 0
	}

	return len(a.Waveform[0])
}

// Len returns the per-channel sample count of the first batch item.
func (a Audio) Len() int {
	if a.Channels() == 0 {
		return 0
	}

	return len(a.Waveform[0][0])
}

// Validate checks that a is non-empty, rectangular and has a positive rate.
// Zero-length channels are allowed.
func (a Audio) Validate() error {
	if a.SampleRate <= 0 {
		return fmt.Errorf("%w: %d", ErrSampleRate, a.SampleRate)
	}

	if a.Batch() == 0 || a.Channels() == 0 {
		return ErrEmpty
	}

	channels, length := a.Channels(), a.Len()
	for b, item := range a.Waveform {
		if len(item) != channels {
			return fmt.Errorf("%w: batch %d has %d channels, want %d", ErrRagged, b, len(item), channels)
		}

		for c, ch := range item {
			if len(ch) != length {
				return fmt.Errorf("%w: batch %d channel %d has %d samples, want %d", ErrRagged, b, c, len(ch), length)
			}
		}
	}

	return nil
}

// Clone returns a deep copy of a.
func (a Audio) Clone() Audio {
	w := make([][][]float32, len(a.Waveform))
	for b, item := range a.Waveform {
		w[b] = make([][]float32, len(item))
		for c, ch := range item {
			w[b][c] = append([]float32(nil), ch...)
		}
	}

	return Audio{Waveform: w, SampleRate: a.SampleRate}
}

// Peak returns the largest absolute sample value over all items and channels.
func (a Audio) Peak() float64 {
	peak := 0.0
	for _, item := range a.Waveform {
		for _, ch := range item {
			for _, v := range ch {
				x := float64(v)
				if x < 0 {
					x = -x
				}

				if x > peak {
					peak = x
				}
			}
		}
	}

	return peak
}
