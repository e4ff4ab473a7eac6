package mixer

import (
	"github.com/cwbudde/algo-mix/dsp/buffer"
	"github.com/cwbudde/algo-mix/dsp/core"
	"github.com/cwbudde/algo-mix/dsp/delay"
	"github.com/cwbudde/algo-mix/dsp/effects/dynamics"
	"github.com/cwbudde/algo-mix/dsp/eq"
)

const (
	// DefaultTrackVolume is the linear fader gain of a fresh track.
	DefaultTrackVolume = 0.75
	// MaxTrackVolume is the largest accepted track fader gain.
	MaxTrackVolume = 1.5
)

// TrackConfig is one input slot of the mixer. A nil Audio means the slot
// is not connected.
type TrackConfig struct {
	Audio *buffer.Audio

	Volume   float64
	Pan      float64
	EQ       eq.Gains
	Dynamics dynamics.Params
	Delay    delay.Params

	// Duck, when set, attenuates this track wherever another track is loud.
	Duck *DuckSend

	Mute bool
	Solo bool
}

// DuckSend keys sidechain ducking of a track from the unprocessed input
// of track Source.
type DuckSend struct {
	Source int
	Params dynamics.DuckParams
}

// DefaultTrack returns a disconnected track with default settings.
func DefaultTrack() TrackConfig {
	return TrackConfig{
		Volume: DefaultTrackVolume,
		EQ:     eq.Flat(),
		Delay:  delay.DefaultParams(),
	}
}

// Connected reports whether a buffer is attached.
func (t TrackConfig) Connected() bool { return t.Audio != nil }

// Clamp returns a copy of t with every control limited to its range.
func (t TrackConfig) Clamp() TrackConfig {
	out := t
	out.Volume = core.Clamp(t.Volume, 0, MaxTrackVolume)
	out.Pan = core.Clamp(t.Pan, -1, 1)
	out.EQ = t.EQ.Clamp()
	out.Dynamics = t.Dynamics.Clamp()
	out.Delay = t.Delay.Clamp()

	if t.Duck != nil {
		d := *t.Duck
		d.Params = d.Params.Clamp()
		out.Duck = &d
	}

	return out
}

// Validate reports values no clamp can repair: non-finite controls and a
// non-positive echo count.
func (t TrackConfig) Validate() error {
	return t.validate(0)
}

func (t TrackConfig) validate(track int) error {
	fields := []struct {
		name string
		v    float64
	}{
		{"volume", t.Volume},
		{"pan", t.Pan},
		{"eq.low", t.EQ.Low},
		{"eq.mid", t.EQ.Mid},
		{"eq.high", t.EQ.High},
		{"gate", t.Dynamics.Gate},
		{"comp", t.Dynamics.Comp},
		{"delay.time", t.Delay.Time},
		{"delay.feedback", t.Delay.Feedback},
		{"delay.mix", t.Delay.Mix},
	}

	if t.Duck != nil {
		p := t.Duck.Params
		fields = append(fields, []struct {
			name string
			v    float64
		}{
			{"duck.threshold", p.Threshold},
			{"duck.ratio", p.Ratio},
			{"duck.attack", p.Attack},
			{"duck.release", p.Release},
			{"duck.makeup", p.Makeup},
		}...)
	}

	for _, f := range fields {
		if !core.IsFinite(f.v) {
			return &ConfigurationError{Field: f.name, Track: track, Value: f.v, Reason: "must be finite"}
		}
	}

	if t.Delay.Echoes <= 0 {
		return &ConfigurationError{
			Field: "delay.echoes", Track: track, Value: t.Delay.Echoes,
			Reason: "must be > 0", Err: delay.ErrInvalidEchoes,
		}
	}

	return nil
}

// ActiveTracks returns the indices of the tracks that contribute to the
// mix. If any track is soloed, connected or not, only soloed tracks are
// active regardless of mute. Otherwise every unmuted track is active.
// Disconnected tracks are never active.
func ActiveTracks(tracks []TrackConfig) []int {
	solo := anySolo(tracks)

	active := make([]int, 0, len(tracks))
	for i, t := range tracks {
		if !t.Connected() {
			continue
		}

		if solo && !t.Solo || !solo && t.Mute {
			continue
		}

		active = append(active, i)
	}

	return active
}

func anySolo(tracks []TrackConfig) bool {
	for _, t := range tracks {
		if t.Solo {
			return true
		}
	}

	return false
}
