package mixer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/cwbudde/algo-mix/dsp/buffer"
	"github.com/cwbudde/algo-mix/dsp/delay"
	"github.com/cwbudde/algo-mix/dsp/effects/dynamics"
	"github.com/cwbudde/algo-mix/dsp/eq"
)

// Session is the JSON form of one mix:
//
//	{"master": {...}, "tracks": [{"file": "vox.wav", "volume": 0.9, ...}]}
//
// Absent fields take their defaults.
type Session struct {
	Master MasterDoc  `json:"master"`
	Tracks []TrackDoc `json:"tracks"`
}

// TrackDoc is one track of a session. An empty File leaves the slot
// disconnected.
type TrackDoc struct {
	File   string       `json:"file"`
	Volume float64      `json:"volume"`
	Pan    float64      `json:"pan"`
	EQ     eq.Gains     `json:"eq"`
	Gate   float64      `json:"gate"`
	Comp   float64      `json:"comp"`
	Delay  delay.Params `json:"delay"`
	Duck   *DuckDoc     `json:"duck,omitempty"`
	Mute   bool         `json:"mute"`
	Solo   bool         `json:"solo"`
}

// DuckDoc keys ducking of a track from track Source.
type DuckDoc struct {
	Source int `json:"source"`
	dynamics.DuckParams
}

// MasterDoc is the master section of a session.
type MasterDoc struct {
	Volume  float64  `json:"volume"`
	Gate    float64  `json:"gate"`
	Comp    float64  `json:"comp"`
	EQ      eq.Gains `json:"eq"`
	Balance float64  `json:"balance"`
	Width   float64  `json:"width"`
	Drive   float64  `json:"drive"`
	LoCut   float64  `json:"locut"`
	HiCut   float64  `json:"hicut"`
	Ceiling float64  `json:"ceiling"`
}

func defaultTrackDoc() TrackDoc {
	t := DefaultTrack()

	return TrackDoc{Volume: t.Volume, EQ: t.EQ, Delay: t.Delay}
}

func defaultMasterDoc() MasterDoc {
	m := DefaultMaster()

	return MasterDoc{
		Volume:  m.Volume,
		EQ:      m.EQ,
		Width:   m.Width,
		Drive:   m.Drive,
		LoCut:   m.LoCut,
		HiCut:   m.HiCut,
		Ceiling: m.Ceiling,
	}
}

// UnmarshalJSON decodes a track over the default settings.
func (d *TrackDoc) UnmarshalJSON(data []byte) error {
	type plain TrackDoc

	p := plain(defaultTrackDoc())
	if err := decodeStrict(data, &p); err != nil {
		return err
	}

	*d = TrackDoc(p)

	return nil
}

// UnmarshalJSON decodes a duck send over the default ducking settings.
func (d *DuckDoc) UnmarshalJSON(data []byte) error {
	type plain DuckDoc

	p := plain{DuckParams: dynamics.DefaultDuckParams()}
	if err := decodeStrict(data, &p); err != nil {
		return err
	}

	*d = DuckDoc(p)

	return nil
}

// UnmarshalJSON decodes the master section over the default settings.
func (d *MasterDoc) UnmarshalJSON(data []byte) error {
	type plain MasterDoc

	p := plain(defaultMasterDoc())
	if err := decodeStrict(data, &p); err != nil {
		return err
	}

	*d = MasterDoc(p)

	return nil
}

// ParseSession decodes a session document. Unknown fields are rejected.
func ParseSession(r io.Reader) (*Session, error) {
	s := &Session{Master: defaultMasterDoc()}

	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	if err := dec.Decode(s); err != nil {
		return nil, &ConfigurationError{Field: "session", Track: MasterTrack, Value: "json", Reason: "decode", Err: err}
	}

	return s, nil
}

func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	return dec.Decode(v)
}

// Loader resolves a session file reference to audio.
type Loader func(file string) (*buffer.Audio, error)

// Resolve turns the session into engine input. Every referenced file is
// passed to load. Values no clamp can repair are reported as
// ConfigurationError; everything else is clamped to its range.
func (s *Session) Resolve(load Loader) ([]TrackConfig, MasterConfig, error) {
	tracks := make([]TrackConfig, len(s.Tracks))

	for i, doc := range s.Tracks {
		t := doc.trackConfig()
		if err := t.validate(i); err != nil {
			return nil, MasterConfig{}, err
		}

		if doc.File != "" {
			a, err := load(doc.File)
			if err != nil {
				return nil, MasterConfig{}, fmt.Errorf("mixer: track %d: load %q: %w", i, doc.File, err)
			}

			t.Audio = a
		}

		tracks[i] = t.Clamp()
	}

	master := s.Master.masterConfig()
	if err := master.Validate(); err != nil {
		return nil, MasterConfig{}, err
	}

	return tracks, master.Clamp(), nil
}

func (d TrackDoc) trackConfig() TrackConfig {
	t := TrackConfig{
		Volume:   d.Volume,
		Pan:      d.Pan,
		EQ:       d.EQ,
		Dynamics: dynamics.Params{Gate: d.Gate, Comp: d.Comp},
		Delay:    d.Delay,
		Mute:     d.Mute,
		Solo:     d.Solo,
	}

	if d.Duck != nil {
		t.Duck = &DuckSend{Source: d.Duck.Source, Params: d.Duck.DuckParams}
	}

	return t
}

func (d MasterDoc) masterConfig() MasterConfig {
	return MasterConfig(d)
}
