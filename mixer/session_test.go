package mixer

import (
	"errors"
	"strings"
	"testing"

	"github.com/cwbudde/algo-mix/dsp/buffer"
	"github.com/cwbudde/algo-mix/dsp/eq"
	"github.com/cwbudde/algo-mix/internal/testutil"
)

func stubLoader(files map[string]buffer.Audio) Loader {
	return func(file string) (*buffer.Audio, error) {
		a, ok := files[file]
		if !ok {
			return nil, errors.New("no such file")
		}

		return &a, nil
	}
}

func TestSessionDefaultsAndClamping(t *testing.T) {
	doc := `{
		"master": {"volume": 3, "width": 1.5},
		"tracks": [
			{"file": "vox.wav", "pan": -4, "eq": {"mid": 2}},
			{},
			{"file": "bed.wav", "delay": {"mix": 0.3}, "duck": {"source": 0, "ratio": 50}, "solo": true}
		]
	}`

	s, err := ParseSession(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}

	a := testutil.Audio(44100, testutil.Ones(4))
	tracks, master, err := s.Resolve(stubLoader(map[string]buffer.Audio{"vox.wav": a, "bed.wav": a}))
	if err != nil {
		t.Fatal(err)
	}

	if len(tracks) != 3 {
		t.Fatalf("tracks = %d, want 3", len(tracks))
	}

	vox := tracks[0]
	if !vox.Connected() || vox.Volume != DefaultTrackVolume || vox.Pan != -1 {
		t.Fatalf("vox = %+v", vox)
	}

	if vox.EQ != (eq.Gains{Low: 1, Mid: 2, High: 1}) {
		t.Fatalf("vox EQ = %+v, want mid boost only", vox.EQ)
	}

	if tracks[1].Connected() || tracks[1].Delay.Echoes != 4 {
		t.Fatalf("empty slot = %+v", tracks[1])
	}

	bed := tracks[2]
	if bed.Delay.Mix != 0.3 || bed.Delay.Time != 0.35 || bed.Delay.Feedback != 0.4 || !bed.Solo {
		t.Fatalf("bed = %+v", bed)
	}

	if bed.Duck == nil || bed.Duck.Source != 0 || bed.Duck.Params.Ratio != 20 || bed.Duck.Params.Threshold != 0.02 {
		t.Fatalf("bed duck = %+v", bed.Duck)
	}

	if master.Volume != MaxMasterVolume || master.Width != 1.5 || master.HiCut != 20000 || master.EQ != eq.Flat() {
		t.Fatalf("master = %+v", master)
	}
}

func TestSessionErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"unknown field", `{"tracks": [{"fader": 1}]}`, ErrConfiguration},
		{"bad json", `{"tracks": [`, ErrConfiguration},
		{"zero echoes", `{"tracks": [{"delay": {"echoes": 0}}]}`, ErrConfiguration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ParseSession(strings.NewReader(tt.doc))
			if err == nil {
				_, _, err = s.Resolve(stubLoader(nil))
			}

			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSessionLoaderError(t *testing.T) {
	s, err := ParseSession(strings.NewReader(`{"tracks": [{"file": "missing.wav"}]}`))
	if err != nil {
		t.Fatal(err)
	}

	_, _, err = s.Resolve(stubLoader(nil))
	if err == nil || !strings.Contains(err.Error(), `"missing.wav"`) {
		t.Fatalf("Resolve() = %v, want load error naming the file", err)
	}
}
