package mixer

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/cwbudde/algo-mix/dsp/buffer"
	"github.com/cwbudde/algo-mix/dsp/core"
	"github.com/cwbudde/algo-mix/dsp/effects/dynamics"
	"github.com/cwbudde/algo-mix/internal/testutil"
)

func newTestEngine(t *testing.T, opts ...Option) (*Engine, *logtest.Hook) {
	t.Helper()

	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	e, err := NewEngine(append([]Option{WithLogger(logger)}, opts...)...)
	if err != nil {
		t.Fatal(err)
	}

	return e, hook
}

func track(a buffer.Audio, volume, pan float64) TrackConfig {
	t := DefaultTrack()
	t.Audio = &a
	t.Volume = volume
	t.Pan = pan

	return t
}

func channel(a buffer.Audio, b, c int) []float64 {
	return testutil.Float64s(a.Waveform[b][c])
}

func TestEmptyMix(t *testing.T) {
	tests := []struct {
		name   string
		opts   []Option
		tracks []TrackConfig
		rate   int
	}{
		{name: "no tracks", rate: 44100},
		{name: "all disconnected", tracks: []TrackConfig{DefaultTrack(), DefaultTrack()}, rate: 44100},
		{name: "custom default rate", opts: []Option{WithDefaultSampleRate(22050)}, rate: 22050},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestEngine(t, tt.opts...)

			out, err := e.Mix(tt.tracks, DefaultMaster())
			if err != nil {
				t.Fatal(err)
			}

			if out.SampleRate != tt.rate || out.Batch() != 1 || out.Channels() != 2 || out.Len() != tt.rate {
				t.Fatalf("got %d/%d/%d @ %d, want 1/2/%d @ %d",
					out.Batch(), out.Channels(), out.Len(), out.SampleRate, tt.rate, tt.rate)
			}

			if out.Peak() != 0 {
				t.Fatalf("peak = %v, want silence", out.Peak())
			}
		})
	}
}

func TestPanLawHardLeft(t *testing.T) {
	e, _ := newTestEngine(t)
	in := testutil.DeterministicNoise(1, 0.5, 256)

	out, err := e.Mix([]TrackConfig{track(testutil.Audio(44100, in), 1, -1)}, DefaultMaster())
	if err != nil {
		t.Fatal(err)
	}

	testutil.RequireSliceNearlyEqual(t, channel(out, 0, 0), testutil.Float64s(testutil.Float32s(in)), 0)
	testutil.RequireSliceNearlyEqual(t, channel(out, 0, 1), make([]float64, 256), 0)
}

func TestLengthReconciliation(t *testing.T) {
	e, _ := newTestEngine(t)

	short := track(testutil.Audio(44100, testutil.DC(0.5, 1000)), 1, 0)
	long := track(testutil.Audio(44100, testutil.DC(0.25, 2000)), 1, 0)

	out, err := e.Mix([]TrackConfig{short, long}, DefaultMaster())
	if err != nil {
		t.Fatal(err)
	}

	if out.Len() != 2000 {
		t.Fatalf("length = %d, want 2000", out.Len())
	}

	want := append(testutil.DC(0.75, 1000), testutil.DC(0.25, 1000)...)
	testutil.RequireSliceNearlyEqual(t, channel(out, 0, 0), want, 0)
	testutil.RequireSliceNearlyEqual(t, channel(out, 0, 1), want, 0)
}

func TestMasterCeilingBoundsOutput(t *testing.T) {
	e, _ := newTestEngine(t)

	master := DefaultMaster()
	master.Ceiling = 0.5

	loud := testutil.DeterministicNoise(7, 1, 4096)
	tr := track(testutil.Audio(48000, loud, testutil.DeterministicNoise(8, 1, 4096)), 1.5, 0.3)

	out, err := e.Mix([]TrackConfig{tr}, master)
	if err != nil {
		t.Fatal(err)
	}

	if peak := out.Peak(); peak > 0.5 {
		t.Fatalf("peak = %v, want <= 0.5", peak)
	}
}

func TestEndToEndSineAndSilence(t *testing.T) {
	e, _ := newTestEngine(t)

	sine := testutil.DeterministicSine(440, 44100, 0.5, 44100)
	tracks := []TrackConfig{
		track(testutil.Audio(44100, sine), 1, 0),
		track(testutil.Audio(44100, make([]float64, 44100)), DefaultTrackVolume, 0),
	}

	out, err := e.Mix(tracks, DefaultMaster())
	if err != nil {
		t.Fatal(err)
	}

	if out.SampleRate != 44100 || out.Channels() != 2 || out.Len() != 44100 {
		t.Fatalf("got %d channels x %d @ %d", out.Channels(), out.Len(), out.SampleRate)
	}

	left, right := channel(out, 0, 0), channel(out, 0, 1)
	testutil.RequireSliceNearlyEqual(t, left, right, 0)
	testutil.RequireSliceNearlyEqual(t, left, testutil.Float64s(testutil.Float32s(sine)), 0)

	if peak := out.Peak(); math.Abs(peak-0.5) > 1e-3 {
		t.Fatalf("peak = %v, want ~0.5", peak)
	}
}

func TestMixDoesNotModifyInputs(t *testing.T) {
	e, _ := newTestEngine(t)

	a := testutil.Audio(44100, testutil.DeterministicNoise(3, 0.4, 512))
	orig := a.Clone()

	tr := track(a, 1, 0)
	tr.Dynamics.Comp = 1
	tr.EQ.Mid = 2
	tr.Delay.Mix = 0.5
	tr.Delay.Time = 0.005

	tracks := []TrackConfig{tr}
	if _, err := e.Mix(tracks, DefaultMaster()); err != nil {
		t.Fatal(err)
	}

	testutil.RequireAudioNearlyEqual(t, a, orig, 0)

	if tracks[0].Delay.Time != 0.005 {
		t.Fatal("Mix must not clamp the caller's track slice")
	}
}

func TestSampleRateMismatch(t *testing.T) {
	e, _ := newTestEngine(t)

	tracks := []TrackConfig{
		track(testutil.Audio(44100, testutil.Ones(10)), 1, 0),
		track(testutil.Audio(48000, testutil.Ones(10)), 1, 0),
	}

	_, err := e.Mix(tracks, DefaultMaster())
	if !errors.Is(err, ErrBufferMismatch) {
		t.Fatalf("Mix() = %v, want ErrBufferMismatch", err)
	}

	var bm *BufferMismatchError
	if !errors.As(err, &bm) || bm.Track != 1 {
		t.Fatalf("Mix() = %v, want mismatch on track 1", err)
	}
}

func TestConfigurationErrorsFailFast(t *testing.T) {
	e, hook := newTestEngine(t, WithSlots(Layout4))

	bad := track(testutil.Audio(44100, testutil.Ones(10)), 1, 0)
	bad.Delay.Echoes = 0

	if _, err := e.Mix([]TrackConfig{bad}, DefaultMaster()); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("echoes 0: %v, want ErrConfiguration", err)
	}

	if len(hook.AllEntries()) != 0 {
		t.Fatal("no processing must be logged before validation fails")
	}

	five := make([]TrackConfig, 5)
	if _, err := e.Mix(five, DefaultMaster()); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("5 tracks on 4 slots: %v, want ErrConfiguration", err)
	}

	master := DefaultMaster()
	master.Width = math.NaN()

	if _, err := e.Mix(nil, master); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("NaN width: %v, want ErrConfiguration", err)
	}

	duck := track(testutil.Audio(44100, testutil.Ones(10)), 1, 0)
	duck.Duck = &DuckSend{Source: 0}

	if _, err := e.Mix([]TrackConfig{duck}, DefaultMaster()); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("self duck: %v, want ErrConfiguration", err)
	}

	negative := track(testutil.Audio(-44100, testutil.Ones(10)), 1, 0)

	_, err := e.Mix([]TrackConfig{DefaultTrack(), negative}, DefaultMaster())

	var cfg *ConfigurationError
	if !errors.As(err, &cfg) || cfg.Field != "sample_rate" || cfg.Track != 1 {
		t.Fatalf("negative sample rate: %v, want sample_rate ConfigurationError on track 1", err)
	}

	if errors.Is(err, ErrBufferMismatch) {
		t.Fatalf("negative sample rate must not be a buffer mismatch: %v", err)
	}
}

func TestSubFloorDelayTimeBypassesEcho(t *testing.T) {
	e, _ := newTestEngine(t)

	in := testutil.Impulse(2000, 0)
	tr := track(testutil.Audio(44100, in), 1, 0)
	tr.Delay.Time = 0.0005
	tr.Delay.Mix = 0.5

	out, err := e.Mix([]TrackConfig{tr}, DefaultMaster())
	if err != nil {
		t.Fatal(err)
	}

	testutil.RequireSliceNearlyEqual(t, channel(out, 0, 0), in, 0)
	testutil.RequireSliceNearlyEqual(t, channel(out, 0, 1), in, 0)
}

func TestBufferShapeErrors(t *testing.T) {
	e, _ := newTestEngine(t)

	three := testutil.Audio(44100, testutil.Ones(4), testutil.Ones(4), testutil.Ones(4))
	if _, err := e.Mix([]TrackConfig{track(three, 1, 0)}, DefaultMaster()); !errors.Is(err, ErrBufferMismatch) {
		t.Fatalf("3 channels: %v, want ErrBufferMismatch", err)
	}

	ragged := testutil.Audio(44100, testutil.Ones(4), testutil.Ones(3))
	if _, err := e.Mix([]TrackConfig{track(ragged, 1, 0)}, DefaultMaster()); !errors.Is(err, buffer.ErrRagged) {
		t.Fatalf("ragged: %v, want buffer.ErrRagged", err)
	}

	two := buffer.Zeros(2, 1, 4, 44100)
	three3 := buffer.Zeros(3, 1, 4, 44100)

	_, err := e.Mix([]TrackConfig{track(two, 1, 0), track(three3, 1, 0)}, DefaultMaster())
	if !errors.Is(err, ErrBufferMismatch) {
		t.Fatalf("batch 2 vs 3: %v, want ErrBufferMismatch", err)
	}
}

func TestBatchBroadcast(t *testing.T) {
	e, _ := newTestEngine(t)

	batched := buffer.Audio{
		Waveform: [][][]float32{
			{testutil.Float32s(testutil.DC(0.25, 4))},
			{testutil.Float32s(testutil.DC(-0.25, 4))},
		},
		SampleRate: 8000,
	}
	single := testutil.Audio(8000, testutil.DC(0.5, 4))

	out, err := e.Mix([]TrackConfig{track(batched, 1, 0), track(single, 1, 0)}, DefaultMaster())
	if err != nil {
		t.Fatal(err)
	}

	if out.Batch() != 2 {
		t.Fatalf("batch = %d, want 2", out.Batch())
	}

	testutil.RequireSliceNearlyEqual(t, channel(out, 0, 1), testutil.DC(0.75, 4), 0)
	testutil.RequireSliceNearlyEqual(t, channel(out, 1, 0), testutil.DC(0.25, 4), 0)
}

func TestMixContextCancelled(t *testing.T) {
	e, _ := newTestEngine(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tr := track(testutil.Audio(44100, testutil.Ones(8)), 1, 0)
	if _, err := e.MixContext(ctx, []TrackConfig{tr}, DefaultMaster()); !errors.Is(err, context.Canceled) {
		t.Fatalf("MixContext() = %v, want context.Canceled", err)
	}
}

func TestClippingIsLogged(t *testing.T) {
	e, hook := newTestEngine(t)

	tr := track(testutil.Audio(44100, testutil.DC(0.9, 16)), 1.5, 0)

	out, err := e.Mix([]TrackConfig{tr}, DefaultMaster())
	if err != nil {
		t.Fatal(err)
	}

	if out.Peak() != 1 {
		t.Fatalf("peak = %v, want clamp at 1", out.Peak())
	}

	var warned *logrus.Entry

	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel {
			warned = entry
		}

		if _, ok := entry.Data["mix_id"]; !ok {
			t.Fatalf("entry %q lacks mix_id", entry.Message)
		}
	}

	if warned == nil || warned.Data["clipped_samples"] != 32 {
		t.Fatalf("missing clipping warning: %+v", warned)
	}
}

func TestBackendsAgree(t *testing.T) {
	auto, _ := newTestEngine(t)
	generic, _ := newTestEngine(t, WithBackend(core.BackendGeneric))

	if generic.Backend() != core.BackendGeneric || auto.Slots() != Layout8 {
		t.Fatal("options not applied")
	}

	tr := track(testutil.Audio(44100, testutil.DeterministicNoise(9, 0.3, 4096)), 0.8, 0.2)
	tr.EQ.Low = 2
	tr.EQ.High = 0.5
	tr.Delay.Mix = 0.4
	tr.Delay.Time = 0.01

	master := DefaultMaster()
	master.LoCut = 80
	master.Width = 1.5

	a, err := auto.Mix([]TrackConfig{tr}, master)
	if err != nil {
		t.Fatal(err)
	}

	g, err := generic.Mix([]TrackConfig{tr}, master)
	if err != nil {
		t.Fatal(err)
	}

	testutil.RequireAudioNearlyEqual(t, a, g, 1e-6)
}

func TestDuckSend(t *testing.T) {
	e, _ := newTestEngine(t)

	music := track(testutil.Audio(8000, testutil.DC(0.5, 8000)), 1, 0)
	voice := track(testutil.Audio(8000, testutil.DeterministicSine(300, 8000, 0.8, 8000)), 1, 0)
	voice.Mute = true

	plain, err := e.Mix([]TrackConfig{music, voice}, DefaultMaster())
	if err != nil {
		t.Fatal(err)
	}

	music.Duck = &DuckSend{Source: 1, Params: dynamics.DefaultDuckParams()}

	ducked, err := e.Mix([]TrackConfig{music, voice}, DefaultMaster())
	if err != nil {
		t.Fatal(err)
	}

	mid := 4000
	if got, ref := channel(ducked, 0, 0)[mid], channel(plain, 0, 0)[mid]; got >= ref {
		t.Fatalf("ducked sample %v not below %v", got, ref)
	}
}

func TestNewEngineRejectsBadOptions(t *testing.T) {
	if _, err := NewEngine(WithSlots(0)); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("WithSlots(0): %v", err)
	}

	if _, err := NewEngine(WithDefaultSampleRate(-1)); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("WithDefaultSampleRate(-1): %v", err)
	}
}
