package mixer

import (
	"context"
	"fmt"

	vecmath "github.com/cwbudde/algo-vecmath"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-mix/dsp/buffer"
	"github.com/cwbudde/algo-mix/dsp/core"
	"github.com/cwbudde/algo-mix/dsp/effects/dynamics"
	"github.com/cwbudde/algo-mix/dsp/effects/spatial"
)

// Slot counts of the two mixer layouts.
const (
	Layout4 = 4
	Layout8 = 8
)

// DefaultSampleRate is the rate of the silent buffer returned when no
// track is connected.
const DefaultSampleRate = 44100

// Option configures an Engine.
type Option func(*engineConfig) error

type engineConfig struct {
	slots      int
	backend    core.Backend
	logger     logrus.FieldLogger
	sampleRate int
}

// WithSlots sets the number of track slots. Default is Layout8.
func WithSlots(n int) Option {
	return func(cfg *engineConfig) error {
		if n <= 0 {
			return &ConfigurationError{Field: "slots", Track: MasterTrack, Value: n, Reason: "must be > 0"}
		}

		cfg.slots = n

		return nil
	}
}

// WithBackend selects the kernel family for every filter and convolution.
func WithBackend(b core.Backend) Option {
	return func(cfg *engineConfig) error {
		cfg.backend = b
		return nil
	}
}

// WithLogger sets the logger. Default is logrus.StandardLogger().
func WithLogger(l logrus.FieldLogger) Option {
	return func(cfg *engineConfig) error {
		if l != nil {
			cfg.logger = l
		}

		return nil
	}
}

// WithDefaultSampleRate sets the rate of the empty mix. Default is 44100.
func WithDefaultSampleRate(sampleRate int) Option {
	return func(cfg *engineConfig) error {
		if sampleRate <= 0 {
			return &ConfigurationError{
				Field: "sample_rate", Track: MasterTrack, Value: sampleRate,
				Reason: "must be > 0", Err: buffer.ErrSampleRate,
			}
		}

		cfg.sampleRate = sampleRate

		return nil
	}
}

// Engine mixes up to Slots tracks into one stereo buffer. It holds only
// immutable configuration and a scratch pool, so concurrent Mix calls
// with independent buffers are safe.
type Engine struct {
	slots      int
	backend    core.Backend
	logger     logrus.FieldLogger
	sampleRate int

	pool   *buffer.Pool
	strip  *ChannelStrip
	master *MasterBus
}

// NewEngine returns an engine with the given options applied.
func NewEngine(opts ...Option) (*Engine, error) {
	cfg := engineConfig{
		slots:      Layout8,
		backend:    core.BackendAuto,
		logger:     logrus.StandardLogger(),
		sampleRate: DefaultSampleRate,
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	return &Engine{
		slots:      cfg.slots,
		backend:    cfg.backend,
		logger:     cfg.logger,
		sampleRate: cfg.sampleRate,
		pool:       buffer.NewPool(),
		strip:      NewChannelStrip(core.WithBackend(cfg.backend)),
		master:     NewMasterBus(core.WithBackend(cfg.backend)),
	}, nil
}

// Slots returns the number of track slots.
func (e *Engine) Slots() int { return e.slots }

// Backend returns the configured kernel backend.
func (e *Engine) Backend() core.Backend { return e.backend }

// Mix is MixContext with a background context.
func (e *Engine) Mix(tracks []TrackConfig, master MasterConfig) (buffer.Audio, error) {
	return e.MixContext(context.Background(), tracks, master)
}

// MixContext mixes tracks through their channel strips and the master bus
// and returns a stereo buffer at the tracks' shared sample rate.
//
// Configuration is validated before any processing. When no track is
// connected the result is one second of stereo silence at the default
// sample rate. The output is as long as the longest connected track;
// shorter tracks are zero-padded at the tail. ctx is checked between
// tracks.
func (e *Engine) MixContext(ctx context.Context, tracks []TrackConfig, master MasterConfig) (buffer.Audio, error) {
	log := e.logger.WithField("mix_id", uuid.NewString())

	if err := e.validate(tracks, master); err != nil {
		return buffer.Audio{}, err
	}

	sampleRate, maxLen, connected, err := inspectBuffers(tracks)
	if err != nil {
		return buffer.Audio{}, err
	}

	if !connected {
		sampleRate = e.sampleRate
	}

	if maxLen == 0 {
		log.WithFields(logrus.Fields{
			"connected":   connected,
			"sample_rate": sampleRate,
		}).Debug("Nothing to mix, returning silence")

		return buffer.Zeros(1, 2, sampleRate, sampleRate), nil
	}

	tracks = clampTracks(tracks)
	master = master.Clamp()

	active := ActiveTracks(tracks)
	logSkipped(log, tracks, active)

	batch, err := resolveBatch(tracks, active)
	if err != nil {
		return buffer.Audio{}, err
	}

	sr := float64(sampleRate)
	finalLen := maxLen
	processed := make([][][][]float64, len(active))

	for n, i := range active {
		if err := ctx.Err(); err != nil {
			return buffer.Audio{}, err
		}

		t := tracks[i]
		items := itemsToPlanes(*t.Audio)

		if t.Duck != nil {
			if err := applyDuck(items, tracks, t.Duck, sr); err != nil {
				return buffer.Audio{}, &ComputeError{Component: "duck", Track: i, Err: err}
			}
		}

		items, err := e.strip.process(items, sr, t, i)
		if err != nil {
			return buffer.Audio{}, err
		}

		length := buffer.PlanesLen(items[0])
		finalLen = max(finalLen, length)
		processed[n] = items

		log.WithFields(logrus.Fields{
			"track":  i,
			"batch":  len(items),
			"length": length,
			"volume": t.Volume,
			"pan":    t.Pan,
		}).Debug("Track processed")
	}

	acc := make([][][]float64, batch)
	for b := range acc {
		acc[b] = e.pool.Get(2, finalLen)
	}

	defer func() {
		for _, planes := range acc {
			e.pool.Put(planes)
		}
	}()

	e.sum(acc, tracks, active, processed, finalLen)

	clipped, err := e.master.Process(acc, sr, master)
	if err != nil {
		return buffer.Audio{}, err
	}

	if clipped > 0 {
		log.WithFields(logrus.Fields{
			"clipped_samples": clipped,
			"volume":          master.Volume,
		}).Warn("Master output clipped")
	}

	out := buffer.Audio{Waveform: make([][][]float32, batch), SampleRate: sampleRate}
	for b, planes := range acc {
		out.Waveform[b] = buffer.FromPlanes(planes)
	}

	log.WithFields(logrus.Fields{
		"active":      len(active),
		"batch":       batch,
		"length":      finalLen,
		"sample_rate": sampleRate,
	}).Debug("Mix finished")

	return out, nil
}

// sum adds every processed track into acc with volume and pan applied.
// Batch-one tracks are broadcast to every accumulator item.
func (e *Engine) sum(acc [][][]float64, tracks []TrackConfig, active []int, processed [][][][]float64, length int) {
	scratch := e.pool.Get(1, length)
	defer e.pool.Put(scratch)

	for n, i := range active {
		t := tracks[i]
		lg, rg := spatial.PanGains(t.Pan)
		gains := [2]float64{t.Volume * lg, t.Volume * rg}

		items := processed[n]
		for b := range acc {
			src := items[0]
			if len(items) == len(acc) {
				src = items[b]
			}

			for c := range 2 {
				m := len(src[c])
				tmp := scratch[0][:m]
				vecmath.ScaleBlock(tmp, src[c], gains[c])
				vecmath.AddBlockInPlace(acc[b][c][:m], tmp)
			}
		}
	}
}

func (e *Engine) validate(tracks []TrackConfig, master MasterConfig) error {
	if len(tracks) > e.slots {
		return &ConfigurationError{
			Field: "tracks", Track: MasterTrack, Value: len(tracks),
			Reason: fmt.Sprintf("engine has %d slots", e.slots),
		}
	}

	for i, t := range tracks {
		if err := t.validate(i); err != nil {
			return err
		}

		if t.Duck != nil && (t.Duck.Source < 0 || t.Duck.Source >= len(tracks) || t.Duck.Source == i) {
			return &ConfigurationError{
				Field: "duck.source", Track: i, Value: t.Duck.Source,
				Reason: "must name another track",
			}
		}
	}

	return master.Validate()
}

// inspectBuffers checks every connected buffer and returns the shared
// sample rate and the longest length.
func inspectBuffers(tracks []TrackConfig) (sampleRate, maxLen int, connected bool, err error) {
	for i, t := range tracks {
		if !t.Connected() {
			continue
		}

		a := t.Audio
		if err := checkBuffer(*a, i); err != nil {
			return 0, 0, false, err
		}

		if ch := a.Channels(); ch != 1 && ch != 2 {
			return 0, 0, false, &BufferMismatchError{
				Track: i, Reason: fmt.Sprintf("%d channels, want mono or stereo", ch),
			}
		}

		if connected && a.SampleRate != sampleRate {
			return 0, 0, false, &BufferMismatchError{
				Track: i, Reason: fmt.Sprintf("sample rate %d differs from %d", a.SampleRate, sampleRate),
			}
		}

		connected = true
		sampleRate = a.SampleRate
		maxLen = max(maxLen, a.Len())
	}

	return sampleRate, maxLen, connected, nil
}

// checkBuffer reports a non-positive sample rate as a configuration error
// and any other shape problem as a buffer mismatch.
func checkBuffer(a buffer.Audio, track int) error {
	if a.SampleRate <= 0 {
		return &ConfigurationError{
			Field: "sample_rate", Track: track, Value: a.SampleRate,
			Reason: "must be > 0", Err: buffer.ErrSampleRate,
		}
	}

	if err := a.Validate(); err != nil {
		return &BufferMismatchError{Track: track, Reason: "invalid buffer", Err: err}
	}

	return nil
}

// resolveBatch returns the accumulator batch size. Active tracks must have
// one item or the largest item count.
func resolveBatch(tracks []TrackConfig, active []int) (int, error) {
	batch := 1
	for _, i := range active {
		batch = max(batch, tracks[i].Audio.Batch())
	}

	for _, i := range active {
		if b := tracks[i].Audio.Batch(); b != 1 && b != batch {
			return 0, &BufferMismatchError{
				Track: i, Reason: fmt.Sprintf("batch of %d cannot broadcast to %d", b, batch),
			}
		}
	}

	return batch, nil
}

// applyDuck ducks music from the raw input of the send's source track. A
// disconnected source is silence. A source with a different batch size
// keys every item from its first item.
func applyDuck(music [][][]float64, tracks []TrackConfig, send *DuckSend, sampleRate float64) error {
	var voice [][][]float64
	if src := tracks[send.Source]; src.Connected() {
		voice = itemsToPlanes(*src.Audio)
	}

	for b, planes := range music {
		var v [][]float64

		switch {
		case len(voice) == len(music):
			v = voice[b]
		case len(voice) > 0:
			v = voice[0]
		}

		if err := dynamics.Duck(planes, v, sampleRate, send.Params); err != nil {
			return err
		}
	}

	return nil
}

func clampTracks(tracks []TrackConfig) []TrackConfig {
	out := make([]TrackConfig, len(tracks))
	for i, t := range tracks {
		out[i] = t.Clamp()
	}

	return out
}

func logSkipped(log logrus.FieldLogger, tracks []TrackConfig, active []int) {
	solo := anySolo(tracks)
	next := 0

	for i, t := range tracks {
		if next < len(active) && active[next] == i {
			next++
			continue
		}

		reason := "muted"

		switch {
		case !t.Connected():
			reason = "disconnected"
		case solo:
			reason = "not soloed"
		}

		log.WithFields(logrus.Fields{
			"track":  i,
			"reason": reason,
		}).Debug("Track skipped")
	}
}
