package audiofile

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/mewkiz/flac"

	"github.com/cwbudde/algo-mix/dsp/buffer"
)

// NormalizePeak is the peak level Normalize scales to.
const NormalizePeak = 0.95

var (
	// ErrUnsupportedFormat is returned for unknown file extensions.
	ErrUnsupportedFormat = errors.New("audiofile: unsupported format")
	// ErrInvalidFile is returned for files that do not decode.
	ErrInvalidFile = errors.New("audiofile: invalid file")
)

// LoadOptions controls post-processing of decoded audio.
type LoadOptions struct {
	// Normalize scales the loudest sample to NormalizePeak.
	Normalize bool
	// MonoToStereo duplicates a mono channel into two.
	MonoToStereo bool
}

// DefaultLoadOptions returns the loader defaults: stereo upmix, no
// normalization.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{MonoToStereo: true}
}

// Load decodes the file at path by extension (.wav, .flac, .mp3).
func Load(path string, opts LoadOptions) (*buffer.Audio, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var a buffer.Audio

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wav", ".wave":
		a, err = DecodeWAV(f)
	case ".flac":
		a, err = DecodeFLAC(f)
	case ".mp3":
		a, err = DecodeMP3(f)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if opts.MonoToStereo && a.Channels() == 1 {
		mono := a.Waveform[0][0]
		a.Waveform[0] = [][]float32{mono, append([]float32(nil), mono...)}
	}

	if opts.Normalize {
		Normalize(a, NormalizePeak)
	}

	return &a, nil
}

// Normalize scales a in place so that its peak equals peak. Silence is
// left untouched.
func Normalize(a buffer.Audio, peak float64) {
	current := a.Peak()
	if current == 0 {
		return
	}

	g := float32(peak / current)
	for _, item := range a.Waveform {
		for _, ch := range item {
			for i := range ch {
				ch[i] *= g
			}
		}
	}
}

// DecodeWAV decodes integer PCM WAV data.
func DecodeWAV(r io.ReadSeeker) (buffer.Audio, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return buffer.Audio{}, fmt.Errorf("%w: not a WAV file", ErrInvalidFile)
	}

	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return buffer.Audio{}, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}

	channels := int(dec.NumChans)
	bits := int(dec.BitDepth)

	if channels <= 0 || bits <= 0 {
		return buffer.Audio{}, fmt.Errorf("%w: %d channels at %d bits", ErrInvalidFile, channels, bits)
	}

	offset := 0
	if bits == 8 {
		offset = 128
	}

	scale := 1 / float32(int64(1)<<(bits-1))
	frames := len(pcm.Data) / channels
	a := buffer.Zeros(1, channels, frames, int(dec.SampleRate))

	for i := range frames {
		for c := range channels {
			a.Waveform[0][c][i] = float32(pcm.Data[i*channels+c]-offset) * scale
		}
	}

	return a, nil
}

// DecodeFLAC decodes a FLAC stream.
func DecodeFLAC(r io.Reader) (buffer.Audio, error) {
	stream, err := flac.New(r)
	if err != nil {
		return buffer.Audio{}, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}
	defer stream.Close()

	info := stream.Info
	channels := int(info.NChannels)
	scale := 1 / float32(int64(1)<<(info.BitsPerSample-1))

	item := make([][]float32, channels)
	for c := range item {
		item[c] = make([]float32, 0, info.NSamples)
	}

	for {
		frame, err := stream.ParseNext()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return buffer.Audio{}, fmt.Errorf("%w: %w", ErrInvalidFile, err)
		}

		for c, sub := range frame.Subframes {
			for _, s := range sub.Samples {
				item[c] = append(item[c], float32(s)*scale)
			}
		}
	}

	return buffer.Audio{Waveform: [][][]float32{item}, SampleRate: int(info.SampleRate)}, nil
}

// DecodeMP3 decodes an MP3 stream. The decoder always yields stereo.
func DecodeMP3(r io.Reader) (buffer.Audio, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return buffer.Audio{}, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}

	raw, err := io.ReadAll(dec)
	if err != nil {
		return buffer.Audio{}, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}

	// 16-bit little-endian, two interleaved channels.
	frames := len(raw) / 4
	a := buffer.Zeros(1, 2, frames, dec.SampleRate())

	for i := range frames {
		for c := range 2 {
			v := int16(binary.LittleEndian.Uint16(raw[4*i+2*c:]))
			a.Waveform[0][c][i] = float32(v) / 32768
		}
	}

	return a, nil
}
