package audiofile

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-mix/dsp/buffer"
)

const wavFormatPCM = 1

// ErrBitDepth is returned for unsupported output bit depths.
var ErrBitDepth = errors.New("audiofile: bit depth must be 16, 24 or 32")

// SaveOptions controls WAV output.
type SaveOptions struct {
	// BitDepth is 16, 24 or 32. Zero means 16.
	BitDepth int
	// Normalize scales the loudest sample to NormalizePeak before writing.
	Normalize bool
}

// Save writes the first batch item of a to path as PCM WAV. Samples are
// clipped to [-1, 1].
func Save(path string, a buffer.Audio, opts SaveOptions) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	return EncodeWAV(f, a, opts)
}

// EncodeWAV writes the first batch item of a to w as PCM WAV.
func EncodeWAV(w io.WriteSeeker, a buffer.Audio, opts SaveOptions) error {
	bits := opts.BitDepth
	if bits == 0 {
		bits = 16
	}

	if bits != 16 && bits != 24 && bits != 32 {
		return fmt.Errorf("%w: %d", ErrBitDepth, bits)
	}

	if err := a.Validate(); err != nil {
		return err
	}

	item := a.Waveform[0]

	gain := 1.0
	if opts.Normalize {
		if peak := (buffer.Audio{Waveform: [][][]float32{item}}).Peak(); peak > 0 {
			gain = NormalizePeak / peak
		}
	}

	channels, frames := len(item), len(item[0])
	full := float64(int64(1)<<(bits-1) - 1)

	pcm := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: a.SampleRate},
		Data:           make([]int, channels*frames),
		SourceBitDepth: bits,
	}

	for i := range frames {
		for c := range channels {
			v := math.Max(-1, math.Min(1, float64(item[c][i])*gain))
			pcm.Data[i*channels+c] = int(math.Round(v * full))
		}
	}

	enc := wav.NewEncoder(w, a.SampleRate, bits, channels, wavFormatPCM)
	if err := enc.Write(pcm); err != nil {
		return err
	}

	return enc.Close()
}
