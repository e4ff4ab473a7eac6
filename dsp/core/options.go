package core

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/cwbudde/algo-vecmath/cpu"
)

// Backend selects which compute kernels DSP stages use.
type Backend int

const (
	// BackendAuto selects the fastest kernels the detected CPU supports.
	BackendAuto Backend = iota
	// BackendGeneric forces pure-Go scalar kernels on every CPU.
	BackendGeneric
)

// String returns the flag-friendly backend name.
func (b Backend) String() string {
	switch b {
	case BackendAuto:
		return "auto"
	case BackendGeneric:
		return "generic"
	default:
		return fmt.Sprintf("Backend(%d)", int(b))
	}
}

// ParseBackend parses the names returned by Backend.String.
func ParseBackend(name string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return BackendAuto, nil
	case "generic":
		return BackendGeneric, nil
	default:
		return BackendAuto, fmt.Errorf("unknown backend %q (want auto or generic)", name)
	}
}

// Features returns the CPU features kernels may rely on under b.
func (b Backend) Features() cpu.Features {
	if b == BackendGeneric {
		return cpu.Features{ForceGeneric: true, Architecture: runtime.GOARCH}
	}

	return cpu.DetectFeatures()
}

// ProcessorConfig defines common DSP processing settings.
type ProcessorConfig struct {
	SampleRate float64
	Backend    Backend
}

// ProcessorOption mutates a ProcessorConfig.
type ProcessorOption func(*ProcessorConfig)

// DefaultProcessorConfig returns the defaults used when a caller supplies
// no sample rate: CD rate and automatic kernel selection.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		SampleRate: 44100,
		Backend:    BackendAuto,
	}
}

// WithSampleRate sets the processing sample rate.
func WithSampleRate(sampleRate float64) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if sampleRate > 0 {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithBackend sets the compute backend.
func WithBackend(b Backend) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		cfg.Backend = b
	}
}

// ApplyProcessorOptions applies zero or more options to the default config.
func ApplyProcessorOptions(opts ...ProcessorOption) ProcessorConfig {
	cfg := DefaultProcessorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
