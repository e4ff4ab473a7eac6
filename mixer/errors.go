package mixer

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks parameters no clamp can repair.
	ErrConfiguration = errors.New("mixer: invalid configuration")
	// ErrBufferMismatch marks connected buffers that cannot be mixed together.
	ErrBufferMismatch = errors.New("mixer: buffer mismatch")
	// ErrCompute marks a failure inside a processing stage.
	ErrCompute = errors.New("mixer: compute failure")
)

// MasterTrack is the Track value of errors raised by the master bus or
// by engine-wide settings.
const MasterTrack = -1

func trackLabel(track int) string {
	if track == MasterTrack {
		return "master"
	}

	return fmt.Sprintf("track %d", track)
}

// ConfigurationError reports an unusable parameter. It is returned before
// any buffer is processed.
type ConfigurationError struct {
	Field  string
	Track  int
	Value  any
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	msg := fmt.Sprintf("%v: %s %s=%v", ErrConfiguration, trackLabel(e.Track), e.Field, e.Value)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}

	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

// Is matches ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// Unwrap returns the underlying validation error, if any.
func (e *ConfigurationError) Unwrap() error { return e.Err }

// BufferMismatchError reports a connected buffer with an unusable shape or
// a sample rate that differs from the other tracks.
type BufferMismatchError struct {
	Track  int
	Reason string
	Err    error
}

func (e *BufferMismatchError) Error() string {
	msg := fmt.Sprintf("%v: %s: %s", ErrBufferMismatch, trackLabel(e.Track), e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

// Is matches ErrBufferMismatch.
func (e *BufferMismatchError) Is(target error) bool { return target == ErrBufferMismatch }

// Unwrap returns the underlying buffer error, if any.
func (e *BufferMismatchError) Unwrap() error { return e.Err }

// ComputeError reports a failing processing stage with the component name
// and the track it was processing.
type ComputeError struct {
	Component string
	Track     int
	Err       error
}

func (e *ComputeError) Error() string {
	return fmt.Sprintf("%v: %s %s: %v", ErrCompute, trackLabel(e.Track), e.Component, e.Err)
}

// Is matches ErrCompute.
func (e *ComputeError) Is(target error) bool { return target == ErrCompute }

// Unwrap returns the stage error.
func (e *ComputeError) Unwrap() error { return e.Err }
