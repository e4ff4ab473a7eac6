// Package buffer provides the batched multi-channel audio value passed
// between pipeline nodes, plus helpers for the float64 channel planes the
// DSP packages operate on.
//
// An [Audio] holds float32 samples indexed [batch][channel][sample]. DSP
// code works on [][]float64 planes (one slice per channel); [ToPlanes] and
// [FromPlanes] convert at the boundary. Because every float32 value is
// exactly representable as float64, a round trip without processing is
// bit-identical.
//
// [Pool] recycles plane sets to reduce allocation in repeated mixes.
package buffer
