package biquad

import (
	"sync"

	"github.com/cwbudde/algo-mix/dsp/core"
	"github.com/cwbudde/algo-vecmath/cpu"
)

// processBlockFn filters buf in place with one section and returns the new state.
type processBlockFn func(c Coefficients, d0, d1 float64, buf []float64) (newD0, newD1 float64)

type kernelEntry struct {
	name     string
	level    cpu.SIMDLevel
	priority int
	process  processBlockFn
}

// kernels is ordered by descending priority.
var kernels = []kernelEntry{
	{name: "avx2", level: cpu.SIMDAVX2, priority: 20, process: processBlockUnrolled4},
	{name: "neon", level: cpu.SIMDNEON, priority: 15, process: processBlockUnrolled4},
	{name: "sse2", level: cpu.SIMDSSE2, priority: 10, process: processBlockUnrolled2},
	{name: "generic", level: cpu.SIMDNone, priority: 0, process: processBlockUnrolled2},
}

var (
	kernelCacheMu sync.Mutex
	kernelCache   = map[core.Backend]kernelEntry{}
)

func lookupKernel(features cpu.Features) kernelEntry {
	for _, k := range kernels {
		if cpu.Supports(features, k.level) {
			return k
		}
	}

	return kernels[len(kernels)-1]
}

func kernelFor(b core.Backend) kernelEntry {
	kernelCacheMu.Lock()
	defer kernelCacheMu.Unlock()

	if k, ok := kernelCache[b]; ok {
		return k
	}

	k := lookupKernel(b.Features())
	kernelCache[b] = k

	return k
}

// KernelName reports which block kernel sections built for b will use.
func KernelName(b core.Backend) string {
	return kernelFor(b).name
}

func processBlockUnrolled2(c Coefficients, d0, d1 float64, buf []float64) (newD0, newD1 float64) {
	b0, b1, b2 := c.B0, c.B1, c.B2
	a1, a2 := c.A1, c.A2

	i := 0
	n := len(buf)
	for ; i+1 < n; i += 2 {
		x0 := buf[i]
		y0 := b0*x0 + d0
		d0n := b1*x0 - a1*y0 + d1
		d1n := b2*x0 - a2*y0

		x1 := buf[i+1]
		y1 := b0*x1 + d0n
		d0 = b1*x1 - a1*y1 + d1n
		d1 = b2*x1 - a2*y1

		buf[i] = y0
		buf[i+1] = y1
	}

	if i < n {
		x := buf[i]
		y := b0*x + d0
		d0 = b1*x - a1*y + d1
		d1 = b2*x - a2*y
		buf[i] = y
	}

	return d0, d1
}

// processBlockUnrolled4 trades code size for fewer loop iterations on wide cores.
func processBlockUnrolled4(c Coefficients, d0, d1 float64, buf []float64) (newD0, newD1 float64) {
	b0, b1, b2 := c.B0, c.B1, c.B2
	a1, a2 := c.A1, c.A2

	i := 0
	n := len(buf)
	for ; i+3 < n; i += 4 {
		x0 := buf[i]
		y0 := b0*x0 + d0
		s0 := b1*x0 - a1*y0 + d1
		s1 := b2*x0 - a2*y0

		x1 := buf[i+1]
		y1 := b0*x1 + s0
		s0 = b1*x1 - a1*y1 + s1
		s1 = b2*x1 - a2*y1

		x2 := buf[i+2]
		y2 := b0*x2 + s0
		s0 = b1*x2 - a1*y2 + s1
		s1 = b2*x2 - a2*y2

		x3 := buf[i+3]
		y3 := b0*x3 + s0
		d0 = b1*x3 - a1*y3 + s1
		d1 = b2*x3 - a2*y3

		buf[i] = y0
		buf[i+1] = y1
		buf[i+2] = y2
		buf[i+3] = y3
	}

	for ; i < n; i++ {
		x := buf[i]
		y := b0*x + d0
		d0 = b1*x - a1*y + d1
		d1 = b2*x - a2*y
		buf[i] = y
	}

	return d0, d1
}
