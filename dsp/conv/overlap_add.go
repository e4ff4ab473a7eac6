package conv

import (
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
)

// minBlockSize is the smallest automatic overlap-add block.
const minBlockSize = 256

// OverlapAdd implements FFT-based convolution using the overlap-add method.
//
// Because the kernel is real, two input blocks are transformed at once: one
// in the real part and one in the imaginary part of a single complex FFT.
// The real and imaginary parts of the inverse transform are then the two
// block convolutions.
type OverlapAdd struct {
	kernelFFT []complex128

	kernelLen int
	blockSize int
	fftSize   int

	plan    *algofft.Plan[complex128]
	scratch []complex128
}

// NewOverlapAdd creates an overlap-add convolver for kernel. If blockSize
// is 0 it is chosen from the kernel length.
func NewOverlapAdd(kernel []float64, blockSize int) (*OverlapAdd, error) {
	if len(kernel) == 0 {
		return nil, ErrEmptyKernel
	}

	kernelLen := len(kernel)
	if blockSize <= 0 {
		blockSize = max(nextPowerOf2(kernelLen), minBlockSize)
	}

	fftSize := nextPowerOf2(blockSize + kernelLen - 1)

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("conv: failed to create FFT plan: %w", err)
	}

	oa := &OverlapAdd{
		kernelFFT: make([]complex128, fftSize),
		kernelLen: kernelLen,
		blockSize: blockSize,
		fftSize:   fftSize,
		plan:      plan,
		scratch:   make([]complex128, fftSize),
	}

	for i, v := range kernel {
		oa.scratch[i] = complex(v, 0)
	}

	if err := plan.Forward(oa.kernelFFT, oa.scratch); err != nil {
		return nil, fmt.Errorf("conv: failed to compute kernel FFT: %w", err)
	}

	return oa, nil
}

// BlockSize returns the input block size.
func (oa *OverlapAdd) BlockSize() int { return oa.blockSize }

// FFTSize returns the FFT size used internally.
func (oa *OverlapAdd) FFTSize() int { return oa.fftSize }

// KernelLen returns the kernel length.
func (oa *OverlapAdd) KernelLen() int { return oa.kernelLen }

// Process returns the full linear convolution of input with the kernel.
func (oa *OverlapAdd) Process(input []float64) ([]float64, error) {
	if len(input) == 0 {
		return nil, ErrEmptyInput
	}

	output := make([]float64, len(input)+oa.kernelLen-1)

	for start := 0; start < len(input); start += 2 * oa.blockSize {
		second := start + oa.blockSize

		for i := range oa.scratch {
			oa.scratch[i] = 0
		}

		for i, x := range block(input, start, oa.blockSize) {
			oa.scratch[i] = complex(x, 0)
		}

		for i, x := range block(input, second, oa.blockSize) {
			oa.scratch[i] += complex(0, x)
		}

		if err := oa.plan.Forward(oa.scratch, oa.scratch); err != nil {
			return nil, fmt.Errorf("conv: forward FFT failed: %w", err)
		}

		for i, k := range oa.kernelFFT {
			oa.scratch[i] *= k
		}

		if err := oa.plan.Inverse(oa.scratch, oa.scratch); err != nil {
			return nil, fmt.Errorf("conv: inverse FFT failed: %w", err)
		}

		oa.accumulate(output, start, len(block(input, start, oa.blockSize)), false)
		oa.accumulate(output, second, len(block(input, second, oa.blockSize)), true)
	}

	return output, nil
}

func (oa *OverlapAdd) accumulate(output []float64, start, blockLen int, useImag bool) {
	if blockLen == 0 {
		return
	}

	n := min(blockLen+oa.kernelLen-1, len(output)-start)
	for i := range n {
		v := oa.scratch[i]
		if useImag {
			output[start+i] += imag(v)
		} else {
			output[start+i] += real(v)
		}
	}
}

func block(x []float64, start, size int) []float64 {
	if start >= len(x) {
		return nil
	}

	return x[start:min(start+size, len(x))]
}

// nextPowerOf2 returns the next power of 2 >= n.
func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p *= 2
	}

	return p
}
