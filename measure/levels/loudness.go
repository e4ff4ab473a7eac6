package levels

import (
	"math"

	vecmath "github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-mix/dsp/buffer"
	"github.com/cwbudde/algo-mix/dsp/core"
	"github.com/cwbudde/algo-mix/dsp/filter/biquad"
	"github.com/cwbudde/algo-mix/dsp/filter/design"
)

const (
	// K-weighting stages.
	kShelfFreq   = 1500.0
	kShelfGainDB = 4.0
	kHighpass    = 38.0

	blockSeconds = 0.4
	blockOverlap = 0.75

	absoluteGate = -70.0
	relativeGate = -10.0
)

// KWeighting returns the two-stage K-weighting cascade for sampleRate.
func KWeighting(sampleRate float64) *biquad.Chain {
	return biquad.NewChain([]biquad.Coefficients{
		design.HighShelf(kShelfFreq, kShelfGainDB, design.DefaultQ, sampleRate),
		design.Highpass(kHighpass, design.DefaultQ, sampleRate),
	})
}

// Integrated returns the gated integrated loudness of planes in LUFS.
// Every channel is weighted equally.
func Integrated(planes [][]float64, sampleRate float64) float64 {
	n := buffer.PlanesLen(planes)
	block := int(math.Round(blockSeconds * sampleRate))
	step := max(int(math.Round(blockSeconds*(1-blockOverlap)*sampleRate)), 1)

	if block <= 0 || n < block {
		return math.Inf(-1)
	}

	weighted := buffer.ClonePlanes(planes)
	KWeighting(sampleRate).ProcessPlanes(weighted)

	// prefix[c][i] is the energy of channel c before sample i.
	prefix := make([][]float64, len(weighted))

	var sq []float64
	for c, p := range weighted {
		sq = core.EnsureLen(sq, n)
		vecmath.MulBlock(sq, p, p)

		prefix[c] = make([]float64, n+1)
		for i, v := range sq {
			prefix[c][i+1] = prefix[c][i] + v
		}
	}

	var blocks []float64

	for start := 0; start+block <= n; start += step {
		z := 0.0
		for c := range prefix {
			z += (prefix[c][start+block] - prefix[c][start]) / float64(block)
		}

		blocks = append(blocks, z)
	}

	return gate(blocks)
}

// gate applies the absolute and relative gates to block mean squares.
func gate(blocks []float64) float64 {
	var (
		kept []float64
		sum  float64
	)

	for _, z := range blocks {
		if toLUFS(z) > absoluteGate {
			kept = append(kept, z)
			sum += z
		}
	}

	if len(kept) == 0 {
		return math.Inf(-1)
	}

	threshold := toLUFS(sum/float64(len(kept))) + relativeGate

	var (
		relSum   float64
		relCount int
	)

	for _, z := range kept {
		if toLUFS(z) > threshold {
			relSum += z
			relCount++
		}
	}

	if relCount == 0 {
		return math.Inf(-1)
	}

	return toLUFS(relSum / float64(relCount))
}

func toLUFS(meanSquare float64) float64 {
	if meanSquare <= 0 {
		return math.Inf(-1)
	}

	return -0.691 + core.LinearPowerToDB(meanSquare)
}
