package core

import "math"

const (
	defaultEpsilon = 1e-12

	// KillGain is the linear gain at or below which GainToDB reports FloorDB.
	KillGain = 0.001
	// FloorDB is the attenuation used for gains treated as a full cut.
	FloorDB = -60.0
)

// Clamp limits value to the inclusive range [lo, hi].
func Clamp(value, lo, hi float64) float64 {
	if lo > hi {
		lo, hi = hi, lo
	}

	if value < lo {
		return lo
	}

	if value > hi {
		return hi
	}

	return value
}

// NearlyEqual reports whether a and b are equal within eps.
func NearlyEqual(a, b, eps float64) bool {
	if eps <= 0 {
		eps = defaultEpsilon
	}

	diff := math.Abs(a - b)
	if diff <= eps {
		return true
	}

	largest := math.Max(math.Abs(a), math.Abs(b))
	if largest == 0 {
		return diff <= eps
	}

	return diff/largest <= eps
}

// IsFinite reports whether v is neither NaN nor an infinity.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// DBToLinear converts dB to linear amplitude (20*log10 convention).
func DBToLinear(db float64) float64 {
	return mathPow10(db / 20)
}

// LinearToDB converts linear amplitude to dB (20*log10 convention).
// Returns -Inf for zero and NaN for negative values.
func LinearToDB(linear float64) float64 {
	if linear < 0 {
		return math.NaN()
	}

	if linear == 0 {
		return math.Inf(-1)
	}

	return 20 * mathLog10(linear)
}

// GainToDB converts a linear fader gain to dB for filter design.
// Gains at or below KillGain map to FloorDB instead of -Inf.
func GainToDB(gain float64) float64 {
	if gain <= KillGain {
		return FloorDB
	}

	return 20 * mathLog10(gain)
}

// Tanh is the soft-clip transfer used by saturation stages.
func Tanh(x float64) float64 {
	return mathTanh(x)
}

// LinearPowerToDB converts linear power to dB (10*log10 convention).
// Returns -Inf for zero and NaN for negative values.
func LinearPowerToDB(power float64) float64 {
	if power < 0 {
		return math.NaN()
	}

	if power == 0 {
		return math.Inf(-1)
	}

	return 10 * mathLog10(power)
}
