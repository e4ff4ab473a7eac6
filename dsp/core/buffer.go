package core

// EnsureLen returns a slice with the requested length, reusing buf capacity if possible.
func EnsureLen(buf []float64, n int) []float64 {
	if n <= 0 {
		return buf[:0]
	}
	if cap(buf) >= n {
		return buf[:n]
	}
	return make([]float64, n)
}

// Zero sets all values in buf to 0.
func Zero(buf []float64) {
	for i := range buf {
		buf[i] = 0
	}
}

// ClampBlock limits every sample of buf to [-limit, limit] in place.
func ClampBlock(buf []float64, limit float64) {
	for i, x := range buf {
		if x > limit {
			buf[i] = limit
		} else if x < -limit {
			buf[i] = -limit
		}
	}
}
