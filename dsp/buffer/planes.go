package buffer

// ToPlanes converts one batch item to float64 channel planes.
func ToPlanes(item [][]float32) [][]float64 {
	planes := make([][]float64, len(item))
	for c, ch := range item {
		p := make([]float64, len(ch))
		for i, v := range ch {
			p[i] = float64(v)
		}

		planes[c] = p
	}

	return planes
}

// FromPlanes converts float64 channel planes back to float32 samples.
func FromPlanes(planes [][]float64) [][]float32 {
	item := make([][]float32, len(planes))
	for c, p := range planes {
		ch := make([]float32, len(p))
		for i, v := range p {
			ch[i] = float32(v)
		}

		item[c] = ch
	}

	return item
}

// NewPlanes allocates zeroed planes.
func NewPlanes(channels, length int) [][]float64 {
	planes := make([][]float64, channels)
	for c := range planes {
		planes[c] = make([]float64, length)
	}

	return planes
}

// ClonePlanes returns a deep copy of planes.
func ClonePlanes(planes [][]float64) [][]float64 {
	out := make([][]float64, len(planes))
	for c, p := range planes {
		out[c] = append([]float64(nil), p...)
	}

	return out
}

// PlanesLen returns the length of the first plane, or 0.
func PlanesLen(planes [][]float64) int {
	if len(planes) == 0 {
		return 0
	}

	return len(planes[0])
}

// Upmix duplicates a mono plane into two independent stereo planes.
// Input with any other channel count is returned unchanged.
func Upmix(planes [][]float64) [][]float64 {
	if len(planes) != 1 {
		return planes
	}

	right := append([]float64(nil), planes[0]...)

	return [][]float64{planes[0], right}
}
