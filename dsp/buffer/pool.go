package buffer

import "sync"

// Pool recycles float64 plane sets to reduce GC pressure when the same
// engine mixes many buffers. It is safe for concurrent use.
type Pool struct {
	pool sync.Pool
}

// NewPool returns a Pool ready for use.
func NewPool() *Pool {
	return &Pool{
		pool: sync.Pool{
			New: func() any {
				return &planeSet{}
			},
		},
	}
}

type planeSet struct {
	planes [][]float64
}

// Get returns zeroed planes with the requested shape.
// Callers must return them via Put when done.
func (p *Pool) Get(channels, length int) [][]float64 {
	ps := p.pool.Get().(*planeSet)

	if cap(ps.planes) < channels {
		ps.planes = make([][]float64, channels)
	}

	planes := ps.planes[:channels]
	for c := range planes {
		if cap(planes[c]) < length {
			planes[c] = make([]float64, length)
			continue
		}

		planes[c] = planes[c][:length]
		for i := range planes[c] {
			planes[c][i] = 0
		}
	}

	return planes
}

// Put returns planes to the pool. The caller must not use them afterwards.
func (p *Pool) Put(planes [][]float64) {
	if planes == nil {
		return
	}

	p.pool.Put(&planeSet{planes: planes})
}
