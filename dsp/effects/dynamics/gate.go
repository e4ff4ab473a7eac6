package dynamics

// gateScale maps the 0..1 gate amount to a linear threshold.
const gateScale = 0.1

// Gate is a memoryless hard gate: samples whose magnitude is below the
// threshold are zeroed, everything else passes unchanged. A sample exactly
// at the threshold passes. There is no smoothing or hysteresis.
type Gate struct {
	amount    float64
	threshold float64
}

// NewGate creates a gate for an amount in [0, 1]. The linear threshold is
// amount*0.1.
func NewGate(amount float64) (*Gate, error) {
	if err := validateAmount("gate", amount); err != nil {
		return nil, err
	}

	return &Gate{amount: amount, threshold: amount * gateScale}, nil
}

// Amount returns the configured amount.
func (g *Gate) Amount() float64 { return g.amount }

// Threshold returns the linear gate threshold.
func (g *Gate) Threshold() float64 { return g.threshold }

// Open reports whether x passes the gate.
func (g *Gate) Open(x float64) bool {
	if x < 0 {
		x = -x
	}

	return !(x < g.threshold)
}

// Process zeroes, in place, every sample the gate does not let through.
func (g *Gate) Process(planes [][]float64) {
	for _, p := range planes {
		for i, x := range p {
			if !g.Open(x) {
				p[i] = 0
			}
		}
	}
}
