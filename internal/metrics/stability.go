package metrics

import (
	"github.com/san-kum/clothsim/internal/cloth"
)

// Stability is the fraction of frames whose state was finite and whose
// velocity norm stayed under the threshold.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(m *cloth.Mesh, t float64) {
	s.samples++
	if !m.IsFinite() || m.VelocityNorm() > s.threshold {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
