package metrics

import (
	"math"

	"github.com/san-kum/clothsim/internal/cloth"
)

// PeakStrain is the largest spring strain seen in any observed frame.
type PeakStrain struct {
	name string
	peak float64
}

func NewPeakStrain() *PeakStrain {
	return &PeakStrain{name: "max_strain"}
}

func (p *PeakStrain) Name() string { return p.name }

func (p *PeakStrain) Observe(m *cloth.Mesh, t float64) {
	p.peak = math.Max(p.peak, m.MaxStrain())
}

func (p *PeakStrain) Value() float64 { return p.peak }

func (p *PeakStrain) Reset() { p.peak = 0 }

// LowestHeight is the minimum Y reached by any point.
type LowestHeight struct {
	name    string
	lowest  float64
	samples int
}

func NewLowestHeight() *LowestHeight {
	return &LowestHeight{name: "lowest_height"}
}

func (l *LowestHeight) Name() string { return l.name }

func (l *LowestHeight) Observe(m *cloth.Mesh, t float64) {
	y := m.LowestPoint().Y()
	if l.samples == 0 || y < l.lowest {
		l.lowest = y
	}
	l.samples++
}

func (l *LowestHeight) Value() float64 { return l.lowest }

func (l *LowestHeight) Reset() {
	l.lowest = 0
	l.samples = 0
}

// Settling reports the time of the last frame whose velocity norm was at or
// above the threshold. A cloth that never calms down reports the last time
// observed.
type Settling struct {
	name      string
	threshold float64
	last      float64
}

func NewSettling(threshold float64) *Settling {
	return &Settling{name: "settling_time", threshold: threshold}
}

func (s *Settling) Name() string { return s.name }

func (s *Settling) Observe(m *cloth.Mesh, t float64) {
	if m.VelocityNorm() >= s.threshold {
		s.last = t
	}
}

func (s *Settling) Value() float64 { return s.last }

func (s *Settling) Reset() { s.last = 0 }
