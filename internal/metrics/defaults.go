package metrics

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/clothsim/internal/cloth"
)

// Metric matches the frame metric contract of the simulator.
type Metric interface {
	Name() string
	Observe(m *cloth.Mesh, t float64)
	Value() float64
	Reset()
}

const (
	DefaultStabilityThreshold = 1e3
	DefaultSettlingThreshold  = 0.05
)

// Default returns the metric set every run records.
func Default(gravity mgl64.Vec3) []Metric {
	return []Metric{
		NewEnergy(),
		NewEnergyDrift(gravity),
		NewPeakStrain(),
		NewLowestHeight(),
		NewSettling(DefaultSettlingThreshold),
		NewStability(DefaultStabilityThreshold),
	}
}
