package metrics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/clothsim/internal/cloth"
)

// Energy averages the kinetic energy of the cloth over observed frames.
type Energy struct {
	name    string
	samples int
	total   float64
	last    float64
}

func NewEnergy() *Energy {
	return &Energy{name: "kinetic_energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(m *cloth.Mesh, t float64) {
	e.last = m.KineticEnergy()
	e.total += e.last
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

func (e *Energy) Last() float64 { return e.last }

func (e *Energy) Reset() {
	e.total = 0
	e.last = 0
	e.samples = 0
}

// TotalEnergy is kinetic plus gravitational plus elastic energy. Gravity is
// the per-tick acceleration vector the mesh is driven with.
func TotalEnergy(m *cloth.Mesh, gravity mgl64.Vec3) float64 {
	pts := m.Points()
	e := m.KineticEnergy()
	for _, p := range pts {
		e -= p.Mass * gravity.Dot(p.Position)
	}
	springs := m.Springs()
	for k := range springs {
		ext := springs[k].Length(pts) - springs[k].RestLength
		e += 0.5 * springs[k].Stiffness * ext * ext
	}
	return e
}

// EnergyDrift tracks the largest relative change of total energy from the
// first observed frame. Damping makes it grow; a blow-up makes it explode.
type EnergyDrift struct {
	name          string
	gravity       mgl64.Vec3
	initialEnergy float64
	currentEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift(gravity mgl64.Vec3) *EnergyDrift {
	return &EnergyDrift{
		name:    "energy_drift",
		gravity: gravity,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(m *cloth.Mesh, t float64) {
	energy := TotalEnergy(m, e.gravity)

	if e.samples == 0 {
		e.initialEnergy = energy
	}

	e.currentEnergy = energy
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.currentEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
