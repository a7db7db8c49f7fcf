package cloth

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

func (m *Mesh) KineticEnergy() float64 {
	e := 0.0
	for _, p := range m.points {
		e += 0.5 * p.Mass * p.Velocity.Dot(p.Velocity)
	}
	return e
}

// VelocityNorm is the Euclidean norm of the stacked velocity vector.
func (m *Mesh) VelocityNorm() float64 {
	sum := 0.0
	for _, p := range m.points {
		sum += p.Velocity.Dot(p.Velocity)
	}
	return math.Sqrt(sum)
}

// MaxStrain returns the largest absolute relative elongation over all springs.
func (m *Mesh) MaxStrain() float64 {
	maxStrain := 0.0
	for k := range m.springs {
		maxStrain = math.Max(maxStrain, math.Abs(m.springs[k].Strain(m.points)))
	}
	return maxStrain
}

// LowestPoint returns the point with the smallest height.
func (m *Mesh) LowestPoint() mgl64.Vec3 {
	if len(m.points) == 0 {
		return mgl64.Vec3{}
	}
	low := m.points[0].Position
	for _, p := range m.points[1:] {
		if p.Position.Y() < low.Y() {
			low = p.Position
		}
	}
	return low
}

func (m *Mesh) Centroid() mgl64.Vec3 {
	var c mgl64.Vec3
	if len(m.points) == 0 {
		return c
	}
	for _, p := range m.points {
		c = c.Add(p.Position)
	}
	return c.Mul(1 / float64(len(m.points)))
}

// IsFinite reports whether every position and velocity is free of NaN and Inf.
func (m *Mesh) IsFinite() bool {
	for _, p := range m.points {
		if !finite(p.Position) || !finite(p.Velocity) {
			return false
		}
	}
	return true
}

func finite(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
