package cloth

import "github.com/go-gl/mathgl/mgl64"

// DefaultMass is the mass of every grid point unless configured otherwise.
const DefaultMass = 1.0

// MassPoint is a single node of the lattice.
type MassPoint struct {
	Position mgl64.Vec3
	Velocity mgl64.Vec3
	Force    mgl64.Vec3
	Normal   mgl64.Vec3
	TexCoord mgl64.Vec2
	Mass     float64
	Fixed    bool
}

func NewMassPoint(pos mgl64.Vec3, mass float64) MassPoint {
	return MassPoint{Position: pos, Mass: mass}
}

func (p *MassPoint) AddForce(f mgl64.Vec3) {
	p.Force = p.Force.Add(f)
}

// Integrate advances a free point by one semi-implicit Euler step. The force
// accumulator is cleared for fixed points too, so a later Unpin never sees
// forces gathered while the point was pinned.
func (p *MassPoint) Integrate(dt float64) {
	if !p.Fixed {
		acc := p.Force.Mul(1 / p.Mass)
		p.Velocity = p.Velocity.Add(acc.Mul(dt))
		p.Position = p.Position.Add(p.Velocity.Mul(dt))
	}
	p.Force = mgl64.Vec3{}
}
