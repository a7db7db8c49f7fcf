package cloth

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// GroundEpsilon lifts clamped points just above the plane.
	GroundEpsilon = 1e-4

	// SphereMargin scales a sphere's radius to the distance points are pushed out to.
	SphereMargin = 1.05
)

// Collider is static geometry that projects a penetrating point back to its
// surface. Resolve reports whether the point was moved.
type Collider interface {
	Resolve(p *MassPoint) bool
}

// Ground is a horizontal plane at Position.Y(). Width and Depth describe the
// rendered extent only; collision treats the plane as infinite.
type Ground struct {
	Position mgl64.Vec3
	Width    float64
	Depth    float64
	Friction float64
}

func NewGround(pos mgl64.Vec3, width, depth, friction float64) (*Ground, error) {
	if width <= 0 || depth <= 0 {
		return nil, fmt.Errorf("%w: ground extent %fx%f", ErrInvalidCollider, width, depth)
	}
	if err := checkFriction(friction); err != nil {
		return nil, err
	}
	return &Ground{Position: pos, Width: width, Depth: depth, Friction: friction}, nil
}

func (g *Ground) Height() float64 { return g.Position.Y() }

// Resolve clamps a point below the plane and scales its whole velocity by
// the friction coefficient.
func (g *Ground) Resolve(p *MassPoint) bool {
	h := g.Position.Y()
	if p.Position.Y() >= h {
		return false
	}
	p.Position[1] = h + GroundEpsilon
	p.Velocity = p.Velocity.Mul(g.Friction)
	return true
}

type Sphere struct {
	Center   mgl64.Vec3
	Radius   float64
	Friction float64
}

func NewSphere(center mgl64.Vec3, radius, friction float64) (*Sphere, error) {
	if radius <= 0 {
		return nil, fmt.Errorf("%w: sphere radius %f", ErrInvalidCollider, radius)
	}
	if err := checkFriction(friction); err != nil {
		return nil, err
	}
	return &Sphere{Center: center, Radius: radius, Friction: friction}, nil
}

// SafeDistance is the closest a point may sit to the center.
func (s *Sphere) SafeDistance() float64 { return s.Radius * SphereMargin }

// Resolve pushes a point inside the safe distance radially out to exactly
// the safe distance and scales its velocity by the friction coefficient.
func (s *Sphere) Resolve(p *MassPoint) bool {
	safe := s.SafeDistance()
	offset := p.Position.Sub(s.Center)
	dist := offset.Len()
	if dist >= safe {
		return false
	}

	dir := mgl64.Vec3{0, 1, 0}
	if dist > degenerateLength {
		dir = offset.Mul(1 / dist)
	}
	p.Position = s.Center.Add(dir.Mul(safe))
	p.Velocity = p.Velocity.Mul(s.Friction)
	return true
}

func checkFriction(f float64) error {
	if f < 0 || f > 1 {
		return fmt.Errorf("%w: friction must be in [0,1], got %f", ErrInvalidCollider, f)
	}
	return nil
}
