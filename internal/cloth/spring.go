package cloth

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// degenerateLength is the length below which a spring has no usable direction.
const degenerateLength = 1e-9

type SpringKind int

const (
	Structural SpringKind = iota
	Shear
	Bending
)

func (k SpringKind) String() string {
	switch k {
	case Structural:
		return "structural"
	case Shear:
		return "shear"
	case Bending:
		return "bending"
	default:
		return fmt.Sprintf("SpringKind(%d)", int(k))
	}
}

// Spring is a damped linear spring between two points of a mesh, referenced
// by index.
type Spring struct {
	A, B       int
	RestLength float64
	Stiffness  float64
	Damping    float64
	Kind       SpringKind
}

// NewSpring connects points[a] and points[b]. The rest length is the distance
// between them right now and is never recomputed.
func NewSpring(points []MassPoint, a, b int, stiffness, damping float64, kind SpringKind) (Spring, error) {
	if a == b || a < 0 || b < 0 || a >= len(points) || b >= len(points) {
		return Spring{}, fmt.Errorf("%w: endpoints %d and %d", ErrDegenerateSpring, a, b)
	}
	if stiffness <= 0 {
		return Spring{}, fmt.Errorf("%w: stiffness must be positive, got %f", ErrInvalidParameter, stiffness)
	}
	if damping < 0 {
		return Spring{}, fmt.Errorf("%w: damping must be non-negative, got %f", ErrInvalidParameter, damping)
	}
	rest := points[b].Position.Sub(points[a].Position).Len()
	if rest < degenerateLength {
		return Spring{}, fmt.Errorf("%w: zero rest length between %d and %d", ErrDegenerateSpring, a, b)
	}
	return Spring{
		A:          a,
		B:          b,
		RestLength: rest,
		Stiffness:  stiffness,
		Damping:    damping,
		Kind:       kind,
	}, nil
}

// Force returns the Hooke plus damping force acting on A. B receives its
// negation. Coincident endpoints give zero.
func (s *Spring) Force(points []MassPoint) mgl64.Vec3 {
	pa, pb := &points[s.A], &points[s.B]

	delta := pb.Position.Sub(pa.Position)
	length := delta.Len()
	if length < degenerateLength {
		return mgl64.Vec3{}
	}
	dir := delta.Mul(1 / length)

	stretch := length - s.RestLength
	relVel := pb.Velocity.Sub(pa.Velocity).Dot(dir)
	return dir.Mul(stretch*s.Stiffness + relVel*s.Damping)
}

// ApplyInternalForce adds Force to A and its negation to B.
func (s *Spring) ApplyInternalForce(points []MassPoint, dt float64) {
	f := s.Force(points)
	points[s.A].AddForce(f)
	points[s.B].AddForce(f.Mul(-1))
}

func (s *Spring) Length(points []MassPoint) float64 {
	return points[s.B].Position.Sub(points[s.A].Position).Len()
}

// Strain is the relative elongation (length-rest)/rest.
func (s *Spring) Strain(points []MassPoint) float64 {
	return (s.Length(points) - s.RestLength) / s.RestLength
}
