package cloth

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	DefaultStrainIterations = 4
	DefaultMaxStretch       = 0.1
)

// Integrator advances every point of a mesh by one tick. Forces for the tick
// are already accumulated when Integrate is called, and every point's force
// accumulator must be zero when it returns.
type Integrator interface {
	Integrate(points []MassPoint, springs []Spring, dt float64)
}

type SemiImplicitEuler struct{}

func NewSemiImplicitEuler() *SemiImplicitEuler {
	return &SemiImplicitEuler{}
}

func (e *SemiImplicitEuler) Integrate(points []MassPoint, _ []Spring, dt float64) {
	for i := range points {
		points[i].Integrate(dt)
	}
}

// StrainLimited runs a semi-implicit Euler step and then relaxes springs
// stretched beyond MaxStretch of their rest length, Iterations sweeps over
// the spring list. Fixed points never move. The velocity of every corrected
// point absorbs the correction so the next tick does not undo it.
type StrainLimited struct {
	Iterations int
	MaxStretch float64

	before []mgl64.Vec3
}

func NewStrainLimited(iterations int, maxStretch float64) *StrainLimited {
	if iterations <= 0 {
		iterations = DefaultStrainIterations
	}
	if maxStretch <= 0 {
		maxStretch = DefaultMaxStretch
	}
	return &StrainLimited{Iterations: iterations, MaxStretch: maxStretch}
}

func (s *StrainLimited) ensureScratch(n int) {
	if len(s.before) != n {
		s.before = make([]mgl64.Vec3, n)
	}
}

func (s *StrainLimited) Integrate(points []MassPoint, springs []Spring, dt float64) {
	for i := range points {
		points[i].Integrate(dt)
	}

	s.ensureScratch(len(points))
	for i := range points {
		s.before[i] = points[i].Position
	}

	for it := 0; it < s.Iterations; it++ {
		for k := range springs {
			s.relax(points, &springs[k])
		}
	}

	if dt <= 0 {
		return
	}
	for i := range points {
		if points[i].Fixed {
			continue
		}
		corr := points[i].Position.Sub(s.before[i])
		points[i].Velocity = points[i].Velocity.Add(corr.Mul(1 / dt))
	}
}

func (s *StrainLimited) relax(points []MassPoint, sp *Spring) {
	pa, pb := &points[sp.A], &points[sp.B]
	if pa.Fixed && pb.Fixed {
		return
	}

	delta := pb.Position.Sub(pa.Position)
	length := delta.Len()
	limit := sp.RestLength * (1 + s.MaxStretch)
	if length <= limit || length < degenerateLength {
		return
	}

	move := delta.Mul((length - limit) / length)
	switch {
	case pa.Fixed:
		pb.Position = pb.Position.Sub(move)
	case pb.Fixed:
		pa.Position = pa.Position.Add(move)
	default:
		half := move.Mul(0.5)
		pa.Position = pa.Position.Add(half)
		pb.Position = pb.Position.Sub(half)
	}
}

// Verlet is velocity Verlet. Spring forces are evaluated a second time at
// the predicted state; every other force accumulated for the tick is held
// constant across it.
type Verlet struct {
	external []mgl64.Vec3
}

func NewVerlet() *Verlet {
	return &Verlet{}
}

func (v *Verlet) ensureScratch(n int) {
	if len(v.external) != n {
		v.external = make([]mgl64.Vec3, n)
	}
}

func (v *Verlet) Integrate(points []MassPoint, springs []Spring, dt float64) {
	v.ensureScratch(len(points))

	for i := range points {
		v.external[i] = points[i].Force
	}
	for k := range springs {
		f := springs[k].Force(points)
		v.external[springs[k].A] = v.external[springs[k].A].Sub(f)
		v.external[springs[k].B] = v.external[springs[k].B].Add(f)
	}

	halfDt := 0.5 * dt
	for i := range points {
		p := &points[i]
		if !p.Fixed {
			p.Velocity = p.Velocity.Add(p.Force.Mul(halfDt / p.Mass))
			p.Position = p.Position.Add(p.Velocity.Mul(dt))
		}
		p.Force = mgl64.Vec3{}
	}

	for k := range springs {
		springs[k].ApplyInternalForce(points, dt)
	}
	for i := range points {
		p := &points[i]
		if !p.Fixed {
			p.Velocity = p.Velocity.Add(p.Force.Add(v.external[i]).Mul(halfDt / p.Mass))
		}
		p.Force = mgl64.Vec3{}
	}
}

// IntegratorNames lists the names accepted by IntegratorByName.
var IntegratorNames = []string{"euler", "strain-limited", "verlet"}

func IntegratorByName(name string, iterations int, maxStretch float64) (Integrator, error) {
	switch name {
	case "", "euler":
		return NewSemiImplicitEuler(), nil
	case "strain-limited":
		return NewStrainLimited(iterations, maxStretch), nil
	case "verlet":
		return NewVerlet(), nil
	default:
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
}
