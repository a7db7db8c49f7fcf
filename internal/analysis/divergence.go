package analysis

import (
	"context"
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/sim"
)

// Separation is the RMS distance between corresponding points of two meshes
// of the same topology.
func Separation(a, b *cloth.Mesh) float64 {
	pa, pb := a.Points(), b.Points()
	n := min(len(pa), len(pb))
	if n == 0 {
		return 0
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		d := pa[i].Position.Sub(pb[i].Position)
		sum += d.Dot(d)
	}
	return math.Sqrt(sum / float64(n))
}

type DivergenceResult struct {
	Rate        float64   // mean log growth of separation per second
	Separations []float64 // one per frame
}

// Divergence runs the scene twice, the second time with the free point
// nearest the grid center displaced by perturbation along X, and measures
// how the separation evolves: λ ≈ ln(d(T)/d0)/T.
func Divergence(ctx context.Context, cfg *config.Config, perturbation float64, frames int) (*DivergenceResult, error) {
	if perturbation <= 0 {
		return nil, errors.New("perturbation must be positive")
	}
	base, err := sim.NewScene(cfg.Clone(), nil)
	if err != nil {
		return nil, err
	}
	pert, err := sim.NewScene(cfg.Clone(), nil)
	if err != nil {
		return nil, err
	}

	m := pert.Mesh()
	p := m.Point(m.Rows()/2, m.Cols()/2)
	p.Position = p.Position.Add(mgl64.Vec3{perturbation, 0, 0})
	d0 := Separation(base.Mesh(), m)

	res := &DivergenceResult{Separations: make([]float64, 0, frames)}
	for f := 0; f < frames; f++ {
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		default:
		}
		if err := base.Sim.Frame(); err != nil {
			return res, err
		}
		if err := pert.Sim.Frame(); err != nil {
			return res, err
		}
		res.Separations = append(res.Separations, Separation(base.Mesh(), m))
	}

	if frames > 0 && d0 > 0 {
		d := res.Separations[len(res.Separations)-1]
		if d > 0 {
			res.Rate = math.Log(d/d0) / base.Sim.Time()
		} else {
			res.Rate = math.Inf(-1)
		}
	}
	return res, nil
}
