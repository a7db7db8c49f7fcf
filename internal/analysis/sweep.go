package analysis

import (
	"context"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/sim"
)

type SweepPoint struct {
	Param  float64
	Value  float64
	Stable bool
}

// Sweep varies one named parameter over values, runs every variant
// concurrently for frames frames and reports the named result metric.
func Sweep(ctx context.Context, cfg *config.Config, param string, values []float64, frames int, metric string) ([]SweepPoint, error) {
	if _, err := config.LookupParam(param); err != nil {
		return nil, err
	}

	sims := make([]*sim.Simulator, len(values))
	for i, v := range values {
		c := cfg.Clone()
		if err := c.SetParam(param, v); err != nil {
			return nil, err
		}
		scene, err := sim.NewScene(c, nil)
		if err != nil {
			return nil, err
		}
		sims[i] = scene.Sim
	}

	results, err := sim.NewBatch(sims...).Run(ctx, frames)
	if err != nil {
		return nil, err
	}

	points := make([]SweepPoint, len(values))
	for i, r := range results {
		points[i] = SweepPoint{
			Param:  values[i],
			Value:  r.Metrics[metric],
			Stable: len(r.Errors) == 0,
		}
	}
	return points, nil
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}

// TracePoint advances s by frames frames and returns the position of grid
// point (i, j) after each one. Out-of-range coordinates yield nil.
func TracePoint(s *sim.Simulator, i, j, frames int) ([]mgl64.Vec3, error) {
	if _, ok := s.Mesh().Index(i, j); !ok {
		return nil, nil
	}
	out := make([]mgl64.Vec3, 0, frames)
	for f := 0; f < frames; f++ {
		if err := s.Frame(); err != nil {
			return out, err
		}
		out = append(out, s.Mesh().Point(i, j).Position)
	}
	return out, nil
}
