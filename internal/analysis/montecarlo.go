package analysis

import (
	"context"
	"errors"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/sim"
)

type MonteCarloTrial struct {
	Trial     int
	Stable    bool
	MaxStrain float64
	LowestY   float64
}

// MonteCarlo runs trials copies of the scene concurrently, each with every
// free point displaced by a uniform random offset in [-perturbation,
// perturbation] per axis. A trial is stable when it finished without a
// non-finite state and its stability metric stayed at 1. The same seed
// always yields the same offsets.
func MonteCarlo(ctx context.Context, cfg *config.Config, trials int, perturbation float64, frames int, seed int64) ([]MonteCarloTrial, error) {
	if trials <= 0 {
		return nil, errors.New("trials must be positive")
	}
	rng := rand.New(rand.NewSource(seed))

	sims := make([]*sim.Simulator, trials)
	for i := range sims {
		scene, err := sim.NewScene(cfg.Clone(), nil)
		if err != nil {
			return nil, err
		}
		pts := scene.Mesh().Points()
		for k := range pts {
			if pts[k].Fixed {
				continue
			}
			offset := mgl64.Vec3{
				(rng.Float64()*2 - 1) * perturbation,
				(rng.Float64()*2 - 1) * perturbation,
				(rng.Float64()*2 - 1) * perturbation,
			}
			pts[k].Position = pts[k].Position.Add(offset)
		}
		sims[i] = scene.Sim
	}

	results, err := sim.NewBatch(sims...).Run(ctx, frames)
	if err != nil {
		return nil, err
	}

	out := make([]MonteCarloTrial, trials)
	for i, r := range results {
		out[i] = MonteCarloTrial{
			Trial:     i,
			Stable:    len(r.Errors) == 0 && r.Metrics["stability"] == 1,
			MaxStrain: r.Metrics["max_strain"],
			LowestY:   r.Metrics["lowest_height"],
		}
	}
	return out, nil
}

func MonteCarloStats(trials []MonteCarloTrial) (stable, unstable int) {
	for _, t := range trials {
		if t.Stable {
			stable++
		} else {
			unstable++
		}
	}
	return
}
