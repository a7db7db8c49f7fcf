package optim

import (
	"context"
	"errors"
	"math"

	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/sim"
)

// Goal selects whether the objective metric is minimized or maximized.
type Goal int

const (
	Minimize Goal = iota
	Maximize
)

type Trial struct {
	Params map[string]float64
	Value  float64
	Stable bool
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	Goal       Goal
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Search evaluates every combination of the parameter ranges on top of base,
// running all trials of the grid concurrently. Unstable trials are never
// selected as best.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, frames int, metricName string) (*Trial, []Trial, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, nil, errors.New("parameter names and ranges differ in length")
	}
	for _, name := range g.paramNames {
		if _, err := config.LookupParam(name); err != nil {
			return nil, nil, err
		}
	}

	combos := g.combinations(0, map[string]float64{}, nil)

	sims := make([]*sim.Simulator, 0, len(combos))
	for _, params := range combos {
		cfg := base.Clone()
		for name, v := range params {
			if err := cfg.SetParam(name, v); err != nil {
				return nil, nil, err
			}
		}
		scene, err := sim.NewScene(cfg, nil)
		if err != nil {
			return nil, nil, err
		}
		sims = append(sims, scene.Sim)
	}

	results, err := sim.NewBatch(sims...).Run(ctx, frames)
	if err != nil {
		return nil, nil, err
	}

	trials := make([]Trial, len(combos))
	var best *Trial
	for i, r := range results {
		trials[i] = Trial{
			Params: combos[i],
			Value:  r.Metrics[metricName],
			Stable: len(r.Errors) == 0,
		}
		if !trials[i].Stable || math.IsNaN(trials[i].Value) {
			continue
		}
		if best == nil || g.better(trials[i].Value, best.Value) {
			best = &trials[i]
		}
	}
	if best == nil {
		return nil, trials, errors.New("no stable trial")
	}
	return best, trials, nil
}

func (g *GridSearch) better(a, b float64) bool {
	if g.Goal == Maximize {
		return a > b
	}
	return a < b
}

func (g *GridSearch) combinations(depth int, current map[string]float64, out []map[string]float64) []map[string]float64 {
	if depth == len(g.paramNames) {
		cp := make(map[string]float64, len(current))
		for k, v := range current {
			cp[k] = v
		}
		return append(out, cp)
	}

	name := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		current[name] = val
		out = g.combinations(depth+1, current, out)
	}
	delete(current, name)
	return out
}
