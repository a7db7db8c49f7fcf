package sim

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Batch runs independent simulators concurrently, at most Workers at a time.
// Simulators must not share a mesh.
type Batch struct {
	// Workers bounds concurrency; zero means runtime.NumCPU().
	Workers int

	sims []*Simulator
}

func NewBatch(sims ...*Simulator) *Batch {
	return &Batch{sims: sims}
}

func (b *Batch) Len() int { return len(b.sims) }

// Run advances every simulator by frames frames. Results are in input order.
// Every simulator runs to completion; the first error to occur is returned
// alongside all results.
func (b *Batch) Run(ctx context.Context, frames int) ([]*Result, error) {
	results := make([]*Result, len(b.sims))

	workers := b.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i, s := range b.sims {
		g.Go(func() error {
			r, err := s.Run(ctx, frames)
			results[i] = r
			return err
		})
	}

	err := g.Wait()
	return results, err
}
