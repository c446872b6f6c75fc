// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package equilibrium

import (
	"context"
	"fmt"
	"runtime"

	"github.com/curioloop/gibbs/chemsys"
	"golang.org/x/sync/errgroup"
)

// Problem is one state to equilibrate under its conditions.
type Problem struct {
	State      *chemsys.State
	Conditions *Conditions
}

// SolveAll solves independent problems sharing one Specs on at most workers goroutines,
// each with its own Solver. A non-positive workers selects GOMAXPROCS.
//
// Results are ordered as problems. The first configuration error cancels the remaining
// problems and is returned; a cancelled ctx stops dispatching and returns ctx.Err().
// Problems must not share states.
func SolveAll(ctx context.Context, specs *Specs, opts *Options, problems []Problem, workers int) ([]*Result, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, max(len(problems), 1))

	pool := make(chan *Solver, workers)
	for range workers {
		s, err := NewSolver(specs, opts)
		if err != nil {
			return nil, err
		}
		pool <- s
	}

	results := make([]*Result, len(problems))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for k, pr := range problems {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s := <-pool
			defer func() { pool <- s }()
			r, err := s.Solve(pr.State, pr.Conditions)
			if err != nil {
				return fmt.Errorf("equilibrium: problem %d: %w", k, err)
			}
			results[k] = r
			return nil
		})
	}
	err := g.Wait()
	if ctx.Err() != nil {
		return results, ctx.Err()
	}
	return results, err
}
