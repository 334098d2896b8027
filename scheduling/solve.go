// Copyright 2010-2024 Google LLC
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package scheduling

import (
	"context"
	"fmt"
	"time"

	log "github.com/golang/glog"
	"golang.org/x/sync/errgroup"
)

// Result is the outcome of Solve.
type Result struct {
	Schedule *Schedule
	Status   OutcomeKind
	// Objective is the total reward of Schedule and Bound the best proven upper bound on the
	// optimum.
	Objective float64
	Bound     float64
	// Dropped lists the tasks excluded before solving.
	Dropped  []DroppedTask
	Nodes    int
	WallTime time.Duration
}

// Solve builds, solves and decodes `inst`.
//
// When the time limit or `ctx` stops the search, Solve returns the best schedule found, if
// any, together with an error wrapping ErrSolverTimeout. A proven infeasible instance yields
// ErrInfeasibleInstance.
func Solve(ctx context.Context, inst Instance, cfg Config) (*Result, error) {
	start := time.Now()
	m, err := BuildModel(inst, cfg)
	if err != nil {
		return nil, err
	}
	out, err := NewAdapter(cfg).Solve(ctx, m)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Status:  out.Kind,
		Bound:   out.Bound,
		Dropped: m.Dropped(),
		Nodes:   out.Nodes,
	}
	switch out.Kind {
	case OutcomeInfeasible:
		return nil, fmt.Errorf("instance %q: %w", inst.Name, ErrInfeasibleInstance)
	case OutcomeUnbounded:
		return nil, fmt.Errorf("instance %q: %w", inst.Name, ErrUnboundedModel)
	}
	if out.Assignment != nil {
		s, err := Extract(m, out.Assignment)
		if err != nil {
			return nil, fmt.Errorf("instance %q: %w", inst.Name, err)
		}
		res.Schedule = s
		res.Objective = s.Objective
	}
	res.WallTime = time.Since(start)
	log.Infof("scheduling: %q: %v, %d tasks scheduled, objective %v, bound %v, %d nodes in %v",
		inst.Name, res.Status, len(res.Schedule.TaskIDs()), res.Objective, res.Bound, res.Nodes, res.WallTime)

	if out.Kind == OutcomeTimedOut {
		if ctx.Err() != nil {
			return res, fmt.Errorf("instance %q: %w: %w", inst.Name, ErrSolverTimeout, ctx.Err())
		}
		return res, fmt.Errorf("instance %q: %w", inst.Name, ErrSolverTimeout)
	}
	return res, nil
}

// BatchResult holds the outcome of one instance of SolveBatch.
type BatchResult struct {
	Result *Result
	Err    error
}

// SolveBatch solves the instances concurrently, at most `parallelism` at a time (unbounded
// when not positive). Results are in input order; the failure of one instance does not stop
// the others.
func SolveBatch(ctx context.Context, insts []Instance, cfg Config, parallelism int) []BatchResult {
	results := make([]BatchResult, len(insts))
	var g errgroup.Group
	if parallelism > 0 {
		g.SetLimit(parallelism)
	}
	for i := range insts {
		i := i
		g.Go(func() error {
			res, err := Solve(ctx, insts[i], cfg)
			if err != nil {
				log.Warningf("scheduling: batch instance %d (%q): %v", i, insts[i].Name, err)
			}
			results[i] = BatchResult{Result: res, Err: err}
			return nil
		})
	}
	// Every goroutine returns nil; failures are reported per instance.
	_ = g.Wait()
	return results
}
