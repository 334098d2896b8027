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

	"github.com/rewardsched/rewardsched/mip"
)

// Engine solves mixed integer programs. Closing `interrupt` asks the engine to stop and
// return its best solution.
type Engine interface {
	Solve(m *mip.Model, params mip.Parameters, interrupt <-chan struct{}) (*mip.Response, error)
}

// BranchAndBound is the Engine of package mip.
type BranchAndBound struct{}

// Solve implements Engine.
func (BranchAndBound) Solve(m *mip.Model, params mip.Parameters, interrupt <-chan struct{}) (*mip.Response, error) {
	return mip.SolveModelInterruptibleWithParameters(m, &params, interrupt)
}

// OutcomeKind classifies the result of a solve.
type OutcomeKind int

const (
	// OutcomeOptimal means the assignment is proven optimal.
	OutcomeOptimal OutcomeKind = iota
	// OutcomeFeasible means the assignment is valid but the search stopped on a node or gap
	// limit before proving optimality.
	OutcomeFeasible
	// OutcomeInfeasible means no assignment exists.
	OutcomeInfeasible
	// OutcomeUnbounded means the objective is unbounded.
	OutcomeUnbounded
	// OutcomeTimedOut means the time limit or a cancellation stopped the search. The
	// assignment, if any, is the best one found.
	OutcomeTimedOut
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeOptimal:
		return "OPTIMAL"
	case OutcomeFeasible:
		return "FEASIBLE"
	case OutcomeInfeasible:
		return "INFEASIBLE"
	case OutcomeUnbounded:
		return "UNBOUNDED"
	case OutcomeTimedOut:
		return "TIMED_OUT"
	}
	return fmt.Sprintf("OutcomeKind(%d)", int(k))
}

// Outcome is the engine-independent result of solving a Model.
type Outcome struct {
	Kind OutcomeKind
	// Objective is the objective of Assignment and Bound the best proven bound on the
	// optimum.
	Objective float64
	Bound     float64
	// Assignment holds one value per program variable, or is nil without a solution.
	Assignment []float64
	Nodes      int
	WallTime   time.Duration
}

// Adapter runs an Engine on scheduling models.
type Adapter struct {
	Engine Engine
	Params mip.Parameters
}

// NewAdapter returns the Adapter configured by `cfg`.
func NewAdapter(cfg Config) *Adapter {
	return &Adapter{Engine: cfg.engine(), Params: cfg.solverParameters()}
}

// Solve solves the program of `m`. Cancelling `ctx` interrupts the engine, which then returns
// its best assignment with OutcomeTimedOut.
//
// An engine failure or an invalid program yields ErrSolverUnavailable.
func (a *Adapter) Solve(ctx context.Context, m *Model) (Outcome, error) {
	engine := a.Engine
	if engine == nil {
		engine = BranchAndBound{}
	}

	interrupt := make(chan struct{})
	done := make(chan struct{})
	defer close(done)
	if ctx.Err() != nil {
		close(interrupt)
	} else {
		go func() {
			select {
			case <-ctx.Done():
				close(interrupt)
			case <-done:
			}
		}()
	}

	res, err := engine.Solve(m.program, a.Params, interrupt)
	if err != nil {
		return Outcome{}, fmt.Errorf("solving %q: %v: %w", m.Name(), err, ErrSolverUnavailable)
	}
	if res == nil {
		return Outcome{}, fmt.Errorf("solving %q: engine returned no response: %w", m.Name(), ErrSolverUnavailable)
	}
	log.V(1).Infof("scheduling: %q: engine status %v (limit %v), objective %v, bound %v, %d nodes in %v",
		m.Name(), res.Status, res.Limit, res.ObjectiveValue, res.BestObjectiveBound, res.Nodes, res.WallTime)

	out := Outcome{
		Objective: res.ObjectiveValue,
		Bound:     res.BestObjectiveBound,
		Nodes:     res.Nodes,
		WallTime:  res.WallTime,
	}
	if res.HasSolution() {
		out.Assignment = append([]float64(nil), res.Solution...)
	}
	switch res.Status {
	case mip.Optimal:
		out.Kind = OutcomeOptimal
	case mip.Feasible:
		out.Kind = OutcomeFeasible
		if res.Limit == mip.TimeLimit || res.Limit == mip.Interrupted {
			out.Kind = OutcomeTimedOut
		}
	case mip.Infeasible:
		out.Kind = OutcomeInfeasible
	case mip.Unbounded:
		out.Kind = OutcomeUnbounded
	case mip.Unknown:
		out.Kind = OutcomeTimedOut
	case mip.ModelInvalid:
		return Outcome{}, fmt.Errorf("solving %q: %s: %w", m.Name(), res.InvalidReason, ErrSolverUnavailable)
	default:
		return Outcome{}, fmt.Errorf("solving %q: unexpected status %v: %w", m.Name(), res.Status, ErrSolverUnavailable)
	}
	if (out.Kind == OutcomeOptimal || out.Kind == OutcomeFeasible) && out.Assignment == nil {
		return Outcome{}, fmt.Errorf("solving %q: status %v without a solution: %w", m.Name(), res.Status, ErrSolverUnavailable)
	}
	return out, nil
}
