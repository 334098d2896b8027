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

package mip

import (
	"errors"
	"fmt"
	"time"
)

// SolverStatus is the outcome of a solve.
type SolverStatus int

const (
	// Unknown means the search stopped on a limit before finding any solution.
	Unknown SolverStatus = iota
	// ModelInvalid means the model failed validation; see Response.InvalidReason.
	ModelInvalid
	// Feasible means a solution was found but its optimality is not proven.
	Feasible
	// Infeasible means the search proved that no solution exists.
	Infeasible
	// Optimal means the solution is proven optimal within the absolute tolerance.
	Optimal
	// Unbounded means the objective can be improved without limit.
	Unbounded
)

func (s SolverStatus) String() string {
	switch s {
	case Unknown:
		return "UNKNOWN"
	case ModelInvalid:
		return "MODEL_INVALID"
	case Feasible:
		return "FEASIBLE"
	case Infeasible:
		return "INFEASIBLE"
	case Optimal:
		return "OPTIMAL"
	case Unbounded:
		return "UNBOUNDED"
	}
	return fmt.Sprintf("SolverStatus(%d)", int(s))
}

// LimitReason tells which limit, if any, stopped the search early.
type LimitReason int

const (
	// NoLimit means the search ran to completion.
	NoLimit LimitReason = iota
	// TimeLimit means Parameters.MaxTime elapsed.
	TimeLimit
	// NodeLimit means Parameters.MaxNodes nodes were explored.
	NodeLimit
	// Interrupted means the interrupt channel fired.
	Interrupted
	// GapLimit means some subtrees were pruned using Parameters.RelativeGap.
	GapLimit
)

func (l LimitReason) String() string {
	switch l {
	case NoLimit:
		return "NONE"
	case TimeLimit:
		return "TIME_LIMIT"
	case NodeLimit:
		return "NODE_LIMIT"
	case Interrupted:
		return "INTERRUPTED"
	case GapLimit:
		return "GAP_LIMIT"
	}
	return fmt.Sprintf("LimitReason(%d)", int(l))
}

// Parameters control the branch-and-bound search. The zero value means no limits and
// default tolerances.
type Parameters struct {
	// MaxTime bounds the wall-clock duration of the search when positive.
	MaxTime time.Duration
	// MaxNodes bounds the number of explored nodes when positive.
	MaxNodes int
	// RelativeGap lets the search prune nodes whose bound does not beat the incumbent by
	// more than this fraction of its value.
	RelativeGap float64
	// IntegralityTolerance is the distance to the nearest integer under which an integer
	// variable counts as integral. Defaults to 1e-6.
	IntegralityTolerance float64
	// FeasibilityTolerance is the allowed violation of bounds and rows. Defaults to 1e-7.
	FeasibilityTolerance float64
	// LogSearchProgress logs the search progress at info level.
	LogSearchProgress bool
}

// ErrInvalidParameters holds the error when solver parameters are out of range.
var ErrInvalidParameters = errors.New("invalid solver parameters")

func (p *Parameters) withDefaults() (Parameters, error) {
	var params Parameters
	if p != nil {
		params = *p
	}
	if params.MaxTime < 0 || params.MaxNodes < 0 || params.RelativeGap < 0 ||
		params.IntegralityTolerance < 0 || params.FeasibilityTolerance < 0 {
		return params, fmt.Errorf("%+v: %w", params, ErrInvalidParameters)
	}
	if params.IntegralityTolerance == 0 {
		params.IntegralityTolerance = 1e-6
	}
	if params.FeasibilityTolerance == 0 {
		params.FeasibilityTolerance = 1e-7
	}
	return params, nil
}

// Response is the result of a solve.
type Response struct {
	Status SolverStatus
	// Limit is set when the search stopped before proving optimality.
	Limit LimitReason
	// ObjectiveValue is the objective of Solution, offset included.
	ObjectiveValue float64
	// BestObjectiveBound is the best proven bound on the objective.
	BestObjectiveBound float64
	// Solution holds one value per variable, or is nil when no solution was found.
	Solution []float64
	Nodes    int
	WallTime time.Duration
	// InvalidReason explains a ModelInvalid status.
	InvalidReason string
}

// HasSolution reports whether the response carries a solution.
func (r *Response) HasSolution() bool {
	return r != nil && len(r.Solution) > 0
}

// SolveModel solves the model with default parameters and returns a Response.
func SolveModel(input *Model) (*Response, error) {
	return SolveModelWithParameters(input, nil)
}

// SolveModelWithParameters solves the model with the given parameters and returns a Response.
func SolveModelWithParameters(input *Model, params *Parameters) (*Response, error) {
	return SolveModelInterruptibleWithParameters(input, params, nil)
}

// SolveModelInterruptibleWithParameters solves the model with the given parameters and returns
// a Response. The solve can be interrupted by closing `interrupt`; the response then
// carries the best solution found so far. Both the interrupt and Parameters.MaxTime also stop
// a relaxation that is still running.
func SolveModelInterruptibleWithParameters(input *Model, params *Parameters, interrupt <-chan struct{}) (*Response, error) {
	if input == nil {
		return nil, errors.New("solving a nil model")
	}
	p, err := params.withDefaults()
	if err != nil {
		return nil, err
	}
	start := time.Now()
	if err := input.Validate(); err != nil {
		return &Response{Status: ModelInvalid, InvalidReason: err.Error(), WallTime: time.Since(start)}, nil
	}

	// The search polls `interrupt` between nodes and waits on it while a relaxation runs.
	s := newSearch(input, p, interrupt, start)
	res, err := s.run()
	if err != nil {
		return nil, fmt.Errorf("branch-and-bound on %q: %w", input.Name, err)
	}
	res.WallTime = time.Since(start)
	return res, nil
}

// SolutionBooleanValue returns the value of BoolVar `bv` in the response.
func SolutionBooleanValue(r *Response, bv BoolVar) bool {
	return SolutionValue(r, bv) > 0.5
}

// SolutionValue returns the value of LinearArgument `la` in the response, or 0 when the
// response has no solution.
func SolutionValue(r *Response, la LinearArgument) float64 {
	if !r.HasSolution() {
		return 0
	}
	return la.evaluateSolutionValue(r.Solution)
}
