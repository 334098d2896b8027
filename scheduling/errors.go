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

import "errors"

var (
	// ErrInvalidInstance holds the error when the instance is malformed: no tasks, duplicate
	// IDs, non-positive durations or horizons, empty windows or days out of range.
	ErrInvalidInstance = errors.New("invalid instance")
	// ErrInvalidTaskGraph holds the error when prerequisites are cyclic or reference unknown
	// tasks.
	ErrInvalidTaskGraph = errors.New("invalid task graph")
	// ErrUnplaceableTask holds the error when a task can never be scheduled and the
	// configuration asks to reject such tasks.
	ErrUnplaceableTask = errors.New("unplaceable task")
	// ErrInfeasibleInstance holds the error when the solver proves that no schedule exists.
	ErrInfeasibleInstance = errors.New("infeasible instance")
	// ErrInconsistentSolution holds the error when a solver assignment does not decode into a
	// valid schedule. It always signals a modelling defect.
	ErrInconsistentSolution = errors.New("inconsistent solution")
	// ErrSolverTimeout holds the error when the solve stopped on its time limit or on
	// cancellation before proving optimality.
	ErrSolverTimeout = errors.New("solver timeout")
	// ErrSolverUnavailable holds the error when the solving engine failed.
	ErrSolverUnavailable = errors.New("solver unavailable")
	// ErrUnboundedModel holds the error when the engine reports an unbounded objective, which
	// bounded scheduling models cannot have.
	ErrUnboundedModel = errors.New("unbounded model")
	// ErrScheduleViolation holds the error when a schedule breaks an invariant of its instance.
	ErrScheduleViolation = errors.New("schedule violation")
)
