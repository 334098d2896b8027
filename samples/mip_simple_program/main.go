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

// The mip_simple_program command solves a small integer program with the branch-and-bound solver.
package main

import (
	"fmt"

	log "github.com/golang/glog"

	"github.com/rewardsched/rewardsched/mip"
)

func simpleMipProgram() error {
	mb := mip.NewModelBuilder()
	mb.SetName("simple_mip_program")

	x := mb.NewIntVar(0, 10).WithName("x")
	y := mb.NewIntVar(0, 10).WithName("y")

	// x + 7y <= 17.5
	mb.AddLessOrEqual(mip.NewLinearExpr().Add(x).AddTerm(y, 7), mip.NewConstant(17.5))
	// x <= 3.5
	mb.AddLessOrEqual(x, mip.NewConstant(3.5))

	mb.Maximize(mip.NewLinearExpr().Add(x).AddTerm(y, 10))

	m, err := mb.Model()
	if err != nil {
		return fmt.Errorf("failed to instantiate the model: %w", err)
	}
	response, err := mip.SolveModel(m)
	if err != nil {
		return fmt.Errorf("failed to solve the model: %w", err)
	}

	fmt.Printf("Status: %v\n", response.Status)
	if response.HasSolution() {
		fmt.Printf("Objective value: %v\n", response.ObjectiveValue)
		fmt.Printf("x = %v\n", mip.SolutionValue(response, x))
		fmt.Printf("y = %v\n", mip.SolutionValue(response, y))
	}
	fmt.Printf("Explored %d nodes in %v\n", response.Nodes, response.WallTime)
	return nil
}

func main() {
	if err := simpleMipProgram(); err != nil {
		log.Exitf("simpleMipProgram returned with error: %v", err)
	}
}
