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

// The solve_with_time_limit command stops a larger search after a short time limit and prints
// the best schedule found.
package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	log "github.com/golang/glog"

	"github.com/rewardsched/rewardsched/scheduling"
)

const numTasks = 40

func solveWithTimeLimit() error {
	rng := rand.New(rand.NewSource(1))
	inst := scheduling.Instance{Name: "crowded", Horizon: 50}
	for i := 0; i < numTasks; i++ {
		inst.Tasks = append(inst.Tasks, scheduling.Task{
			ID:       fmt.Sprintf("task%02d", i),
			Duration: float64(1 + rng.Intn(8)),
			Reward:   float64(1 + rng.Intn(20)),
		})
	}

	cfg := scheduling.Config{TimeLimit: 200 * time.Millisecond}
	res, err := scheduling.Solve(context.Background(), inst, cfg)
	switch {
	case errors.Is(err, scheduling.ErrSolverTimeout) && res != nil && res.Schedule != nil:
		fmt.Println("Time limit reached, best schedule so far:")
	case err != nil:
		return fmt.Errorf("failed to solve %q: %w", inst.Name, err)
	}

	fmt.Println(res.Status)
	fmt.Printf("Reward %g, bound %g\n", res.Objective, res.Bound)
	fmt.Printf("%d of %d tasks scheduled\n", len(res.Schedule.Assignments), numTasks)
	return nil
}

func main() {
	if err := solveWithTimeLimit(); err != nil {
		log.Exitf("solveWithTimeLimit returned with error: %v", err)
	}
}
