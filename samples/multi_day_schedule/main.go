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

// The multi_day_schedule command spreads dependent tasks over several days with their own
// horizons and blocked windows.
package main

import (
	"context"
	"fmt"

	log "github.com/golang/glog"

	"github.com/rewardsched/rewardsched/scheduling"
)

func multiDaySchedule() error {
	inst := scheduling.Instance{
		Name:    "week",
		Horizon: 6,
		Days: []scheduling.Day{
			{Windows: []scheduling.TimeWindow{{Start: 0, End: 2}}},
			{},
			// Half day.
			{Horizon: 3},
		},
		Tasks: []scheduling.Task{
			{ID: "survey", Duration: 4, Reward: 3},
			{ID: "build", Duration: 5, Reward: 8, Prerequisites: []string{"survey"}},
			{ID: "inspect", Duration: 2, Reward: 4, Prerequisites: []string{"build"}},
			{ID: "report", Duration: 3, Reward: 2, Days: []int{2}},
			{ID: "cleanup", Duration: 1, Reward: -1},
		},
	}

	res, err := scheduling.Solve(context.Background(), inst, scheduling.Config{})
	if err != nil {
		return fmt.Errorf("failed to solve %q: %w", inst.Name, err)
	}

	fmt.Println(res.Status)
	fmt.Println("Total reward:", res.Objective)
	for _, a := range res.Schedule.Assignments {
		fmt.Printf("day %d: %-8s [%g, %g)\n", a.Day, a.TaskID, a.Start, a.End)
	}
	return nil
}

func main() {
	if err := multiDaySchedule(); err != nil {
		log.Exitf("multiDaySchedule returned with error: %v", err)
	}
}
