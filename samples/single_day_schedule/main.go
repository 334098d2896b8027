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

// The single_day_schedule command schedules a handful of tasks around a lunch break.
package main

import (
	"context"
	"fmt"

	log "github.com/golang/glog"

	"github.com/rewardsched/rewardsched/scheduling"
)

func singleDaySchedule() error {
	inst := scheduling.Instance{
		Name:    "workday",
		Horizon: 8,
		Days: []scheduling.Day{{
			// Lunch.
			Windows: []scheduling.TimeWindow{{Start: 4, End: 5}},
		}},
		Tasks: []scheduling.Task{
			{ID: "design", Duration: 2, Reward: 4},
			{ID: "implement", Duration: 3, Reward: 6, Prerequisites: []string{"design"}},
			{ID: "review", Duration: 1, Reward: 2, Prerequisites: []string{"implement"}},
			{ID: "meeting", Duration: 2, Reward: 1},
			{ID: "offsite", Duration: 9, Reward: 10},
		},
	}

	res, err := scheduling.Solve(context.Background(), inst, scheduling.Config{})
	if err != nil {
		return fmt.Errorf("failed to solve %q: %w", inst.Name, err)
	}

	fmt.Println(res.Status)
	fmt.Println("Total reward:", res.Objective)
	for _, a := range res.Schedule.Assignments {
		fmt.Printf("%-10s [%g, %g)\n", a.TaskID, a.Start, a.End)
	}
	for _, d := range res.Dropped {
		fmt.Printf("%-10s dropped: %s\n", d.ID, d.Reason)
	}
	return nil
}

func main() {
	if err := singleDaySchedule(); err != nil {
		log.Exitf("singleDaySchedule returned with error: %v", err)
	}
}
