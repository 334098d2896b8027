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

// Package scheduling selects and places tasks on one or more day timelines so that the total
// reward is maximized.
//
// An Instance lists tasks (duration, reward, prerequisites), a horizon and optional days with
// forbidden windows. BuildModel turns it into a mixed integer program with one big-M
// disjunction per pair of tasks and per task and window, Adapter.Solve runs a solving engine
// on it and Extract turns the engine's assignment back into a validated Schedule. Solve chains
// the three steps.
package scheduling

import "sort"

// Task is a unit of work that may be scheduled at most once.
type Task struct {
	// ID identifies the task and must be unique within an Instance.
	ID string
	// Duration is the positive running time of the task.
	Duration float64
	// Reward is collected when the task is scheduled. A negative reward is a penalty.
	Reward float64
	// Prerequisites lists the IDs of the tasks that must complete before this task starts.
	Prerequisites []string
	// Days restricts the days the task may be scheduled on in multi-day instances. Empty
	// means every day.
	Days []int
}

// TimeWindow is the half-open interval `[Start, End)` of a day's timeline.
type TimeWindow struct {
	Start float64
	End   float64
}

// Length returns the length of the window.
func (w TimeWindow) Length() float64 {
	return w.End - w.Start
}

// Day is one timeline of a multi-day instance.
type Day struct {
	// Horizon overrides the instance horizon for this day when positive.
	Horizon float64
	// Windows are the forbidden windows of the day. They may overlap.
	Windows []TimeWindow
}

// Instance is the input of the scheduler. With zero or one Day the instance is single-day;
// with more, every selected task is assigned to exactly one day.
type Instance struct {
	Name    string
	Tasks   []Task
	Horizon float64
	Days    []Day
}

// MultiDay reports whether the instance has more than one day.
func (inst Instance) MultiDay() bool {
	return len(inst.Days) > 1
}

// Assignment places one task on a day.
type Assignment struct {
	TaskID string
	Day    int
	Start  float64
	End    float64
}

// Schedule is the set of scheduled tasks. Tasks missing from Assignments are not selected.
type Schedule struct {
	// Assignments are sorted by day, then start, then task ID.
	Assignments []Assignment
	// Objective is the total reward of the scheduled tasks.
	Objective float64
}

// Lookup returns the assignment of task `id`, if it is scheduled.
func (s *Schedule) Lookup(id string) (Assignment, bool) {
	if s == nil {
		return Assignment{}, false
	}
	for _, a := range s.Assignments {
		if a.TaskID == id {
			return a, true
		}
	}
	return Assignment{}, false
}

// TaskIDs returns the sorted IDs of the scheduled tasks.
func (s *Schedule) TaskIDs() []string {
	if s == nil {
		return nil
	}
	ids := make([]string, 0, len(s.Assignments))
	for _, a := range s.Assignments {
		ids = append(ids, a.TaskID)
	}
	sort.Strings(ids)
	return ids
}

func sortAssignments(as []Assignment) {
	sort.Slice(as, func(i, j int) bool {
		if as[i].Day != as[j].Day {
			return as[i].Day < as[j].Day
		}
		if as[i].Start != as[j].Start {
			return as[i].Start < as[j].Start
		}
		return as[i].TaskID < as[j].TaskID
	})
}

// DroppedTask records a task that cannot be part of any schedule and was excluded when the
// model was built.
type DroppedTask struct {
	ID     string
	Reason string
}
