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
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func solvedAssignment(t *testing.T, inst Instance) (*Model, []float64) {
	t.Helper()
	m, err := BuildModel(inst, Config{})
	if err != nil {
		t.Fatalf("BuildModel() returned with unexpected error %v", err)
	}
	out, err := NewAdapter(Config{}).Solve(context.Background(), m)
	if err != nil {
		t.Fatalf("Adapter.Solve() returned with unexpected error %v", err)
	}
	if out.Kind != OutcomeOptimal {
		t.Fatalf("Adapter.Solve() returned %v, want %v", out.Kind, OutcomeOptimal)
	}
	return m, out.Assignment
}

func TestExtract(t *testing.T) {
	inst := Instance{
		Name:    "extract",
		Horizon: 10,
		Tasks: []Task{
			{ID: "A", Duration: 2, Reward: 5, Prerequisites: []string{"B"}},
			{ID: "B", Duration: 2, Reward: 5},
			{ID: "C", Duration: 3, Reward: -1},
		},
	}
	m, x := solvedAssignment(t, inst)

	got, err := Extract(m, x)
	if err != nil {
		t.Fatalf("Extract() returned with unexpected error %v", err)
	}
	want := &Schedule{
		Assignments: []Assignment{
			{TaskID: "B", Day: 0, Start: 0, End: 2},
			{TaskID: "A", Day: 0, Start: 2, End: 4},
		},
		Objective: 10,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Extract() returned with unexpected diff (-want+got):\n%v", diff)
	}
}

func TestExtract_SnapsStarts(t *testing.T) {
	inst := Instance{Name: "snap", Horizon: 10, Tasks: []Task{{ID: "A", Duration: 2, Reward: 1}}}
	m, x := solvedAssignment(t, inst)
	x = append([]float64(nil), x...)
	x[m.start[0][0].Index()] = 3 - 1e-12

	got, err := Extract(m, x)
	if err != nil {
		t.Fatalf("Extract() returned with unexpected error %v", err)
	}
	if a := got.Assignments[0]; a.Start != 3 || a.End != 5 {
		t.Errorf("Extract() placed A in [%v, %v), want [3, 5)", a.Start, a.End)
	}
}

func TestExtract_Inconsistent(t *testing.T) {
	single := Instance{
		Name:    "single",
		Horizon: 10,
		Tasks:   []Task{{ID: "A", Duration: 4, Reward: 1}, {ID: "B", Duration: 4, Reward: 1}},
	}
	multi := Instance{
		Name:    "multi",
		Horizon: 10,
		Tasks:   []Task{{ID: "A", Duration: 4, Reward: 1}},
		Days:    []Day{{}, {}},
	}
	testCases := []struct {
		name       string
		inst       Instance
		mutate     func(m *Model, x []float64) []float64
		wantReason error
	}{
		{
			name:   "WrongLength",
			inst:   single,
			mutate: func(m *Model, x []float64) []float64 { return x[1:] },
		},
		{
			name: "FractionalSelection",
			inst: single,
			mutate: func(m *Model, x []float64) []float64 {
				x[m.selected[0].Index()] = 0.5
				return x
			},
		},
		{
			name: "SelectionAboveOne",
			inst: single,
			mutate: func(m *Model, x []float64) []float64 {
				x[m.selected[0].Index()] = 2
				return x
			},
		},
		{
			name: "NegativeSelection",
			inst: single,
			mutate: func(m *Model, x []float64) []float64 {
				x[m.selected[0].Index()] = -1
				return x
			},
		},
		{
			name: "DayAboveOne",
			inst: multi,
			mutate: func(m *Model, x []float64) []float64 {
				x[m.assigned[0][0].Index()] = 0
				x[m.assigned[0][1].Index()] = 3
				return x
			},
		},
		{
			name: "Overlap",
			inst: single,
			mutate: func(m *Model, x []float64) []float64 {
				x[m.start[0][0].Index()] = 0
				x[m.start[1][0].Index()] = 2
				return x
			},
			wantReason: ErrScheduleViolation,
		},
		{
			name: "OutsideHorizon",
			inst: single,
			mutate: func(m *Model, x []float64) []float64 {
				x[m.start[1][0].Index()] = 8
				return x
			},
			wantReason: ErrScheduleViolation,
		},
		{
			name: "TwoDays",
			inst: multi,
			mutate: func(m *Model, x []float64) []float64 {
				x[m.assigned[0][0].Index()] = 1
				x[m.assigned[0][1].Index()] = 1
				return x
			},
		},
		{
			name: "SelectedWithoutDay",
			inst: multi,
			mutate: func(m *Model, x []float64) []float64 {
				x[m.assigned[0][0].Index()] = 0
				x[m.assigned[0][1].Index()] = 0
				return x
			},
		},
		{
			name: "DayWithoutSelection",
			inst: multi,
			mutate: func(m *Model, x []float64) []float64 {
				x[m.selected[0].Index()] = 0
				return x
			},
		},
	}
	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			m, x := solvedAssignment(t, test.inst)
			x = test.mutate(m, append([]float64(nil), x...))
			_, err := Extract(m, x)
			if !errors.Is(err, ErrInconsistentSolution) {
				t.Fatalf("Extract() returned error %v, want %v", err, ErrInconsistentSolution)
			}
			if test.wantReason != nil && !errors.Is(err, test.wantReason) {
				t.Errorf("Extract() returned error %v, want it to wrap %v", err, test.wantReason)
			}
		})
	}
}

func TestValidateSchedule(t *testing.T) {
	inst := Instance{
		Horizon: 10,
		Tasks: []Task{
			{ID: "A", Duration: 2, Reward: 1},
			{ID: "B", Duration: 3, Reward: 2, Prerequisites: []string{"A"}},
			{ID: "C", Duration: 1, Reward: 1, Days: []int{1}},
		},
		Days: []Day{{Windows: []TimeWindow{{5, 6}}}, {Horizon: 4}},
	}
	valid := func() *Schedule {
		return &Schedule{
			Assignments: []Assignment{
				{TaskID: "A", Day: 0, Start: 0, End: 2},
				{TaskID: "B", Day: 0, Start: 2, End: 5},
				{TaskID: "C", Day: 1, Start: 3, End: 4},
			},
			Objective: 4,
		}
	}
	if err := ValidateSchedule(inst, valid()); err != nil {
		t.Fatalf("ValidateSchedule() returned with unexpected error %v", err)
	}
	// A prerequisite may run on an earlier day.
	earlier := &Schedule{
		Assignments: []Assignment{
			{TaskID: "A", Day: 0, Start: 8, End: 10},
			{TaskID: "B", Day: 1, Start: 0, End: 3},
		},
		Objective: 3,
	}
	if err := ValidateSchedule(inst, earlier); err != nil {
		t.Errorf("ValidateSchedule() of a prerequisite on an earlier day returned with unexpected error %v", err)
	}

	testCases := []struct {
		name   string
		mutate func(s *Schedule)
	}{
		{"UnknownTask", func(s *Schedule) { s.Assignments[0].TaskID = "Z" }},
		{"Twice", func(s *Schedule) { s.Assignments[2] = s.Assignments[0] }},
		{"DayOutOfRange", func(s *Schedule) { s.Assignments[2].Day = 2 }},
		{"DayNotAllowed", func(s *Schedule) { s.Assignments[2].Day = 0; s.Assignments[2].Start, s.Assignments[2].End = 8, 9 }},
		{"WrongDuration", func(s *Schedule) { s.Assignments[0].End = 3 }},
		{"PastDayHorizon", func(s *Schedule) { s.Assignments[2].Start, s.Assignments[2].End = 4, 5 }},
		{"NegativeStart", func(s *Schedule) { s.Assignments[0].Start, s.Assignments[0].End = -1, 1 }},
		{"InWindow", func(s *Schedule) { s.Assignments[1].Start, s.Assignments[1].End = 4, 7 }},
		{"Overlap", func(s *Schedule) { s.Assignments[1].Start, s.Assignments[1].End = 1, 4 }},
		{"MissingPrerequisite", func(s *Schedule) { s.Assignments = s.Assignments[1:]; s.Objective = 3 }},
		{"PrerequisiteOnLaterDay", func(s *Schedule) {
			s.Assignments[0] = Assignment{TaskID: "A", Day: 1, Start: 0, End: 2}
		}},
		{"WrongObjective", func(s *Schedule) { s.Objective = 5 }},
	}
	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			s := valid()
			test.mutate(s)
			if err := ValidateSchedule(inst, s); !errors.Is(err, ErrScheduleViolation) {
				t.Errorf("ValidateSchedule() returned error %v, want %v", err, ErrScheduleViolation)
			}
		})
	}
	if err := ValidateSchedule(inst, nil); !errors.Is(err, ErrScheduleViolation) {
		t.Errorf("ValidateSchedule(nil) returned error %v, want %v", err, ErrScheduleViolation)
	}
	if err := ValidateSchedule(Instance{}, valid()); !errors.Is(err, ErrInvalidInstance) {
		t.Errorf("ValidateSchedule() of an invalid instance returned error %v, want %v", err, ErrInvalidInstance)
	}
}
