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
	"fmt"
	"math"
	"sort"
)

const (
	// integralityTolerance is the distance to an integer under which an integer variable of an
	// assignment is rounded.
	integralityTolerance = 1e-6
	// snapTolerance is the distance to an integer under which a start time is rounded.
	snapTolerance = 1e-9
	// scheduleTolerance is the slack allowed when checking a schedule against its instance.
	scheduleTolerance = 1e-6
)

// Extract decodes an engine assignment of `m`'s program into a Schedule and checks the
// schedule against the instance. Any mismatch yields ErrInconsistentSolution.
func Extract(m *Model, assignment []float64) (*Schedule, error) {
	vars := m.program.Variables
	if len(assignment) != len(vars) {
		return nil, fmt.Errorf("%w: got %d values for %d variables", ErrInconsistentSolution, len(assignment), len(vars))
	}
	for i, v := range vars {
		x := assignment[i]
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, fmt.Errorf("%w: variable %q = %v", ErrInconsistentSolution, v.Name, x)
		}
		if !v.Integer {
			continue
		}
		if math.Abs(x-math.Round(x)) > integralityTolerance {
			return nil, fmt.Errorf("%w: integer variable %q = %v is fractional", ErrInconsistentSolution, v.Name, x)
		}
		if x < v.LB-integralityTolerance || x > v.UB+integralityTolerance {
			return nil, fmt.Errorf("%w: integer variable %q = %v is outside [%v, %v]", ErrInconsistentSolution, v.Name, x, v.LB, v.UB)
		}
	}
	isSet := func(i int) bool {
		return math.Round(assignment[i]) == 1
	}

	p := m.prob
	s := &Schedule{}
	for t, ti := range p.tasks {
		selected := isSet(int(m.selected[t].Index()))
		day := -1
		for d, a := range m.assigned[t] {
			if !isSet(int(a.Index())) {
				continue
			}
			if day >= 0 {
				return nil, fmt.Errorf("%w: task %q is assigned to days %d and %d", ErrInconsistentSolution, ti.ID, day, d)
			}
			day = d
		}
		switch {
		case !selected && day >= 0:
			return nil, fmt.Errorf("%w: task %q is assigned to day %d but not selected", ErrInconsistentSolution, ti.ID, day)
		case selected && day < 0:
			return nil, fmt.Errorf("%w: task %q is selected but assigned to no day", ErrInconsistentSolution, ti.ID)
		case !selected:
			continue
		}
		start := snap(assignment[m.start[t][day].Index()])
		s.Assignments = append(s.Assignments, Assignment{TaskID: ti.ID, Day: day, Start: start, End: start + ti.Duration})
		s.Objective += ti.Reward
	}
	sortAssignments(s.Assignments)
	if err := p.validate(s, scheduleTolerance); err != nil {
		return nil, fmt.Errorf("decoded schedule: %w: %w", ErrInconsistentSolution, err)
	}
	return s, nil
}

func snap(x float64) float64 {
	if r := math.Round(x); math.Abs(x-r) <= snapTolerance {
		return r
	}
	return x
}

// ValidateSchedule checks that `s` is a valid schedule of `inst`: every assignment names a
// known task once, on an allowed day, with the task's duration, inside the day's horizon and
// outside its forbidden windows; tasks of a day do not overlap; prerequisites are scheduled
// and end no later than their dependents start, on the same day or an earlier one; and the
// objective is the total reward. Violations wrap ErrScheduleViolation.
func ValidateSchedule(inst Instance, s *Schedule) error {
	p, err := newProblem(inst)
	if err != nil {
		return err
	}
	return p.validate(s, scheduleTolerance)
}

func violation(format string, a ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, a...), ErrScheduleViolation)
}

func (p *problem) validate(s *Schedule, tol float64) error {
	if s == nil {
		return violation("no schedule")
	}
	byTask := make(map[int]Assignment, len(s.Assignments))
	byDay := make([][]Assignment, len(p.days))
	var total float64
	for _, a := range s.Assignments {
		t, ok := p.index[a.TaskID]
		if !ok {
			return violation("unknown task %q", a.TaskID)
		}
		if _, ok := byTask[t]; ok {
			return violation("task %q is scheduled twice", a.TaskID)
		}
		ti := p.tasks[t]
		if a.Day < 0 || a.Day >= len(p.days) {
			return violation("task %q is on day %d, want a day in [0, %d)", a.TaskID, a.Day, len(p.days))
		}
		if !ti.allowed[a.Day] {
			return violation("task %q is on day %d, which it does not allow", a.TaskID, a.Day)
		}
		if math.Abs(a.End-a.Start-ti.Duration) > tol {
			return violation("task %q runs [%v, %v), want a duration of %v", a.TaskID, a.Start, a.End, ti.Duration)
		}
		day := p.days[a.Day]
		if a.Start < -tol || a.End > day.horizon+tol {
			return violation("task %q runs [%v, %v) outside the horizon %v of day %d", a.TaskID, a.Start, a.End, day.horizon, a.Day)
		}
		if day.windows.Overlaps(a.Start, a.End, tol) {
			return violation("task %q runs [%v, %v) over a forbidden window of day %d", a.TaskID, a.Start, a.End, a.Day)
		}
		byTask[t] = a
		byDay[a.Day] = append(byDay[a.Day], a)
		total += ti.Reward
	}

	for d, as := range byDay {
		sort.Slice(as, func(i, j int) bool { return as[i].Start < as[j].Start })
		for i := 1; i < len(as); i++ {
			if as[i].Start < as[i-1].End-tol {
				return violation("tasks %q and %q overlap on day %d", as[i-1].TaskID, as[i].TaskID, d)
			}
		}
	}

	for t := range p.tasks {
		a, ok := byTask[t]
		if !ok {
			continue
		}
		for _, q := range p.tasks[t].prereqs {
			b, ok := byTask[q]
			switch {
			case !ok:
				return violation("task %q is scheduled without its prerequisite %q", a.TaskID, p.tasks[q].ID)
			case b.Day > a.Day:
				return violation("task %q on day %d precedes its prerequisite %q on day %d", a.TaskID, a.Day, b.TaskID, b.Day)
			case b.Day == a.Day && b.End > a.Start+tol:
				return violation("task %q starts at %v before its prerequisite %q ends at %v", a.TaskID, a.Start, b.TaskID, b.End)
			}
		}
	}

	if math.Abs(s.Objective-total) > tol*math.Max(1, math.Abs(total)) {
		return violation("objective is %v, the scheduled rewards sum to %v", s.Objective, total)
	}
	return nil
}
