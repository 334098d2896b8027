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

	log "github.com/golang/glog"

	"github.com/rewardsched/rewardsched/mip"
)

type dayInfo struct {
	horizon float64
	windows WindowSet
}

type taskInfo struct {
	Task
	prereqs []int
	// allowed, fits and earliest are indexed by day. fits[d] tells whether the task has a
	// slot on day d once its prerequisites are accounted for; earliest[d] is the first such
	// slot.
	allowed  []bool
	fits     []bool
	earliest []float64
	dropped  bool
	reason   string
}

// problem is the validated, normalized form of an Instance.
type problem struct {
	name     string
	tasks    []taskInfo
	days     []dayInfo
	index    map[string]int
	order    []int
	anc      [][]bool
	multiDay bool
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// newProblem validates `inst` and returns its normalized copy: windows are clipped and
// joined, prerequisites resolved to indices and tasks topologically ordered.
func newProblem(inst Instance) (*problem, error) {
	if len(inst.Tasks) == 0 {
		return nil, fmt.Errorf("instance %q has no tasks: %w", inst.Name, ErrInvalidInstance)
	}
	if !finite(inst.Horizon) || inst.Horizon <= 0 {
		return nil, fmt.Errorf("instance %q has horizon %v, want a positive number: %w", inst.Name, inst.Horizon, ErrInvalidInstance)
	}
	p := &problem{name: inst.Name, multiDay: inst.MultiDay(), index: make(map[string]int, len(inst.Tasks))}

	days := inst.Days
	if len(days) == 0 {
		days = []Day{{}}
	}
	for d, day := range days {
		h := inst.Horizon
		if !finite(day.Horizon) || day.Horizon < 0 {
			return nil, fmt.Errorf("day %d has horizon %v: %w", d, day.Horizon, ErrInvalidInstance)
		}
		if day.Horizon > 0 {
			h = day.Horizon
		}
		for _, w := range day.Windows {
			if !finite(w.Start) || !finite(w.End) || w.End <= w.Start {
				return nil, fmt.Errorf("day %d has empty window [%v, %v): %w", d, w.Start, w.End, ErrInvalidInstance)
			}
		}
		p.days = append(p.days, dayInfo{horizon: h, windows: NewWindowSet(h, day.Windows...)})
	}

	for i, t := range inst.Tasks {
		switch {
		case t.ID == "":
			return nil, fmt.Errorf("task %d has an empty ID: %w", i, ErrInvalidInstance)
		case !finite(t.Duration) || t.Duration <= 0:
			return nil, fmt.Errorf("task %q has duration %v, want a positive number: %w", t.ID, t.Duration, ErrInvalidInstance)
		case !finite(t.Reward):
			return nil, fmt.Errorf("task %q has reward %v: %w", t.ID, t.Reward, ErrInvalidInstance)
		}
		if _, ok := p.index[t.ID]; ok {
			return nil, fmt.Errorf("task ID %q is used twice: %w", t.ID, ErrInvalidInstance)
		}
		p.index[t.ID] = i

		ti := taskInfo{Task: t, allowed: make([]bool, len(p.days))}
		ti.Prerequisites = append([]string(nil), t.Prerequisites...)
		ti.Days = append([]int(nil), t.Days...)
		if len(t.Days) == 0 {
			for d := range ti.allowed {
				ti.allowed[d] = true
			}
		}
		for _, d := range t.Days {
			if d < 0 || d >= len(p.days) {
				return nil, fmt.Errorf("task %q allows day %d, want a day in [0, %d): %w", t.ID, d, len(p.days), ErrInvalidInstance)
			}
			ti.allowed[d] = true
		}
		p.tasks = append(p.tasks, ti)
	}

	ids := make([]string, len(p.tasks))
	prereqs := make([][]int, len(p.tasks))
	for i := range p.tasks {
		ti := &p.tasks[i]
		ids[i] = ti.ID
		seen := make(map[int]bool)
		for _, id := range ti.Prerequisites {
			q, ok := p.index[id]
			if !ok {
				return nil, fmt.Errorf("task %q requires unknown task %q: %w", ti.ID, id, ErrInvalidTaskGraph)
			}
			if !seen[q] {
				seen[q] = true
				ti.prereqs = append(ti.prereqs, q)
			}
		}
		prereqs[i] = ti.prereqs
	}
	order, err := topologicalOrder(ids, prereqs)
	if err != nil {
		return nil, err
	}
	p.order = order
	p.anc = ancestors(order, prereqs)
	return p, nil
}

// analyze decides, in topological order, on which days each task has room, and marks the
// tasks that fit nowhere as dropped.
//
// In single-day instances a task cannot start before its prerequisites can complete, so the
// earliest start follows a critical-path forward pass that also skips the forbidden windows.
// In multi-day instances a task only fits on a day when every prerequisite fits on that day
// or an earlier one.
func (p *problem) analyze() {
	for _, t := range p.order {
		ti := &p.tasks[t]
		ti.fits = make([]bool, len(p.days))
		ti.earliest = make([]float64, len(p.days))
		for _, q := range ti.prereqs {
			if p.tasks[q].dropped {
				ti.dropped = true
				ti.reason = fmt.Sprintf("prerequisite %q cannot be scheduled", p.tasks[q].ID)
				break
			}
		}
		if ti.dropped {
			continue
		}
		for d, day := range p.days {
			if !ti.allowed[d] {
				continue
			}
			from := 0.0
			if p.multiDay {
				if !p.prereqsFitBy(ti, d) {
					continue
				}
			} else {
				for _, q := range ti.prereqs {
					from = math.Max(from, p.tasks[q].earliest[d]+p.tasks[q].Duration)
				}
			}
			if s, ok := day.windows.FirstFit(from, ti.Duration); ok {
				ti.fits[d], ti.earliest[d] = true, s
			}
		}
		if !anyTrue(ti.fits) {
			ti.dropped = true
			ti.reason = p.unplaceableReason(ti)
		}
	}
}

func (p *problem) prereqsFitBy(ti *taskInfo, day int) bool {
	for _, q := range ti.prereqs {
		if !anyTrue(p.tasks[q].fits[:day+1]) {
			return false
		}
	}
	return true
}

func (p *problem) unplaceableReason(ti *taskInfo) string {
	var maxHorizon, longest float64
	allowed := 0
	for d, day := range p.days {
		if ti.allowed[d] {
			allowed++
			maxHorizon = math.Max(maxHorizon, day.horizon)
			longest = math.Max(longest, day.windows.LongestGap())
		}
	}
	switch {
	case allowed == 0:
		return "no allowed day"
	case ti.Duration > maxHorizon:
		return fmt.Sprintf("duration %g exceeds the horizon %g", ti.Duration, maxHorizon)
	case ti.Duration > longest+fitTolerance:
		return fmt.Sprintf("no free interval of length %g, the longest is %g", ti.Duration, longest)
	case p.multiDay:
		return "no allowed day is late enough for its prerequisites"
	}
	return "cannot complete within the horizon after its prerequisites"
}

func anyTrue(bs []bool) bool {
	for _, b := range bs {
		if b {
			return true
		}
	}
	return false
}

// Model is the mixed integer program of an instance together with the mapping from tasks to
// program variables. It is immutable once built.
type Model struct {
	prob    *problem
	program *mip.Model
	dropped []DroppedTask

	selected []mip.BoolVar
	// assigned[t][d] is selected[t] itself in single-day instances.
	assigned [][]mip.BoolVar
	start    [][]mip.Var

	disjunctions []disjunction
}

// BuildModel validates `inst` and builds its model.
//
// Selecting a task collects its reward. A selected task runs on exactly one day, inside the
// day's horizon, outside the day's forbidden windows, without overlapping any other task of
// that day, and after all its prerequisites, which must be selected too. Tasks that fit
// nowhere are handled according to cfg.Unplaceable.
func BuildModel(inst Instance, cfg Config) (*Model, error) {
	p, err := newProblem(inst)
	if err != nil {
		return nil, err
	}
	p.analyze()

	var dropped []DroppedTask
	for _, ti := range p.tasks {
		if !ti.dropped {
			continue
		}
		if cfg.Unplaceable == RejectUnplaceable {
			return nil, fmt.Errorf("task %q: %s: %w", ti.ID, ti.reason, ErrUnplaceableTask)
		}
		log.Warningf("scheduling: %q: dropping task %q: %s", p.name, ti.ID, ti.reason)
		dropped = append(dropped, DroppedTask{ID: ti.ID, Reason: ti.reason})
	}

	e := newEncoder(p)
	e.declareVariables()
	e.encode()
	if !cfg.DisableWarmStart {
		e.setHint(greedyPlacement(p))
	}
	program, err := e.mb.Model()
	if err != nil {
		return nil, fmt.Errorf("building the program of %q: %w", p.name, err)
	}
	log.V(1).Infof("scheduling: %q: %d tasks (%d dropped), %d days, %d variables (%d integer), %d constraints, %d disjunctions",
		p.name, len(p.tasks), len(dropped), len(p.days), program.NumVariables(), program.NumIntegerVariables(),
		program.NumConstraints(), len(e.disjunctions))

	return &Model{
		prob:         p,
		program:      program,
		dropped:      dropped,
		selected:     e.selected,
		assigned:     e.assigned,
		start:        e.start,
		disjunctions: e.disjunctions,
	}, nil
}

// Name returns the instance name.
func (m *Model) Name() string {
	return m.prob.name
}

// Program returns the mixed integer program. Callers must not modify it.
func (m *Model) Program() *mip.Model {
	return m.program
}

// Dropped returns the tasks excluded at build time.
func (m *Model) Dropped() []DroppedTask {
	return append([]DroppedTask(nil), m.dropped...)
}

// MultiDay reports whether tasks are assigned to one of several days.
func (m *Model) MultiDay() bool {
	return m.prob.multiDay
}

// NumDays returns the number of day timelines.
func (m *Model) NumDays() int {
	return len(m.prob.days)
}

// NumTasks returns the number of tasks, dropped ones included.
func (m *Model) NumTasks() int {
	return len(m.prob.tasks)
}
