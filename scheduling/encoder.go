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

	"github.com/rewardsched/rewardsched/mip"
)

// activity is an interval `[start, start+length)` on one day, with `lo <= start <= hi`. It
// takes part in a constraint only when all of its `active` literals are true. Forbidden
// windows are activities with a constant start, no literal and task -1.
type activity struct {
	name   string
	task   int
	day    int
	start  mip.LinearArgument
	length float64
	lo, hi float64
	active []mip.BoolVar
}

// disjunction records the ordering literal of two activities that may run in either order:
// `before` is true when `a` ends before `b` starts.
type disjunction struct {
	before mip.BoolVar
	a, b   activity
}

type encoder struct {
	p  *problem
	mb *mip.Builder

	selected []mip.BoolVar
	assigned [][]mip.BoolVar
	start    [][]mip.Var

	aux          []mip.BoolVar
	disjunctions []disjunction
}

func newEncoder(p *problem) *encoder {
	mb := mip.NewModelBuilder()
	mb.SetName(p.name)
	return &encoder{p: p, mb: mb}
}

// declareVariables creates, for every task t and day d:
//
//	selected[t]   1 when t is scheduled
//	assigned[t,d] 1 when t runs on day d; a single-day instance reuses selected[t]
//	start[t,d]    the start time of t on day d
//
// and sets the objective to the total reward of the selected tasks. Start variables of a task
// that fits on a day range over the feasible starts of that day; the others are free in
// [0, horizon] and constrained only by the horizon row.
func (e *encoder) declareVariables() {
	p := e.p
	n := len(p.tasks)
	e.selected = make([]mip.BoolVar, n)
	e.assigned = make([][]mip.BoolVar, n)
	e.start = make([][]mip.Var, n)
	reward := mip.NewLinearExpr()
	for t, ti := range p.tasks {
		e.selected[t] = e.mb.NewBoolVar().WithName(fmt.Sprintf("selected[%s]", ti.ID))
		if ti.dropped {
			e.selected[t].Fix(false)
		}
		reward.AddTerm(e.selected[t], ti.Reward)

		e.assigned[t] = make([]mip.BoolVar, len(p.days))
		e.start[t] = make([]mip.Var, len(p.days))
		for d, day := range p.days {
			lo, hi := 0.0, day.horizon
			if ti.fits[d] {
				lo, hi = ti.earliest[d], math.Max(ti.earliest[d], day.horizon-ti.Duration)
			}
			e.start[t][d] = e.mb.NewVar(lo, hi).WithName(fmt.Sprintf("start[%s,%d]", ti.ID, d))
			if !p.multiDay {
				e.assigned[t][d] = e.selected[t]
				continue
			}
			e.assigned[t][d] = e.mb.NewBoolVar().WithName(fmt.Sprintf("assigned[%s,%d]", ti.ID, d))
			if !ti.fits[d] {
				e.assigned[t][d].Fix(false)
			}
		}
		if p.multiDay {
			days := mip.NewLinearExpr()
			for _, a := range e.assigned[t] {
				days.Add(a)
			}
			e.mb.AddEquality(days, e.selected[t]).WithName(fmt.Sprintf("one_day[%s]", ti.ID))
		}
	}
	e.mb.Maximize(reward)
}

func (e *encoder) taskActivity(t, d int) activity {
	lo, hi := e.start[t][d].Bounds()
	return activity{
		name:   e.p.tasks[t].ID,
		task:   t,
		day:    d,
		start:  e.start[t][d],
		length: e.p.tasks[t].Duration,
		lo:     lo,
		hi:     hi,
		active: []mip.BoolVar{e.assigned[t][d]},
	}
}

func windowActivity(d, i int, w TimeWindow) activity {
	return activity{
		name:   fmt.Sprintf("window%d", i),
		task:   -1,
		day:    d,
		start:  mip.NewConstant(w.Start),
		length: w.Length(),
		lo:     w.Start,
		hi:     w.Start,
	}
}

// encode adds the constraints of every task and the decision strategy.
func (e *encoder) encode() {
	p := e.p
	for t, ti := range p.tasks {
		for d, day := range p.days {
			e.mb.AddLessOrEqual(
				mip.NewLinearExpr().Add(e.start[t][d]).AddTerm(e.assigned[t][d], ti.Duration),
				mip.NewConstant(day.horizon),
			).WithName(fmt.Sprintf("horizon[%s,%d]", ti.ID, d))
		}
	}
	for _, t := range p.order {
		if !p.tasks[t].dropped {
			e.addPrerequisites(t)
		}
	}
	for i := range p.tasks {
		for j := i + 1; j < len(p.tasks); j++ {
			if p.tasks[i].dropped || p.tasks[j].dropped || p.anc[i][j] || p.anc[j][i] {
				continue
			}
			for d := range p.days {
				if p.tasks[i].fits[d] && p.tasks[j].fits[d] {
					e.addDisjunction(e.taskActivity(i, d), e.taskActivity(j, d))
				}
			}
		}
	}
	for t, ti := range p.tasks {
		if ti.dropped {
			continue
		}
		for d, day := range p.days {
			if !ti.fits[d] {
				continue
			}
			for i, w := range day.windows.Windows() {
				e.addDisjunction(e.taskActivity(t, d), windowActivity(d, i, w))
			}
		}
	}
	e.addCapacity()

	e.mb.AddDecisionStrategy(e.selected...)
	if p.multiDay {
		for _, as := range e.assigned {
			for _, a := range as {
				if !a.IsFixed() {
					e.mb.AddDecisionStrategy(a)
				}
			}
		}
	}
	e.mb.AddDecisionStrategy(e.aux...)
}

// addPrerequisites makes t require each of its prerequisites and start after they end. In a
// multi-day instance a prerequisite may also run on an earlier day, in which case no time
// constraint applies between the two.
func (e *encoder) addPrerequisites(t int) {
	p := e.p
	ti := p.tasks[t]
	for _, q := range ti.prereqs {
		qi := p.tasks[q]
		e.mb.AddImplication(e.selected[t], e.selected[q]).WithName(fmt.Sprintf("requires[%s,%s]", ti.ID, qi.ID))
		if !p.multiDay {
			before := e.taskActivity(q, 0)
			before.active = nil
			e.addPrecedence(before, e.taskActivity(t, 0))
			continue
		}
		for d := range p.days {
			if !ti.fits[d] {
				continue
			}
			earlier := mip.NewLinearExpr()
			for dq := 0; dq <= d; dq++ {
				earlier.Add(e.assigned[q][dq])
			}
			e.mb.AddLessOrEqual(e.assigned[t][d], earlier).WithName(fmt.Sprintf("requires[%s,%s,%d]", ti.ID, qi.ID, d))
			if qi.fits[d] {
				e.addPrecedence(e.taskActivity(q, d), e.taskActivity(t, d))
			}
		}
	}
}

// addCapacity bounds the total duration of the tasks of each day by its free time. The rows
// are implied by the disjunctions but tighten the relaxation.
func (e *encoder) addCapacity() {
	for d, day := range e.p.days {
		load := mip.NewLinearExpr()
		terms := 0
		for t, ti := range e.p.tasks {
			if ti.fits[d] {
				load.AddTerm(e.assigned[t][d], ti.Duration)
				terms++
			}
		}
		if terms > 0 {
			e.mb.AddLessOrEqual(load, mip.NewConstant(day.windows.Free())).WithName(fmt.Sprintf("capacity[%d]", d))
		}
	}
}

func gate(a, b activity) []mip.BoolVar {
	return append(append([]mip.BoolVar(nil), a.active...), b.active...)
}

// addOrdered adds the row `first` ends before `second` starts, relaxed unless every literal of
// `lits` is true:
//
//	first.start + first.length <= second.start + M * sum(1 - l for l in lits)
//
// with M the largest violation the bounds of the two starts allow.
func (e *encoder) addOrdered(first, second activity, name string, lits ...mip.BoolVar) {
	m := math.Max(0, first.hi+first.length-second.lo)
	row := mip.NewLinearExpr().Add(first.start).AddConstant(first.length).AddTerm(second.start, -1)
	for _, l := range lits {
		row.AddTerm(l.Not(), -m)
	}
	e.mb.AddLessOrEqual(row, mip.NewConstant(0)).WithName(name)
}

// addPrecedence makes `b` start after `a` ends whenever both are active.
func (e *encoder) addPrecedence(a, b activity) {
	if a.hi+a.length <= b.lo+fitTolerance {
		return
	}
	e.addOrdered(a, b, fmt.Sprintf("precedence[%s,%s,%d]", a.name, b.name, a.day), gate(a, b)...)
}

// addDisjunction forbids `a` and `b` to overlap when both are active. When both orders are
// possible a fresh literal chooses one; when the bounds rule an order out, the other is
// enforced directly, and when they rule out both, the two activities exclude each other.
func (e *encoder) addDisjunction(a, b activity) {
	if a.hi+a.length <= b.lo+fitTolerance || b.hi+b.length <= a.lo+fitTolerance {
		return
	}
	name := fmt.Sprintf("%s,%s,%d", a.name, b.name, a.day)
	lits := gate(a, b)
	aFirst := a.lo+a.length <= b.hi+fitTolerance
	bFirst := b.lo+b.length <= a.hi+fitTolerance
	switch {
	case aFirst && bFirst:
		before := e.mb.NewBoolVar().WithName("before[" + name + "]")
		e.aux = append(e.aux, before)
		e.disjunctions = append(e.disjunctions, disjunction{before: before, a: a, b: b})
		e.addOrdered(a, b, "disjunction_ab["+name+"]", append(lits, before)...)
		e.addOrdered(b, a, "disjunction_ba["+name+"]", append(lits, before.Not())...)
	case aFirst:
		e.addOrdered(a, b, "disjunction_ab["+name+"]", lits...)
	case bFirst:
		e.addOrdered(b, a, "disjunction_ba["+name+"]", lits...)
	case len(lits) > 0:
		exclusive := mip.NewLinearExpr()
		for _, l := range lits {
			exclusive.Add(l)
		}
		e.mb.AddLessOrEqual(exclusive, mip.NewConstant(float64(len(lits)-1))).WithName("exclusive[" + name + "]")
	}
}
