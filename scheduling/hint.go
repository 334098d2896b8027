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
	"math"

	"github.com/rewardsched/rewardsched/mip"
)

type placement struct {
	placed bool
	day    int
	start  float64
}

// worthScheduling marks the tasks with a positive reward and the prerequisites, direct or not,
// of such tasks.
func (p *problem) worthScheduling() []bool {
	worth := make([]bool, len(p.tasks))
	for i := len(p.order) - 1; i >= 0; i-- {
		t := p.order[i]
		if p.tasks[t].Reward > 0 {
			worth[t] = true
		}
		if worth[t] {
			for _, q := range p.tasks[t].prereqs {
				worth[q] = true
			}
		}
	}
	return worth
}

// greedyPlacement places the worthwhile tasks in topological order, each at the earliest free
// start of the first day that can host it after its prerequisites. The result is always a
// valid schedule.
func greedyPlacement(p *problem) []placement {
	pl := make([]placement, len(p.tasks))
	worth := p.worthScheduling()
	busy := make([]WindowSet, len(p.days))
	for d, day := range p.days {
		busy[d] = day.windows
	}
	for _, t := range p.order {
		ti := p.tasks[t]
		if ti.dropped || !worth[t] {
			continue
		}
		first, ok := 0, true
		for _, q := range ti.prereqs {
			if !pl[q].placed {
				ok = false
				break
			}
			first = max(first, pl[q].day)
		}
		if !ok {
			continue
		}
		for d := first; d < len(p.days); d++ {
			if !ti.fits[d] {
				continue
			}
			from := ti.earliest[d]
			for _, q := range ti.prereqs {
				if pl[q].day == d {
					from = math.Max(from, pl[q].start+p.tasks[q].Duration)
				}
			}
			if s, found := busy[d].FirstFit(from, ti.Duration); found {
				pl[t] = placement{placed: true, day: d, start: s}
				busy[d] = busy[d].With(TimeWindow{Start: s, End: s + ti.Duration})
				break
			}
		}
	}
	return pl
}

// setHint hands the placement to the program as a complete assignment of its integer
// variables.
func (e *encoder) setHint(pl []placement) {
	h := &mip.Hint{Vars: make(map[mip.Var]float64), Bools: make(map[mip.BoolVar]bool)}
	for t := range e.p.tasks {
		h.Bools[e.selected[t]] = pl[t].placed
		if e.p.multiDay {
			for d, a := range e.assigned[t] {
				h.Bools[a] = pl[t].placed && pl[t].day == d
			}
		}
		if pl[t].placed {
			h.Vars[e.start[t][pl[t].day]] = pl[t].start
		}
	}
	startOf := func(a activity) (float64, bool) {
		if a.task < 0 {
			return a.lo, true
		}
		x := pl[a.task]
		return x.start, x.placed && x.day == a.day
	}
	for _, dj := range e.disjunctions {
		sa, okA := startOf(dj.a)
		sb, okB := startOf(dj.b)
		h.Bools[dj.before] = okA && okB && sa+dj.a.length <= sb+fitTolerance
	}
	e.mb.SetHint(h)
}
