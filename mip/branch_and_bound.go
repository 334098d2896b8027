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

package mip

import (
	"fmt"
	"math"
	"time"

	log "github.com/golang/glog"
)

const (
	// absoluteGap is the smallest improvement a node must promise to be explored.
	absoluteGap = 1e-6
	// checkTolerance is the tolerance used to accept a candidate incumbent.
	checkTolerance = 1e-6
	// progressEvery is the number of nodes between two progress lines.
	progressEvery = 1000
)

type node struct {
	lb, ub []float64
	// bound is the relaxation objective of the parent node.
	bound float64
}

// search is a depth-first LP-based branch-and-bound. Internally the objective is always
// maximized: obj holds the model coefficients negated for minimization models.
type search struct {
	m         *Model
	p         Parameters
	interrupt <-chan struct{}
	start     time.Time
	// lpSolve solves the relaxations. It runs outside the search goroutine and must only read
	// its arguments.
	lpSolve func(m *Model, obj, lb, ub []float64, feasTol float64) relaxation
	// stopped is the limit that abandoned a relaxation, NoLimit otherwise.
	stopped LimitReason

	sense float64
	obj   []float64
	order []VarIndex

	incumbent []float64
	incObj    float64
	nodes     int
	// gapBound is the best bound among nodes pruned only thanks to RelativeGap.
	gapBound  float64
	gapPruned bool
}

func newSearch(m *Model, p Parameters, interrupt <-chan struct{}, start time.Time) *search {
	s := &search{
		m:         m,
		p:         p,
		interrupt: interrupt,
		start:     start,
		lpSolve:   solveRelaxation,
		sense:     -1,
		obj:       make([]float64, len(m.Variables)),
		gapBound:  math.Inf(-1),
	}
	if m.Objective.Maximize {
		s.sense = 1
	}
	for i, v := range m.Objective.Vars {
		s.obj[v] += s.sense * m.Objective.Coeffs[i]
	}
	seen := make([]bool, len(m.Variables))
	for _, v := range m.Strategy {
		if !seen[v] {
			seen[v] = true
			s.order = append(s.order, v)
		}
	}
	for i, v := range m.Variables {
		if v.Integer && !seen[i] {
			s.order = append(s.order, VarIndex(i))
		}
	}
	return s
}

// userValue converts an internal objective value to the model's sense, offset included.
func (s *search) userValue(internal float64) float64 {
	return s.sense*internal + s.m.Objective.Offset
}

func (s *search) rootBounds() ([]float64, []float64, bool) {
	n := len(s.m.Variables)
	lb, ub := make([]float64, n), make([]float64, n)
	for i, v := range s.m.Variables {
		lb[i], ub[i] = v.LB, v.UB
		if v.Integer {
			lb[i] = math.Ceil(v.LB - s.p.IntegralityTolerance)
			ub[i] = math.Floor(v.UB + s.p.IntegralityTolerance)
		}
		if lb[i] > ub[i] {
			return nil, nil, false
		}
	}
	return lb, ub, true
}

// interrupted reports whether the time limit elapsed or the interrupt fired.
func (s *search) interrupted() LimitReason {
	select {
	case <-s.interrupt:
		return Interrupted
	default:
	}
	if s.p.MaxTime > 0 && time.Since(s.start) >= s.p.MaxTime {
		return TimeLimit
	}
	return NoLimit
}

func (s *search) limitReached() LimitReason {
	if s.stopped != NoLimit {
		return s.stopped
	}
	if l := s.interrupted(); l != NoLimit {
		return l
	}
	if s.p.MaxNodes > 0 && s.nodes >= s.p.MaxNodes {
		return NodeLimit
	}
	return NoLimit
}

// relax solves the relaxation over [lb, ub] in its own goroutine and waits for it, the
// interrupt or the time limit, whichever comes first. When a limit wins the relaxation is
// abandoned: it returns relaxStopped and records the limit in s.stopped. The abandoned solve
// runs to completion on private copies of the bounds.
func (s *search) relax(lb, ub []float64) relaxation {
	if l := s.interrupted(); l != NoLimit {
		s.stopped = l
		return relaxation{status: relaxStopped}
	}
	lb, ub = append([]float64(nil), lb...), append([]float64(nil), ub...)
	done := make(chan relaxation, 1)
	go func(solve func(*Model, []float64, []float64, []float64, float64) relaxation, m *Model, obj []float64, feasTol float64) {
		done <- solve(m, obj, lb, ub, feasTol)
	}(s.lpSolve, s.m, s.obj, s.p.FeasibilityTolerance)

	var deadline <-chan time.Time
	if s.p.MaxTime > 0 {
		timer := time.NewTimer(time.Until(s.start.Add(s.p.MaxTime)))
		defer timer.Stop()
		deadline = timer.C
	}
	select {
	case r := <-done:
		return r
	case <-s.interrupt:
		s.stopped = Interrupted
	case <-deadline:
		s.stopped = TimeLimit
	}
	log.V(1).Infof("mip: #%d relaxation abandoned on %v", s.nodes, s.stopped)
	return relaxation{status: relaxStopped}
}

// prune reports whether a node whose relaxation is worth at most `bound` can be skipped.
func (s *search) prune(bound float64) bool {
	if s.incumbent == nil {
		return false
	}
	if bound <= s.incObj+absoluteGap {
		return true
	}
	if s.p.RelativeGap > 0 && bound <= s.incObj+s.p.RelativeGap*math.Abs(s.userValue(s.incObj)) {
		s.gapPruned = true
		s.gapBound = math.Max(s.gapBound, bound)
		return true
	}
	return false
}

// offer records `x` as the new incumbent when it is feasible and improves on the current one.
func (s *search) offer(x []float64, origin string) {
	if err := s.m.CheckSolution(x, checkTolerance); err != nil {
		log.V(1).Infof("mip: rejected %s candidate: %v", origin, err)
		return
	}
	obj := dot(s.obj, x)
	if s.incumbent != nil && obj <= s.incObj+1e-9 {
		return
	}
	s.incumbent, s.incObj = x, obj
	if s.p.LogSearchProgress {
		log.Infof("mip: #%d %s solution objective=%g elapsed=%v", s.nodes, origin, s.userValue(obj), time.Since(s.start))
	} else {
		log.V(1).Infof("mip: #%d %s solution objective=%g", s.nodes, origin, s.userValue(obj))
	}
}

// tryHint evaluates the model hint when it fixes every integer variable.
func (s *search) tryHint(lb, ub []float64) error {
	h := s.m.Hint
	if h == nil {
		return nil
	}
	hinted := make(map[VarIndex]float64, len(h.Vars))
	for i, v := range h.Vars {
		hinted[v] = h.Values[i]
	}
	hlb, hub := append([]float64(nil), lb...), append([]float64(nil), ub...)
	for i, v := range s.m.Variables {
		if !v.Integer {
			continue
		}
		val, ok := hinted[VarIndex(i)]
		if !ok {
			log.V(1).Infof("mip: hint does not assign integer variable %d, ignored", i)
			return nil
		}
		val = math.Min(hub[i], math.Max(hlb[i], math.Round(val)))
		hlb[i], hub[i] = val, val
	}
	if !propagate(s.m, hlb, hub, s.p.IntegralityTolerance, s.p.FeasibilityTolerance) {
		log.V(1).Info("mip: hint is infeasible")
		return nil
	}
	_, err := s.solveLeaf(hlb, hub, "hint")
	return err
}

// solveFixed solves the continuous problem left once every integer variable is fixed.
func (s *search) solveFixed(lb, ub []float64) relaxation {
	if x, feasible, ok := solveDifferenceSystem(s.m, s.obj, lb, ub, s.p.FeasibilityTolerance); ok {
		if !feasible {
			return relaxation{status: relaxInfeasible}
		}
		return relaxation{status: relaxOptimal, x: x, objective: dot(s.obj, x)}
	}
	return s.relax(lb, ub)
}

// solveLeaf solves a node where every integer variable is fixed and offers the result.
func (s *search) solveLeaf(lb, ub []float64, origin string) (unbounded bool, err error) {
	r := s.solveFixed(lb, ub)
	switch r.status {
	case relaxOptimal:
		s.offer(r.x, origin)
	case relaxUnbounded:
		return true, nil
	case relaxFailed:
		return false, fmt.Errorf("continuous subproblem: %w", r.err)
	}
	return false, nil
}

func (s *search) firstUnfixed(lb, ub []float64) VarIndex {
	for _, v := range s.order {
		if lb[v] < ub[v] {
			return v
		}
	}
	return -1
}

func (s *search) firstFractional(x, lb, ub []float64) VarIndex {
	for _, v := range s.order {
		if lb[v] == ub[v] {
			continue
		}
		if math.Abs(x[v]-math.Round(x[v])) > s.p.IntegralityTolerance {
			return v
		}
	}
	return -1
}

// branch splits `nd` on variable v. `val` is the relaxation value of v, or NaN when the
// relaxation could not be solved. The preferred child is returned last so that it is popped
// first.
func (s *search) branch(nd *node, v VarIndex, val, bound float64) []*node {
	var split float64
	var upFirst bool
	if math.IsNaN(val) {
		split = nd.lb[v]
		upFirst = s.obj[v] > 0
	} else {
		split = math.Floor(val)
		upFirst = val-split >= 0.5
	}
	down := &node{lb: append([]float64(nil), nd.lb...), ub: append([]float64(nil), nd.ub...), bound: bound}
	down.ub[v] = split
	up := &node{lb: nd.lb, ub: nd.ub, bound: bound}
	up.lb[v] = split + 1
	log.V(2).Infof("mip: #%d branch on %d at %v (up first: %v)", s.nodes, v, val, upFirst)
	if upFirst {
		return []*node{down, up}
	}
	return []*node{up, down}
}

// expand processes one node and returns its children.
func (s *search) expand(nd *node) (children []*node, unbounded bool, err error) {
	if !propagate(s.m, nd.lb, nd.ub, s.p.IntegralityTolerance, s.p.FeasibilityTolerance) {
		return nil, false, nil
	}
	v := s.firstUnfixed(nd.lb, nd.ub)
	if v < 0 {
		unbounded, err := s.solveLeaf(nd.lb, nd.ub, "leaf")
		return nil, unbounded, err
	}

	r := s.relax(nd.lb, nd.ub)
	switch r.status {
	case relaxStopped:
		return nil, false, nil
	case relaxInfeasible:
		return nil, false, nil
	case relaxUnbounded:
		return nil, true, nil
	case relaxFailed:
		log.V(2).Infof("mip: #%d relaxation failed (%v), branching blindly", s.nodes, r.err)
		return s.branch(nd, v, math.NaN(), nd.bound), false, nil
	}
	if s.prune(r.objective) {
		return nil, false, nil
	}
	if f := s.firstFractional(r.x, nd.lb, nd.ub); f >= 0 {
		return s.branch(nd, f, r.x[f], r.objective), false, nil
	}

	// The relaxation is integral: fix the integers to their rounded values and re-solve the
	// continuous part for a clean solution.
	flb, fub := append([]float64(nil), nd.lb...), append([]float64(nil), nd.ub...)
	rounded := append([]float64(nil), r.x...)
	for i, vr := range s.m.Variables {
		if vr.Integer {
			rounded[i] = math.Round(r.x[i])
			flb[i], fub[i] = rounded[i], rounded[i]
		}
	}
	switch fixed := s.solveFixed(flb, fub); fixed.status {
	case relaxOptimal:
		s.offer(fixed.x, "relaxation")
	case relaxUnbounded:
		return nil, true, nil
	case relaxStopped:
		return nil, false, nil
	default:
		log.V(2).Infof("mip: #%d re-solve of integral relaxation gave %v (%v)", s.nodes, fixed.status, fixed.err)
		s.offer(rounded, "relaxation")
	}
	return nil, false, nil
}

// openBound is the best bound over the nodes that were not explored.
func (s *search) openBound(open []*node) float64 {
	b := math.Inf(-1)
	if s.incumbent != nil {
		b = s.incObj
	}
	if s.gapPruned {
		b = math.Max(b, s.gapBound)
	}
	for _, nd := range open {
		b = math.Max(b, nd.bound)
	}
	return b
}

func (s *search) run() (*Response, error) {
	lb, ub, ok := s.rootBounds()
	if !ok {
		return &Response{Status: Infeasible, BestObjectiveBound: s.userValue(math.Inf(-1))}, nil
	}
	log.V(1).Infof("mip: solving %q with %d variables (%d integer), %d constraints",
		s.m.Name, s.m.NumVariables(), s.m.NumIntegerVariables(), s.m.NumConstraints())
	if err := s.tryHint(lb, ub); err != nil {
		log.V(1).Infof("mip: hint: %v", err)
	}

	open := []*node{{lb: lb, ub: ub, bound: math.Inf(1)}}
	limit := NoLimit
	for len(open) > 0 {
		if limit = s.limitReached(); limit != NoLimit {
			break
		}
		nd := open[len(open)-1]
		open = open[:len(open)-1]
		s.nodes++
		if s.prune(nd.bound) {
			continue
		}
		children, unbounded, err := s.expand(nd)
		if err != nil {
			return nil, err
		}
		if s.stopped != NoLimit {
			// The node was not fully explored; its bound still counts.
			open = append(open, nd)
			limit = s.stopped
			break
		}
		if unbounded {
			return &Response{
				Status:             Unbounded,
				Nodes:              s.nodes,
				BestObjectiveBound: s.userValue(math.Inf(1)),
			}, nil
		}
		open = append(open, children...)
		if s.p.LogSearchProgress && s.nodes%progressEvery == 0 {
			log.Infof("mip: #%d open=%d bound=%g elapsed=%v", s.nodes, len(open), s.userValue(s.openBound(open)), time.Since(s.start))
		}
	}

	res := &Response{Limit: limit, Nodes: s.nodes}
	if s.incumbent != nil {
		res.Solution = s.incumbent
		res.ObjectiveValue = s.userValue(s.incObj)
	}
	switch {
	case limit != NoLimit:
		res.Status = Unknown
		if s.incumbent != nil {
			res.Status = Feasible
		}
		res.BestObjectiveBound = s.userValue(s.openBound(open))
	case s.incumbent == nil:
		res.Status = Infeasible
		res.BestObjectiveBound = s.userValue(math.Inf(-1))
	case s.gapPruned:
		res.Status = Feasible
		res.Limit = GapLimit
		res.BestObjectiveBound = s.userValue(s.openBound(nil))
	default:
		res.Status = Optimal
		res.BestObjectiveBound = res.ObjectiveValue
	}
	log.V(1).Infof("mip: %q finished with status %v (limit %v) after %d nodes", s.m.Name, res.Status, res.Limit, s.nodes)
	return res, nil
}
