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

import "math"

type diffEdge struct {
	from, to int
	w        float64
}

// solveDifferenceSystem solves the leaf problem left once every integer variable is fixed,
// when that problem is a system of difference constraints: each row involves at most two
// free variables, two free variables always have opposite coefficients, and no free variable
// carries an objective coefficient.
//
// The system is solved exactly with Bellman-Ford on the graph of y = -x, which yields the
// componentwise smallest feasible x. `applicable` is false when the leaf is not of that shape.
func solveDifferenceSystem(m *Model, obj, lb, ub []float64, feasTol float64) (x []float64, feasible, applicable bool) {
	n := len(lb)
	node := make([]int, n)
	free := 0
	for j := 0; j < n; j++ {
		node[j] = -1
		if lb[j] < ub[j] {
			if obj[j] != 0 {
				return nil, false, false
			}
			free++
			node[j] = free
		}
	}
	lo := append([]float64(nil), lb...)
	hi := append([]float64(nil), ub...)

	var edges []diffEdge
	for _, ct := range m.Constraints {
		shift := 0.0
		var vars [2]VarIndex
		var coeffs [2]float64
		k := 0
		for i, v := range ct.Vars {
			if node[v] < 0 {
				shift += ct.Coeffs[i] * lb[v]
				continue
			}
			if k == 2 {
				return nil, false, false
			}
			vars[k], coeffs[k] = v, ct.Coeffs[i]
			k++
		}
		rl, ru := ct.LB-shift, ct.UB-shift
		switch k {
		case 0:
			if rl > rowTolerance(feasTol, rl) || ru < -rowTolerance(feasTol, ru) {
				return nil, false, true
			}
		case 1:
			a, v := coeffs[0], vars[0]
			l, u := rl/a, ru/a
			if a < 0 {
				l, u = u, l
			}
			lo[v] = math.Max(lo[v], l)
			hi[v] = math.Min(hi[v], u)
		case 2:
			if math.Abs(coeffs[0]+coeffs[1]) > 1e-12*math.Max(1, math.Abs(coeffs[0])) {
				return nil, false, false
			}
			p, q, a := vars[0], vars[1], coeffs[0]
			if a < 0 {
				p, q, a = q, p, -a
			}
			// rl/a <= x_p - x_q <= ru/a.
			if !math.IsInf(ru, 1) {
				edges = append(edges, diffEdge{from: node[p], to: node[q], w: ru / a})
			}
			if !math.IsInf(rl, -1) {
				edges = append(edges, diffEdge{from: node[q], to: node[p], w: -rl / a})
			}
		}
	}
	for j := 0; j < n; j++ {
		if node[j] < 0 {
			continue
		}
		if lo[j] > hi[j]+rowTolerance(feasTol, hi[j]) {
			return nil, false, true
		}
		edges = append(edges, diffEdge{from: 0, to: node[j], w: -lo[j]})
		if !math.IsInf(hi[j], 1) {
			edges = append(edges, diffEdge{from: node[j], to: 0, w: hi[j]})
		}
	}

	dist := make([]float64, free+1)
	for i := 1; i <= free; i++ {
		dist[i] = math.Inf(1)
	}
	for iter := 0; iter < free; iter++ {
		relaxed := false
		for _, e := range edges {
			if d := dist[e.from] + e.w; d < dist[e.to]-1e-12 {
				dist[e.to] = d
				relaxed = true
			}
		}
		if !relaxed {
			break
		}
	}
	for _, e := range edges {
		if dist[e.from]+e.w < dist[e.to]-rowTolerance(feasTol, dist[e.to]) {
			return nil, false, true
		}
	}

	x = append([]float64(nil), lb...)
	for j := 0; j < n; j++ {
		if node[j] > 0 {
			x[j] = math.Min(ub[j], math.Max(lb[j], -dist[node[j]]))
		}
	}
	return x, true, true
}
