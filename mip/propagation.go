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

const maxPropagationPasses = 20

// termBounds returns the range of a*x for x in [lb, ub].
func termBounds(a, lb, ub float64) (float64, float64) {
	if a > 0 {
		return a * lb, a * ub
	}
	return a * ub, a * lb
}

// residual returns the activity bound of a row without one of its terms, given the finite
// part `fin` and the number `inf` of infinite contributions of the whole row.
func residual(fin float64, inf int, own float64) (float64, bool) {
	if math.IsInf(own, 0) {
		return fin, inf == 1
	}
	return fin - own, inf == 0
}

// propagate tightens the bounds of the integer variables in place from the activity range of
// every row. It returns false when a row cannot be satisfied within the bounds.
func propagate(m *Model, lb, ub []float64, intTol, feasTol float64) bool {
	for pass := 0; pass < maxPropagationPasses; pass++ {
		changed := false
		for _, ct := range m.Constraints {
			var minFin, maxFin float64
			var minInf, maxInf int
			for i, v := range ct.Vars {
				lo, hi := termBounds(ct.Coeffs[i], lb[v], ub[v])
				if math.IsInf(lo, -1) {
					minInf++
				} else {
					minFin += lo
				}
				if math.IsInf(hi, 1) {
					maxInf++
				} else {
					maxFin += hi
				}
			}
			if minInf == 0 && minFin > ct.UB+rowTolerance(feasTol, ct.UB) {
				return false
			}
			if maxInf == 0 && maxFin < ct.LB-rowTolerance(feasTol, ct.LB) {
				return false
			}
			for i, v := range ct.Vars {
				if !m.Variables[v].Integer || lb[v] == ub[v] {
					continue
				}
				a := ct.Coeffs[i]
				lo, hi := termBounds(a, lb[v], ub[v])
				if !math.IsInf(ct.UB, 1) {
					if rest, ok := residual(minFin, minInf, lo); ok {
						limit := (ct.UB - rest) / a
						if a > 0 {
							if nu := math.Floor(limit + intTol); nu < ub[v] {
								ub[v], changed = nu, true
							}
						} else if nl := math.Ceil(limit - intTol); nl > lb[v] {
							lb[v], changed = nl, true
						}
					}
				}
				if !math.IsInf(ct.LB, -1) {
					if rest, ok := residual(maxFin, maxInf, hi); ok {
						limit := (ct.LB - rest) / a
						if a > 0 {
							if nl := math.Ceil(limit - intTol); nl > lb[v] {
								lb[v], changed = nl, true
							}
						} else if nu := math.Floor(limit + intTol); nu < ub[v] {
							ub[v], changed = nu, true
						}
					}
				}
				if lb[v] > ub[v] {
					return false
				}
			}
		}
		if !changed {
			break
		}
	}
	return true
}
