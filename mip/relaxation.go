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
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// simplexTolerance is the reduced cost tolerance handed to the simplex.
const simplexTolerance = 1e-10

type relaxStatus int

const (
	relaxOptimal relaxStatus = iota
	relaxInfeasible
	relaxUnbounded
	relaxFailed
	// relaxStopped means the solve was abandoned on a limit.
	relaxStopped
)

type relaxation struct {
	status relaxStatus
	// x holds one value per model variable when status is relaxOptimal.
	x []float64
	// objective is obj·x.
	objective float64
	err       error
}

// sfRow is one row of the standard form `sum(coeffs * x') (+/- slack) = rhs` before columns
// are numbered.
type sfRow struct {
	vars   []VarIndex
	coeffs []float64
	rhs    float64
	// slack is +1 for `<=` rows, -1 for `>=` rows and 0 for equalities.
	slack float64
}

// solveRelaxation maximizes obj·x over the linear relaxation of m restricted to the box
// [lb, ub].
//
// Each non-fixed variable is shifted to x = lb + x' with x' >= 0, fixed variables are
// substituted, every inequality and finite upper bound gets its own slack column and the
// resulting `A x = b, x >= 0` program is handed to lp.Simplex.
func solveRelaxation(m *Model, obj, lb, ub []float64, feasTol float64) relaxation {
	n := len(lb)
	var rows []sfRow
	for _, ct := range m.Constraints {
		shift := 0.0
		var vars []VarIndex
		var coeffs []float64
		for i, v := range ct.Vars {
			shift += ct.Coeffs[i] * lb[v]
			if lb[v] < ub[v] {
				vars = append(vars, v)
				coeffs = append(coeffs, ct.Coeffs[i])
			}
		}
		lo, hi := ct.LB-shift, ct.UB-shift
		if len(vars) == 0 {
			if lo > rowTolerance(feasTol, lo) || hi < -rowTolerance(feasTol, hi) {
				return relaxation{status: relaxInfeasible}
			}
			continue
		}
		switch {
		case lo == hi:
			rows = append(rows, sfRow{vars: vars, coeffs: coeffs, rhs: lo})
		default:
			if !math.IsInf(hi, 1) {
				rows = append(rows, sfRow{vars: vars, coeffs: coeffs, rhs: hi, slack: 1})
			}
			if !math.IsInf(lo, -1) {
				rows = append(rows, sfRow{vars: vars, coeffs: coeffs, rhs: lo, slack: -1})
			}
		}
	}
	for j := 0; j < n; j++ {
		if lb[j] < ub[j] && !math.IsInf(ub[j], 1) {
			rows = append(rows, sfRow{vars: []VarIndex{VarIndex(j)}, coeffs: []float64{1}, rhs: ub[j] - lb[j], slack: 1})
		}
	}

	x := append([]float64(nil), lb...)
	col := make([]int, n)
	for j := range col {
		col[j] = -1
	}
	for _, r := range rows {
		for _, v := range r.vars {
			col[v] = 0
		}
	}
	structural := 0
	for j := 0; j < n; j++ {
		if lb[j] == ub[j] {
			continue
		}
		if col[j] < 0 {
			// Appears nowhere: it sits at its lower bound unless it improves the objective.
			if obj[j] > 0 {
				return relaxation{status: relaxUnbounded}
			}
			continue
		}
		col[j] = structural
		structural++
	}
	if len(rows) == 0 {
		return relaxation{status: relaxOptimal, x: x, objective: dot(obj, x)}
	}

	slacks := 0
	for _, r := range rows {
		if r.slack != 0 {
			slacks++
		}
	}
	nRows, nCols := len(rows), structural+slacks
	if nRows > nCols {
		return relaxation{status: relaxFailed, err: errors.New("more equality rows than columns")}
	}
	a := mat.NewDense(nRows, nCols, nil)
	b := make([]float64, nRows)
	c := make([]float64, nCols)
	for j := 0; j < n; j++ {
		if col[j] >= 0 && lb[j] < ub[j] {
			c[col[j]] = -obj[j]
		}
	}
	next := structural
	for i, r := range rows {
		sign := 1.0
		if r.rhs < 0 {
			sign = -1
		}
		for k, v := range r.vars {
			a.Set(i, col[v], sign*r.coeffs[k])
		}
		if r.slack != 0 {
			a.Set(i, next, sign*r.slack)
			next++
		}
		b[i] = sign * r.rhs
	}

	_, sol, err := lp.Simplex(c, a, b, simplexTolerance, nil)
	switch {
	case errors.Is(err, lp.ErrInfeasible):
		return relaxation{status: relaxInfeasible}
	case errors.Is(err, lp.ErrUnbounded):
		return relaxation{status: relaxUnbounded}
	case err != nil:
		return relaxation{status: relaxFailed, err: err}
	}
	for j := 0; j < n; j++ {
		if col[j] >= 0 && lb[j] < ub[j] {
			x[j] = math.Min(ub[j], math.Max(lb[j], lb[j]+sol[col[j]]))
		}
	}
	return relaxation{status: relaxOptimal, x: x, objective: dot(obj, x)}
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

// rowTolerance scales the absolute feasibility tolerance with the magnitude of a bound.
func rowTolerance(feasTol, bound float64) float64 {
	if math.IsInf(bound, 0) {
		return feasTol
	}
	return feasTol * math.Max(1, math.Abs(bound))
}
