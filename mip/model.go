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
)

// Variable describes one column of the model.
type Variable struct {
	Name    string
	LB, UB  float64
	Integer bool
}

// IsBinary reports whether the variable is an integer variable within [0, 1].
func (v Variable) IsBinary() bool {
	return v.Integer && v.LB >= 0 && v.UB <= 1
}

// LinearConstraint is the row `LB <= sum(Coeffs[i] * x[Vars[i]]) <= UB`. Vars are sorted and
// unique.
type LinearConstraint struct {
	Name   string
	Vars   []VarIndex
	Coeffs []float64
	LB, UB float64
}

// Activity returns the value of the row's linear part for `values`.
func (c LinearConstraint) Activity(values []float64) float64 {
	var a float64
	for i, v := range c.Vars {
		a += c.Coeffs[i] * values[v]
	}
	return a
}

// Objective is the linear function `Offset + sum(Coeffs[i] * x[Vars[i]])`.
type Objective struct {
	Vars     []VarIndex
	Coeffs   []float64
	Offset   float64
	Maximize bool
}

// PartialAssignment assigns values to a sorted subset of the variables.
type PartialAssignment struct {
	Vars   []VarIndex
	Values []float64
}

// Model is an immutable mixed integer linear program produced by Builder.Model.
type Model struct {
	Name        string
	Variables   []Variable
	Constraints []LinearConstraint
	Objective   Objective
	// Strategy lists variables to branch on first.
	Strategy []VarIndex
	Hint     *PartialAssignment
}

func (m *Model) clone() *Model {
	c := &Model{
		Name:        m.Name,
		Variables:   append([]Variable(nil), m.Variables...),
		Constraints: make([]LinearConstraint, len(m.Constraints)),
		Objective: Objective{
			Vars:     append([]VarIndex(nil), m.Objective.Vars...),
			Coeffs:   append([]float64(nil), m.Objective.Coeffs...),
			Offset:   m.Objective.Offset,
			Maximize: m.Objective.Maximize,
		},
		Strategy: append([]VarIndex(nil), m.Strategy...),
	}
	for i, ct := range m.Constraints {
		ct.Vars = append([]VarIndex(nil), ct.Vars...)
		ct.Coeffs = append([]float64(nil), ct.Coeffs...)
		c.Constraints[i] = ct
	}
	if m.Hint != nil {
		c.Hint = &PartialAssignment{
			Vars:   append([]VarIndex(nil), m.Hint.Vars...),
			Values: append([]float64(nil), m.Hint.Values...),
		}
	}
	return c
}

// NumVariables returns the number of variables of the model.
func (m *Model) NumVariables() int {
	return len(m.Variables)
}

// NumConstraints returns the number of constraints of the model.
func (m *Model) NumConstraints() int {
	return len(m.Constraints)
}

// NumIntegerVariables returns the number of integer variables of the model.
func (m *Model) NumIntegerVariables() int {
	n := 0
	for _, v := range m.Variables {
		if v.Integer {
			n++
		}
	}
	return n
}

func (m *Model) validIndex(v VarIndex) bool {
	return v >= 0 && int(v) < len(m.Variables)
}

// Validate returns a non-nil error explaining the issue if the model is invalid.
func (m *Model) Validate() error {
	for i, v := range m.Variables {
		if math.IsNaN(v.LB) || math.IsNaN(v.UB) || math.IsInf(v.LB, 0) || math.IsInf(v.UB, -1) || v.LB > v.UB {
			return fmt.Errorf("variable %d (%q) has bounds [%v, %v]: %w", i, v.Name, v.LB, v.UB, ErrInvalidBounds)
		}
		if v.Integer && math.IsInf(v.UB, 1) {
			return fmt.Errorf("integer variable %d (%q) has an infinite upper bound: %w", i, v.Name, ErrInvalidBounds)
		}
	}
	for i, ct := range m.Constraints {
		if len(ct.Vars) != len(ct.Coeffs) {
			return fmt.Errorf("constraint %d (%q) has %d variables and %d coefficients", i, ct.Name, len(ct.Vars), len(ct.Coeffs))
		}
		if math.IsNaN(ct.LB) || math.IsNaN(ct.UB) || ct.LB > ct.UB {
			return fmt.Errorf("constraint %d (%q) has bounds [%v, %v]: %w", i, ct.Name, ct.LB, ct.UB, ErrInvalidBounds)
		}
		for j, v := range ct.Vars {
			if !m.validIndex(v) {
				return fmt.Errorf("constraint %d (%q) references unknown variable %d", i, ct.Name, v)
			}
			if c := ct.Coeffs[j]; math.IsNaN(c) || math.IsInf(c, 0) {
				return fmt.Errorf("constraint %d (%q) has coefficient %v", i, ct.Name, c)
			}
		}
	}
	if len(m.Objective.Vars) != len(m.Objective.Coeffs) {
		return fmt.Errorf("objective has %d variables and %d coefficients", len(m.Objective.Vars), len(m.Objective.Coeffs))
	}
	for j, v := range m.Objective.Vars {
		if !m.validIndex(v) {
			return fmt.Errorf("objective references unknown variable %d", v)
		}
		if c := m.Objective.Coeffs[j]; math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("objective has coefficient %v", c)
		}
	}
	for _, v := range m.Strategy {
		if !m.validIndex(v) || !m.Variables[v].Integer {
			return fmt.Errorf("decision strategy references variable %d which is not an integer variable", v)
		}
	}
	if h := m.Hint; h != nil {
		if len(h.Vars) != len(h.Values) {
			return fmt.Errorf("hint has %d variables and %d values", len(h.Vars), len(h.Values))
		}
		for _, v := range h.Vars {
			if !m.validIndex(v) {
				return fmt.Errorf("hint references unknown variable %d", v)
			}
		}
	}
	return nil
}

// ObjectiveValue returns the objective value of `values`.
func (m *Model) ObjectiveValue(values []float64) float64 {
	obj := m.Objective.Offset
	for i, v := range m.Objective.Vars {
		obj += m.Objective.Coeffs[i] * values[v]
	}
	return obj
}

// CheckSolution returns an error describing the first bound, integrality or constraint
// violated by `values` by more than `tol`.
func (m *Model) CheckSolution(values []float64, tol float64) error {
	if len(values) != len(m.Variables) {
		return fmt.Errorf("got %d values for %d variables", len(values), len(m.Variables))
	}
	for i, v := range m.Variables {
		x := values[i]
		if math.IsNaN(x) || x < v.LB-tol || x > v.UB+tol {
			return fmt.Errorf("variable %d (%q) = %v is outside [%v, %v]", i, v.Name, x, v.LB, v.UB)
		}
		if v.Integer && math.Abs(x-math.Round(x)) > tol {
			return fmt.Errorf("integer variable %d (%q) = %v is fractional", i, v.Name, x)
		}
	}
	for i, ct := range m.Constraints {
		a := ct.Activity(values)
		if a < ct.LB-tol || a > ct.UB+tol {
			return fmt.Errorf("constraint %d (%q) activity %v is outside [%v, %v]", i, ct.Name, a, ct.LB, ct.UB)
		}
	}
	return nil
}
