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

// Package mip offers a small API to build and solve mixed integer linear programs.
//
// The `Builder` struct collects bounded variables, ranged linear constraints and a linear
// objective, and `Model()` freezes them into an immutable `Model`.
// The `Var` and `BoolVar` structs are references to specific variables of the builder and
// provide helpful methods for interacting with those variables.
// The `LinearExpr` struct provides helper methods for creating constraints and the
// objective from expressions with many variables and coefficients.
// `SolveModel` and its variants run an LP-based branch-and-bound on a `Model`.
package mip

import (
	"errors"
	"fmt"
	"math"
	"sort"

	log "github.com/golang/glog"
)

var (
	// ErrMixedModels holds the error when elements added to a model are different.
	ErrMixedModels = errors.New("elements are not part of the same model")
	// ErrInvalidBounds holds the error when a variable or constraint is given unusable bounds.
	ErrInvalidBounds = errors.New("invalid bounds")
)

type (
	// VarIndex is the index of a variable in the model, if positive. If this value is
	// negative, it represents the negation of a Boolean variable in the position (-1*VarIndex-1).
	VarIndex int32
	// ConstrIndex is the index of a constraint in the model.
	ConstrIndex int32
)

func (v VarIndex) positiveIndex() VarIndex {
	if v >= 0 {
		return v
	}
	return -1*v - 1
}

// LinearArgument provides an interface for BoolVar, Var, and LinearExpr.
type LinearArgument interface {
	addToLinearExpr(e *LinearExpr, c float64)
	evaluateSolutionValue(values []float64) float64
}

// LinearExpr is a container for a linear expression.
type LinearExpr struct {
	varCoeffs []varCoeff
	offset    float64
}

type varCoeff struct {
	ind   VarIndex
	coeff float64
	mb    *Builder
}

// NewLinearExpr creates a new empty LinearExpr.
func NewLinearExpr() *LinearExpr {
	return &LinearExpr{}
}

// NewConstant creates and returns a LinearExpr containing the constant `c`.
func NewConstant(c float64) *LinearExpr {
	return &LinearExpr{offset: c}
}

// Add adds the linear argument term to the LinearExpr and returns itself.
func (l *LinearExpr) Add(la LinearArgument) *LinearExpr {
	l.AddTerm(la, 1)
	return l
}

// AddConstant adds the constant to the LinearExpr and returns itself.
func (l *LinearExpr) AddConstant(c float64) *LinearExpr {
	l.offset += c
	return l
}

// AddTerm adds the linear argument term with the given coefficient to the LinearExpr and returns itself.
func (l *LinearExpr) AddTerm(la LinearArgument, coeff float64) *LinearExpr {
	la.addToLinearExpr(l, coeff)
	return l
}

// AddSum adds the sum of the linear arguments to the LinearExpr and returns itself.
func (l *LinearExpr) AddSum(las ...LinearArgument) *LinearExpr {
	for _, la := range las {
		l.Add(la)
	}
	return l
}

// AddWeightedSum adds the linear arguments with the corresponding coefficients to the LinearExpr
// and returns itself.
func (l *LinearExpr) AddWeightedSum(las []LinearArgument, coeffs []float64) *LinearExpr {
	if len(coeffs) != len(las) {
		log.Fatalf("las and coeffs must be the same length: %v != %v", len(las), len(coeffs))
	}
	for i, la := range las {
		l.AddTerm(la, coeffs[i])
	}
	return l
}

// Offset returns the constant part of the expression.
func (l *LinearExpr) Offset() float64 {
	return l.offset
}

func (l *LinearExpr) addToLinearExpr(e *LinearExpr, c float64) {
	for _, vc := range l.varCoeffs {
		e.varCoeffs = append(e.varCoeffs, varCoeff{ind: vc.ind, coeff: vc.coeff * c, mb: vc.mb})
	}
	e.offset += l.offset * c
}

func (l *LinearExpr) evaluateSolutionValue(values []float64) float64 {
	result := l.offset
	for _, vc := range l.varCoeffs {
		result += values[vc.ind] * vc.coeff
	}
	return result
}

// Var is a reference to a continuous or integer variable in the model.
type Var struct {
	ind VarIndex
	mb  *Builder
}

// Name returns the name of the variable.
func (v Var) Name() string {
	return v.mb.model.Variables[v.ind].Name
}

// Bounds returns the lower and upper bounds of the variable.
func (v Var) Bounds() (float64, float64) {
	pv := v.mb.model.Variables[v.ind]
	return pv.LB, pv.UB
}

// IsInteger reports whether the variable is restricted to integer values.
func (v Var) IsInteger() bool {
	return v.mb.model.Variables[v.ind].Integer
}

// Index returns the index of the variable.
func (v Var) Index() VarIndex {
	return v.ind
}

// WithName sets the name of the variable.
func (v Var) WithName(s string) Var {
	v.mb.model.Variables[v.ind].Name = s
	return v
}

func (v Var) addToLinearExpr(e *LinearExpr, c float64) {
	e.varCoeffs = append(e.varCoeffs, varCoeff{ind: v.ind, coeff: c, mb: v.mb})
}

func (v Var) evaluateSolutionValue(values []float64) float64 {
	return values[v.ind]
}

// BoolVar is a reference to a Boolean variable or the negation of a Boolean variable in the
// model. In linear expressions the negation `b.Not()` stands for `1 - b`.
type BoolVar struct {
	ind VarIndex
	mb  *Builder
}

// Not returns the logical Not of the Boolean variable.
func (b BoolVar) Not() BoolVar {
	return BoolVar{ind: -1*b.ind - 1, mb: b.mb}
}

// Name returns the name of the variable.
func (b BoolVar) Name() string {
	return b.mb.model.Variables[b.ind.positiveIndex()].Name
}

// Index returns the index of the variable. If the variable is a negation of another variable v,
// its index is `-1*v.index-1`.
func (b BoolVar) Index() VarIndex {
	return b.ind
}

// WithName sets the name of the variable.
func (b BoolVar) WithName(s string) BoolVar {
	b.mb.model.Variables[b.ind.positiveIndex()].Name = s
	return b
}

// Fix restricts the variable to the single value `value`. Fixing a negation fixes the
// underlying variable to the opposite value.
func (b BoolVar) Fix(value bool) BoolVar {
	v := 0.0
	if value != (b.ind < 0) {
		v = 1
	}
	pv := &b.mb.model.Variables[b.ind.positiveIndex()]
	pv.LB, pv.UB = v, v
	return b
}

// IsFixed reports whether the variable can only take a single value.
func (b BoolVar) IsFixed() bool {
	pv := b.mb.model.Variables[b.ind.positiveIndex()]
	return pv.LB == pv.UB
}

func (b BoolVar) addToLinearExpr(e *LinearExpr, c float64) {
	if b.ind < 0 {
		e.varCoeffs = append(e.varCoeffs, varCoeff{ind: b.ind.positiveIndex(), coeff: -c, mb: b.mb})
		e.offset += c
	} else {
		e.varCoeffs = append(e.varCoeffs, varCoeff{ind: b.ind, coeff: c, mb: b.mb})
	}
}

func (b BoolVar) evaluateSolutionValue(values []float64) float64 {
	if b.ind < 0 {
		return 1 - values[b.ind.positiveIndex()]
	}
	return values[b.ind]
}

// Constraint is a reference to a constraint in the model.
type Constraint struct {
	ind ConstrIndex
	mb  *Builder
}

// WithName sets the name of the constraint.
func (c Constraint) WithName(s string) Constraint {
	c.mb.model.Constraints[c.ind].Name = s
	return c
}

// Name returns the name of the constraint.
func (c Constraint) Name() string {
	return c.mb.model.Constraints[c.ind].Name
}

// Index returns the index of the constraint.
func (c Constraint) Index() ConstrIndex {
	return c.ind
}

// checkSameModelAndSetErrorf returns true if `mb` and `mb2` point to the same Builder.
// If false, an error with the error message `errString` is set on `mb` if `mb.err`
// is nil.
func (mb *Builder) checkSameModelAndSetErrorf(mb2 *Builder, format string, a ...any) bool {
	if mb == mb2 {
		return true
	}
	var args = make([]any, len(a)+1)
	copy(args, a)
	args[len(a)] = ErrMixedModels
	mb.setErrorf(format+": %w", args...)
	return false
}

func (mb *Builder) setErrorf(format string, a ...any) {
	err := fmt.Errorf(format, a...)
	log.Errorf("%v; use `-log_backtrace_at` flag to get the error stack", err)
	if mb.err == nil {
		mb.err = err
	}
}

// Builder collects the variables, constraints and objective of a model.
type Builder struct {
	model *Model
	// The first and only the first error is reported in Model.
	err error
}

// NewModelBuilder creates and returns a new Builder.
func NewModelBuilder() *Builder {
	return &Builder{model: &Model{}}
}

// SetName sets the name of the model.
func (mb *Builder) SetName(name string) {
	mb.model.Name = name
}

// NumVariables returns the number of variables created so far.
func (mb *Builder) NumVariables() int {
	return len(mb.model.Variables)
}

// NumConstraints returns the number of constraints added so far.
func (mb *Builder) NumConstraints() int {
	return len(mb.model.Constraints)
}

func (mb *Builder) appendVariable(lb, ub float64, integer bool) VarIndex {
	ind := VarIndex(len(mb.model.Variables))
	if math.IsNaN(lb) || math.IsNaN(ub) || math.IsInf(lb, 0) || math.IsInf(ub, -1) || lb > ub {
		mb.setErrorf("variable %v with bounds [%v, %v]: %w", ind, lb, ub, ErrInvalidBounds)
	}
	if integer && math.IsInf(ub, 1) {
		mb.setErrorf("integer variable %v with infinite upper bound: %w", ind, ErrInvalidBounds)
	}
	mb.model.Variables = append(mb.model.Variables, Variable{LB: lb, UB: ub, Integer: integer})
	return ind
}

// NewVar creates a new continuous variable with domain `[lb, ub]`. The lower bound must be
// finite; the upper bound may be `math.Inf(1)`.
func (mb *Builder) NewVar(lb, ub float64) Var {
	return Var{ind: mb.appendVariable(lb, ub, false), mb: mb}
}

// NewIntVar creates a new integer variable with domain `[lb, ub]`.
func (mb *Builder) NewIntVar(lb, ub int64) Var {
	return Var{ind: mb.appendVariable(float64(lb), float64(ub), true), mb: mb}
}

// NewBoolVar creates a new Boolean variable.
func (mb *Builder) NewBoolVar() BoolVar {
	return BoolVar{ind: mb.appendVariable(0, 1, true), mb: mb}
}

func (mb *Builder) appendConstraint(ct LinearConstraint) Constraint {
	i := ConstrIndex(len(mb.model.Constraints))
	mb.model.Constraints = append(mb.model.Constraints, ct)
	return Constraint{ind: i, mb: mb}
}

// normalize merges repeated variables of `le`, drops zero coefficients and sorts the terms
// by variable index.
func (mb *Builder) normalize(le *LinearExpr, what string) ([]VarIndex, []float64) {
	merged := make(map[VarIndex]float64, len(le.varCoeffs))
	for _, vc := range le.varCoeffs {
		if !mb.checkSameModelAndSetErrorf(vc.mb, "variable %v added to %v", vc.ind, what) {
			continue
		}
		if math.IsNaN(vc.coeff) || math.IsInf(vc.coeff, 0) {
			mb.setErrorf("coefficient %v of variable %v in %v: %w", vc.coeff, vc.ind, what, ErrInvalidBounds)
			continue
		}
		merged[vc.ind] += vc.coeff
	}
	vars := make([]VarIndex, 0, len(merged))
	for ind, c := range merged {
		if c != 0 {
			vars = append(vars, ind)
		}
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i] < vars[j] })
	coeffs := make([]float64, len(vars))
	for i, ind := range vars {
		coeffs[i] = merged[ind]
	}
	return vars, coeffs
}

// AddLinearConstraint adds the linear constraint `lb <= expr <= ub`. Either bound may be
// infinite. The constant offset of `expr` is moved to the bounds.
func (mb *Builder) AddLinearConstraint(expr LinearArgument, lb, ub float64) Constraint {
	le := NewLinearExpr().Add(expr)
	what := fmt.Sprintf("constraint %v", len(mb.model.Constraints))
	if math.IsNaN(lb) || math.IsNaN(ub) || lb > ub {
		mb.setErrorf("%v with bounds [%v, %v]: %w", what, lb, ub, ErrInvalidBounds)
	}
	vars, coeffs := mb.normalize(le, what)
	return mb.appendConstraint(LinearConstraint{
		Vars:   vars,
		Coeffs: coeffs,
		LB:     lb - le.offset,
		UB:     ub - le.offset,
	})
}

// AddEquality adds the linear constraint `lhs == rhs`.
func (mb *Builder) AddEquality(lhs, rhs LinearArgument) Constraint {
	diff := NewLinearExpr().Add(lhs).AddTerm(rhs, -1)
	return mb.AddLinearConstraint(diff, 0, 0)
}

// AddLessOrEqual adds the linear constraint `lhs <= rhs`.
func (mb *Builder) AddLessOrEqual(lhs, rhs LinearArgument) Constraint {
	diff := NewLinearExpr().Add(lhs).AddTerm(rhs, -1)
	return mb.AddLinearConstraint(diff, math.Inf(-1), 0)
}

// AddGreaterOrEqual adds the linear constraint `lhs >= rhs`.
func (mb *Builder) AddGreaterOrEqual(lhs, rhs LinearArgument) Constraint {
	diff := NewLinearExpr().Add(lhs).AddTerm(rhs, -1)
	return mb.AddLinearConstraint(diff, 0, math.Inf(1))
}

// AddImplication adds the constraint a => b, i.e. `a <= b`.
func (mb *Builder) AddImplication(a, b BoolVar) Constraint {
	return mb.AddLessOrEqual(a, b)
}

func (mb *Builder) setObjective(obj LinearArgument, maximize bool) {
	o := NewLinearExpr().Add(obj)
	vars, coeffs := mb.normalize(o, "objective")
	mb.model.Objective = Objective{
		Vars:     vars,
		Coeffs:   coeffs,
		Offset:   o.offset,
		Maximize: maximize,
	}
}

// Minimize adds a linear minimization objective.
func (mb *Builder) Minimize(obj LinearArgument) {
	mb.setObjective(obj, false)
}

// Maximize adds a linear maximization objective.
func (mb *Builder) Maximize(obj LinearArgument) {
	mb.setObjective(obj, true)
}

// AddDecisionStrategy appends Boolean variables to the branching order. Variables listed here
// are branched on first, in the given order; other integer variables follow by index.
func (mb *Builder) AddDecisionStrategy(bvs ...BoolVar) {
	for _, bv := range bvs {
		if !mb.checkSameModelAndSetErrorf(bv.mb, "invalid parameter var %v added to the DecisionStrategy", bv.Index()) {
			return
		}
		mb.model.Strategy = append(mb.model.Strategy, bv.ind.positiveIndex())
	}
}

// Hint is a container for Var and BoolVar hints to the model. A hint that assigns every
// integer variable is checked by the solver before the search and, when feasible, becomes the
// first incumbent.
type Hint struct {
	Vars  map[Var]float64
	Bools map[BoolVar]bool
}

type indexValueSlices struct {
	indices []VarIndex
	values  []float64
}

func (ivs indexValueSlices) Len() int {
	return len(ivs.indices)
}

func (ivs indexValueSlices) Less(i, j int) bool {
	return ivs.indices[i] < ivs.indices[j]
}

func (ivs indexValueSlices) Swap(i, j int) {
	ivs.indices[i], ivs.indices[j] = ivs.indices[j], ivs.indices[i]
	ivs.values[i], ivs.values[j] = ivs.values[j], ivs.values[i]
}

func (mb *Builder) hintAssignment(h *Hint) *PartialAssignment {
	if h == nil {
		return nil
	}

	var vars []VarIndex
	var values []float64
	for v, hint := range h.Vars {
		if !mb.checkSameModelAndSetErrorf(v.mb, "Var %v added as a Hint", v.Index()) {
			return nil
		}
		vars = append(vars, v.ind)
		values = append(values, hint)
	}
	for bv, hint := range h.Bools {
		if !mb.checkSameModelAndSetErrorf(bv.mb, "BoolVar %v added as a Hint", bv.Index()) {
			return nil
		}
		var value float64
		if hint {
			value = 1
		}
		if bv.ind < 0 {
			value = 1 - value
		}
		vars = append(vars, bv.ind.positiveIndex())
		values = append(values, value)
	}
	sort.Sort(indexValueSlices{vars, values})

	return &PartialAssignment{Vars: vars, Values: values}
}

// SetHint sets the hint on the model.
func (mb *Builder) SetHint(hint *Hint) {
	mb.model.Hint = mb.hintAssignment(hint)
}

// ClearHint clears any hints on the model.
func (mb *Builder) ClearHint() {
	mb.model.Hint = nil
}

// Model returns a frozen copy of the built model. Later calls to the Builder do not affect
// models already returned.
//
// Model returns an error when invalid parameters have been used during model building (e.g.
// passing variables from other builders or empty bounds).
func (mb *Builder) Model() (*Model, error) {
	if mb.err != nil {
		return nil, mb.err
	}
	return mb.model.clone(), nil
}
