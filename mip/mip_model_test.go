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
	"fmt"
	"math"
	"sort"
	"testing"

	log "github.com/golang/glog"
	"github.com/google/go-cmp/cmp"
)

func Example() {
	model := NewModelBuilder()

	x := model.NewIntVar(0, 10)
	y := model.NewIntVar(0, 10)

	model.AddLessOrEqual(NewLinearExpr().AddTerm(x, 6).AddTerm(y, 4), NewConstant(24))
	model.AddLessOrEqual(NewLinearExpr().Add(x).AddTerm(y, 2), NewConstant(6))
	model.Maximize(NewLinearExpr().AddTerm(x, 5).AddTerm(y, 4))
	m, err := model.Model()
	if err != nil {
		log.Fatalf("Building model returned with error %v", err)
	}

	res, err := SolveModel(m)
	if err != nil {
		log.Fatalf("MIP solver returned with unexpected err %v", err)
	}
	if res.Status != Optimal {
		log.Fatalf("MIP solver returned with status %v", res.Status)
	}

	fmt.Println("Objective:", res.ObjectiveValue)
	fmt.Println("x:", SolutionValue(res, x))
	fmt.Println("y:", SolutionValue(res, y))
	// Output:
	// Objective: 20
	// x: 4
	// y: 0
}

func TestBoolVar_Not(t *testing.T) {
	model := NewModelBuilder()

	bv1 := model.NewBoolVar().WithName("bv1")
	bv2 := bv1.Not()
	bv3 := bv2.Not()

	want := -1*bv1.Index() - 1
	if got := bv2.Index(); got != want {
		t.Errorf("Index() = %v, want %v", got, want)
	}
	want = bv1.Index()
	if got := bv3.Index(); got != want {
		t.Errorf("Index() = %v, want %v", got, want)
	}
	if got, want := bv2.Name(), "bv1"; got != want {
		t.Errorf("Name() = %q, want %q", got, want)
	}
}

func TestBoolVar_Fix(t *testing.T) {
	model := NewModelBuilder()

	a := model.NewBoolVar().Fix(true)
	b := model.NewBoolVar()
	b.Not().Fix(true)
	c := model.NewBoolVar()

	m, err := model.Model()
	if err != nil {
		t.Fatalf("Model() returned with unexpected error %v", err)
	}
	want := []Variable{
		{LB: 1, UB: 1, Integer: true},
		{LB: 0, UB: 0, Integer: true},
		{LB: 0, UB: 1, Integer: true},
	}
	if diff := cmp.Diff(want, m.Variables); diff != "" {
		t.Errorf("Variables returned unexpected diff (-want+got): %v", diff)
	}
	if !a.IsFixed() || !b.IsFixed() || c.IsFixed() {
		t.Errorf("IsFixed() = (%v, %v, %v), want (true, true, false)", a.IsFixed(), b.IsFixed(), c.IsFixed())
	}
}

func TestVar_EvaluateSolutionValue(t *testing.T) {
	model := NewModelBuilder()
	x := model.NewIntVar(0, 10)
	b := model.NewBoolVar()
	values := []float64{7, 1}

	testCases := []struct {
		name string
		la   LinearArgument
		want float64
	}{
		{name: "Var", la: x, want: 7},
		{name: "BoolVar", la: b, want: 1},
		{name: "NotBoolVar", la: b.Not(), want: 0},
		{name: "Constant", la: NewConstant(2.5), want: 2.5},
		{
			name: "LinearExpr",
			la:   NewLinearExpr().AddTerm(x, 2).AddTerm(b.Not(), 3).AddConstant(1),
			want: 15,
		},
	}
	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			if got := test.la.evaluateSolutionValue(values); got != test.want {
				t.Errorf("evaluateSolutionValue() = %v, want %v", got, test.want)
			}
		})
	}
}

func TestBuilder_Constraints(t *testing.T) {
	model := NewModelBuilder()
	x := model.NewIntVar(0, 10)
	y := model.NewVar(0, 5)
	b := model.NewBoolVar()

	testCases := []struct {
		name string
		add  func() Constraint
		want LinearConstraint
	}{
		{
			name: "LessOrEqualMovesOffset",
			add: func() Constraint {
				return model.AddLessOrEqual(NewLinearExpr().Add(x).AddConstant(2), y)
			},
			want: LinearConstraint{Vars: []VarIndex{0, 1}, Coeffs: []float64{1, -1}, LB: math.Inf(-1), UB: -2},
		},
		{
			name: "GreaterOrEqual",
			add: func() Constraint {
				return model.AddGreaterOrEqual(NewLinearExpr().AddTerm(x, 3), NewConstant(4))
			},
			want: LinearConstraint{Vars: []VarIndex{0}, Coeffs: []float64{3}, LB: 4, UB: math.Inf(1)},
		},
		{
			name: "EqualityMergesTerms",
			add: func() Constraint {
				return model.AddEquality(NewLinearExpr().AddSum(y, x, y), NewLinearExpr().Add(x).AddConstant(1))
			},
			want: LinearConstraint{Vars: []VarIndex{1}, Coeffs: []float64{2}, LB: 1, UB: 1},
		},
		{
			name: "NegatedBoolVar",
			add: func() Constraint {
				return model.AddLinearConstraint(NewLinearExpr().AddTerm(b.Not(), 4).Add(x), 0, 6)
			},
			want: LinearConstraint{Vars: []VarIndex{0, 2}, Coeffs: []float64{1, -4}, LB: -4, UB: 2},
		},
		{
			name: "Implication",
			add: func() Constraint {
				return model.AddImplication(b, b.Not()).WithName("b=>!b")
			},
			want: LinearConstraint{Name: "b=>!b", Vars: []VarIndex{2}, Coeffs: []float64{2}, LB: math.Inf(-1), UB: 1},
		},
	}
	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			c := test.add()
			m, err := model.Model()
			if err != nil {
				t.Fatalf("Model() returned with unexpected error %v", err)
			}
			got := m.Constraints[c.Index()]
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("constraint returned unexpected diff (-want+got): %v", diff)
			}
		})
	}
}

func TestBuilder_Objective(t *testing.T) {
	model := NewModelBuilder()
	x := model.NewIntVar(0, 10)
	b := model.NewBoolVar()
	model.Minimize(NewLinearExpr().AddTerm(x, 2).AddTerm(b.Not(), 3).AddConstant(1))

	m, err := model.Model()
	if err != nil {
		t.Fatalf("Model() returned with unexpected error %v", err)
	}
	want := Objective{Vars: []VarIndex{0, 1}, Coeffs: []float64{2, -3}, Offset: 4}
	if diff := cmp.Diff(want, m.Objective); diff != "" {
		t.Errorf("Objective returned unexpected diff (-want+got): %v", diff)
	}
}

func TestBuilder_ModelIsFrozen(t *testing.T) {
	model := NewModelBuilder()
	x := model.NewIntVar(0, 10).WithName("x")
	m, err := model.Model()
	if err != nil {
		t.Fatalf("Model() returned with unexpected error %v", err)
	}

	x.WithName("renamed")
	model.NewBoolVar()
	model.AddLessOrEqual(x, NewConstant(3))

	if got, want := m.NumVariables(), 1; got != want {
		t.Errorf("NumVariables() = %v, want %v", got, want)
	}
	if got, want := m.NumConstraints(), 0; got != want {
		t.Errorf("NumConstraints() = %v, want %v", got, want)
	}
	if got, want := m.Variables[0].Name, "x"; got != want {
		t.Errorf("Variables[0].Name = %q, want %q", got, want)
	}
}

func TestBuilder_IndexValueSlices(t *testing.T) {
	indices := []VarIndex{3, 1, 4, 2}
	values := []float64{9, 5, 6, 7}

	sort.Sort(indexValueSlices{indices, values})

	wantIndices := []VarIndex{1, 2, 3, 4}
	wantValues := []float64{5, 7, 9, 6}
	if diff := cmp.Diff(wantIndices, indices); diff != "" {
		t.Errorf("Sort indexValueSlices return unexpected indices diff (-want+got): %v", diff)
	}
	if diff := cmp.Diff(wantValues, values); diff != "" {
		t.Errorf("Sort indexValueSlices return unexpected values diff (-want+got): %v", diff)
	}
}

func TestBuilder_SetHint(t *testing.T) {
	model := NewModelBuilder()
	x := model.NewIntVar(0, 10)
	b1 := model.NewBoolVar()
	b2 := model.NewBoolVar()
	model.SetHint(&Hint{
		Vars:  map[Var]float64{x: 7},
		Bools: map[BoolVar]bool{b1: true, b2.Not(): true},
	})

	m, err := model.Model()
	if err != nil {
		t.Fatalf("Model() returned with unexpected error %v", err)
	}
	want := &PartialAssignment{Vars: []VarIndex{0, 1, 2}, Values: []float64{7, 1, 0}}
	if diff := cmp.Diff(want, m.Hint); diff != "" {
		t.Errorf("Hint returned unexpected diff (-want+got): %v", diff)
	}

	model.ClearHint()
	m, err = model.Model()
	if err != nil {
		t.Fatalf("Model() returned with unexpected error %v", err)
	}
	if m.Hint != nil {
		t.Errorf("Hint = %v after ClearHint(), want nil", m.Hint)
	}
}

func TestBuilder_AddDecisionStrategy(t *testing.T) {
	model := NewModelBuilder()
	model.NewIntVar(0, 3)
	b1 := model.NewBoolVar()
	b2 := model.NewBoolVar()
	model.AddDecisionStrategy(b2, b1.Not())

	m, err := model.Model()
	if err != nil {
		t.Fatalf("Model() returned with unexpected error %v", err)
	}
	want := []VarIndex{2, 1}
	if diff := cmp.Diff(want, m.Strategy); diff != "" {
		t.Errorf("Strategy returned unexpected diff (-want+got): %v", diff)
	}
}

func TestBuilder_ErrorHandling(t *testing.T) {
	testCases := []struct {
		name    string
		builder func() *Builder
		want    error
	}{
		{
			name: "MixedModelsInConstraint",
			builder: func() *Builder {
				model1 := NewModelBuilder()
				model2 := NewModelBuilder()
				model1.AddLessOrEqual(model2.NewBoolVar(), NewConstant(1))
				return model1
			},
			want: ErrMixedModels,
		},
		{
			name: "MixedModelsInObjective",
			builder: func() *Builder {
				model1 := NewModelBuilder()
				model2 := NewModelBuilder()
				model1.Maximize(model2.NewIntVar(0, 1))
				return model1
			},
			want: ErrMixedModels,
		},
		{
			name: "MixedModelsInStrategy",
			builder: func() *Builder {
				model1 := NewModelBuilder()
				model2 := NewModelBuilder()
				model1.AddDecisionStrategy(model2.NewBoolVar())
				return model1
			},
			want: ErrMixedModels,
		},
		{
			name: "MixedModelsInHint",
			builder: func() *Builder {
				model1 := NewModelBuilder()
				model2 := NewModelBuilder()
				model1.SetHint(&Hint{Bools: map[BoolVar]bool{model2.NewBoolVar(): true}})
				return model1
			},
			want: ErrMixedModels,
		},
		{
			name: "EmptyVariableDomain",
			builder: func() *Builder {
				model := NewModelBuilder()
				model.NewVar(2, 1)
				return model
			},
			want: ErrInvalidBounds,
		},
		{
			name: "UnboundedBelow",
			builder: func() *Builder {
				model := NewModelBuilder()
				model.NewVar(math.Inf(-1), 0)
				return model
			},
			want: ErrInvalidBounds,
		},
		{
			name: "EmptyConstraintRange",
			builder: func() *Builder {
				model := NewModelBuilder()
				model.AddLinearConstraint(model.NewIntVar(0, 4), 3, 2)
				return model
			},
			want: ErrInvalidBounds,
		},
		{
			name: "InfiniteCoefficient",
			builder: func() *Builder {
				model := NewModelBuilder()
				model.AddLessOrEqual(NewLinearExpr().AddTerm(model.NewIntVar(0, 4), math.Inf(1)), NewConstant(1))
				return model
			},
			want: ErrInvalidBounds,
		},
	}
	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			model := test.builder()
			if _, err := model.Model(); !errors.Is(err, test.want) {
				t.Errorf("Model() returned error %v, want %v", err, test.want)
			}
		})
	}
}

func TestModel_CheckSolution(t *testing.T) {
	model := NewModelBuilder()
	x := model.NewIntVar(0, 10)
	y := model.NewVar(0, 5)
	model.AddLessOrEqual(NewLinearExpr().AddSum(x, y), NewConstant(8))
	m, err := model.Model()
	if err != nil {
		t.Fatalf("Model() returned with unexpected error %v", err)
	}

	testCases := []struct {
		name    string
		values  []float64
		wantErr bool
	}{
		{name: "Feasible", values: []float64{3, 4.5}},
		{name: "WithinTolerance", values: []float64{3.0000001, 4.9999999}},
		{name: "Fractional", values: []float64{2.5, 1}, wantErr: true},
		{name: "OutOfBounds", values: []float64{3, 6}, wantErr: true},
		{name: "ViolatedRow", values: []float64{5, 4}, wantErr: true},
		{name: "WrongLength", values: []float64{1}, wantErr: true},
	}
	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			err := m.CheckSolution(test.values, 1e-6)
			if gotErr := err != nil; gotErr != test.wantErr {
				t.Errorf("CheckSolution(%v) = %v, want error: %v", test.values, err, test.wantErr)
			}
		})
	}
}

func TestModel_Validate(t *testing.T) {
	testCases := []struct {
		name  string
		model *Model
	}{
		{
			name:  "EmptyDomain",
			model: &Model{Variables: []Variable{{LB: 1, UB: 0}}},
		},
		{
			name:  "UnboundedInteger",
			model: &Model{Variables: []Variable{{LB: 0, UB: math.Inf(1), Integer: true}}},
		},
		{
			name: "UnknownVariable",
			model: &Model{
				Variables:   []Variable{{LB: 0, UB: 1}},
				Constraints: []LinearConstraint{{Vars: []VarIndex{3}, Coeffs: []float64{1}, LB: 0, UB: 1}},
			},
		},
		{
			name: "MismatchedObjective",
			model: &Model{
				Variables: []Variable{{LB: 0, UB: 1}},
				Objective: Objective{Vars: []VarIndex{0}},
			},
		},
		{
			name: "ContinuousStrategy",
			model: &Model{
				Variables: []Variable{{LB: 0, UB: 1}},
				Strategy:  []VarIndex{0},
			},
		},
	}
	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			if err := test.model.Validate(); err == nil {
				t.Errorf("Validate() returned nil error, want an error")
			}
		})
	}
}
