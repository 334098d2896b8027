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
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestModel_ExportLP(t *testing.T) {
	mb := NewModelBuilder()
	mb.SetName("small")
	x := mb.NewIntVar(0, 10).WithName("x")
	y := mb.NewVar(0, math.Inf(1)).WithName("y")
	b := mb.NewBoolVar().WithName("use b")
	mb.AddLinearConstraint(NewLinearExpr().AddTerm(x, 2).AddTerm(y, -1), 1, 4).WithName("range")
	mb.AddLessOrEqual(NewLinearExpr().Add(x).Add(b), NewConstant(5)).WithName("cap")
	mb.Maximize(NewLinearExpr().AddTerm(x, 3).Add(y).AddConstant(1))
	m, err := mb.Model()
	if err != nil {
		t.Fatalf("Model() returned with unexpected error %v", err)
	}

	got, err := m.ExportLP()
	if err != nil {
		t.Fatalf("ExportLP() returned with unexpected error %v", err)
	}
	want := `\ Model small
\ Objective offset 1
Maximize
 obj: 3 x + y
Subject To
 range_lb: 2 x - y >= 1
 range_ub: 2 x - y <= 4
 cap: x + use_b <= 5
Bounds
 0 <= x <= 10
 y >= 0
Generals
 x
Binaries
 use_b
End
`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ExportLP() returned unexpected diff (-want+got): %v", diff)
	}
}

func TestModel_ExportLP_Names(t *testing.T) {
	mb := NewModelBuilder()
	mb.NewBoolVar().WithName("start[a,0]")
	mb.NewBoolVar().WithName("start[a,0]")
	mb.NewBoolVar()
	mb.NewBoolVar().WithName("2nd")
	m, err := mb.Model()
	if err != nil {
		t.Fatalf("Model() returned with unexpected error %v", err)
	}

	got := lpNames(m.NumVariables(), func(i int) string { return m.Variables[i].Name }, "x")
	want := []string{"start_a_0_", "x1", "x2", "_2nd"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("lpNames() returned unexpected diff (-want+got): %v", diff)
	}
}

func TestModel_ExportLP_Invalid(t *testing.T) {
	m := &Model{Variables: []Variable{{LB: 1, UB: 0}}}
	if _, err := m.ExportLP(); err == nil {
		t.Errorf("ExportLP() returned nil error for an invalid model")
	}
}
