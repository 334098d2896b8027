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
	"strconv"
	"strings"
)

// ExportLP returns the model in CPLEX LP format, suitable for inspection or for feeding to an
// external solver. Ranged rows are written as two rows suffixed `_lb` and `_ub`.
func (m *Model) ExportLP() (string, error) {
	if err := m.Validate(); err != nil {
		return "", err
	}
	vn := lpNames(len(m.Variables), func(i int) string { return m.Variables[i].Name }, "x")
	cn := lpNames(len(m.Constraints), func(i int) string { return m.Constraints[i].Name }, "c")

	var sb strings.Builder
	if m.Name != "" {
		fmt.Fprintf(&sb, "\\ Model %s\n", m.Name)
	}
	if m.Objective.Offset != 0 {
		fmt.Fprintf(&sb, "\\ Objective offset %s\n", lpFloat(m.Objective.Offset))
	}
	if m.Objective.Maximize {
		sb.WriteString("Maximize\n")
	} else {
		sb.WriteString("Minimize\n")
	}
	sb.WriteString(" obj:")
	writeTerms(&sb, m.Objective.Vars, m.Objective.Coeffs, vn)
	sb.WriteString("\n")

	sb.WriteString("Subject To\n")
	for i, ct := range m.Constraints {
		if len(ct.Vars) == 0 {
			fmt.Fprintf(&sb, "\\ %s: constant row [%s, %s]\n", cn[i], lpFloat(ct.LB), lpFloat(ct.UB))
			continue
		}
		switch {
		case ct.LB == ct.UB:
			writeRow(&sb, cn[i], ct, "=", ct.LB, vn)
		case math.IsInf(ct.LB, -1) && math.IsInf(ct.UB, 1):
			fmt.Fprintf(&sb, "\\ %s: free row\n", cn[i])
		case math.IsInf(ct.LB, -1):
			writeRow(&sb, cn[i], ct, "<=", ct.UB, vn)
		case math.IsInf(ct.UB, 1):
			writeRow(&sb, cn[i], ct, ">=", ct.LB, vn)
		default:
			writeRow(&sb, cn[i]+"_lb", ct, ">=", ct.LB, vn)
			writeRow(&sb, cn[i]+"_ub", ct, "<=", ct.UB, vn)
		}
	}

	sb.WriteString("Bounds\n")
	var generals, binaries []string
	for i, v := range m.Variables {
		switch {
		case v.Integer && v.LB == 0 && v.UB == 1:
			binaries = append(binaries, vn[i])
			continue
		case v.Integer:
			generals = append(generals, vn[i])
		}
		switch {
		case v.LB == v.UB:
			fmt.Fprintf(&sb, " %s = %s\n", vn[i], lpFloat(v.LB))
		case math.IsInf(v.UB, 1):
			fmt.Fprintf(&sb, " %s >= %s\n", vn[i], lpFloat(v.LB))
		default:
			fmt.Fprintf(&sb, " %s <= %s <= %s\n", lpFloat(v.LB), vn[i], lpFloat(v.UB))
		}
	}
	if len(generals) > 0 {
		sb.WriteString("Generals\n")
		for _, n := range generals {
			fmt.Fprintf(&sb, " %s\n", n)
		}
	}
	if len(binaries) > 0 {
		sb.WriteString("Binaries\n")
		for _, n := range binaries {
			fmt.Fprintf(&sb, " %s\n", n)
		}
	}
	sb.WriteString("End\n")
	return sb.String(), nil
}

func writeRow(sb *strings.Builder, name string, ct LinearConstraint, op string, rhs float64, vn []string) {
	fmt.Fprintf(sb, " %s:", name)
	writeTerms(sb, ct.Vars, ct.Coeffs, vn)
	fmt.Fprintf(sb, " %s %s\n", op, lpFloat(rhs))
}

func writeTerms(sb *strings.Builder, vars []VarIndex, coeffs []float64, vn []string) {
	if len(vars) == 0 {
		sb.WriteString(" 0")
		return
	}
	for i, v := range vars {
		c := coeffs[i]
		sign := "+"
		if c < 0 {
			sign, c = "-", -c
		}
		if i == 0 && sign == "+" {
			sb.WriteString(" ")
		} else {
			fmt.Fprintf(sb, " %s ", sign)
		}
		if c != 1 {
			fmt.Fprintf(sb, "%s ", lpFloat(c))
		}
		sb.WriteString(vn[v])
	}
}

func lpFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// lpNames returns unique names that are valid LP-format identifiers.
func lpNames(n int, name func(int) string, prefix string) []string {
	out := make([]string, n)
	used := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		s := sanitizeLPName(name(i))
		if s == "" || used[s] {
			s = fmt.Sprintf("%s%d", prefix, i)
			for used[s] {
				s += "_"
			}
		}
		used[s] = true
		out[i] = s
	}
	return out
}

func sanitizeLPName(s string) string {
	b := []byte(s)
	for i, c := range b {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_', c == '.':
		default:
			b[i] = '_'
		}
	}
	if len(b) > 0 {
		switch c := b[0]; {
		case c >= '0' && c <= '9', c == '.', c == 'e', c == 'E':
			b = append([]byte{'_'}, b...)
		}
	}
	return string(b)
}
