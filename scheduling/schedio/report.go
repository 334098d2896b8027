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

package schedio

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/rewardsched/rewardsched/scheduling"
)

// Report is the outcome of solving one instance, as written by the CLI.
type Report struct {
	// RunID identifies the solve in logs and reports.
	RunID    string
	Instance string
	Result   *scheduling.Result
	Err      error
}

// NewReport returns the report of a solve, with a fresh run ID.
func NewReport(instance string, res *scheduling.Result, err error) *Report {
	return &Report{RunID: uuid.NewString(), Instance: instance, Result: res, Err: err}
}

// Status returns the outcome kind, or "ERROR" when the solve failed without a result.
func (r *Report) Status() string {
	if r.Result == nil {
		return "ERROR"
	}
	return r.Result.Status.String()
}

// durationJSON formats `d` the way the protobuf JSON mapping formats a Duration, e.g. "1.5s".
func durationJSON(d time.Duration) string {
	b, err := protojson.Marshal(durationpb.New(d))
	if err != nil {
		return d.String()
	}
	return strings.Trim(string(b), `"`)
}

// Struct converts the report to a protobuf Struct. Infinite bounds are left out since JSON
// numbers cannot hold them.
func (r *Report) Struct() (*structpb.Struct, error) {
	fields := map[string]any{
		"runId":    r.RunID,
		"instance": r.Instance,
		"status":   r.Status(),
	}
	if r.Err != nil {
		fields["error"] = r.Err.Error()
	}
	if res := r.Result; res != nil {
		fields["objective"] = res.Objective
		if !math.IsInf(res.Bound, 0) && !math.IsNaN(res.Bound) {
			fields["bound"] = res.Bound
		}
		fields["nodes"] = res.Nodes
		fields["wallTime"] = durationJSON(res.WallTime)
		var assignments []any
		if res.Schedule != nil {
			for _, a := range res.Schedule.Assignments {
				assignments = append(assignments, map[string]any{
					"task":  a.TaskID,
					"day":   a.Day,
					"start": a.Start,
					"end":   a.End,
				})
			}
		}
		fields["assignments"] = assignments
		var dropped []any
		for _, d := range res.Dropped {
			dropped = append(dropped, map[string]any{"task": d.ID, "reason": d.Reason})
		}
		fields["dropped"] = dropped
	}
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("report of %q: %w", r.Instance, err)
	}
	return s, nil
}

// MarshalJSON encodes the report with the protobuf JSON mapping.
func (r *Report) MarshalJSON() ([]byte, error) {
	s, err := r.Struct()
	if err != nil {
		return nil, err
	}
	return protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(s)
}

// WriteJSON writes the reports as a JSON list.
func WriteJSON(w io.Writer, reports ...*Report) error {
	list := &structpb.ListValue{}
	for _, r := range reports {
		s, err := r.Struct()
		if err != nil {
			return err
		}
		list.Values = append(list.Values, structpb.NewStructValue(s))
	}
	b, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(list)
	if err != nil {
		return fmt.Errorf("encoding reports: %w", err)
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

var (
	bold   = color.New(color.Bold).SprintFunc()
	dim    = color.New(color.Faint).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
)

func statusColor(status string) func(a ...any) string {
	switch status {
	case "OPTIMAL":
		return green
	case "FEASIBLE", "TIMED_OUT":
		return yellow
	}
	return red
}

// WriteTable writes the reports as text tables, one per instance.
func WriteTable(w io.Writer, reports ...*Report) error {
	var sb strings.Builder
	for i, r := range reports {
		if i > 0 {
			sb.WriteString("\n")
		}
		status := r.Status()
		fmt.Fprintf(&sb, "%s  %s  %s\n", bold(r.Instance), statusColor(status)(status), dim(r.RunID))
		if r.Err != nil {
			fmt.Fprintf(&sb, "  %s %v\n", red("error:"), r.Err)
		}
		res := r.Result
		if res == nil {
			continue
		}
		bound := "-"
		if !math.IsInf(res.Bound, 0) && !math.IsNaN(res.Bound) {
			bound = fmt.Sprintf("%g", res.Bound)
		}
		fmt.Fprintf(&sb, "  objective %g  bound %s  nodes %d  time %v\n", res.Objective, bound, res.Nodes, res.WallTime.Round(time.Millisecond))
		if res.Schedule != nil && len(res.Schedule.Assignments) > 0 {
			fmt.Fprintf(&sb, "  %-4s %-20s %10s %10s\n", "DAY", "TASK", "START", "END")
			for _, a := range res.Schedule.Assignments {
				fmt.Fprintf(&sb, "  %-4d %-20s %10g %10g\n", a.Day, a.TaskID, a.Start, a.End)
			}
		}
		for _, d := range res.Dropped {
			fmt.Fprintf(&sb, "  %s %s: %s\n", yellow("dropped"), d.ID, d.Reason)
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
