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

package scheduling

import (
	"math"
	"sort"
)

// fitTolerance absorbs rounding when comparing a start plus a duration to a gap end.
const fitTolerance = 1e-9

// WindowSet stores the blocked part of a timeline `[0, horizon)` as a sorted list of
// disjoint, non-touching windows. Touching windows are joined since no task of positive
// duration fits between them.
type WindowSet struct {
	horizon float64
	windows []TimeWindow
}

// joinWindows clips the windows to the timeline, drops the empty ones, sorts them and joins
// two consecutive windows if they overlap or touch.
func (w *WindowSet) joinWindows() {
	var ws []TimeWindow
	for _, v := range w.windows {
		v.Start = math.Max(v.Start, 0)
		v.End = math.Min(v.End, w.horizon)
		if v.Start < v.End {
			ws = append(ws, v)
		}
	}
	w.windows = ws
	if len(w.windows) == 0 {
		return
	}
	sort.Slice(w.windows, func(i, j int) bool {
		if w.windows[i].Start != w.windows[j].Start {
			return w.windows[i].Start < w.windows[j].Start
		}
		return w.windows[i].End < w.windows[j].End
	})
	joined := []TimeWindow{w.windows[0]}
	for i := 1; i < len(w.windows); i++ {
		last := &joined[len(joined)-1]
		if last.End >= w.windows[i].Start {
			if last.End < w.windows[i].End {
				last.End = w.windows[i].End
			}
		} else {
			joined = append(joined, w.windows[i])
		}
	}
	w.windows = joined
}

// NewWindowSet creates the set of `windows` on the timeline `[0, horizon)`. The input windows
// need not be sorted or disjoint.
func NewWindowSet(horizon float64, windows ...TimeWindow) WindowSet {
	w := WindowSet{horizon: horizon, windows: append([]TimeWindow(nil), windows...)}
	w.joinWindows()
	return w
}

// With returns a copy of the set that also blocks `windows`.
func (w WindowSet) With(windows ...TimeWindow) WindowSet {
	return NewWindowSet(w.horizon, append(append([]TimeWindow(nil), w.windows...), windows...)...)
}

// Horizon returns the length of the timeline.
func (w WindowSet) Horizon() float64 {
	return w.horizon
}

// Windows returns the joined windows.
func (w WindowSet) Windows() []TimeWindow {
	return append([]TimeWindow(nil), w.windows...)
}

// Blocked returns the total length of the windows.
func (w WindowSet) Blocked() float64 {
	var b float64
	for _, v := range w.windows {
		b += v.Length()
	}
	return b
}

// Free returns the length of the timeline not covered by a window.
func (w WindowSet) Free() float64 {
	return w.horizon - w.Blocked()
}

// Gaps returns the free intervals of the timeline, in order.
func (w WindowSet) Gaps() []TimeWindow {
	var gaps []TimeWindow
	prev := 0.0
	for _, v := range w.windows {
		if v.Start > prev {
			gaps = append(gaps, TimeWindow{Start: prev, End: v.Start})
		}
		prev = v.End
	}
	if prev < w.horizon {
		gaps = append(gaps, TimeWindow{Start: prev, End: w.horizon})
	}
	return gaps
}

// LongestGap returns the length of the longest free interval, or 0 if there is none.
func (w WindowSet) LongestGap() float64 {
	var l float64
	for _, g := range w.Gaps() {
		l = math.Max(l, g.Length())
	}
	return l
}

// FirstFit returns the earliest start `s >= from` such that `[s, s+length)` lies in a free
// interval, and false if there is none.
func (w WindowSet) FirstFit(from, length float64) (float64, bool) {
	for _, g := range w.Gaps() {
		s := math.Max(from, g.Start)
		if s+length <= g.End+fitTolerance {
			return s, true
		}
	}
	return 0, false
}

// Overlaps reports whether `[start, end)` intersects a window by more than `tol`.
func (w WindowSet) Overlaps(start, end, tol float64) bool {
	for _, v := range w.windows {
		if start < v.End-tol && v.Start < end-tol {
			return true
		}
	}
	return false
}
