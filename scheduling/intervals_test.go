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
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewWindowSet(t *testing.T) {
	testCases := []struct {
		name    string
		windows []TimeWindow
		want    []TimeWindow
	}{
		{
			name: "Empty",
		},
		{
			name:    "Sorted",
			windows: []TimeWindow{{6, 8}, {1, 2}},
			want:    []TimeWindow{{1, 2}, {6, 8}},
		},
		{
			name:    "OverlappingAreJoined",
			windows: []TimeWindow{{1, 4}, {3, 5}, {2, 3}},
			want:    []TimeWindow{{1, 5}},
		},
		{
			name:    "TouchingAreJoined",
			windows: []TimeWindow{{1, 2}, {2, 3}},
			want:    []TimeWindow{{1, 3}},
		},
		{
			name:    "ClippedToHorizon",
			windows: []TimeWindow{{-2, 1}, {8, 12}, {10, 11}},
			want:    []TimeWindow{{0, 1}, {8, 10}},
		},
	}
	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			w := NewWindowSet(10, test.windows...)
			if diff := cmp.Diff(test.want, w.Windows()); diff != "" {
				t.Errorf("Windows() returned with unexpected diff (-want+got):\n%v", diff)
			}
		})
	}
}

func TestWindowSet_Gaps(t *testing.T) {
	w := NewWindowSet(10, TimeWindow{0, 1}, TimeWindow{4, 6})

	want := []TimeWindow{{1, 4}, {6, 10}}
	if diff := cmp.Diff(want, w.Gaps()); diff != "" {
		t.Errorf("Gaps() returned with unexpected diff (-want+got):\n%v", diff)
	}
	if got, want := w.Blocked(), 3.0; got != want {
		t.Errorf("Blocked() = %v, want %v", got, want)
	}
	if got, want := w.Free(), 7.0; got != want {
		t.Errorf("Free() = %v, want %v", got, want)
	}
	if got, want := w.LongestGap(), 4.0; got != want {
		t.Errorf("LongestGap() = %v, want %v", got, want)
	}
	if got := NewWindowSet(5, TimeWindow{0, 5}).LongestGap(); got != 0 {
		t.Errorf("LongestGap() of a fully blocked timeline = %v, want 0", got)
	}
}

func TestWindowSet_FirstFit(t *testing.T) {
	w := NewWindowSet(10, TimeWindow{2, 4}, TimeWindow{7, 8})
	testCases := []struct {
		name         string
		from, length float64
		wantStart    float64
		wantOK       bool
	}{
		{name: "FirstGap", from: 0, length: 2, wantStart: 0, wantOK: true},
		{name: "SkipsShortGap", from: 0, length: 3, wantStart: 4, wantOK: true},
		{name: "StartsInsideGap", from: 5, length: 2, wantStart: 5, wantOK: true},
		{name: "StartsInsideWindow", from: 3, length: 1, wantStart: 4, wantOK: true},
		{name: "LastGap", from: 6, length: 2, wantStart: 8, wantOK: true},
		{name: "TooLong", from: 0, length: 4, wantOK: false},
		{name: "TooLate", from: 9, length: 2, wantOK: false},
	}
	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			got, ok := w.FirstFit(test.from, test.length)
			if ok != test.wantOK || (ok && got != test.wantStart) {
				t.Errorf("FirstFit(%v, %v) = (%v, %v), want (%v, %v)", test.from, test.length, got, ok, test.wantStart, test.wantOK)
			}
		})
	}
}

func TestWindowSet_With(t *testing.T) {
	w := NewWindowSet(10, TimeWindow{2, 4})
	w2 := w.With(TimeWindow{4, 5}, TimeWindow{8, 9})

	if diff := cmp.Diff([]TimeWindow{{2, 4}}, w.Windows()); diff != "" {
		t.Errorf("With() modified the receiver (-want+got):\n%v", diff)
	}
	if diff := cmp.Diff([]TimeWindow{{2, 5}, {8, 9}}, w2.Windows()); diff != "" {
		t.Errorf("With() returned with unexpected diff (-want+got):\n%v", diff)
	}
}

func TestWindowSet_Overlaps(t *testing.T) {
	w := NewWindowSet(10, TimeWindow{2, 4})
	testCases := []struct {
		start, end float64
		want       bool
	}{
		{0, 2, false},
		{4, 6, false},
		{1, 3, true},
		{3, 5, true},
		{0, 10, true},
		{0, 2 + 1e-9, false},
	}
	for _, test := range testCases {
		if got := w.Overlaps(test.start, test.end, 1e-6); got != test.want {
			t.Errorf("Overlaps(%v, %v) = %v, want %v", test.start, test.end, got, test.want)
		}
	}
}
