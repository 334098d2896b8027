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
	"fmt"
	"sort"
	"strings"
)

// topologicalOrder returns the task indices ordered so that every prerequisite precedes its
// dependents, ties broken by input position. prereqs[t] lists the prerequisites of task t.
// When the graph has a cycle the returned error names it.
func topologicalOrder(ids []string, prereqs [][]int) ([]int, error) {
	n := len(prereqs)
	indegree := make([]int, n)
	dependents := make([][]int, n)
	for t, ps := range prereqs {
		indegree[t] = len(ps)
		for _, p := range ps {
			dependents[p] = append(dependents[p], t)
		}
	}
	var ready []int
	for t := 0; t < n; t++ {
		if indegree[t] == 0 {
			ready = append(ready, t)
		}
	}
	order := make([]int, 0, n)
	for len(ready) > 0 {
		t := ready[0]
		ready = ready[1:]
		order = append(order, t)
		for _, d := range dependents[t] {
			indegree[d]--
			if indegree[d] == 0 {
				ready = append(ready, d)
				sort.Ints(ready)
			}
		}
	}
	if len(order) < n {
		return nil, fmt.Errorf("prerequisite cycle %s: %w", cyclePath(ids, prereqs, indegree), ErrInvalidTaskGraph)
	}
	return order, nil
}

// cyclePath finds a cycle among the tasks left with a positive in-degree and formats it as
// "a -> b -> a", where each task is a prerequisite of the next.
func cyclePath(ids []string, prereqs [][]int, indegree []int) string {
	const (
		white = iota
		grey
		black
	)
	color := make([]int, len(prereqs))
	var stack []int
	var cycle []int
	var visit func(t int) bool
	visit = func(t int) bool {
		color[t] = grey
		stack = append(stack, t)
		for _, p := range prereqs[t] {
			switch color[p] {
			case grey:
				for i := len(stack) - 1; i >= 0; i-- {
					cycle = append(cycle, stack[i])
					if stack[i] == p {
						break
					}
				}
				return true
			case white:
				if visit(p) {
					return true
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[t] = black
		return false
	}
	for t := range prereqs {
		if indegree[t] > 0 && color[t] == white && visit(t) {
			break
		}
	}
	// cycle was collected from the top of the stack down, so each task is a prerequisite of
	// the next one.
	names := make([]string, 0, len(cycle)+1)
	for _, t := range cycle {
		names = append(names, fmt.Sprintf("%q", ids[t]))
	}
	if len(names) > 0 {
		names = append(names, names[0])
	}
	return strings.Join(names, " -> ")
}

// ancestors returns, for each task, the set of tasks it transitively depends on.
func ancestors(order []int, prereqs [][]int) [][]bool {
	n := len(prereqs)
	anc := make([][]bool, n)
	for _, t := range order {
		anc[t] = make([]bool, n)
		for _, p := range prereqs[t] {
			anc[t][p] = true
			for q, ok := range anc[p] {
				if ok {
					anc[t][q] = true
				}
			}
		}
	}
	return anc
}
