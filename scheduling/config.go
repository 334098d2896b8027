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
	"strings"
	"time"

	"github.com/rewardsched/rewardsched/mip"
)

// UnplaceablePolicy tells BuildModel what to do with tasks that can never be scheduled.
type UnplaceablePolicy int

const (
	// DropUnplaceable excludes such tasks from every schedule and reports them in
	// Model.Dropped.
	DropUnplaceable UnplaceablePolicy = iota
	// RejectUnplaceable fails the build with ErrUnplaceableTask.
	RejectUnplaceable
)

func (p UnplaceablePolicy) String() string {
	switch p {
	case DropUnplaceable:
		return "drop"
	case RejectUnplaceable:
		return "reject"
	}
	return fmt.Sprintf("UnplaceablePolicy(%d)", int(p))
}

// ParseUnplaceablePolicy parses "drop" or "reject".
func ParseUnplaceablePolicy(s string) (UnplaceablePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "drop":
		return DropUnplaceable, nil
	case "reject":
		return RejectUnplaceable, nil
	}
	return 0, fmt.Errorf("unknown unplaceable policy %q, want drop or reject", s)
}

// Config holds the build and solve options. The zero value drops unplaceable tasks, uses a
// greedy warm start and solves to optimality without limits.
type Config struct {
	Unplaceable UnplaceablePolicy
	// TimeLimit bounds the solve phase when positive.
	TimeLimit time.Duration
	// NodeLimit bounds the number of branch-and-bound nodes when positive.
	NodeLimit int
	// RelativeGap stops the search once the incumbent is proven within this fraction of the
	// optimum.
	RelativeGap float64
	// DisableWarmStart skips the greedy schedule handed to the engine as a hint.
	DisableWarmStart bool
	// LogSearchProgress logs the engine's progress at info level.
	LogSearchProgress bool
	// Engine solves the programs; nil means BranchAndBound.
	Engine Engine
}

func (c Config) solverParameters() mip.Parameters {
	return mip.Parameters{
		MaxTime:           c.TimeLimit,
		MaxNodes:          c.NodeLimit,
		RelativeGap:       c.RelativeGap,
		LogSearchProgress: c.LogSearchProgress,
	}
}

func (c Config) engine() Engine {
	if c.Engine == nil {
		return BranchAndBound{}
	}
	return c.Engine
}
