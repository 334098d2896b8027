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

package cli

import (
	"fmt"
	"math/rand"

	"github.com/spf13/cobra"

	"github.com/rewardsched/rewardsched/scheduling"
	"github.com/rewardsched/rewardsched/scheduling/schedio"
)

// generateOptions shape a random instance.
type generateOptions struct {
	tasks   int
	days    int
	windows int
	horizon int
	seed    int64
}

// randomInstance returns an instance with integral durations, windows and rewards. Tasks only
// require earlier tasks, so the prerequisite graph is acyclic.
func randomInstance(opts generateOptions) scheduling.Instance {
	rng := rand.New(rand.NewSource(opts.seed))
	inst := scheduling.Instance{
		Name:    fmt.Sprintf("random-%d", opts.seed),
		Horizon: float64(opts.horizon),
	}
	nDays := max(opts.days, 1)
	for d := 0; d < nDays; d++ {
		var day scheduling.Day
		for i := 0; i < opts.windows; i++ {
			start := rng.Intn(opts.horizon)
			length := 1 + rng.Intn(max(opts.horizon/8, 1))
			day.Windows = append(day.Windows, scheduling.TimeWindow{Start: float64(start), End: float64(min(start+length, opts.horizon))})
		}
		inst.Days = append(inst.Days, day)
	}
	if nDays == 1 && opts.windows == 0 {
		inst.Days = nil
	}
	for i := 0; i < opts.tasks; i++ {
		t := scheduling.Task{
			ID:       fmt.Sprintf("T%d", i),
			Duration: float64(1 + rng.Intn(max(opts.horizon/4, 1))),
			Reward:   float64(rng.Intn(12) - 2),
		}
		for j := 0; j < i; j++ {
			if rng.Intn(5) == 0 {
				t.Prerequisites = append(t.Prerequisites, fmt.Sprintf("T%d", j))
			}
		}
		if nDays > 1 && rng.Intn(3) == 0 {
			t.Days = []int{rng.Intn(nDays)}
		}
		inst.Tasks = append(inst.Tasks, t)
	}
	return inst
}

func newGenerateCmd() *cobra.Command {
	var opts generateOptions
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Print a random instance as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.tasks < 1 || opts.horizon < 1 || opts.days < 1 || opts.windows < 0 {
				return fmt.Errorf("generate needs at least one task, day and time unit, got %d tasks, %d days, horizon %d",
					opts.tasks, opts.days, opts.horizon)
			}
			return schedio.EncodeInstance(cmd.OutOrStdout(), randomInstance(opts))
		},
	}
	cmd.Flags().IntVar(&opts.tasks, "tasks", 8, "Number of tasks")
	cmd.Flags().IntVar(&opts.days, "days", 1, "Number of days")
	cmd.Flags().IntVar(&opts.windows, "windows", 1, "Forbidden windows per day")
	cmd.Flags().IntVar(&opts.horizon, "horizon", 24, "Length of a day")
	cmd.Flags().Int64Var(&opts.seed, "seed", 1, "Random seed")
	return cmd
}
