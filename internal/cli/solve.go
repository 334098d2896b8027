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
	"errors"
	"fmt"

	log "github.com/golang/glog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rewardsched/rewardsched/scheduling"
	"github.com/rewardsched/rewardsched/scheduling/schedio"
)

// failed reports whether a solve error should fail the command. A timeout that still produced
// a schedule is reported but does not fail.
func failed(res *scheduling.Result, err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, scheduling.ErrSolverTimeout) || res == nil || res.Schedule == nil
}

func newSolveCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "solve <instance.yaml>",
		Short: "Solve one instance and print its schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := schedulingConfig(v)
			if err != nil {
				return err
			}
			write, err := reportWriter(v)
			if err != nil {
				return err
			}
			inst, err := schedio.LoadInstance(args[0])
			if err != nil {
				return err
			}

			res, solveErr := scheduling.Solve(cmd.Context(), inst, cfg)
			report := schedio.NewReport(inst.Name, res, solveErr)
			log.V(1).Infof("Run %s solved %q: %s", report.RunID, inst.Name, report.Status())
			if err := write(cmd.OutOrStdout(), report); err != nil {
				return err
			}
			if failed(res, solveErr) {
				return solveErr
			}
			return nil
		},
	}
}

func newBatchCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "batch <instances.yaml>...",
		Short: "Solve every instance of the given files concurrently",
		Long: `batch solves every YAML document of the given files, at most --parallelism at a
time, and prints one report per instance in input order.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := schedulingConfig(v)
			if err != nil {
				return err
			}
			write, err := reportWriter(v)
			if err != nil {
				return err
			}
			var insts []scheduling.Instance
			for _, path := range args {
				loaded, err := schedio.LoadInstances(path)
				if err != nil {
					return err
				}
				insts = append(insts, loaded...)
			}

			results := scheduling.SolveBatch(cmd.Context(), insts, cfg, v.GetInt(keyParallelism))
			reports := make([]*schedio.Report, len(results))
			nFailed := 0
			for i, br := range results {
				reports[i] = schedio.NewReport(insts[i].Name, br.Result, br.Err)
				if failed(br.Result, br.Err) {
					nFailed++
				}
			}
			if err := write(cmd.OutOrStdout(), reports...); err != nil {
				return err
			}
			if nFailed > 0 {
				return fmt.Errorf("%d of %d instances failed", nFailed, len(insts))
			}
			return nil
		},
	}
}
