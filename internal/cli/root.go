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

// Package cli implements the rewardsched command line.
package cli

import (
	"flag"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewRootCmd creates the root command of the rewardsched CLI.
func NewRootCmd() *cobra.Command {
	v := viper.New()
	root := &cobra.Command{
		Use:   "rewardsched",
		Short: "Reward-maximizing task scheduler",
		Long: `rewardsched selects and places tasks on one or more day timelines so that the
total reward is maximal, honoring durations, prerequisites and forbidden windows.

Options are read from flags, from REWARDSCHED_* environment variables and from an
optional YAML config file, in that order of precedence.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// glog registers its flags on the standard flag set.
			if err := flag.CommandLine.Parse(nil); err != nil {
				return err
			}
			return loadConfig(v, cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().AddGoFlagSet(flag.CommandLine)
	root.PersistentFlags().String("config", "", "YAML config file (default: ./rewardsched.yaml if present)")
	addSolveFlags(root)

	root.AddCommand(
		newSolveCmd(v),
		newBatchCmd(v),
		newExportLPCmd(v),
		newGenerateCmd(),
	)
	return root
}
