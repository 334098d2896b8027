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
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rewardsched/rewardsched/scheduling"
	"github.com/rewardsched/rewardsched/scheduling/schedio"
)

func newExportLPCmd(v *viper.Viper) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export-lp <instance.yaml>",
		Short: "Write the mixed-integer program of an instance in LP format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := schedulingConfig(v)
			if err != nil {
				return err
			}
			inst, err := schedio.LoadInstance(args[0])
			if err != nil {
				return err
			}
			m, err := scheduling.BuildModel(inst, cfg)
			if err != nil {
				return err
			}
			lp, err := m.Program().ExportLP()
			if err != nil {
				return fmt.Errorf("exporting %q: %w", inst.Name, err)
			}

			var w io.Writer = cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			if _, err := io.WriteString(w, lp); err != nil {
				return err
			}
			for _, d := range m.Dropped() {
				fmt.Fprintf(cmd.ErrOrStderr(), "dropped %s: %s\n", d.ID, d.Reason)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "", "Output file (default: standard output)")
	return cmd
}
