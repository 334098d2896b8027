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
	"io"
	"runtime"
	"strings"

	log "github.com/golang/glog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rewardsched/rewardsched/scheduling"
	"github.com/rewardsched/rewardsched/scheduling/schedio"
)

const (
	keyTimeLimit   = "time-limit"
	keyNodeLimit   = "node-limit"
	keyGap         = "gap"
	keyUnplaceable = "unplaceable"
	keyNoWarmStart = "no-warm-start"
	keyLogProgress = "log-search-progress"
	keyOutput      = "output"
	keyParallelism = "parallelism"
	envPrefix      = "REWARDSCHED"
	configName     = "rewardsched"
	outputJSON     = "json"
	outputTable    = "table"
)

func addSolveFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.Duration(keyTimeLimit, 0, "Stop the search after this long and report the best schedule (0: no limit)")
	f.Int(keyNodeLimit, 0, "Stop the search after this many branch-and-bound nodes (0: no limit)")
	f.Float64(keyGap, 0, "Stop once the schedule is proven within this relative gap of the optimum")
	f.String(keyUnplaceable, "drop", "What to do with tasks that can never be scheduled (drop, reject)")
	f.Bool(keyNoWarmStart, false, "Do not seed the search with a greedy schedule")
	f.Bool(keyLogProgress, false, "Log the search progress")
	f.StringP(keyOutput, "o", outputTable, "Report format (table, json)")
	f.Int(keyParallelism, runtime.GOMAXPROCS(0), "Instances solved concurrently by batch")
}

// loadConfig layers the config file, the environment and the flags of `cmd` into `v`.
func loadConfig(v *viper.Viper, cmd *cobra.Command) error {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config %s: %w", path, err)
		}
		log.V(1).Infof("Using config file %s", v.ConfigFileUsed())
		return nil
	}
	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	log.V(1).Infof("Using config file %s", v.ConfigFileUsed())
	return nil
}

// schedulingConfig returns the scheduling options held by `v`.
func schedulingConfig(v *viper.Viper) (scheduling.Config, error) {
	policy, err := scheduling.ParseUnplaceablePolicy(v.GetString(keyUnplaceable))
	if err != nil {
		return scheduling.Config{}, err
	}
	cfg := scheduling.Config{
		Unplaceable:       policy,
		TimeLimit:         v.GetDuration(keyTimeLimit),
		NodeLimit:         v.GetInt(keyNodeLimit),
		RelativeGap:       v.GetFloat64(keyGap),
		DisableWarmStart:  v.GetBool(keyNoWarmStart),
		LogSearchProgress: v.GetBool(keyLogProgress),
	}
	if cfg.TimeLimit < 0 || cfg.NodeLimit < 0 || cfg.RelativeGap < 0 {
		return scheduling.Config{}, fmt.Errorf("limits must not be negative: time-limit %v, node-limit %d, gap %g",
			cfg.TimeLimit, cfg.NodeLimit, cfg.RelativeGap)
	}
	return cfg, nil
}

// reportWriter returns the writer of the configured output format.
func reportWriter(v *viper.Viper) (func(io.Writer, ...*schedio.Report) error, error) {
	switch format := strings.ToLower(v.GetString(keyOutput)); format {
	case outputTable:
		return schedio.WriteTable, nil
	case outputJSON:
		return schedio.WriteJSON, nil
	default:
		return nil, fmt.Errorf("unknown output format %q, want %s or %s", format, outputTable, outputJSON)
	}
}
