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

// Package schedio reads scheduling instances from YAML and writes solve reports as JSON or
// as a text table.
package schedio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rewardsched/rewardsched/scheduling"
)

type windowDoc struct {
	Start float64 `yaml:"start"`
	End   float64 `yaml:"end"`
}

type dayDoc struct {
	Horizon float64     `yaml:"horizon,omitempty"`
	Windows []windowDoc `yaml:"windows,omitempty"`
}

type taskDoc struct {
	ID            string   `yaml:"id"`
	Duration      float64  `yaml:"duration"`
	Reward        float64  `yaml:"reward"`
	Prerequisites []string `yaml:"prerequisites,omitempty"`
	Days          []int    `yaml:"days,omitempty"`
}

// instanceDoc is the YAML form of an instance. Top-level windows are a shorthand for a
// single day.
type instanceDoc struct {
	Name    string      `yaml:"name"`
	Horizon float64     `yaml:"horizon"`
	Windows []windowDoc `yaml:"windows,omitempty"`
	Days    []dayDoc    `yaml:"days,omitempty"`
	Tasks   []taskDoc   `yaml:"tasks"`
}

func windows(ws []windowDoc) []scheduling.TimeWindow {
	var out []scheduling.TimeWindow
	for _, w := range ws {
		out = append(out, scheduling.TimeWindow{Start: w.Start, End: w.End})
	}
	return out
}

func (d *instanceDoc) instance() (scheduling.Instance, error) {
	inst := scheduling.Instance{Name: d.Name, Horizon: d.Horizon}
	if len(d.Windows) > 0 {
		if len(d.Days) > 0 {
			return inst, fmt.Errorf("instance %q sets both windows and days: %w", d.Name, scheduling.ErrInvalidInstance)
		}
		inst.Days = []scheduling.Day{{Windows: windows(d.Windows)}}
	}
	for _, day := range d.Days {
		inst.Days = append(inst.Days, scheduling.Day{Horizon: day.Horizon, Windows: windows(day.Windows)})
	}
	for _, t := range d.Tasks {
		inst.Tasks = append(inst.Tasks, scheduling.Task{
			ID:            t.ID,
			Duration:      t.Duration,
			Reward:        t.Reward,
			Prerequisites: t.Prerequisites,
			Days:          t.Days,
		})
	}
	return inst, nil
}

// DecodeInstances reads every YAML document of `r` as an instance. Unknown fields are
// rejected. Decoding errors wrap scheduling.ErrInvalidInstance.
func DecodeInstances(r io.Reader) ([]scheduling.Instance, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var insts []scheduling.Instance
	for i := 0; ; i++ {
		var doc instanceDoc
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decoding instance document %d: %v: %w", i, err, scheduling.ErrInvalidInstance)
		}
		inst, err := doc.instance()
		if err != nil {
			return nil, err
		}
		insts = append(insts, inst)
	}
	if len(insts) == 0 {
		return nil, fmt.Errorf("no instance document: %w", scheduling.ErrInvalidInstance)
	}
	return insts, nil
}

// DecodeInstance reads a single YAML instance.
func DecodeInstance(r io.Reader) (scheduling.Instance, error) {
	insts, err := DecodeInstances(r)
	if err != nil {
		return scheduling.Instance{}, err
	}
	if len(insts) > 1 {
		return scheduling.Instance{}, fmt.Errorf("got %d instance documents, want 1: %w", len(insts), scheduling.ErrInvalidInstance)
	}
	return insts[0], nil
}

// LoadInstances reads the instances of a YAML file. An instance without a name is named after
// the file, with its position when the file holds several.
func LoadInstances(path string) ([]scheduling.Instance, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading instance file: %w", err)
	}
	insts, err := DecodeInstances(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	for i := range insts {
		if insts[i].Name != "" {
			continue
		}
		insts[i].Name = base
		if len(insts) > 1 {
			insts[i].Name = fmt.Sprintf("%s#%d", base, i)
		}
	}
	return insts, nil
}

// LoadInstance reads a YAML file holding a single instance.
func LoadInstance(path string) (scheduling.Instance, error) {
	insts, err := LoadInstances(path)
	if err != nil {
		return scheduling.Instance{}, err
	}
	if len(insts) > 1 {
		return scheduling.Instance{}, fmt.Errorf("%s: got %d instance documents, want 1: %w", path, len(insts), scheduling.ErrInvalidInstance)
	}
	return insts[0], nil
}

// EncodeInstance writes `inst` as a YAML document that DecodeInstance reads back.
func EncodeInstance(w io.Writer, inst scheduling.Instance) error {
	doc := instanceDoc{Name: inst.Name, Horizon: inst.Horizon}
	for _, day := range inst.Days {
		dd := dayDoc{Horizon: day.Horizon}
		for _, win := range day.Windows {
			dd.Windows = append(dd.Windows, windowDoc{Start: win.Start, End: win.End})
		}
		doc.Days = append(doc.Days, dd)
	}
	for _, t := range inst.Tasks {
		doc.Tasks = append(doc.Tasks, taskDoc{
			ID:            t.ID,
			Duration:      t.Duration,
			Reward:        t.Reward,
			Prerequisites: t.Prerequisites,
			Days:          t.Days,
		})
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("encoding instance %q: %w", inst.Name, err)
	}
	return enc.Close()
}
