// Licensed to the Apache Software Foundation (ASF) under one or more
// contributor license agreements.  See the NOTICE file distributed with
// this work for additional information regarding copyright ownership.
// The ASF licenses this file to You under the Apache License, Version 2.0
// (the "License"); you may not use this file except in compliance with
// the License.  You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package graphx translates between YAML pipeline descriptions and
// pipelines. A description names each data handle; transforms refer to the
// handles they consume by name.
//
//	name: events
//	transforms:
//	  - name: Read
//	    kind: BoundedRead
//	    outputs: [raw]
//	    source: {name: kafka://events, capability: unbounded, maxNumRecords: -1}
//	  - name: Process
//	    transforms:
//	      - {name: Parse, kind: ParDo, inputs: [raw], outputs: [parsed]}
package graphx

import (
	"fmt"
	"strings"
	"time"

	"github.com/apache/beam/planner/pkg/planner/core/graph"
	"github.com/apache/beam/planner/internal/errors"
	"gopkg.in/yaml.v3"
)

// Capability names used in descriptions.
const (
	Bounded   = "bounded"
	Unbounded = "unbounded"
)

// Description is a pipeline description.
type Description struct {
	Name       string      `yaml:"name"`
	Transforms []Transform `yaml:"transforms"`
}

// Transform describes one transform. A transform with nested transforms is
// a composite; Kind then defaults to Composite.
type Transform struct {
	Name       string      `yaml:"name"`
	Kind       string      `yaml:"kind,omitempty"`
	Inputs     []string    `yaml:"inputs,omitempty"`
	Outputs    []string    `yaml:"outputs,omitempty"`
	Source     *Source     `yaml:"source,omitempty"`
	Transforms []Transform `yaml:"transforms,omitempty"`
}

// Source describes the source of a read.
type Source struct {
	Name       string `yaml:"name"`
	Capability string `yaml:"capability"`
	// MaxNumRecords defaults to graph.UnlimitedRecords.
	MaxNumRecords *int64        `yaml:"maxNumRecords,omitempty"`
	MaxReadTime   time.Duration `yaml:"maxReadTime,omitempty"`
}

// NamedSource is the source object of reads lowered from a description.
type NamedSource struct {
	Name string
}

func (s NamedSource) String() string {
	return s.Name
}

// Unmarshal parses a YAML description.
func Unmarshal(data []byte) (*Description, error) {
	var d Description
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, errors.Wrap(err, "invalid pipeline description")
	}
	return &d, nil
}

// Marshal renders the description as YAML.
func Marshal(d *Description) ([]byte, error) {
	data, err := yaml.Marshal(d)
	if err != nil {
		return nil, errors.Wrap(err, "marshalling pipeline description")
	}
	return data, nil
}

func (t *Transform) opcode() graph.Opcode {
	if t.Kind == "" {
		return graph.Composite
	}
	return graph.Opcode(t.Kind)
}

func (s *Source) descriptor() (*graph.SourceDescriptor, error) {
	ret := &graph.SourceDescriptor{
		Source:        NamedSource{Name: s.Name},
		MaxNumRecords: graph.UnlimitedRecords,
		MaxReadTime:   s.MaxReadTime,
	}
	switch strings.ToLower(s.Capability) {
	case Bounded:
		ret.Capability = graph.BoundedSource
	case Unbounded:
		ret.Capability = graph.UnboundedSource
	default:
		return nil, errors.Errorfk(errors.Structural, "source %q: unknown capability %q", s.Name, s.Capability)
	}
	if s.MaxNumRecords != nil {
		ret.MaxNumRecords = *s.MaxNumRecords
	}
	return ret, nil
}

func describeSource(d *graph.SourceDescriptor) *Source {
	ret := &Source{MaxReadTime: d.MaxReadTime}
	switch src := d.Source.(type) {
	case NamedSource:
		ret.Name = src.Name
	case fmt.Stringer:
		ret.Name = src.String()
	}
	switch d.Capability {
	case graph.BoundedSource:
		ret.Capability = Bounded
	case graph.UnboundedSource:
		ret.Capability = Unbounded
	}
	if d.MaxNumRecords != graph.UnlimitedRecords {
		n := d.MaxNumRecords
		ret.MaxNumRecords = &n
	}
	return ret
}
