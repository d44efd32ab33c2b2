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

// Package read contains the source interfaces and the transforms reading
// them into a pipeline. Each read records the capability of its source on
// the hierarchy, which is what the planner's rewrites match on.
//
// Sources are never opened while planning.
package read

import (
	"time"

	"github.com/apache/beam/planner/pkg/planner"
	"github.com/apache/beam/planner/pkg/planner/core/graph"
	"github.com/apache/beam/planner/internal/errors"
)

// BoundedReadFromUnboundedSource is the kind tag of the composite wrapping
// a bounded read of an unbounded source.
const BoundedReadFromUnboundedSource graph.Opcode = "BoundedReadFromUnboundedSource"

type config struct {
	name          string
	maxNumRecords int64
	maxReadTime   time.Duration
}

// Option configures a read.
type Option func(*config)

// WithName sets the name of the read transform. Defaults to "Read".
func WithName(name string) Option {
	return func(c *config) {
		c.name = name
	}
}

// WithMaxNumRecords caps the number of records read from an unbounded
// source. graph.UnlimitedRecords means no cap.
func WithMaxNumRecords(n int64) Option {
	return func(c *config) {
		c.maxNumRecords = n
	}
}

// WithMaxReadTime caps how long an unbounded source is read. Zero means no
// cap.
func WithMaxReadTime(d time.Duration) Option {
	return func(c *config) {
		c.maxReadTime = d
	}
}

func newConfig(opts []Option) (*config, error) {
	c := &config{name: "Read", maxNumRecords: graph.UnlimitedRecords}
	for _, opt := range opts {
		opt(c)
	}
	if c.maxNumRecords < graph.UnlimitedRecords {
		return nil, errors.Errorf("invalid max number of records %v", c.maxNumRecords)
	}
	if c.maxReadTime < 0 {
		return nil, errors.Errorf("invalid max read time %v", c.maxReadTime)
	}
	return c, nil
}

// Bounded reads a bounded source.
func Bounded(s planner.Scope, src BoundedSource, opts ...Option) planner.PCollection {
	return planner.Must(TryBounded(s, src, opts...))
}

// TryBounded reads a bounded source, returning an error on failure. Record
// and time caps apply to unbounded sources only and are rejected here.
func TryBounded(s planner.Scope, src BoundedSource, opts ...Option) (planner.PCollection, error) {
	if src == nil {
		return planner.PCollection{}, errors.New("nil bounded source")
	}
	c, err := newConfig(opts)
	if err != nil {
		return planner.PCollection{}, err
	}
	if c.maxNumRecords != graph.UnlimitedRecords || c.maxReadTime != 0 {
		return planner.PCollection{}, errors.Errorf("bounded source %v cannot be capped: use BoundedFromUnbounded to cap an unbounded source", src)
	}
	desc := &graph.SourceDescriptor{
		Source:        src,
		Capability:    graph.BoundedSource,
		MaxNumRecords: graph.UnlimitedRecords,
	}
	return apply(s, c.name, graph.BoundedRead, desc)
}

// Unbounded reads an unbounded source as a stream.
func Unbounded(s planner.Scope, src UnboundedSource, opts ...Option) planner.PCollection {
	return planner.Must(TryUnbounded(s, src, opts...))
}

// TryUnbounded reads an unbounded source as a stream, returning an error
// on failure.
func TryUnbounded(s planner.Scope, src UnboundedSource, opts ...Option) (planner.PCollection, error) {
	if src == nil {
		return planner.PCollection{}, errors.New("nil unbounded source")
	}
	c, err := newConfig(opts)
	if err != nil {
		return planner.PCollection{}, err
	}
	return apply(s, c.name, graph.UnboundedRead, descriptor(src, c))
}

// BoundedFromUnbounded reads an unbounded source as a bounded collection,
// stopping after the configured number of records or read time. The read is
// a BoundedRead primitive inside a BoundedReadFromUnboundedSource composite.
// A forced streaming plan replaces the primitive with an unbounded read.
func BoundedFromUnbounded(s planner.Scope, src UnboundedSource, opts ...Option) planner.PCollection {
	return planner.Must(TryBoundedFromUnbounded(s, src, opts...))
}

// TryBoundedFromUnbounded is BoundedFromUnbounded returning an error on
// failure.
func TryBoundedFromUnbounded(s planner.Scope, src UnboundedSource, opts ...Option) (planner.PCollection, error) {
	if src == nil {
		return planner.PCollection{}, errors.New("nil unbounded source")
	}
	c, err := newConfig(opts)
	if err != nil {
		return planner.PCollection{}, err
	}
	if !s.IsValid() {
		return planner.PCollection{}, errors.New("invalid scope")
	}
	wrap := s.ScopeOf(c.name, BoundedReadFromUnboundedSource)
	return apply(wrap, "Read", graph.BoundedRead, descriptor(src, c))
}

func descriptor(src UnboundedSource, c *config) *graph.SourceDescriptor {
	return &graph.SourceDescriptor{
		Source:        src,
		Capability:    graph.UnboundedSource,
		MaxNumRecords: c.maxNumRecords,
		MaxReadTime:   c.maxReadTime,
	}
}

func apply(s planner.Scope, name string, op graph.Opcode, desc *graph.SourceDescriptor) (planner.PCollection, error) {
	ret, err := planner.TryApply(s, name, op, desc, 1)
	if err != nil {
		return planner.PCollection{}, errors.WithContextf(err, "reading %v", desc)
	}
	return ret[0], nil
}
