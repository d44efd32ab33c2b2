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

// Package ptest contains utilities for testing pipeline plans.
package ptest

import (
	"context"

	"github.com/apache/beam/planner/pkg/planner"
	"github.com/apache/beam/planner/pkg/planner/core/graph"
	"github.com/apache/beam/planner/pkg/planner/io/read"
	"github.com/apache/beam/planner/pkg/planner/options/jobopts"

	// ptest plans with the test Spark runner.
	_ "github.com/apache/beam/planner/pkg/planner/runners/spark"
)

// DefaultRunner plans without executing anything.
const DefaultRunner = "TestSparkRunner"

// CreateUnbounded creates a pipeline reading a fake unbounded source as a
// bounded collection capped at maxNumRecords.
func CreateUnbounded(maxNumRecords int64) (*planner.Pipeline, planner.Scope, planner.PCollection) {
	p, s := planner.NewPipelineWithRoot()
	src := &FakeUnboundedSource{Name: "fake"}
	return p, s, read.BoundedFromUnbounded(s, src, read.WithMaxNumRecords(maxNumRecords))
}

// CreateBounded creates a pipeline reading a fake bounded source.
func CreateBounded(records ...any) (*planner.Pipeline, planner.Scope, planner.PCollection) {
	p, s := planner.NewPipelineWithRoot()
	src := &FakeBoundedSource{Name: "fake", Records: records}
	return p, s, read.Bounded(s, src)
}

// Plan plans the pipeline with the default runner.
func Plan(p *planner.Pipeline, opts *jobopts.Options) (planner.PipelineResult, error) {
	if opts == nil {
		opts = &jobopts.Options{}
	}
	return planner.Run(context.Background(), DefaultRunner, p, opts)
}

// PlanStreaming plans the pipeline with force streaming enabled.
func PlanStreaming(p *planner.Pipeline) (planner.PipelineResult, error) {
	return Plan(p, &jobopts.Options{Runner: DefaultRunner, ForceStreaming: true})
}

// UnboundedReadDetector is a visitor recording the unbounded reads of a
// hierarchy. It only overrides VisitPrimitive.
type UnboundedReadDetector struct {
	graph.Defaults

	Found bool
	Reads []graph.NodeID
}

func (d *UnboundedReadDetector) VisitPrimitive(n *graph.Node) {
	if n.Op() == graph.UnboundedRead {
		d.Found = true
		d.Reads = append(d.Reads, n.ID())
	}
}

// DetectUnboundedReads traverses the hierarchy with a fresh detector.
func DetectUnboundedReads(h *graph.Hierarchy) (*UnboundedReadDetector, error) {
	d := &UnboundedReadDetector{}
	if err := h.Traverse(d); err != nil {
		return nil, err
	}
	return d, nil
}
