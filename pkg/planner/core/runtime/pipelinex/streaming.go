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

package pipelinex

import (
	"github.com/apache/beam/planner/pkg/planner/core/graph"
	"github.com/apache/beam/planner/internal/errors"
)

// LimitPolicy decides what happens to the record and time caps of a
// bounded read when it is coerced into an unbounded read.
type LimitPolicy int

const (
	// DropLimits makes the coerced read open-ended.
	DropLimits LimitPolicy = iota
	// PreserveLimits carries the caps onto the unbounded read for the
	// engine to honor.
	PreserveLimits
)

func (p LimitPolicy) String() string {
	if p == PreserveLimits {
		return "PreserveLimits"
	}
	return "DropLimits"
}

// Coercion records the outcome of a force-streaming pass.
type Coercion struct {
	// Count is the number of coerced reads.
	Count int
	// Matched lists the coerced nodes in traversal order.
	Matched []graph.NodeID
}

// IsBoundedReadOverUnbounded returns true iff the node is a bounded read
// wrapping a source with the unbounded capability. Record and time caps
// do not matter.
func IsBoundedReadOverUnbounded(n *graph.Node) bool {
	if n.Op() != graph.BoundedRead {
		return false
	}
	src := n.Source()
	return src != nil && src.Capability == graph.UnboundedSource
}

// streamingPlanner collects a replacement for every bounded read over an
// unbounded source. It never mutates the hierarchy.
type streamingPlanner struct {
	graph.Defaults

	policy LimitPolicy
	rs     []Replacement
}

func (p *streamingPlanner) VisitPrimitive(n *graph.Node) {
	if !IsBoundedReadOverUnbounded(n) {
		return
	}
	src := n.Source()
	if p.policy == DropLimits {
		src.MaxNumRecords = graph.UnlimitedRecords
		src.MaxReadTime = 0
	}
	p.rs = append(p.rs, Replacement{ID: n.ID(), Op: graph.UnboundedRead, Source: src})
}

// PlanForceStreaming returns the replacements that coerce every bounded
// read over an unbounded source into an unbounded read of the same source.
// The hierarchy is not modified.
func PlanForceStreaming(h *graph.Hierarchy, policy LimitPolicy) ([]Replacement, error) {
	p := &streamingPlanner{policy: policy}
	if err := h.Traverse(p); err != nil {
		return nil, errors.Wrap(err, "planning force streaming")
	}
	return p.rs, nil
}

// ForceStreaming coerces every bounded read over an unbounded source into
// an unbounded read, in place. Node identities and edges are preserved.
// Running it again on the result is a no-op. On error the hierarchy is
// unchanged.
func ForceStreaming(h *graph.Hierarchy, policy LimitPolicy) (*Coercion, error) {
	rs, err := PlanForceStreaming(h, policy)
	if err != nil {
		return nil, err
	}
	if err := Update(h, rs); err != nil {
		return nil, errors.Wrap(err, "committing force streaming")
	}
	ret := &Coercion{Count: len(rs)}
	for _, r := range rs {
		ret.Matched = append(ret.Matched, r.ID)
	}
	return ret, nil
}
