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

// Package planner is the user-facing API for authoring pipelines to be
// planned. A pipeline is built from scoped transforms connected by
// PCollections, then handed to a registered runner, which lowers it into a
// transform hierarchy and rewrites it before execution.
package planner

import (
	"fmt"
	"strings"

	"github.com/apache/beam/planner/pkg/planner/core/graph"
	"github.com/apache/beam/planner/internal/errors"
)

// scope is a node of the scope tree. Composites are only added to the
// hierarchy once a primitive is inserted below them, so unused scopes
// leave no trace.
type scope struct {
	parent *scope
	label  string
	op     graph.Opcode

	id    graph.NodeID
	added bool
}

// Scope is a hierarchical grouping for composite transforms. Scopes can be
// enclosed in other scopes and form a tree structure. The scope chain forms
// the unique full names of the transforms inside.
type Scope struct {
	// scope is the insertion point for transforms.
	scope *scope
	// real is the enclosing pipeline.
	real *Pipeline
}

// IsValid returns true iff the Scope is valid. Any use of an invalid Scope
// will result in a panic.
func (s Scope) IsValid() bool {
	return s.real != nil && s.scope != nil
}

// Scope returns a sub-scope with the given name. The name provided may
// be augmented to ensure uniqueness.
func (s Scope) Scope(name string) Scope {
	return s.ScopeOf(name, graph.Composite)
}

// ScopeOf returns a sub-scope whose composite carries the given opcode as
// its kind tag.
func (s Scope) ScopeOf(name string, op graph.Opcode) Scope {
	if !s.IsValid() {
		panic("Invalid Scope")
	}
	if op.IsPrimitive() || op == graph.Root || op == "" {
		panic(errors.Errorfk(errors.KindMismatch, "scope kind %q is not a composite kind", op))
	}
	return Scope{scope: &scope{parent: s.scope, label: name, op: op}, real: s.real}
}

func (s Scope) String() string {
	if !s.IsValid() {
		return "<invalid>"
	}
	var labels []string
	for sc := s.scope; sc.parent != nil; sc = sc.parent {
		labels = append([]string{sc.label}, labels...)
	}
	return "/" + strings.Join(labels, "/")
}

// Pipeline manages a transform hierarchy as it is being authored. Each
// Pipeline is self-contained and isolated from any other Pipeline.
type Pipeline struct {
	// real is the hierarchy as it is being constructed.
	real *graph.Hierarchy
	root *scope
}

// NewPipeline creates a new empty pipeline.
func NewPipeline() *Pipeline {
	return &Pipeline{real: graph.New(), root: &scope{id: graph.RootID, added: true}}
}

// NewPipelineWithRoot creates a new empty pipeline and its root scope.
func NewPipelineWithRoot() (*Pipeline, Scope) {
	p := NewPipeline()
	return p, p.Root()
}

// Root returns the root scope of the pipeline.
func (p *Pipeline) Root() Scope {
	return Scope{scope: p.root, real: p}
}

// Build seals the pipeline and returns its hierarchy. It is called by
// runners only. No transforms can be added afterwards.
func (p *Pipeline) Build() (*graph.Hierarchy, error) {
	if err := p.real.Build(); err != nil {
		return nil, errors.WithContext(err, "building pipeline")
	}
	return p.real, nil
}

func (p *Pipeline) String() string {
	return p.real.String()
}

// materialize adds the composites of the scope chain to the hierarchy.
func (p *Pipeline) materialize(sc *scope) (graph.NodeID, error) {
	if sc.added {
		return sc.id, nil
	}
	parent, err := p.materialize(sc.parent)
	if err != nil {
		return 0, err
	}
	id, err := p.real.AddNode(parent, graph.NodeSpec{Label: sc.label, Op: sc.op})
	if err != nil {
		return 0, err
	}
	sc.id, sc.added = id, true
	return id, nil
}

// PCollection is a handle to the data produced by a primitive transform.
// It can be consumed by any number of transforms of the same pipeline.
type PCollection struct {
	handle graph.HandleID
	real   *Pipeline
}

// IsValid returns true iff the PCollection is valid and part of a Pipeline.
// Any use of an invalid PCollection will result in a panic.
func (c PCollection) IsValid() bool {
	return c.real != nil && c.handle > 0
}

// Handle returns the hierarchy handle of the collection.
func (c PCollection) Handle() graph.HandleID {
	if !c.IsValid() {
		panic("Invalid PCollection")
	}
	return c.handle
}

// Producer returns the primitive producing the collection.
func (c PCollection) Producer() *graph.Node {
	if !c.IsValid() {
		panic("Invalid PCollection")
	}
	n, _ := c.real.real.Producer(c.handle)
	return n
}

func (c PCollection) String() string {
	if !c.IsValid() {
		return "<invalid>"
	}
	return fmt.Sprintf("%v[%v]", c.Producer().FullName(), c.handle)
}
