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

package graphx

import (
	"fmt"

	"github.com/apache/beam/planner/pkg/planner"
	"github.com/apache/beam/planner/pkg/planner/core/graph"
	"github.com/apache/beam/planner/internal/errors"
)

// Load parses a YAML description into a new pipeline.
func Load(data []byte) (*planner.Pipeline, *Description, error) {
	d, err := Unmarshal(data)
	if err != nil {
		return nil, nil, err
	}
	p := planner.NewPipeline()
	if err := Lower(p.Root(), d); err != nil {
		return nil, nil, errors.WithContextf(err, "lowering pipeline %q", d.Name)
	}
	return p, d, nil
}

// Lower adds the described transforms to the scope. Inputs must name
// outputs of transforms listed before them.
func Lower(s planner.Scope, d *Description) error {
	handles := make(map[string]planner.PCollection)
	for i := range d.Transforms {
		if err := lower(s, &d.Transforms[i], handles); err != nil {
			return err
		}
	}
	return nil
}

func lower(s planner.Scope, t *Transform, handles map[string]planner.PCollection) error {
	op := t.opcode()
	if !op.IsPrimitive() {
		if op == graph.Root {
			return errors.Errorfk(errors.Structural, "transform %q: kind %v is reserved", t.Name, op)
		}
		if len(t.Inputs) > 0 || len(t.Outputs) > 0 || t.Source != nil {
			return errors.Errorfk(errors.Structural, "composite %q cannot declare inputs, outputs or a source", t.Name)
		}
		if len(t.Transforms) == 0 {
			return errors.Errorfk(errors.Structural, "composite %q has no transforms", t.Name)
		}
		sub := s.ScopeOf(t.Name, op)
		for i := range t.Transforms {
			if err := lower(sub, &t.Transforms[i], handles); err != nil {
				return errors.WithContextf(err, "in composite %q", t.Name)
			}
		}
		return nil
	}

	if len(t.Transforms) > 0 {
		return errors.Errorfk(errors.Structural, "primitive %q cannot contain transforms", t.Name)
	}
	var ins []planner.PCollection
	for _, name := range t.Inputs {
		pc, ok := handles[name]
		if !ok {
			return errors.Errorfk(errors.InvalidHandle, "transform %q: unknown input %q", t.Name, name)
		}
		ins = append(ins, pc)
	}
	seen := make(map[string]bool)
	for _, name := range t.Outputs {
		if _, ok := handles[name]; ok || seen[name] {
			return errors.Errorfk(errors.Structural, "transform %q: output %q already defined", t.Name, name)
		}
		seen[name] = true
	}
	var desc *graph.SourceDescriptor
	if t.Source != nil {
		var err error
		if desc, err = t.Source.descriptor(); err != nil {
			return err
		}
	}

	outs, err := planner.TryApply(s, t.Name, op, desc, len(t.Outputs), ins...)
	if err != nil {
		return err
	}
	for i, name := range t.Outputs {
		handles[name] = outs[i]
	}
	return nil
}

// Describe returns the description of a built hierarchy, in traversal
// order. Handles are named after their producer.
func Describe(h *graph.Hierarchy, name string) (*Description, error) {
	root := &Transform{}
	stack := []*Transform{root}
	names := make(map[graph.HandleID]string)

	err := h.Traverse(graph.VisitorFuncs{
		Enter: func(n *graph.Node) graph.VisitAction {
			if n.ID() != graph.RootID {
				t := &Transform{Name: n.Label()}
				if n.Op() != graph.Composite {
					t.Kind = string(n.Op())
				}
				stack = append(stack, t)
			}
			return graph.Continue
		},
		Primitive: func(n *graph.Node) {
			t := Transform{Name: n.Label(), Kind: string(n.Op())}
			for _, in := range n.Inputs() {
				t.Inputs = append(t.Inputs, names[in])
			}
			for i, out := range n.Outputs() {
				names[out] = handleName(n, i)
				t.Outputs = append(t.Outputs, names[out])
			}
			if src := n.Source(); src != nil {
				t.Source = describeSource(src)
			}
			top := stack[len(stack)-1]
			top.Transforms = append(top.Transforms, t)
		},
		Leave: func(n *graph.Node) {
			if n.ID() == graph.RootID {
				return
			}
			t := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			parent := stack[len(stack)-1]
			parent.Transforms = append(parent.Transforms, *t)
		},
	})
	if err != nil {
		return nil, errors.WithContext(err, "describing hierarchy")
	}
	return &Description{Name: name, Transforms: root.Transforms}, nil
}

func handleName(n *graph.Node, i int) string {
	if len(n.Outputs()) == 1 {
		return n.FullName()
	}
	return fmt.Sprintf("%v.%d", n.FullName(), i)
}
