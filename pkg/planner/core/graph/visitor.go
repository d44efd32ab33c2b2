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

package graph

import "github.com/apache/beam/planner/internal/errors"

// VisitAction tells the traversal whether to descend into a composite.
type VisitAction int

// Valid visit actions.
const (
	Continue VisitAction = iota
	SkipChildren
)

// Visitor receives the nodes of a hierarchy in topological order.
//
// Implementations usually embed Defaults and override the callbacks they
// need.
type Visitor interface {
	// EnterComposite is called before any descendant of the composite.
	EnterComposite(n *Node) VisitAction
	// VisitPrimitive is called once per primitive reached.
	VisitPrimitive(n *Node)
	// LeaveComposite is called after all descendants of the composite,
	// including when its children were skipped.
	LeaveComposite(n *Node)
}

// Defaults is a no-op Visitor that descends into every composite.
type Defaults struct{}

// EnterComposite returns Continue.
func (Defaults) EnterComposite(*Node) VisitAction { return Continue }

// VisitPrimitive does nothing.
func (Defaults) VisitPrimitive(*Node) {}

// LeaveComposite does nothing.
func (Defaults) LeaveComposite(*Node) {}

// VisitorFuncs is a Visitor built from optional callbacks. Nil callbacks
// behave like Defaults.
type VisitorFuncs struct {
	Enter     func(n *Node) VisitAction
	Primitive func(n *Node)
	Leave     func(n *Node)
}

// EnterComposite calls Enter, if set.
func (f VisitorFuncs) EnterComposite(n *Node) VisitAction {
	if f.Enter == nil {
		return Continue
	}
	return f.Enter(n)
}

// VisitPrimitive calls Primitive, if set.
func (f VisitorFuncs) VisitPrimitive(n *Node) {
	if f.Primitive != nil {
		f.Primitive(n)
	}
}

// LeaveComposite calls Leave, if set.
func (f VisitorFuncs) LeaveComposite(n *Node) {
	if f.Leave != nil {
		f.Leave(n)
	}
}

// Traverse drives the visitor over a built hierarchy, root included, in
// the order of Topological. Traversal is synchronous and deterministic.
func (h *Hierarchy) Traverse(v Visitor) error {
	if !h.built {
		return errors.Newk(errors.Structural, "hierarchy not built")
	}
	h.traverse(h.root, v)
	return nil
}

func (h *Hierarchy) traverse(n *Node, v Visitor) {
	if n.IsPrimitive() {
		v.VisitPrimitive(n)
		return
	}
	if v.EnterComposite(n) == Continue {
		for _, c := range h.order[n.id] {
			h.traverse(c, v)
		}
	}
	v.LeaveComposite(n)
}
