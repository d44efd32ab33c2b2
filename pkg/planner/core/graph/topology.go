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

import (
	"fmt"
	"iter"
	"strings"

	"github.com/apache/beam/planner/internal/errors"
)

// EventType distinguishes the events of a topological enumeration.
type EventType int

// Valid event types.
const (
	EnterEvent EventType = iota
	PrimitiveEvent
	LeaveEvent
)

func (t EventType) String() string {
	switch t {
	case EnterEvent:
		return "enter"
	case PrimitiveEvent:
		return "visit"
	case LeaveEvent:
		return "leave"
	default:
		return fmt.Sprintf("EventType(%d)", int(t))
	}
}

// Event is a single step of a topological enumeration. Composites yield a
// pair of Enter/Leave events bracketing their descendants.
type Event struct {
	Type EventType
	Node *Node
}

func (e Event) String() string {
	return fmt.Sprintf("%v %v", e.Type, e.Node)
}

// Topological returns the nodes of a built hierarchy as a lazy, restartable
// sequence of events. For every producer/consumer pair, the producer is
// visited first. Within a composite, children keep their declaration order
// unless a data dependency requires otherwise.
func (h *Hierarchy) Topological() (iter.Seq[Event], error) {
	if !h.built {
		return nil, errors.Newk(errors.Structural, "hierarchy not built")
	}
	return func(yield func(Event) bool) {
		h.walk(h.root, yield)
	}, nil
}

func (h *Hierarchy) walk(n *Node, yield func(Event) bool) bool {
	if n.IsPrimitive() {
		return yield(Event{Type: PrimitiveEvent, Node: n})
	}
	if !yield(Event{Type: EnterEvent, Node: n}) {
		return false
	}
	for _, c := range h.order[n.id] {
		if !h.walk(c, yield) {
			return false
		}
	}
	return yield(Event{Type: LeaveEvent, Node: n})
}

// computeOrder sorts the children of every composite such that a child
// containing a producer precedes a sibling containing one of its
// consumers. The sort is stable with respect to declaration order. If the
// grouping makes that impossible, the hierarchy is cyclic at the composite
// level and cannot be traversed.
func computeOrder(h *Hierarchy) (map[NodeID][]*Node, error) {
	order := make(map[NodeID][]*Node)
	for _, n := range h.nodes {
		if n.IsPrimitive() {
			continue
		}
		sorted, err := sortChildren(h, n)
		if err != nil {
			return nil, err
		}
		order[n.id] = sorted
	}
	return order, nil
}

func sortChildren(h *Hierarchy, c *Node) ([]*Node, error) {
	children := c.children
	index := make(map[NodeID]int, len(children))
	for i, child := range children {
		index[child.id] = i
	}

	// succ[j] lists the siblings that depend on sibling j.
	succ := make([][]int, len(children))
	indeg := make([]int, len(children))
	edges := make(map[[2]int]bool)
	for i, child := range children {
		for _, prim := range primitivesOf(child) {
			for _, in := range prim.inputs {
				p, _ := h.Producer(in)
				anc := ancestorUnder(c, p)
				if anc == nil {
					continue // produced outside c
				}
				j := index[anc.id]
				if j == i || edges[[2]int{j, i}] {
					continue
				}
				edges[[2]int{j, i}] = true
				succ[j] = append(succ[j], i)
				indeg[i]++
			}
		}
	}

	// Kahn's algorithm, always picking the earliest declared ready child.
	done := make([]bool, len(children))
	ret := make([]*Node, 0, len(children))
	for len(ret) < len(children) {
		next := -1
		for i := range children {
			if !done[i] && indeg[i] == 0 {
				next = i
				break
			}
		}
		if next < 0 {
			var stuck []string
			for i, child := range children {
				if !done[i] {
					stuck = append(stuck, fmt.Sprintf("%q", child.fullName))
				}
			}
			return nil, errors.Errorfk(errors.Cycle, "children of %v depend on each other: %v", c, strings.Join(stuck, ", "))
		}
		done[next] = true
		ret = append(ret, children[next])
		for _, k := range succ[next] {
			indeg[k]--
		}
	}
	return ret, nil
}

// ancestorUnder returns the child of c that contains n, or nil if n is
// not a descendant of c.
func ancestorUnder(c, n *Node) *Node {
	for x := n; x != nil; x = x.parent {
		if x.parent == c {
			return x
		}
	}
	return nil
}

func primitivesOf(n *Node) []*Node {
	if n.IsPrimitive() {
		return []*Node{n}
	}
	var ret []*Node
	for _, c := range n.children {
		ret = append(ret, primitivesOf(c)...)
	}
	return ret
}
