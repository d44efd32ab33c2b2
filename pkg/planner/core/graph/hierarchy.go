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

// Package graph is the planner's representation of a pipeline: a transform
// hierarchy of composite and primitive nodes connected by data handles.
// A hierarchy is built incrementally, sealed with Build, and then traversed
// in topological order. Apart from ReplacePrimitive, nodes are immutable.
//
// A Hierarchy is not safe for concurrent use.
package graph

import (
	"fmt"
	"strings"

	"github.com/apache/beam/planner/internal/errors"
)

// Error kinds returned by hierarchy operations. Use errors.Is to match.
var (
	ErrInvalidHandle error = errors.InvalidHandle
	ErrStructural    error = errors.Structural
	ErrNotFound      error = errors.NotFound
	ErrKindMismatch  error = errors.KindMismatch
	ErrCycle         error = errors.Cycle
)

// NodeSpec declares a node to add to a hierarchy.
type NodeSpec struct {
	// Label is the human-visible name. Defaults to the opcode.
	Label string
	// Op is the operator kind.
	Op Opcode
	// Inputs are the handles consumed. Primitives only.
	Inputs []HandleID
	// Outputs is the number of handles produced. Primitives only.
	Outputs int
	// Source describes the wrapped source. Reads only.
	Source *SourceDescriptor
}

// Hierarchy is the DAG of transform applications of a pipeline.
type Hierarchy struct {
	root  *Node
	nodes []*Node // indexed by NodeID

	producers []*Node // indexed by HandleID-1
	names     map[string]bool

	built bool
	order map[NodeID][]*Node // topologically ordered children, set by Build
}

// New returns an empty hierarchy with only the root composite.
func New() *Hierarchy {
	root := &Node{id: RootID, op: Root}
	return &Hierarchy{
		root:  root,
		nodes: []*Node{root},
		names: make(map[string]bool),
	}
}

// Root returns the root composite.
func (h *Hierarchy) Root() *Node {
	return h.root
}

// Len returns the number of nodes, including the root.
func (h *Hierarchy) Len() int {
	return len(h.nodes)
}

// Built returns true iff the hierarchy has been sealed.
func (h *Hierarchy) Built() bool {
	return h.built
}

// Node returns the node with the given id.
func (h *Hierarchy) Node(id NodeID) (*Node, bool) {
	if id < 0 || int(id) >= len(h.nodes) {
		return nil, false
	}
	return h.nodes[id], true
}

// Nodes returns all nodes in id order, root first.
func (h *Hierarchy) Nodes() []*Node {
	return append([]*Node(nil), h.nodes...)
}

// Producer returns the primitive that produces the given handle.
func (h *Hierarchy) Producer(id HandleID) (*Node, bool) {
	if id <= 0 || int(id) > len(h.producers) {
		return nil, false
	}
	return h.producers[id-1], true
}

// Consumers returns the primitives that consume the given handle, in id
// order.
func (h *Hierarchy) Consumers(id HandleID) []*Node {
	var ret []*Node
	for _, n := range h.nodes {
		for _, in := range n.inputs {
			if in == id {
				ret = append(ret, n)
				break
			}
		}
	}
	return ret
}

// AddNode inserts a new node as the last child of the given composite.
// Input handles must already have a producer in the hierarchy.
func (h *Hierarchy) AddNode(parent NodeID, spec NodeSpec) (NodeID, error) {
	if h.built {
		return 0, errors.Newk(errors.Structural, "hierarchy already built")
	}
	if spec.Op == "" {
		return 0, errors.Newk(errors.Structural, "missing opcode")
	}
	p, ok := h.Node(parent)
	if !ok {
		return 0, errors.Errorfk(errors.Structural, "parent %v not in hierarchy", parent)
	}
	if p.IsPrimitive() {
		return 0, errors.Errorfk(errors.Structural, "parent %v is primitive", p)
	}
	if spec.Op == Root {
		return 0, errors.Newk(errors.Structural, "only one root allowed")
	}

	if spec.Op.IsPrimitive() {
		if spec.Outputs < 0 {
			return 0, errors.Errorfk(errors.Structural, "negative output count %v for %v", spec.Outputs, spec.Op)
		}
		for _, in := range spec.Inputs {
			if _, ok := h.Producer(in); !ok {
				return 0, errors.Errorfk(errors.InvalidHandle, "input handle %v of %v %q has no producer", in, spec.Op, spec.Label)
			}
		}
		if err := checkSource(spec.Op, spec.Source); err != nil {
			return 0, errors.Newk(errors.Structural, err.Error())
		}
	} else if len(spec.Inputs) > 0 || spec.Outputs > 0 || spec.Source != nil {
		return 0, errors.Errorfk(errors.Structural, "composite %v %q cannot declare handles or a source", spec.Op, spec.Label)
	}

	label := spec.Label
	if label == "" {
		label = string(spec.Op)
	}
	name := findFreeName(h.names, qualify(p, label))
	h.names[name] = true

	n := &Node{
		id:       NodeID(len(h.nodes)),
		label:    label,
		fullName: name,
		op:       spec.Op,
		parent:   p,
		inputs:   append([]HandleID(nil), spec.Inputs...),
		src:      spec.Source.clone(),
	}
	for i := 0; i < spec.Outputs; i++ {
		h.producers = append(h.producers, n)
		n.outputs = append(n.outputs, HandleID(len(h.producers)))
	}
	h.nodes = append(h.nodes, n)
	p.children = append(p.children, n)
	return n.id, nil
}

// Build seals the hierarchy. It verifies that every composite other than
// the root has children and computes the traversal order. Build is a no-op
// on a built hierarchy.
func (h *Hierarchy) Build() error {
	if h.built {
		return nil
	}
	for _, n := range h.nodes[1:] {
		if n.IsComposite() && len(n.children) == 0 {
			return errors.Errorfk(errors.Structural, "composite %v has no children", n)
		}
	}
	order, err := computeOrder(h)
	if err != nil {
		return err
	}
	h.order = order
	h.built = true
	return nil
}

// CheckReplace validates ReplacePrimitive without mutating the hierarchy.
func (h *Hierarchy) CheckReplace(id NodeID, op Opcode, src *SourceDescriptor) error {
	n, ok := h.Node(id)
	if !ok {
		return errors.Errorfk(errors.NotFound, "node %v not in hierarchy", id)
	}
	if n.IsComposite() {
		return errors.Errorfk(errors.KindMismatch, "node %v is not primitive", n)
	}
	if !op.IsPrimitive() {
		return errors.Errorfk(errors.KindMismatch, "replacement opcode %v is not primitive", op)
	}
	if err := checkSource(op, src); err != nil {
		return errors.Newk(errors.KindMismatch, err.Error())
	}
	return nil
}

// ReplacePrimitive replaces the opcode and source of a primitive in place.
// The node keeps its id, name, position and handles, so consumers are
// unaffected.
func (h *Hierarchy) ReplacePrimitive(id NodeID, op Opcode, src *SourceDescriptor) error {
	if err := h.CheckReplace(id, op, src); err != nil {
		return err
	}
	n := h.nodes[id]
	n.op = op
	n.src = src.clone()
	return nil
}

// Clone returns a structural copy of the hierarchy. Source objects are
// shared, descriptors are not.
func (h *Hierarchy) Clone() *Hierarchy {
	ret := &Hierarchy{
		nodes:     make([]*Node, len(h.nodes)),
		producers: make([]*Node, len(h.producers)),
		names:     make(map[string]bool, len(h.names)),
		built:     h.built,
	}
	for i, n := range h.nodes {
		ret.nodes[i] = &Node{
			id:       n.id,
			label:    n.label,
			fullName: n.fullName,
			op:       n.op,
			inputs:   append([]HandleID(nil), n.inputs...),
			outputs:  append([]HandleID(nil), n.outputs...),
			src:      n.src.clone(),
		}
	}
	for i, n := range h.nodes {
		c := ret.nodes[i]
		if n.parent != nil {
			c.parent = ret.nodes[n.parent.id]
		}
		for _, child := range n.children {
			c.children = append(c.children, ret.nodes[child.id])
		}
	}
	for i, p := range h.producers {
		ret.producers[i] = ret.nodes[p.id]
	}
	for k := range h.names {
		ret.names[k] = true
	}
	if h.order != nil {
		ret.order = make(map[NodeID][]*Node, len(h.order))
		for id, list := range h.order {
			for _, n := range list {
				ret.order[id] = append(ret.order[id], ret.nodes[n.id])
			}
		}
	}
	ret.root = ret.nodes[RootID]
	return ret
}

func (h *Hierarchy) String() string {
	var lines []string
	for _, n := range h.nodes {
		lines = append(lines, n.String())
	}
	return strings.Join(lines, "\n")
}

func checkSource(op Opcode, src *SourceDescriptor) error {
	if !op.IsRead() {
		if src != nil {
			return fmt.Errorf("%v cannot carry a source", op)
		}
		return nil
	}
	if src == nil {
		return fmt.Errorf("%v requires a source", op)
	}
	switch src.Capability {
	case BoundedSource:
		if op == UnboundedRead {
			return fmt.Errorf("%v cannot read a %v", op, src.Capability)
		}
	case UnboundedSource:
	default:
		return fmt.Errorf("invalid source capability %v", src.Capability)
	}
	if src.MaxNumRecords < UnlimitedRecords {
		return fmt.Errorf("invalid record limit %v", src.MaxNumRecords)
	}
	if src.MaxReadTime < 0 {
		return fmt.Errorf("invalid read time limit %v", src.MaxReadTime)
	}
	return nil
}

func qualify(parent *Node, label string) string {
	if parent.parent == nil {
		return label
	}
	return parent.fullName + "/" + label
}

func findFreeName(seen map[string]bool, name string) string {
	if !seen[name] {
		return name
	}
	for i := 1; ; i++ {
		next := fmt.Sprintf("%v'%v", name, i)
		if !seen[next] {
			return next
		}
	}
}
