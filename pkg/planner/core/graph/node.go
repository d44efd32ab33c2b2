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
)

// NodeID is the hierarchy-local identifier of a node. The root is always
// RootID.
type NodeID int

// RootID is the identifier of the root composite.
const RootID NodeID = 0

// HandleID is the hierarchy-local identifier of a data handle, i.e., a
// collection produced by exactly one primitive.
type HandleID int

// Node represents one transform application. A node is either primitive
// (no children, directly executable) or composite (a grouping of child
// nodes with no semantic meaning at execution time).
type Node struct {
	id       NodeID
	label    string
	fullName string
	op       Opcode
	parent   *Node
	children []*Node

	inputs  []HandleID
	outputs []HandleID
	src     *SourceDescriptor
}

// ID returns the hierarchy-local identifier for the node.
func (n *Node) ID() NodeID {
	return n.id
}

// Op returns the operator kind.
func (n *Node) Op() Opcode {
	return n.op
}

// Label returns the label the node was declared with.
func (n *Node) Label() string {
	return n.label
}

// FullName returns the unique, parent-qualified name of the node.
func (n *Node) FullName() string {
	return n.fullName
}

// Parent returns the enclosing composite, or nil for the root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns the child nodes in declaration order.
func (n *Node) Children() []*Node {
	return append([]*Node(nil), n.children...)
}

// Inputs returns the handles consumed by a primitive.
func (n *Node) Inputs() []HandleID {
	return append([]HandleID(nil), n.inputs...)
}

// Outputs returns the handles produced by a primitive.
func (n *Node) Outputs() []HandleID {
	return append([]HandleID(nil), n.outputs...)
}

// Source returns a copy of the source descriptor of a read, or nil.
func (n *Node) Source() *SourceDescriptor {
	return n.src.clone()
}

// IsPrimitive returns true iff the node is directly executable.
func (n *Node) IsPrimitive() bool {
	return n.op.IsPrimitive()
}

// IsComposite returns true iff the node groups other nodes.
func (n *Node) IsComposite() bool {
	return !n.op.IsPrimitive()
}

func (n *Node) String() string {
	if n.IsComposite() {
		return fmt.Sprintf("%v: %v %q", n.id, n.op, n.fullName)
	}
	if n.src != nil {
		return fmt.Sprintf("%v: %v %q %v %v -> %v", n.id, n.op, n.fullName, n.src, n.inputs, n.outputs)
	}
	return fmt.Sprintf("%v: %v %q %v -> %v", n.id, n.op, n.fullName, n.inputs, n.outputs)
}
