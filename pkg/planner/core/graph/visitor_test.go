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
	"testing"

	"github.com/google/go-cmp/cmp"
)

// primitiveCounter overrides only VisitPrimitive.
type primitiveCounter struct {
	Defaults
	ops []Opcode
}

func (c *primitiveCounter) VisitPrimitive(n *Node) {
	c.ops = append(c.ops, n.Op())
}

func nestedHierarchy(t *testing.T) *Hierarchy {
	h := New()
	outer := mustAdd(t, h, RootID, NodeSpec{Label: "outer", Op: Composite})
	inner := mustAdd(t, h, outer.ID(), NodeSpec{Label: "inner", Op: Composite})
	read := mustAdd(t, h, inner.ID(), NodeSpec{Label: "read", Op: BoundedRead, Outputs: 1, Source: unboundedSrc(-1)})
	mustAdd(t, h, outer.ID(), NodeSpec{Label: "parse", Op: ParDo, Inputs: read.Outputs(), Outputs: 1})
	mustAdd(t, h, RootID, NodeSpec{Label: "tick", Op: Impulse, Outputs: 1})
	mustBuild(t, h)
	return h
}

func TestTraverseDefaultsEmbedding(t *testing.T) {
	h := nestedHierarchy(t)
	c := &primitiveCounter{}
	if err := h.Traverse(c); err != nil {
		t.Fatalf("Traverse() failed: %v", err)
	}
	if want := []Opcode{BoundedRead, ParDo, Impulse}; !cmp.Equal(c.ops, want) {
		t.Errorf("visited primitives = %v, want %v", c.ops, want)
	}
}

func TestTraverseMatchesTopological(t *testing.T) {
	h := nestedHierarchy(t)
	var got []string
	v := VisitorFuncs{
		Enter: func(n *Node) VisitAction {
			got = append(got, "enter:"+n.FullName())
			return Continue
		},
		Primitive: func(n *Node) { got = append(got, "visit:"+n.FullName()) },
		Leave:     func(n *Node) { got = append(got, "leave:"+n.FullName()) },
	}
	if err := h.Traverse(v); err != nil {
		t.Fatalf("Traverse() failed: %v", err)
	}

	var want []string
	seq, _ := h.Topological()
	for e := range seq {
		want = append(want, e.Type.String()+":"+e.Node.FullName())
	}
	if !cmp.Equal(got, want) {
		t.Errorf("Traverse order diff (-want +got):\n%v", cmp.Diff(want, got))
	}
}

func TestTraverseSkipChildren(t *testing.T) {
	h := nestedHierarchy(t)
	var got []string
	v := VisitorFuncs{
		Enter: func(n *Node) VisitAction {
			got = append(got, "enter:"+n.FullName())
			if n.Label() == "inner" {
				return SkipChildren
			}
			return Continue
		},
		Primitive: func(n *Node) { got = append(got, "visit:"+n.FullName()) },
		Leave:     func(n *Node) { got = append(got, "leave:"+n.FullName()) },
	}
	if err := h.Traverse(v); err != nil {
		t.Fatalf("Traverse() failed: %v", err)
	}
	want := []string{
		"enter:",
		"enter:outer",
		"enter:outer/inner",
		"leave:outer/inner",
		"visit:outer/parse",
		"leave:outer",
		"visit:tick",
		"leave:",
	}
	if !cmp.Equal(got, want) {
		t.Errorf("Traverse with skip diff (-want +got):\n%v", cmp.Diff(want, got))
	}
}

func TestVisitorFuncsNil(t *testing.T) {
	h := nestedHierarchy(t)
	if err := h.Traverse(VisitorFuncs{}); err != nil {
		t.Errorf("Traverse(VisitorFuncs{}) = %v, want nil", err)
	}
	if err := h.Traverse(Defaults{}); err != nil {
		t.Errorf("Traverse(Defaults{}) = %v, want nil", err)
	}
}
