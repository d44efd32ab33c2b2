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

import "github.com/apache/beam/planner/pkg/planner/core/graph"

// HasUnboundedRead returns true iff some primitive of the hierarchy is an
// unbounded read.
func HasUnboundedRead(h *graph.Hierarchy) (bool, error) {
	found := false
	err := h.Traverse(graph.VisitorFuncs{
		Primitive: func(n *graph.Node) {
			if n.Op() == graph.UnboundedRead {
				found = true
			}
		},
	})
	return found, err
}

// Bounded returns true iff the hierarchy contains no unbounded read.
func Bounded(h *graph.Hierarchy) (bool, error) {
	unbounded, err := HasUnboundedRead(h)
	if err != nil {
		return false, err
	}
	return !unbounded, nil
}

// Reads returns the read primitives of the hierarchy in traversal order.
func Reads(h *graph.Hierarchy) ([]*graph.Node, error) {
	var ret []*graph.Node
	err := h.Traverse(graph.VisitorFuncs{
		Primitive: func(n *graph.Node) {
			if n.Op().IsRead() {
				ret = append(ret, n)
			}
		},
	})
	return ret, err
}
