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

// Package pipelinex contains rewrite passes over transform hierarchies.
// Passes are split in two phases: a traversal that only plans
// replacements, and Update, which commits them all or none.
package pipelinex

import (
	"fmt"

	"github.com/apache/beam/planner/pkg/planner/core/graph"
	"github.com/apache/beam/planner/internal/errors"
)

// Replacement substitutes the opcode and source of one primitive.
type Replacement struct {
	ID     graph.NodeID
	Op     graph.Opcode
	Source *graph.SourceDescriptor
}

func (r Replacement) String() string {
	return fmt.Sprintf("%v -> %v %v", r.ID, r.Op, r.Source)
}

// Update applies the replacements to the hierarchy. Every replacement is
// validated before any is applied, so on error the hierarchy is unchanged.
// A node may be replaced at most once per call.
func Update(h *graph.Hierarchy, rs []Replacement) error {
	seen := make(map[graph.NodeID]bool, len(rs))
	for _, r := range rs {
		if seen[r.ID] {
			return errors.Errorfk(errors.Structural, "duplicate replacement for node %v", r.ID)
		}
		seen[r.ID] = true
		if err := h.CheckReplace(r.ID, r.Op, r.Source); err != nil {
			return errors.WithContextf(err, "validating replacement %v", r)
		}
	}
	for _, r := range rs {
		if err := h.ReplacePrimitive(r.ID, r.Op, r.Source); err != nil {
			// Unreachable after validation.
			panic(fmt.Sprintf("replacement %v failed after validation: %v", r, err))
		}
	}
	return nil
}
