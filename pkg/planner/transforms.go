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

package planner

import (
	"github.com/apache/beam/planner/pkg/planner/core/graph"
	"github.com/apache/beam/planner/internal/errors"
)

// TryApply inserts a primitive transform into the scope and returns its
// output collections. It is the building block for transforms outside this
// package, such as the reads of package io/read.
func TryApply(s Scope, name string, op graph.Opcode, src *graph.SourceDescriptor, outputs int, ins ...PCollection) ([]PCollection, error) {
	if !s.IsValid() {
		return nil, errors.New("invalid scope")
	}
	handles := make([]graph.HandleID, len(ins))
	for i, in := range ins {
		if !in.IsValid() {
			return nil, errors.Errorf("invalid pcollection: index %v", i)
		}
		if in.real != s.real {
			return nil, errors.Errorf("pcollection %v belongs to another pipeline", in)
		}
		handles[i] = in.handle
	}
	parent, err := s.real.materialize(s.scope)
	if err != nil {
		return nil, errors.WithContextf(err, "inserting %v %q in scope %v", op, name, s)
	}
	id, err := s.real.real.AddNode(parent, graph.NodeSpec{
		Label:   name,
		Op:      op,
		Inputs:  handles,
		Outputs: outputs,
		Source:  src,
	})
	if err != nil {
		return nil, errors.WithContextf(err, "inserting %v %q in scope %v", op, name, s)
	}
	n, _ := s.real.real.Node(id)
	var ret []PCollection
	for _, h := range n.Outputs() {
		ret = append(ret, PCollection{handle: h, real: s.real})
	}
	return ret, nil
}

func tryApply1(s Scope, name string, op graph.Opcode, ins ...PCollection) (PCollection, error) {
	ret, err := TryApply(s, name, op, nil, 1, ins...)
	if err != nil {
		return PCollection{}, err
	}
	return ret[0], nil
}

// Impulse emits a single empty element. It is the root of pipelines that
// do not start with a read.
func Impulse(s Scope) PCollection {
	return Must(TryImpulse(s))
}

// TryImpulse inserts an Impulse, returning an error on failure.
func TryImpulse(s Scope) (PCollection, error) {
	return tryApply1(s, "Impulse", graph.Impulse)
}

// ParDo inserts an element-wise transform over the main input. Additional
// inputs are side inputs.
func ParDo(s Scope, name string, main PCollection, side ...PCollection) PCollection {
	return Must(TryParDo(s, name, main, side...))
}

// TryParDo inserts a ParDo, returning an error on failure.
func TryParDo(s Scope, name string, main PCollection, side ...PCollection) (PCollection, error) {
	return tryApply1(s, name, graph.ParDo, append([]PCollection{main}, side...)...)
}

// GroupByKey groups the values of a keyed collection by key.
func GroupByKey(s Scope, in PCollection) PCollection {
	return Must(TryGroupByKey(s, in))
}

// TryGroupByKey inserts a GroupByKey, returning an error on failure.
func TryGroupByKey(s Scope, in PCollection) (PCollection, error) {
	return tryApply1(s, "GroupByKey", graph.GBK, in)
}

// Combine merges the values of a collection with a named combiner.
func Combine(s Scope, name string, in PCollection) PCollection {
	return Must(TryCombine(s, name, in))
}

// TryCombine inserts a Combine, returning an error on failure.
func TryCombine(s Scope, name string, in PCollection) (PCollection, error) {
	return tryApply1(s, name, graph.Combine, in)
}

// Flatten merges the given collections into one. Flattening a single
// collection is a no-op.
func Flatten(s Scope, cols ...PCollection) PCollection {
	return Must(TryFlatten(s, cols...))
}

// TryFlatten inserts a Flatten, returning an error on failure.
func TryFlatten(s Scope, cols ...PCollection) (PCollection, error) {
	if len(cols) == 0 {
		return PCollection{}, errors.New("no input pcollections")
	}
	if len(cols) == 1 && cols[0].IsValid() {
		return cols[0], nil // no-op
	}
	return tryApply1(s, "Flatten", graph.Flatten, cols...)
}

// Write inserts a sink consuming the collection.
func Write(s Scope, name string, in PCollection) {
	if err := TryWrite(s, name, in); err != nil {
		panic(err)
	}
}

// TryWrite inserts a Write, returning an error on failure.
func TryWrite(s Scope, name string, in PCollection) error {
	_, err := TryApply(s, name, graph.Write, nil, 0, in)
	return err
}

// Must returns the input if the error is nil and panics otherwise.
func Must(a PCollection, err error) PCollection {
	if err != nil {
		panic(err)
	}
	return a
}

// MustN returns the input if the error is nil and panics otherwise.
func MustN(list []PCollection, err error) []PCollection {
	if err != nil {
		panic(err)
	}
	return list
}
