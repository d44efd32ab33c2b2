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

package ptest

import (
	"bytes"
	"testing"

	"github.com/apache/beam/planner/pkg/planner"
	"github.com/google/go-cmp/cmp"
)

func TestForceStreaming(t *testing.T) {
	p, s, col := CreateUnbounded(-1)
	planner.ParDo(s, "Identity", col)

	res, err := PlanStreaming(p)
	if err != nil {
		t.Fatalf("PlanStreaming() failed: %v", err)
	}
	d, err := DetectUnboundedReads(res.Hierarchy())
	if err != nil {
		t.Fatalf("DetectUnboundedReads() failed: %v", err)
	}
	if !d.Found || len(d.Reads) != 1 {
		t.Errorf("detector = %+v, want one unbounded read", d)
	}
	if c := res.Coercion(); c == nil || c.Count != 1 {
		t.Errorf("Coercion() = %+v, want one coerced read", c)
	}
}

func TestNoForceStreaming(t *testing.T) {
	p, _, _ := CreateUnbounded(10)
	h, err := p.Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	want := h.String()

	res, err := Plan(p, nil)
	if err != nil {
		t.Fatalf("Plan() failed: %v", err)
	}
	if got := res.Hierarchy().String(); got != want {
		t.Errorf("Plan() changed the hierarchy:\ngot:\n%v\nwant:\n%v", got, want)
	}
	d, err := DetectUnboundedReads(res.Hierarchy())
	if err != nil {
		t.Fatalf("DetectUnboundedReads() failed: %v", err)
	}
	if d.Found {
		t.Errorf("detector found %v, want no unbounded read", d.Reads)
	}
	if res.Coercion() != nil {
		t.Errorf("Coercion() = %+v, want nil", res.Coercion())
	}
}

func TestBoundedUntouched(t *testing.T) {
	p, _, _ := CreateBounded("a", "b")
	res, err := PlanStreaming(p)
	if err != nil {
		t.Fatalf("PlanStreaming() failed: %v", err)
	}
	if d, _ := DetectUnboundedReads(res.Hierarchy()); d.Found {
		t.Errorf("detector found %v in a bounded pipeline", d.Reads)
	}
	if c := res.Coercion(); c.Count != 0 {
		t.Errorf("Coercion().Count = %v, want 0", c.Count)
	}
}

func TestFakeUnboundedReader(t *testing.T) {
	src := &FakeUnboundedSource{Name: "q", Records: []any{"a", "b", "c"}}
	r, err := src.CreateReader(nil)
	if err != nil {
		t.Fatalf("CreateReader() failed: %v", err)
	}
	var got []any
	for ok, err := r.Start(); ok; ok, err = r.Advance() {
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
		got = append(got, r.Current())
		if len(got) == 1 {
			mark := r.CheckpointMark()
			resumed, _ := src.CreateReader(mark)
			if ok, _ := resumed.Start(); !ok || resumed.Current() != "b" {
				t.Errorf("reader resumed from %v at %v, want b", mark, resumed.Current())
			}
		}
	}
	if want := []any{"a", "b", "c"}; !cmp.Equal(got, want) {
		t.Errorf("read %v, want %v", got, want)
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
}

func TestFakeCoder(t *testing.T) {
	src := &FakeBoundedSource{Records: []any{"x"}}
	c := src.DefaultOutputCoder()
	var buf bytes.Buffer
	if err := c.Encode(map[string]any{"k": "v"}, &buf); err != nil {
		t.Fatalf("Encode() failed: %v", err)
	}
	got, err := c.Decode(&buf)
	if err != nil {
		t.Fatalf("Decode() failed: %v", err)
	}
	if want := map[string]any{"k": "v"}; !cmp.Equal(got, any(want)) {
		t.Errorf("Decode() = %v, want %v", got, want)
	}
	if n, _ := src.EstimatedSizeBytes(); n != 1 {
		t.Errorf("EstimatedSizeBytes() = %v, want 1", n)
	}
}
