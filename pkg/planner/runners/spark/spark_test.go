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

package spark_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/apache/beam/planner/pkg/planner"
	"github.com/apache/beam/planner/pkg/planner/core/graph"
	"github.com/apache/beam/planner/pkg/planner/core/runtime/pipelinex"
	"github.com/apache/beam/planner/pkg/planner/io/read"
	"github.com/apache/beam/planner/pkg/planner/options/jobopts"
	"github.com/apache/beam/planner/pkg/planner/runners/spark"
	"github.com/apache/beam/planner/pkg/planner/testing/ptest"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type recordingEngine struct {
	jobs []string
	ops  []graph.Opcode
	err  error
}

func (e *recordingEngine) Submit(_ context.Context, jobID string, h *graph.Hierarchy) error {
	e.jobs = append(e.jobs, jobID)
	reads, err := pipelinex.Reads(h)
	if err != nil {
		return err
	}
	for _, n := range reads {
		e.ops = append(e.ops, n.Op())
	}
	return e.err
}

// mixedPipeline reads two unbounded sources as bounded collections and a
// bounded source.
func mixedPipeline() *planner.Pipeline {
	p, s := planner.NewPipelineWithRoot()
	a := read.BoundedFromUnbounded(s, &ptest.FakeUnboundedSource{Name: "a"}, read.WithName("A"), read.WithMaxNumRecords(100))
	b := read.Bounded(s, &ptest.FakeBoundedSource{Name: "b"}, read.WithName("B"))
	c := read.BoundedFromUnbounded(s, &ptest.FakeUnboundedSource{Name: "c"}, read.WithName("C"))
	planner.Write(s, "Sink", planner.Flatten(s, a, b, c))
	return p
}

func TestExecuteTestForceStreaming(t *testing.T) {
	res, err := planner.Run(context.Background(), "TestSparkRunner", mixedPipeline(), &jobopts.Options{ForceStreaming: true})
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if _, err := uuid.Parse(res.JobID()); err != nil {
		t.Errorf("JobID() = %q, want a uuid: %v", res.JobID(), err)
	}
	if c := res.Coercion(); c == nil || c.Count != 2 {
		t.Fatalf("Coercion() = %+v, want 2 coerced reads", c)
	}
	reads, err := pipelinex.Reads(res.Hierarchy())
	if err != nil {
		t.Fatalf("Reads() failed: %v", err)
	}
	var got []string
	for _, n := range reads {
		got = append(got, n.FullName()+":"+string(n.Op()))
		if n.Op() == graph.UnboundedRead && n.Source().MaxNumRecords != graph.UnlimitedRecords {
			t.Errorf("%v kept its record limit under the default policy", n)
		}
	}
	want := []string{"A/Read:UnboundedRead", "B:BoundedRead", "C/Read:UnboundedRead"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("reads diff (-want +got):\n%v", diff)
	}
}

// authored builds p and returns its hierarchy as authored.
func authored(t *testing.T, p *planner.Pipeline) string {
	t.Helper()
	h, err := p.Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	return h.String()
}

func TestExecuteTestDisabled(t *testing.T) {
	p := mixedPipeline()
	want := authored(t, p)

	res, err := planner.Run(context.Background(), "TestSparkRunner", p, &jobopts.Options{})
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if res.Coercion() != nil {
		t.Errorf("Coercion() = %+v, want nil when force streaming is off", res.Coercion())
	}
	if ok, _ := pipelinex.HasUnboundedRead(res.Hierarchy()); ok {
		t.Error("HasUnboundedRead() = true, want the hierarchy unchanged")
	}
	if diff := cmp.Diff(want, res.Hierarchy().String()); diff != "" {
		t.Errorf("hierarchy changed with force streaming off (-want +got):\n%v", diff)
	}
}

func TestPlanPreserveLimits(t *testing.T) {
	res, err := spark.Plan(context.Background(), mixedPipeline(), &jobopts.Options{ForceStreaming: true, PreserveRecordLimits: true})
	if err != nil {
		t.Fatalf("Plan() failed: %v", err)
	}
	reads, _ := pipelinex.Reads(res.Hierarchy())
	if got := reads[0].Source().MaxNumRecords; got != 100 {
		t.Errorf("MaxNumRecords = %v, want 100 preserved", got)
	}
}

func TestPlanTwice(t *testing.T) {
	p := mixedPipeline()
	opts := &jobopts.Options{ForceStreaming: true}
	first, err := spark.Plan(context.Background(), p, opts)
	if err != nil {
		t.Fatalf("first Plan() failed: %v", err)
	}
	second, err := spark.Plan(context.Background(), p, opts)
	if err != nil {
		t.Fatalf("second Plan() failed: %v", err)
	}
	if first.Hierarchy() == second.Hierarchy() {
		t.Fatal("both plans share one hierarchy, want a copy per plan")
	}
	if first.Coercion().Count != 2 || second.Coercion().Count != 2 {
		t.Errorf("coerced %v then %v reads, want 2 each", first.Coercion().Count, second.Coercion().Count)
	}
	if diff := cmp.Diff(first.Hierarchy().String(), second.Hierarchy().String()); diff != "" {
		t.Errorf("plans differ (-first +second):\n%v", diff)
	}
}

func TestPlanBatchThenStreaming(t *testing.T) {
	ctx := context.Background()
	p := mixedPipeline()
	want := authored(t, p)

	batch, err := spark.Plan(ctx, p, &jobopts.Options{})
	if err != nil {
		t.Fatalf("batch Plan() failed: %v", err)
	}
	streaming, err := spark.Plan(ctx, p, &jobopts.Options{ForceStreaming: true})
	if err != nil {
		t.Fatalf("streaming Plan() failed: %v", err)
	}
	if streaming.Coercion().Count != 2 {
		t.Errorf("streaming Plan() coerced %v reads, want 2", streaming.Coercion().Count)
	}
	if diff := cmp.Diff(want, batch.Hierarchy().String()); diff != "" {
		t.Errorf("batch plan changed by a later streaming plan (-want +got):\n%v", diff)
	}

	again, err := spark.Plan(ctx, p, &jobopts.Options{})
	if err != nil {
		t.Fatalf("second batch Plan() failed: %v", err)
	}
	if diff := cmp.Diff(want, again.Hierarchy().String()); diff != "" {
		t.Errorf("batch plan after a streaming plan (-want +got):\n%v", diff)
	}
	if diff := cmp.Diff(want, authored(t, p)); diff != "" {
		t.Errorf("pipeline rewritten by planning (-want +got):\n%v", diff)
	}
}

func TestPlanJobName(t *testing.T) {
	res, err := spark.Plan(context.Background(), mixedPipeline(), nil)
	if err != nil {
		t.Fatalf("Plan() failed: %v", err)
	}
	if !strings.HasPrefix(res.JobName(), "plan-") {
		t.Errorf("JobName() = %q, want an autogenerated name", res.JobName())
	}
}

func TestExecute(t *testing.T) {
	ctx := context.Background()
	spark.SetEngine(nil)
	if _, err := planner.Run(ctx, "spark", mixedPipeline(), &jobopts.Options{}); err == nil {
		t.Error("Run(spark) without an engine succeeded, want error")
	}

	e := &recordingEngine{}
	spark.SetEngine(e)
	defer spark.SetEngine(nil)

	res, err := planner.Run(ctx, "SparkRunner", mixedPipeline(), &jobopts.Options{ForceStreaming: true})
	if err != nil {
		t.Fatalf("Run(SparkRunner) failed: %v", err)
	}
	if len(e.jobs) != 1 || e.jobs[0] != res.JobID() {
		t.Errorf("submitted jobs = %v, want [%v]", e.jobs, res.JobID())
	}
	want := []graph.Opcode{graph.UnboundedRead, graph.BoundedRead, graph.UnboundedRead}
	if !cmp.Equal(e.ops, want) {
		t.Errorf("submitted reads = %v, want %v", e.ops, want)
	}

	e.err = errors.New("cluster down")
	if _, err := planner.Run(ctx, "spark", mixedPipeline(), &jobopts.Options{}); err == nil {
		t.Error("Run(spark) with a failing engine succeeded, want error")
	}
}

func TestPlanCycle(t *testing.T) {
	p, s := planner.NewPipelineWithRoot()
	a := s.Scope("A")
	z := planner.ParDo(s, "Z", planner.Impulse(a))
	planner.ParDo(a, "Y", z)

	if _, err := spark.Plan(context.Background(), p, nil); !errors.Is(err, graph.ErrCycle) {
		t.Errorf("Plan() = %v, want %v", err, graph.ErrCycle)
	}
}

func TestPlanSpan(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prev)

	res, err := spark.Plan(context.Background(), mixedPipeline(), &jobopts.Options{ForceStreaming: true})
	if err != nil {
		t.Fatalf("Plan() failed: %v", err)
	}

	spans := sr.Ended()
	if len(spans) != 1 {
		t.Fatalf("recorded %v spans, want 1", len(spans))
	}
	got := make(map[attribute.Key]attribute.Value)
	for _, kv := range spans[0].Attributes() {
		got[kv.Key] = kv.Value
	}
	if got["planner.plan_id"].AsString() != res.JobID() {
		t.Errorf("plan_id = %v, want %v", got["planner.plan_id"].AsString(), res.JobID())
	}
	if !got["planner.force_streaming"].AsBool() || got["planner.coerced_reads"].AsInt64() != 2 {
		t.Errorf("span attributes = %v, want force streaming with 2 coerced reads", got)
	}
}
