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

// Package spark contains the Spark runner. The runner lowers a pipeline
// into its transform hierarchy, applies the planning rewrites selected by
// the job options, and submits the result to a Spark engine.
//
// TestSparkRunner plans without submitting, for verifying plans in tests.
package spark

import (
	"context"
	"log/slog"
	"sync"

	"github.com/apache/beam/planner/pkg/planner"
	"github.com/apache/beam/planner/pkg/planner/core/graph"
	"github.com/apache/beam/planner/pkg/planner/core/runtime/pipelinex"
	"github.com/apache/beam/planner/internal/errors"
	"github.com/apache/beam/planner/pkg/planner/log"
	"github.com/apache/beam/planner/pkg/planner/options/jobopts"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/apache/beam/planner/pkg/planner/runners/spark"

func init() {
	planner.RegisterRunner("spark", Execute)
	planner.RegisterRunner("SparkRunner", Execute)
	planner.RegisterRunner("TestSparkRunner", ExecuteTest)
}

// Engine executes planned hierarchies.
type Engine interface {
	Submit(ctx context.Context, jobID string, h *graph.Hierarchy) error
}

var (
	mu     sync.Mutex
	engine Engine
)

// SetEngine sets the engine planned jobs are submitted to. Intended to be
// called during initialization only.
func SetEngine(e Engine) {
	mu.Lock()
	defer mu.Unlock()
	engine = e
}

func currentEngine() Engine {
	mu.Lock()
	defer mu.Unlock()
	return engine
}

// Result is the outcome of planning a pipeline.
type Result struct {
	jobID    string
	jobName  string
	h        *graph.Hierarchy
	coercion *pipelinex.Coercion
}

// JobID returns the plan id.
func (r *Result) JobID() string {
	return r.jobID
}

// JobName returns the job name the plan was made under. It is resolved
// once per plan, so autogenerated names stay stable.
func (r *Result) JobName() string {
	return r.jobName
}

// Hierarchy returns the planned hierarchy.
func (r *Result) Hierarchy() *graph.Hierarchy {
	return r.h
}

// Coercion returns the force-streaming outcome, or nil if the pass did not
// run.
func (r *Result) Coercion() *pipelinex.Coercion {
	return r.coercion
}

// Plan builds the pipeline and, if opts.ForceStreaming is set, replaces
// every bounded read over an unbounded source with an unbounded read.
// Nothing is executed. A nil opts means the defaults. Each result owns a
// copy of the built hierarchy; the pipeline itself is never rewritten.
func Plan(ctx context.Context, p *planner.Pipeline, opts *jobopts.Options) (*Result, error) {
	if opts == nil {
		opts = &jobopts.Options{}
	}
	ret := &Result{jobID: uuid.NewString(), jobName: opts.GetJobName()}
	ctx = log.WithAttrs(ctx, slog.String("plan_id", ret.jobID), slog.String("job_name", ret.jobName))

	ctx, span := otel.Tracer(tracerName).Start(ctx, "planner.Plan", trace.WithAttributes(
		attribute.String("planner.plan_id", ret.jobID),
		attribute.Bool("planner.force_streaming", opts.ForceStreaming),
	))
	defer span.End()

	built, err := p.Build()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "build failed")
		return nil, errors.WithContext(err, "planning pipeline")
	}
	h := built.Clone()
	ret.h = h
	span.SetAttributes(attribute.Int("planner.nodes", h.Len()))

	if !opts.ForceStreaming {
		log.Debug(ctx, "Force streaming disabled, hierarchy left unchanged.")
		return ret, nil
	}
	policy := opts.LimitPolicy()
	c, err := pipelinex.ForceStreaming(h, policy)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "force streaming failed")
		return nil, errors.WithContext(err, "planning pipeline")
	}
	ret.coercion = c
	span.SetAttributes(
		attribute.Int("planner.coerced_reads", c.Count),
		attribute.String("planner.limit_policy", policy.String()),
	)
	log.Infof(ctx, "Force streaming coerced %d bounded read(s) over unbounded sources with %v.", c.Count, policy)
	return ret, nil
}

// Execute plans the pipeline and submits it to the configured engine.
func Execute(ctx context.Context, p *planner.Pipeline, opts *jobopts.Options) (planner.PipelineResult, error) {
	e := currentEngine()
	if e == nil {
		return nil, errors.New("no Spark engine configured. Call spark.SetEngine before running")
	}
	res, err := Plan(ctx, p, opts)
	if err != nil {
		return nil, err
	}
	ctx = log.WithAttrs(ctx, slog.String("plan_id", res.jobID))
	log.Infof(ctx, "Submitting job with %d nodes.", res.h.Len())
	if err := e.Submit(ctx, res.jobID, res.h); err != nil {
		return nil, errors.Wrapf(err, "submitting job %v", res.jobID)
	}
	return res, nil
}

// ExecuteTest plans the pipeline without submitting it.
func ExecuteTest(ctx context.Context, p *planner.Pipeline, opts *jobopts.Options) (planner.PipelineResult, error) {
	res, err := Plan(ctx, p, opts)
	if err != nil {
		return nil, err
	}
	return res, nil
}
