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
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/apache/beam/planner/pkg/planner/core/graph"
	"github.com/apache/beam/planner/pkg/planner/core/runtime/pipelinex"
	"github.com/apache/beam/planner/internal/errors"
	"github.com/apache/beam/planner/pkg/planner/options/jobopts"
)

// PipelineResult is the outcome of planning a pipeline.
type PipelineResult interface {
	// JobID identifies the planned job.
	JobID() string
	// Hierarchy is the planned hierarchy, after any rewrites.
	Hierarchy() *graph.Hierarchy
	// Coercion reports the force-streaming rewrite. It is nil if the
	// rewrite did not run.
	Coercion() *pipelinex.Coercion
}

// Runner plans, and possibly executes, a pipeline.
type Runner func(ctx context.Context, p *Pipeline, opts *jobopts.Options) (PipelineResult, error)

var (
	mu      sync.Mutex
	runners = make(map[string]Runner)
)

// RegisterRunner associates the name with the supplied runner, making it
// available to plan a pipeline via Run. It panics if the name is taken.
func RegisterRunner(name string, fn Runner) {
	mu.Lock()
	defer mu.Unlock()
	if _, ok := runners[name]; ok {
		panic(fmt.Sprintf("runner %v already defined", name))
	}
	runners[name] = fn
}

// Runners returns the names of the registered runners, sorted.
func Runners() []string {
	mu.Lock()
	defer mu.Unlock()
	var ret []string
	for name := range runners {
		ret = append(ret, name)
	}
	sort.Strings(ret)
	return ret
}

// Run plans the pipeline using the selected registered runner.
func Run(ctx context.Context, runner string, p *Pipeline, opts *jobopts.Options) (PipelineResult, error) {
	mu.Lock()
	fn, ok := runners[runner]
	mu.Unlock()
	if !ok {
		err := errors.Errorfk(errors.NotFound, "runner %v not registered", runner)
		return nil, errors.SetTopLevelMsg(err, fmt.Sprintf("Runner %v not registered. Forgot to _ import it?", runner))
	}
	return fn(ctx, p, opts)
}
