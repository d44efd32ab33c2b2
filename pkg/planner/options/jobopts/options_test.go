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

package jobopts

import (
	"strings"
	"testing"

	"github.com/apache/beam/planner/pkg/planner/core/runtime/pipelinex"
	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func load(t *testing.T, args ...string) (*Options, error) {
	t.Helper()
	return loadWith(t, Options{}, args...)
}

func loadWith(t *testing.T, defaults Options, args ...string) (*Options, error) {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(fs, defaults)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("Parse(%v) failed: %v", args, err)
	}
	v := viper.New()
	if err := v.BindPFlags(fs); err != nil {
		t.Fatalf("BindPFlags() failed: %v", err)
	}
	return Load(v)
}

func TestLoadDefaults(t *testing.T) {
	opts, err := load(t)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if want := (&Options{Runner: DefaultRunner}); !cmp.Equal(opts, want) {
		t.Errorf("Load() = %+v, want %+v", opts, want)
	}
	if opts.LimitPolicy() != pipelinex.DropLimits {
		t.Errorf("LimitPolicy() = %v, want %v", opts.LimitPolicy(), pipelinex.DropLimits)
	}
}

func TestLoadFlags(t *testing.T) {
	opts, err := load(t, "--runner=dot", "--force_streaming", "--preserve_record_limits", "--dot_file=/tmp/p.dot", "--job_name=events")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	want := &Options{Runner: "dot", ForceStreaming: true, PreserveRecordLimits: true, DotFile: "/tmp/p.dot", JobName: "events"}
	if !cmp.Equal(opts, want) {
		t.Errorf("Load() = %+v, want %+v", opts, want)
	}
	if opts.LimitPolicy() != pipelinex.PreserveLimits {
		t.Errorf("LimitPolicy() = %v, want %v", opts.LimitPolicy(), pipelinex.PreserveLimits)
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("PLANNER_FORCE_STREAMING", "true")
	t.Setenv("PLANNER_RUNNER", "TestSparkRunner")
	t.Setenv("PLANNER_OTLP_ENDPOINT", "localhost:4317")

	opts, err := load(t)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	want := &Options{Runner: "TestSparkRunner", ForceStreaming: true, OTLPEndpoint: "localhost:4317"}
	if !cmp.Equal(opts, want) {
		t.Errorf("Load() = %+v, want %+v", opts, want)
	}
}

func TestLoadFlagOverridesEnv(t *testing.T) {
	t.Setenv("PLANNER_FORCE_STREAMING", "true")
	opts, err := load(t, "--force_streaming=false")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if opts.ForceStreaming {
		t.Error("ForceStreaming = true, want the flag to win over the environment")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		opts Options
		err  string
	}{
		{Options{Runner: "spark"}, ""},
		{Options{Runner: "dot", DotFile: "out.dot"}, ""},
		{Options{Runner: " "}, "no runner specified"},
		{Options{Runner: "DOT"}, "requires an output file"},
	}
	for _, test := range tests {
		err := test.opts.Validate()
		switch {
		case test.err == "" && err != nil:
			t.Errorf("Validate(%+v) = %v, want nil", test.opts, err)
		case test.err != "" && (err == nil || !strings.Contains(err.Error(), test.err)):
			t.Errorf("Validate(%+v) = %v, want error containing %q", test.opts, err, test.err)
		}
	}
}

func TestLoadFlagDefaults(t *testing.T) {
	opts, err := loadWith(t, Options{Runner: "TestSparkRunner", ForceStreaming: true})
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if want := (&Options{Runner: "TestSparkRunner", ForceStreaming: true}); !cmp.Equal(opts, want) {
		t.Errorf("Load() = %+v, want %+v", opts, want)
	}
}

func TestLoadWithoutFlags(t *testing.T) {
	opts, err := Load(viper.New())
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if opts.Runner != DefaultRunner {
		t.Errorf("Runner = %q, want %q", opts.Runner, DefaultRunner)
	}
}

func TestLoadInvalid(t *testing.T) {
	if _, err := load(t, "--runner=dot"); err == nil {
		t.Error("Load(--runner=dot) succeeded, want missing dot file error")
	}
}

func TestGetJobName(t *testing.T) {
	tests := []struct {
		jobname  string
		wantName string
	}{
		{"", "plan-"},
		{"events-job", "events-job"},
	}
	for _, test := range tests {
		opts := &Options{JobName: test.jobname}
		if got := opts.GetJobName(); !strings.HasPrefix(got, test.wantName) {
			t.Errorf("GetJobName() = %v, want prefix %v", got, test.wantName)
		}
	}
}
