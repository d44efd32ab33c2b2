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

// Package jobopts contains the options for planning a job. Options are an
// explicit value handed to runners; nothing here is global. Values come
// from command-line flags, PLANNER_* environment variables or a config
// file, in that order of precedence.
package jobopts

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/apache/beam/planner/pkg/planner/core/runtime/pipelinex"
	"github.com/apache/beam/planner/internal/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Configuration keys. Flags use the same names; environment variables are
// the upper-cased key prefixed with EnvPrefix.
const (
	RunnerKey               = "runner"
	ForceStreamingKey       = "force_streaming"
	PreserveRecordLimitsKey = "preserve_record_limits"
	DotFileKey              = "dot_file"
	JobNameKey              = "job_name"
	OTLPEndpointKey         = "otlp_endpoint"

	EnvPrefix = "PLANNER"

	// DefaultRunner is used when no runner is configured.
	DefaultRunner = "spark"
)

// Options configure how a pipeline is planned.
type Options struct {
	// Runner names the registered runner to plan with.
	Runner string
	// ForceStreaming coerces bounded reads over unbounded sources into
	// unbounded reads before execution.
	ForceStreaming bool
	// PreserveRecordLimits keeps the record and time caps of coerced reads.
	PreserveRecordLimits bool
	// DotFile is where the dot runner writes its output.
	DotFile string
	// JobName is the name of the job. Autogenerated if empty.
	JobName string
	// OTLPEndpoint is the OTLP/gRPC trace collector. Tracing is off if empty.
	OTLPEndpoint string
}

// BindFlags defines the planning flags on the given flag set, with the
// given defaults.
func BindFlags(fs *pflag.FlagSet, defaults Options) {
	if defaults.Runner == "" {
		defaults.Runner = DefaultRunner
	}
	fs.String(RunnerKey, defaults.Runner, "Pipeline runner (spark, SparkRunner, TestSparkRunner or dot).")
	fs.Bool(ForceStreamingKey, defaults.ForceStreaming, "Replace bounded reads over unbounded sources with unbounded reads.")
	fs.Bool(PreserveRecordLimitsKey, defaults.PreserveRecordLimits, "Keep record and time limits on reads coerced by --force_streaming.")
	fs.String(DotFileKey, defaults.DotFile, "Output file for the dot runner.")
	fs.String(JobNameKey, defaults.JobName, "Job name (optional).")
	fs.String(OTLPEndpointKey, defaults.OTLPEndpoint, "OTLP/gRPC trace collector endpoint (optional).")
}

// Load reads the options from v. Changed flags win over PLANNER_*
// environment variables, which win over config file values and then flag
// defaults. Flags must have been bound to v by the caller, for example with
// v.BindPFlags.
func Load(v *viper.Viper) (*Options, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	opts := &Options{
		Runner:               v.GetString(RunnerKey),
		ForceStreaming:       v.GetBool(ForceStreamingKey),
		PreserveRecordLimits: v.GetBool(PreserveRecordLimitsKey),
		DotFile:              v.GetString(DotFileKey),
		JobName:              v.GetString(JobNameKey),
		OTLPEndpoint:         v.GetString(OTLPEndpointKey),
	}
	if opts.Runner == "" {
		opts.Runner = DefaultRunner
	}
	if err := opts.Validate(); err != nil {
		return nil, errors.WithContext(err, "loading job options")
	}
	return opts, nil
}

// Validate checks that the options are consistent.
func (o *Options) Validate() error {
	if strings.TrimSpace(o.Runner) == "" {
		return errors.New("no runner specified. Use --runner=<runner>")
	}
	if strings.EqualFold(o.Runner, "dot") && o.DotFile == "" {
		return errors.New("dot runner requires an output file. Use --dot_file=<file>")
	}
	return nil
}

// LimitPolicy returns what happens to the limits of coerced reads.
func (o *Options) LimitPolicy() pipelinex.LimitPolicy {
	if o.PreserveRecordLimits {
		return pipelinex.PreserveLimits
	}
	return pipelinex.DropLimits
}

var unique int32

// GetJobName returns the specified job name or, if not present, a fresh
// autogenerated name.
func (o *Options) GetJobName() string {
	if o.JobName == "" {
		id := atomic.AddInt32(&unique, 1)
		return fmt.Sprintf("plan-%v-%v", id, time.Now().UnixNano())
	}
	return o.JobName
}
