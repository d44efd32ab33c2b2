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


package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/apache/beam/planner/pkg/planner"
	"github.com/apache/beam/planner/pkg/planner/core/graph"
	"github.com/apache/beam/planner/pkg/planner/core/runtime/graphx"
	"github.com/apache/beam/planner/internal/errors"
	"github.com/apache/beam/planner/internal/telemetry"
	"github.com/apache/beam/planner/pkg/planner/log"
	"github.com/apache/beam/planner/pkg/planner/options/jobopts"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	// Runners selectable with --runner.
	_ "github.com/apache/beam/planner/pkg/planner/runners/dot"
	_ "github.com/apache/beam/planner/pkg/planner/runners/spark"
)

// defaultRunner plans without submitting, so planctl works without an
// engine.
const defaultRunner = "TestSparkRunner"

type planFlags struct {
	pipeline string
	output   string
}

func planCmd(v *viper.Viper) *cobra.Command {
	f := &planFlags{}
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Plan a pipeline described in YAML",
		Long: `Plan loads a pipeline description, plans it with the selected runner
and prints the planned hierarchy. With --force_streaming, bounded reads over
unbounded sources are replaced by unbounded reads.`,
		Args: cobra.NoArgs,
		PreRunE: func(*cobra.Command, []string) error {
			switch f.output {
			case "yaml", "text", "table":
				return nil
			default:
				return errors.Errorf("invalid output format %q, want yaml, text or table", f.output)
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPlan(cmd, v, f)
		},
	}
	cmd.Flags().StringVarP(&f.pipeline, "pipeline", "p", "", "Pipeline description file (YAML).")
	cmd.Flags().StringVarP(&f.output, "output", "o", "yaml", "Output format: yaml, text or table.")
	_ = cmd.MarkFlagRequired("pipeline")
	jobopts.BindFlags(cmd.Flags(), jobopts.Options{Runner: defaultRunner})
	return cmd
}

func runPlan(cmd *cobra.Command, v *viper.Viper, f *planFlags) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	opts, err := jobopts.Load(v)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(f.pipeline)
	if err != nil {
		return errors.Wrapf(err, "reading pipeline %v", f.pipeline)
	}
	p, d, err := graphx.Load(data)
	if err != nil {
		return errors.WithContextf(err, "loading pipeline %v", f.pipeline)
	}
	if opts.JobName == "" {
		opts.JobName = d.Name
	}

	shutdown, err := telemetry.Setup(ctx, opts.OTLPEndpoint, "planctl")
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.Warnf(ctx, "Flushing traces failed: %v", err)
		}
	}()

	log.Debugf(ctx, "Planning %v with runner %v.", f.pipeline, opts.Runner)
	res, err := planner.Run(ctx, opts.Runner, p, opts)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	switch f.output {
	case "text":
		err = printEvents(w, res.Hierarchy())
	case "table":
		err = printTable(w, res.Hierarchy())
	default:
		err = printDescription(w, res.Hierarchy(), d.Name)
	}
	if err != nil {
		return err
	}

	coerced := 0
	if c := res.Coercion(); c != nil {
		coerced = c.Count
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "plan %v: %d node(s), coerced %d read(s)\n", res.JobID(), res.Hierarchy().Len(), coerced)
	return nil
}

func printDescription(w io.Writer, h *graph.Hierarchy, name string) error {
	d, err := graphx.Describe(h, name)
	if err != nil {
		return err
	}
	data, err := graphx.Marshal(d)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// printEvents prints the hierarchy in topological order, one transform per
// line, indented by nesting depth.
func printEvents(w io.Writer, h *graph.Hierarchy) error {
	seq, err := h.Topological()
	if err != nil {
		return err
	}
	depth := 0
	for e := range seq {
		n := e.Node
		if n.ID() == graph.RootID {
			continue
		}
		switch e.Type {
		case graph.EnterEvent:
			fmt.Fprintf(w, "%v%v/\n", strings.Repeat("  ", depth), n.Label())
			depth++
		case graph.LeaveEvent:
			depth--
		case graph.PrimitiveEvent:
			fmt.Fprintf(w, "%v%v %v", strings.Repeat("  ", depth), n.Label(), n.Op())
			if src := n.Source(); src != nil {
				fmt.Fprintf(w, " %v", src)
			}
			fmt.Fprintln(w)
		}
	}
	return nil
}

func printTable(w io.Writer, h *graph.Hierarchy) error {
	seq, err := h.Topological()
	if err != nil {
		return err
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"id", "transform", "op", "source"})
	table.SetAutoWrapText(false)
	for e := range seq {
		if e.Type != graph.PrimitiveEvent {
			continue
		}
		n := e.Node
		src := ""
		if n.Source() != nil {
			src = n.Source().String()
		}
		table.Append([]string{fmt.Sprint(n.ID()), n.FullName(), string(n.Op()), src})
	}
	table.Render()
	return nil
}
