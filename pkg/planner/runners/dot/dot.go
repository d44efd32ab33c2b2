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

// Package dot is a runner that "runs" a pipeline by producing a DOT graph
// of its planned hierarchy.
package dot

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/apache/beam/planner/pkg/planner"
	"github.com/apache/beam/planner/pkg/planner/core/graph"
	"github.com/apache/beam/planner/internal/errors"
	"github.com/apache/beam/planner/pkg/planner/log"
	"github.com/apache/beam/planner/pkg/planner/options/jobopts"
	"github.com/apache/beam/planner/pkg/planner/runners/spark"
)

func init() {
	planner.RegisterRunner("dot", Execute)
}

var (
	header = `digraph execution_plan {
  label="{{.}}";
  labeljust="l";
  fontname="Ubuntu";
  fontsize="13";
  bgcolor="#e6ecfa";
  node [shape="rectangle" style="filled" fillcolor="honeydew" fontname="Ubuntu" penwidth="1.0"];
`
	clusterBeginText = `{{.Indent}}subgraph "cluster_{{.ID}}" {
{{.Indent}}  label="{{.Label}}";
`
	clusterEndText = `{{.Indent}}}
`
	nodeText = `{{.Indent}}"{{.ID}}" [ label="{{.Label}}"{{if .Streaming}} fillcolor="lightblue"{{end}} ];
`
	edgeText = `  "{{.From}}" -> "{{.To}}";
`
	footer = `}
`
	headerTmpl       = template.Must(template.New("header").Parse(header))
	clusterBeginTmpl = template.Must(template.New("cluster_begin").Parse(clusterBeginText))
	clusterEndTmpl   = template.Must(template.New("cluster_end").Parse(clusterEndText))
	nodeTmpl         = template.Must(template.New("node").Parse(nodeText))
	edgeTmpl         = template.Must(template.New("edge").Parse(edgeText))
)

type element struct {
	Indent    string
	ID        graph.NodeID
	Label     string
	Streaming bool
}

// renderer writes composites as clusters and primitives as nodes, in
// traversal order. The first template error sticks.
type renderer struct {
	w     io.Writer
	depth int
	err   error
}

func (r *renderer) exec(t *template.Template, data any) {
	if r.err == nil {
		r.err = t.Execute(r.w, data)
	}
}

func (r *renderer) indent() string {
	return strings.Repeat("  ", r.depth+1)
}

func (r *renderer) EnterComposite(n *graph.Node) graph.VisitAction {
	if n.ID() == graph.RootID {
		return graph.Continue
	}
	r.exec(clusterBeginTmpl, element{Indent: r.indent(), ID: n.ID(), Label: escape(n.Label() + "\n" + string(n.Op()))})
	r.depth++
	return graph.Continue
}

func (r *renderer) VisitPrimitive(n *graph.Node) {
	label := string(n.Op()) + "\n" + n.Label()
	if src := n.Source(); src != nil {
		label += "\n" + src.String()
	}
	r.exec(nodeTmpl, element{Indent: r.indent(), ID: n.ID(), Label: escape(label), Streaming: n.Op() == graph.UnboundedRead})
}

func (r *renderer) LeaveComposite(n *graph.Node) {
	if n.ID() == graph.RootID {
		return
	}
	r.depth--
	r.exec(clusterEndTmpl, element{Indent: r.indent()})
}

func escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return strings.ReplaceAll(s, "\n", `\n`)
}

// Render produces a DOT representation of the built hierarchy into the
// supplied io.Writer. Edges connect producers to consumers, in traversal
// order of the producers.
func Render(h *graph.Hierarchy, name string, w io.Writer) error {
	r := &renderer{w: w}
	r.exec(headerTmpl, escape(name))
	if err := h.Traverse(r); err != nil {
		return errors.Wrap(err, "render DOT failed")
	}
	err := h.Traverse(graph.VisitorFuncs{
		Primitive: func(n *graph.Node) {
			for _, out := range n.Outputs() {
				for _, c := range h.Consumers(out) {
					r.exec(edgeTmpl, struct{ From, To graph.NodeID }{n.ID(), c.ID()})
				}
			}
		},
	})
	if err != nil {
		return errors.Wrap(err, "render DOT failed")
	}
	if r.err != nil {
		return errors.Wrap(r.err, "render DOT failed")
	}
	_, err = io.WriteString(w, footer)
	return err
}

// Execute plans the pipeline like the Spark runner, honoring force
// streaming, and writes the DOT graph of the plan to opts.DotFile.
func Execute(ctx context.Context, p *planner.Pipeline, opts *jobopts.Options) (planner.PipelineResult, error) {
	if opts == nil || opts.DotFile == "" {
		return nil, errors.New("must supply dot_file argument")
	}
	res, err := spark.Plan(ctx, p, opts)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := Render(res.Hierarchy(), res.JobName(), &buf); err != nil {
		return nil, err
	}
	if err := os.WriteFile(opts.DotFile, buf.Bytes(), 0644); err != nil {
		return nil, errors.Wrapf(err, "writing %v", opts.DotFile)
	}
	log.Infof(ctx, "Wrote plan %v to %v.", res.JobID(), opts.DotFile)
	return res, nil
}
