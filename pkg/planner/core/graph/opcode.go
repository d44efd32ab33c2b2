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

package graph

import (
	"fmt"
	"time"
)

// Opcode represents the kind of a transform application. Primitive opcodes
// form a closed set; any other non-empty opcode tags a composite.
type Opcode string

// Primitive opcodes.
const (
	Impulse       Opcode = "Impulse"
	BoundedRead   Opcode = "BoundedRead"
	UnboundedRead Opcode = "UnboundedRead"
	ParDo         Opcode = "ParDo"
	GBK           Opcode = "GBK"
	Flatten       Opcode = "Flatten"
	Combine       Opcode = "Combine"
	Write         Opcode = "Write"
)

// Composite opcodes used by the planner itself. Users may tag composites
// with any other opcode outside the primitive set.
const (
	Root      Opcode = "Root"
	Composite Opcode = "Composite"
)

var primitives = map[Opcode]bool{
	Impulse:       true,
	BoundedRead:   true,
	UnboundedRead: true,
	ParDo:         true,
	GBK:           true,
	Flatten:       true,
	Combine:       true,
	Write:         true,
}

// IsPrimitive returns true iff the opcode denotes a directly executable
// transform.
func (o Opcode) IsPrimitive() bool {
	return primitives[o]
}

// IsRead returns true iff the opcode is one of the read primitives.
func (o Opcode) IsRead() bool {
	return o == BoundedRead || o == UnboundedRead
}

// Capability is the structural capability of a source wrapped by a read.
type Capability int

// Valid capabilities.
const (
	BoundedSource Capability = iota + 1
	UnboundedSource
)

func (c Capability) String() string {
	switch c {
	case BoundedSource:
		return "BoundedSource"
	case UnboundedSource:
		return "UnboundedSource"
	default:
		return fmt.Sprintf("Capability(%d)", int(c))
	}
}

// UnlimitedRecords is the MaxNumRecords sentinel for a read that is not
// capped by record count.
const UnlimitedRecords int64 = -1

// SourceDescriptor describes the source embedded in a read primitive. The
// planner only inspects the capability and limits. Source is passed
// through untouched.
type SourceDescriptor struct {
	// Source is the user source object. Opaque to the planner.
	Source any
	// Capability is recorded when the source is wrapped by a read.
	Capability Capability
	// MaxNumRecords caps the number of records read. UnlimitedRecords
	// means no cap.
	MaxNumRecords int64
	// MaxReadTime caps the duration of the read. Zero means no cap.
	MaxReadTime time.Duration
}

// Limited returns true iff the read stops on its own because of a record
// or time cap.
func (d *SourceDescriptor) Limited() bool {
	return d.MaxNumRecords >= 0 || d.MaxReadTime > 0
}

func (d *SourceDescriptor) String() string {
	if d == nil {
		return "<nil>"
	}
	name := fmt.Sprintf("%T", d.Source)
	if s, ok := d.Source.(fmt.Stringer); ok {
		name = s.String()
	}
	return fmt.Sprintf("%v[%v max=%d time=%v]", d.Capability, name, d.MaxNumRecords, d.MaxReadTime)
}

func (d *SourceDescriptor) clone() *SourceDescriptor {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}
