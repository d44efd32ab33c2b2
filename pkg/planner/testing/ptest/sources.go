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
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/apache/beam/planner/pkg/planner/io/read"
)

// jsonCoder encodes values as JSON documents.
type jsonCoder struct{}

func (jsonCoder) Encode(v any, w io.Writer) error {
	return json.NewEncoder(w).Encode(v)
}

func (jsonCoder) Decode(r io.Reader) (any, error) {
	var v any
	err := json.NewDecoder(r).Decode(&v)
	return v, err
}

// FakeUnboundedSource is an unbounded source replaying fixed records. It
// stands in for a real stream in planning tests.
type FakeUnboundedSource struct {
	Name    string
	Records []any
}

func (s *FakeUnboundedSource) String() string {
	return fmt.Sprintf("FakeUnboundedSource(%v)", s.Name)
}

func (s *FakeUnboundedSource) Validate() error {
	return nil
}

func (s *FakeUnboundedSource) DefaultOutputCoder() read.Coder {
	return jsonCoder{}
}

func (s *FakeUnboundedSource) GenerateInitialSplits(int) ([]read.UnboundedSource, error) {
	return []read.UnboundedSource{s}, nil
}

func (s *FakeUnboundedSource) CreateReader(mark read.CheckpointMark) (read.UnboundedReader, error) {
	r := &fakeReader{records: s.Records, pos: -1}
	if m, ok := mark.(*FakeCheckpointMark); ok && m != nil {
		r.pos = m.Offset
	}
	return r, nil
}

func (s *FakeUnboundedSource) CheckpointMarkCoder() read.Coder {
	return jsonCoder{}
}

// FakeCheckpointMark is the offset of the last record read.
type FakeCheckpointMark struct {
	Offset int
}

func (m *FakeCheckpointMark) Finalize() error {
	return nil
}

type fakeReader struct {
	records []any
	pos     int
}

func (r *fakeReader) Start() (bool, error) {
	return r.Advance()
}

func (r *fakeReader) Advance() (bool, error) {
	if r.pos+1 >= len(r.records) {
		return false, nil
	}
	r.pos++
	return true, nil
}

func (r *fakeReader) Current() any {
	return r.records[r.pos]
}

func (r *fakeReader) Close() error {
	return nil
}

func (r *fakeReader) Watermark() time.Time {
	return time.Unix(int64(r.pos+1), 0)
}

func (r *fakeReader) CheckpointMark() read.CheckpointMark {
	return &FakeCheckpointMark{Offset: r.pos}
}

// FakeBoundedSource is a bounded source over fixed records.
type FakeBoundedSource struct {
	Name    string
	Records []any
}

func (s *FakeBoundedSource) String() string {
	return fmt.Sprintf("FakeBoundedSource(%v)", s.Name)
}

func (s *FakeBoundedSource) Validate() error {
	return nil
}

func (s *FakeBoundedSource) DefaultOutputCoder() read.Coder {
	return jsonCoder{}
}

func (s *FakeBoundedSource) Split(int64) ([]read.BoundedSource, error) {
	return []read.BoundedSource{s}, nil
}

func (s *FakeBoundedSource) EstimatedSizeBytes() (int64, error) {
	return int64(len(s.Records)), nil
}

func (s *FakeBoundedSource) CreateReader() (read.Reader, error) {
	return &fakeReader{records: s.Records, pos: -1}, nil
}
