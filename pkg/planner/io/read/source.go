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

package read

import (
	"io"
	"time"
)

// Coder encodes and decodes values of one type.
type Coder interface {
	Encode(v any, w io.Writer) error
	Decode(r io.Reader) (any, error)
}

// Source is the part shared by bounded and unbounded sources.
type Source interface {
	// Validate checks that the source is correctly configured.
	Validate() error
	// DefaultOutputCoder returns the coder of the produced elements.
	DefaultOutputCoder() Coder
}

// Reader iterates over the elements of a source.
type Reader interface {
	// Start positions the reader at the first element. It returns false if
	// there is none.
	Start() (bool, error)
	// Advance moves to the next element. It returns false if there is none.
	Advance() (bool, error)
	// Current returns the element at the current position.
	Current() any
	io.Closer
}

// BoundedSource reads a finite collection.
type BoundedSource interface {
	Source
	// Split divides the source into bundles of about the given size.
	Split(desiredBundleSizeBytes int64) ([]BoundedSource, error)
	// EstimatedSizeBytes returns an estimate of the total size.
	EstimatedSizeBytes() (int64, error)
	CreateReader() (Reader, error)
}

// CheckpointMark is the position of an unbounded reader that can be
// resumed from.
type CheckpointMark interface {
	// Finalize acknowledges the elements read up to the mark.
	Finalize() error
}

// UnboundedReader reads an unbounded source.
type UnboundedReader interface {
	Reader
	// Watermark returns a lower bound on the timestamps of future elements.
	Watermark() time.Time
	// CheckpointMark returns the current position.
	CheckpointMark() CheckpointMark
}

// UnboundedSource reads a possibly infinite collection.
type UnboundedSource interface {
	Source
	// GenerateInitialSplits divides the source into at most desired
	// sub-sources.
	GenerateInitialSplits(desired int) ([]UnboundedSource, error)
	// CreateReader returns a reader resuming from the mark, if not nil.
	CreateReader(mark CheckpointMark) (UnboundedReader, error)
	// CheckpointMarkCoder returns the coder of the checkpoint marks.
	CheckpointMarkCoder() Coder
}
