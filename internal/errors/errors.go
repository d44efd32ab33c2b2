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

// Package errors contains functionality for creating and wrapping planner
// errors. Errors may carry a Kind, which classifies structural failures
// and can be matched with the standard library's errors.Is.
package errors

import (
	"fmt"
	"io"
	"strings"
)

// Kind classifies a planning error. Kinds implement error so that they can
// be used directly as errors.Is targets.
type Kind int

// Error kinds raised by the planner core.
const (
	Unknown Kind = iota
	InvalidHandle
	Structural
	NotFound
	KindMismatch
	Cycle
)

var kindNames = map[Kind]string{
	Unknown:       "unknown error",
	InvalidHandle: "invalid handle",
	Structural:    "structural error",
	NotFound:      "not found",
	KindMismatch:  "kind mismatch",
	Cycle:         "cyclic structure",
}

func (k Kind) Error() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("error kind %d", int(k))
}

// New returns an error with the given message.
func New(message string) error {
	return &plannerError{msg: message}
}

// Errorf returns an error with a message formatted according to the format
// specifier.
func Errorf(format string, args ...any) error {
	return &plannerError{msg: fmt.Sprintf(format, args...)}
}

// Newk returns an error of the given kind with the given message.
func Newk(kind Kind, message string) error {
	return &plannerError{kind: kind, msg: message}
}

// Errorfk returns an error of the given kind with a message formatted
// according to the format specifier.
func Errorfk(kind Kind, format string, args ...any) error {
	return &plannerError{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Wrap returns a new error annotating err with a new message.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &plannerError{
		cause: err,
		msg:   message,
		top:   getTop(err),
	}
}

// Wrapf returns a new error annotating err with a new message according to
// the format specifier.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &plannerError{
		cause: err,
		msg:   fmt.Sprintf(format, args...),
		top:   getTop(err),
	}
}

// WithContext returns a new error adding additional context to err.
func WithContext(err error, context string) error {
	if err == nil {
		return nil
	}
	return &plannerError{
		cause:   err,
		context: context,
		top:     getTop(err),
	}
}

// WithContextf returns a new error adding additional context to err according
// to the format specifier.
func WithContextf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &plannerError{
		cause:   err,
		context: fmt.Sprintf(format, args...),
		top:     getTop(err),
	}
}

// SetTopLevelMsg returns a new error with the given top level message. The top
// level message is the first error message that gets printed when Error()
// is called on the returned error or any error wrapping it.
func SetTopLevelMsg(err error, top string) error {
	if err == nil {
		return nil
	}
	return &plannerError{
		cause: err,
		top:   top,
	}
}

// KindOf returns the innermost kind carried by err, or Unknown. The walk
// follows planner error causes only; it stops at foreign wrappers.
func KindOf(err error) Kind {
	kind := Unknown
	for err != nil {
		pe, ok := err.(*plannerError)
		if !ok {
			if k, ok := err.(Kind); ok {
				kind = k
			}
			break
		}
		if pe.kind != Unknown {
			kind = pe.kind
		}
		err = pe.cause
	}
	return kind
}

func getTop(e error) string {
	if pe, ok := e.(*plannerError); ok {
		return pe.top
	}
	return ""
}

// plannerError represents one or more details about an error. They are
// usually nested in the order that additional context was wrapped around
// the original error.
//
// * If no cause is present it indicates that this instance is the original
//   error, and the message is assumed to be present.
// * If both message and context are present, the context describes this error,
//   not the cause of this error.
// * top is always propagated up from the cause.
type plannerError struct {
	cause   error
	kind    Kind
	context string
	msg     string
	top     string
}

// Error outputs a plannerError as a string. The top-level error message is
// displayed first, followed by each error's context and error message in
// sequence. The original error is output last.
func (e *plannerError) Error() string {
	var builder strings.Builder

	if e.top != "" {
		builder.WriteString(fmt.Sprintf("%s\nFull error:\n", e.top))
	}

	e.printRecursive(&builder)

	return builder.String()
}

func (e *plannerError) printRecursive(builder *strings.Builder) {
	wraps := e.cause != nil

	if e.context != "" {
		builder.WriteString(fmt.Sprintf("\t%s\n", strings.ReplaceAll(e.context, "\n", "\n\t")))
	}
	if e.msg != "" {
		if e.kind != Unknown {
			builder.WriteString(e.kind.Error())
			builder.WriteString(": ")
		}
		builder.WriteString(e.msg)
		if wraps {
			builder.WriteString("\n\tcaused by:\n")
		}
	}

	if wraps {
		if pe, ok := e.cause.(*plannerError); ok {
			pe.printRecursive(builder)
		} else {
			builder.WriteString(e.cause.Error())
		}
	}
}

// Format implements the fmt.Formatter interface.
func (e *plannerError) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v', 's':
		io.WriteString(s, e.Error())
	case 'q':
		fmt.Fprintf(s, "%q", e.Error())
	}
}

// Is reports whether target is the kind of this error.
func (e *plannerError) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k != Unknown && e.kind == k
}

// Unwrap returns the cause of this error if present.
func (e *plannerError) Unwrap() error {
	return e.cause
}
