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

// Package log contains a re-targetable context-aware logging system. The
// planner core never logs; runners and tools do, tagging entries with
// attributes carried on the context, such as the plan id.
package log

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Severity is the severity of the log message.
type Severity int

const (
	SevUnspecified Severity = iota
	SevDebug
	SevInfo
	SevWarn
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevDebug:
		return "DEBUG"
	case SevInfo:
		return "INFO"
	case SevWarn:
		return "WARN"
	case SevError:
		return "ERROR"
	default:
		return "UNSPECIFIED"
	}
}

// Logger is a context-aware logging backend. The richer context allows for
// more sophisticated logging setups. Must be concurrency safe.
type Logger interface {
	// Log logs the message in some implementation-dependent way. Log should
	// always return regardless of the severity.
	Log(ctx context.Context, sev Severity, calldepth int, msg string)
}

var (
	mu     sync.RWMutex
	logger Logger = &Structural{}
)

// SetLogger sets the global Logger. Intended to be called during
// initialization only.
func SetLogger(l Logger) {
	if l == nil {
		panic("Logger cannot be nil")
	}
	mu.Lock()
	defer mu.Unlock()
	logger = l
}

// Output logs the given message to the global logger. Calldepth is the
// count of the number of frames to skip when computing the file name and
// line number.
func Output(ctx context.Context, sev Severity, calldepth int, msg string) {
	mu.RLock()
	l := logger
	mu.RUnlock()
	l.Log(ctx, sev, calldepth+1, msg) // +1 for this frame
}

type attrsKey struct{}

// WithAttrs returns a context whose log entries carry the given attributes
// in addition to any already attached.
func WithAttrs(ctx context.Context, attrs ...slog.Attr) context.Context {
	prev := Attrs(ctx)
	all := make([]slog.Attr, 0, len(prev)+len(attrs))
	all = append(all, prev...)
	all = append(all, attrs...)
	return context.WithValue(ctx, attrsKey{}, all)
}

// Attrs returns the attributes attached to the context.
func Attrs(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	attrs, _ := ctx.Value(attrsKey{}).([]slog.Attr)
	return attrs
}

// User functions

// Debug writes the fmt.Sprint-formatted arguments to the global logger with
// debug severity.
func Debug(ctx context.Context, v ...any) {
	Output(ctx, SevDebug, 2, fmt.Sprint(v...))
}

// Debugf writes the fmt.Sprintf-formatted arguments to the global logger
// with debug severity.
func Debugf(ctx context.Context, format string, v ...any) {
	Output(ctx, SevDebug, 2, fmt.Sprintf(format, v...))
}

// Info writes the fmt.Sprint-formatted arguments to the global logger with
// info severity.
func Info(ctx context.Context, v ...any) {
	Output(ctx, SevInfo, 2, fmt.Sprint(v...))
}

// Infof writes the fmt.Sprintf-formatted arguments to the global logger
// with info severity.
func Infof(ctx context.Context, format string, v ...any) {
	Output(ctx, SevInfo, 2, fmt.Sprintf(format, v...))
}

// Warn writes the fmt.Sprint-formatted arguments to the global logger with
// warn severity.
func Warn(ctx context.Context, v ...any) {
	Output(ctx, SevWarn, 2, fmt.Sprint(v...))
}

// Warnf writes the fmt.Sprintf-formatted arguments to the global logger
// with warn severity.
func Warnf(ctx context.Context, format string, v ...any) {
	Output(ctx, SevWarn, 2, fmt.Sprintf(format, v...))
}

// Error writes the fmt.Sprint-formatted arguments to the global logger with
// error severity.
func Error(ctx context.Context, v ...any) {
	Output(ctx, SevError, 2, fmt.Sprint(v...))
}

// Errorf writes the fmt.Sprintf-formatted arguments to the global logger
// with error severity.
func Errorf(ctx context.Context, format string, v ...any) {
	Output(ctx, SevError, 2, fmt.Sprintf(format, v...))
}
