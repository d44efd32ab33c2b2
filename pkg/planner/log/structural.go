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

package log

import (
	"context"
	"log/slog"
)

var levels = map[Severity]slog.Level{
	SevUnspecified: slog.LevelInfo,
	SevDebug:       slog.LevelDebug,
	SevInfo:        slog.LevelInfo,
	SevWarn:        slog.LevelWarn,
	SevError:       slog.LevelError,
}

// Structural is a Logger writing through log/slog. A nil Logger field
// means slog.Default().
type Structural struct {
	Logger *slog.Logger
}

// Log logs the message with the attributes attached to ctx.
func (s *Structural) Log(ctx context.Context, sev Severity, _ int, msg string) {
	l := s.Logger
	if l == nil {
		l = slog.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}
	l.LogAttrs(ctx, levels[sev], msg, Attrs(ctx)...)
}
