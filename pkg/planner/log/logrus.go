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

	"github.com/sirupsen/logrus"
)

var logrusLevels = map[Severity]logrus.Level{
	SevUnspecified: logrus.InfoLevel,
	SevDebug:       logrus.DebugLevel,
	SevInfo:        logrus.InfoLevel,
	SevWarn:        logrus.WarnLevel,
	SevError:       logrus.ErrorLevel,
}

// Logrus is a Logger writing through a logrus logger. Context attributes
// become entry fields. A nil Logger field means the logrus standard logger.
type Logrus struct {
	Logger *logrus.Logger
}

// Log logs the message with the attributes attached to ctx.
func (l *Logrus) Log(ctx context.Context, sev Severity, _ int, msg string) {
	base := l.Logger
	if base == nil {
		base = logrus.StandardLogger()
	}
	attrs := Attrs(ctx)
	fields := make(logrus.Fields, len(attrs))
	for _, a := range attrs {
		fields[a.Key] = a.Value.Any()
	}
	base.WithFields(fields).Log(logrusLevels[sev], msg)
}
