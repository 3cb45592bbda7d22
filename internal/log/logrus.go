// Copyright © 2024 Kaleido, Inc.
//
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// LogrusLogger writes structured, timestamped lines to the diagnostic stream.
type LogrusLogger struct {
	entry *logrus.Entry
}

func NewLogrusLogger(level LogLevel) *LogrusLogger {
	return NewLogrusLoggerWithOutput(level, os.Stderr)
}

func NewLogrusLoggerWithOutput(level LogLevel, out io.Writer) *LogrusLogger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	logger := &LogrusLogger{entry: logrus.NewEntry(l)}
	logger.SetLogLevel(level)
	return logger
}

// WithField returns a child logger that tags every line, e.g. with the network name
func (l *LogrusLogger) WithField(key string, value interface{}) *LogrusLogger {
	return &LogrusLogger{entry: l.entry.WithField(key, value)}
}

func (l *LogrusLogger) SetLogLevel(level LogLevel) {
	switch level {
	case Trace:
		l.entry.Logger.SetLevel(logrus.TraceLevel)
	case Debug:
		l.entry.Logger.SetLevel(logrus.DebugLevel)
	case Warn:
		l.entry.Logger.SetLevel(logrus.WarnLevel)
	case Error:
		l.entry.Logger.SetLevel(logrus.ErrorLevel)
	default:
		l.entry.Logger.SetLevel(logrus.InfoLevel)
	}
}

func (l *LogrusLogger) Trace(s string) {
	l.entry.Trace(s)
}

func (l *LogrusLogger) Debug(s string) {
	l.entry.Debug(s)
}

func (l *LogrusLogger) Info(s string) {
	l.entry.Info(s)
}

func (l *LogrusLogger) Warn(s string) {
	l.entry.Warn(s)
}

func (l *LogrusLogger) Error(e error) {
	l.entry.Error(e.Error())
}
