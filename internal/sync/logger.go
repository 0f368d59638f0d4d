// Copyright (C) 2020 The treesync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package sync

import "go.uber.org/zap"

// LogLevel is one of the four levels the Logger sink interface supports
// (spec.md §6).
type LogLevel int

const (
	LogDetails LogLevel = iota
	LogMessage
	LogWarning
	LogError
)

// Logger is the sink every core component writes through. The core never
// holds a process-wide singleton (spec.md §9 design notes); callers inject
// whichever sink fits their entry point.
type Logger interface {
	Log(level LogLevel, message string)
	SubHeader(title string)
	SubDivider()
}

// ZapLogger adapts a *zap.Logger, tagged by subsystem, to the Logger
// interface (spec.md §6), in the style of cage_zap.Tag used throughout the
// teacher codebase.
type ZapLogger struct {
	Base *zap.Logger
	Tag  string
}

var _ Logger = ZapLogger{}

func (l ZapLogger) Log(level LogLevel, message string) {
	fields := []zap.Field{zap.String("tag", l.Tag)}
	switch level {
	case LogDetails:
		l.Base.Debug(message, fields...)
	case LogWarning:
		l.Base.Warn(message, fields...)
	case LogError:
		l.Base.Error(message, fields...)
	default:
		l.Base.Info(message, fields...)
	}
}

func (l ZapLogger) SubHeader(title string) {
	l.Base.Info("=== "+title+" ===", zap.String("tag", l.Tag))
}

func (l ZapLogger) SubDivider() {
	l.Base.Info("---", zap.String("tag", l.Tag))
}

// NopLogger discards everything; useful as a default and in tests that don't
// assert on log output.
type NopLogger struct{}

var _ Logger = NopLogger{}

func (NopLogger) Log(LogLevel, string) {}
func (NopLogger) SubHeader(string)     {}
func (NopLogger) SubDivider()          {}
