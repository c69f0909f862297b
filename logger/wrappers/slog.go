// SPDX-FileCopyrightText: Copyright 2025 Krishna Iyer (www.krishnaiyer.tech)
// SPDX-License-Identifier: Apache-2.0

package wrappers

import (
	"context"
	"log/slog"
)

// SLog wraps slog.
// The record date is dropped since slog handlers add their own time.
type SLog struct {
	logger *slog.Logger
}

// NewSLog returns a new slog output. If logger is nil, the slog default is used.
func NewSLog(logger *slog.Logger) SLog {
	if logger == nil {
		logger = slog.Default()
	}
	return SLog{
		logger: logger,
	}
}

// Output implements Output.
func (l SLog) Output(r Record) error {
	attrs := make([]slog.Attr, 0, len(r.Tags))
	for _, tag := range r.Tags {
		attrs = append(attrs, slog.Any(tag.Key, tag.Value))
	}
	l.logger.LogAttrs(context.Background(), slogLevel(r.Level), r.Text, attrs...)
	return nil
}

// Close implements Output. Not used for slog.
func (l SLog) Close() error {
	return nil
}

func slogLevel(level Level) slog.Level {
	switch level {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
