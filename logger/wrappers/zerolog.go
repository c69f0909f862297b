// SPDX-FileCopyrightText: Copyright 2025 Krishna Iyer (www.krishnaiyer.tech)
// SPDX-License-Identifier: Apache-2.0

package wrappers

import (
	"github.com/rs/zerolog"
)

// Zerolog wraps zerolog.
type Zerolog struct {
	logger zerolog.Logger
}

// NewZerolog returns a new zerolog output.
func NewZerolog(logger zerolog.Logger) Zerolog {
	return Zerolog{
		logger: logger,
	}
}

// Output implements Output.
func (l Zerolog) Output(r Record) error {
	event := l.logger.WithLevel(zerologLevel(r.Level))
	for _, tag := range r.Tags {
		event = event.Interface(tag.Key, tag.Value)
	}
	event.Msg(r.Text)
	return nil
}

// Close implements Output. Not used for zerolog.
func (l Zerolog) Close() error {
	return nil
}

func zerologLevel(level Level) zerolog.Level {
	switch level {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
