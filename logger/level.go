// SPDX-FileCopyrightText: Copyright 2025 Krishna Iyer (www.krishnaiyer.tech)
// SPDX-License-Identifier: Apache-2.0

package logger

import (
	"fmt"
	"strings"

	"krishnaiyer.tech/golang/hlog/logger/wrappers"
)

// Level is the log level. Records are dispatched when their level is at least the logger's level.
// Default is Info.
type Level uint

const (
	LevelNone  Level = 0
	LevelDebug Level = 1
	LevelInfo  Level = 2
	LevelWarn  Level = 3
	LevelError Level = 4

	defaultLevel = LevelInfo
)

func (l Level) String() string {
	switch l {
	case LevelNone:
		return "none"
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return fmt.Sprintf("level(%d)", uint(l))
	}
}

// ParseLevel parses a level name, case insensitively.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "all":
		return LevelNone, nil
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelNone, fmt.Errorf("%w: %q", ErrUnknownLevel, s)
	}
}

func (l Level) valid() bool {
	return l <= LevelError
}

func (l Level) wrapper() wrappers.Level {
	return wrappers.Level(l)
}
