// SPDX-FileCopyrightText: Copyright 2025 Krishna Iyer (www.krishnaiyer.tech)
// SPDX-License-Identifier: Apache-2.0

package logger

import (
	"io"
	"log/slog"

	"github.com/rs/zerolog"
)

// std is not initialized until Init is called.
var std = &Logger{state: &state{level: defaultLevel}}

// Default returns the package level logger.
func Default() *Logger {
	return std
}

// Init initializes the package level logger. It must be called before adding handlers
// and can be called again to change the level.
func Init(level Level) {
	std.Init(level)
}

// AddCallbackHandler adds a callback handler to the package level logger.
func AddCallbackHandler(cb func(msg string)) (*Handler, error) {
	return std.AddCallbackHandler(cb)
}

// AddWriterHandler adds a writer handler to the package level logger.
func AddWriterHandler(w io.Writer) (*Handler, error) {
	return std.AddWriterHandler(w)
}

// AddFileHandler adds a file handler to the package level logger.
func AddFileHandler(path string, appendMode bool) (*Handler, error) {
	return std.AddFileHandler(path, appendMode)
}

// AddRotatingHandler adds a rotating file handler to the package level logger.
func AddRotatingHandler(path string, maxSize int64, count int) (*Handler, error) {
	return std.AddRotatingHandler(path, maxSize, count)
}

// AddSLogHandler adds an slog handler to the package level logger.
func AddSLogHandler(logger *slog.Logger) (*Handler, error) {
	return std.AddSLogHandler(logger)
}

// AddZerologHandler adds a zerolog handler to the package level logger.
func AddZerologHandler(logger zerolog.Logger) (*Handler, error) {
	return std.AddZerologHandler(logger)
}

// RemoveHandler removes and closes a handler of the package level logger.
func RemoveHandler(h *Handler) error {
	return std.RemoveHandler(h)
}

// Reset removes and closes all handlers of the package level logger.
func Reset() error {
	return std.Reset()
}

// Debug logs a debug message to the package level logger.
func Debug(format string, args ...any) {
	std.log(LevelDebug, format, args...)
}

// Info logs an informational message to the package level logger.
func Info(format string, args ...any) {
	std.log(LevelInfo, format, args...)
}

// Warn logs a warning to the package level logger.
func Warn(format string, args ...any) {
	std.log(LevelWarn, format, args...)
}

// Error logs an error to the package level logger.
func Error(format string, args ...any) {
	std.log(LevelError, format, args...)
}
