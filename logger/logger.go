// SPDX-FileCopyrightText: Copyright 2025 Krishna Iyer (www.krishnaiyer.tech)
// SPDX-License-Identifier: Apache-2.0

// Package logger provides a levelled logger that dispatches records to registered handlers.
package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"krishnaiyer.tech/golang/hlog/logger/wrappers"
	"krishnaiyer.tech/golang/hlog/metrics"
)

// DateLayout is the layout of the date that prefixes each line.
const DateLayout = "2006-01-02 15:04:05,000"

// Option is a configuration option.
type Option func(*Logger)

// state is shared between a logger and the loggers derived from it with WithTag(s).
type state struct {
	mu          sync.RWMutex
	initialized bool
	level       Level
	handlers    []*Handler
	metrics     *metrics.Metrics
	now         func() time.Time
	lastErr     error
}

// Logger dispatches records at or above its level to its handlers, in the order they were added.
type Logger struct {
	*state
	tags []wrappers.Tag
}

// New creates a new initialized logger.
// Call `Shutdown` when done, usually in a `defer` immediately after New.
func New(ctx context.Context, opts ...Option) *Logger {
	logger := &Logger{
		state: &state{
			initialized: true,
			level:       defaultLevel,
			now:         time.Now,
		},
	}

	// Apply the options.
	for _, opt := range opts {
		opt(logger)
	}
	return logger
}

// WithLogLevel sets the level of the logger. Undefined levels are ignored.
func WithLogLevel(level Level) Option {
	return Option(func(l *Logger) {
		if level.valid() {
			l.level = level
		}
	})
}

// WithClock sets the function used to timestamp records.
func WithClock(now func() time.Time) Option {
	return Option(func(l *Logger) {
		if now != nil {
			l.now = now
		}
	})
}

// WithMetrics sets the metrics that the logger updates.
func WithMetrics(m *metrics.Metrics) Option {
	return Option(func(l *Logger) {
		l.metrics = m
	})
}

// WithCustomOutput adds a handler for a custom output.
func WithCustomOutput(out wrappers.Output) Option {
	return Option(func(l *Logger) {
		if out != nil {
			l.handlers = append(l.handlers, newHandler(TypeCustom, out))
		}
	})
}

// Init initializes the logger with the level. It may be called again to change the level.
// Undefined levels are ignored.
func (l *Logger) Init(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.initialized = true
	if l.now == nil {
		l.now = time.Now
	}
	if level.valid() {
		l.level = level
	}
}

// SetLevel changes the level. Undefined levels are ignored.
func (l *Logger) SetLevel(level Level) {
	if !level.valid() {
		return
	}
	l.mu.Lock()
	l.level = level
	l.mu.Unlock()
}

// SetMetrics sets the metrics that the logger updates. A nil m disables metrics.
func (l *Logger) SetMetrics(m *metrics.Metrics) {
	l.mu.Lock()
	l.metrics = m
	l.mu.Unlock()
}

// Level returns the current level.
func (l *Logger) Level() Level {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level
}

// Handlers returns the registered handlers in dispatch order.
func (l *Logger) Handlers() []*Handler {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.handlers)
}

// AddCallbackHandler adds a handler that calls cb with each formatted line, without a trailing newline.
func (l *Logger) AddCallbackHandler(cb func(msg string)) (*Handler, error) {
	if cb == nil {
		return nil, ErrNilOutput
	}
	return l.AddOutput(TypeCallback, wrappers.NewCallback(cb))
}

// AddWriterHandler adds a handler that writes each line to w, for example os.Stderr.
// The handler does not close w.
func (l *Logger) AddWriterHandler(w io.Writer) (*Handler, error) {
	if w == nil {
		return nil, ErrNilOutput
	}
	return l.AddOutput(TypeWriter, wrappers.NewWriter(w))
}

// AddFileHandler adds a handler that writes to the file at path.
// The file is appended to if appendMode is set, otherwise it is truncated.
func (l *Logger) AddFileHandler(path string, appendMode bool) (*Handler, error) {
	if err := l.checkInitialized(); err != nil {
		return nil, err
	}
	out, err := wrappers.NewFile(path, appendMode)
	if err != nil {
		return nil, err
	}
	return l.addOrClose(TypeFile, out)
}

// AddRotatingHandler adds a handler that writes to path until it exceeds maxSize bytes,
// after which it is rotated and up to count older files are kept as path.1 to path.count.
func (l *Logger) AddRotatingHandler(path string, maxSize int64, count int) (*Handler, error) {
	if err := l.checkInitialized(); err != nil {
		return nil, err
	}
	out, err := wrappers.NewRotating(path, maxSize, count)
	if err != nil {
		return nil, err
	}
	return l.addOrClose(TypeRotating, out)
}

// AddSLogHandler adds a handler that forwards records to an slog logger.
// If logger is nil, the slog default is used.
func (l *Logger) AddSLogHandler(logger *slog.Logger) (*Handler, error) {
	return l.AddOutput(TypeSLog, wrappers.NewSLog(logger))
}

// AddZerologHandler adds a handler that forwards records to a zerolog logger.
func (l *Logger) AddZerologHandler(logger zerolog.Logger) (*Handler, error) {
	return l.AddOutput(TypeZerolog, wrappers.NewZerolog(logger))
}

// AddOutput adds a handler for any output.
func (l *Logger) AddOutput(typ Type, out wrappers.Output) (*Handler, error) {
	if out == nil {
		return nil, ErrNilOutput
	}
	h := newHandler(typ, out)
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.initialized {
		return nil, ErrNotInitialized
	}
	l.handlers = append(l.handlers, h)
	return h, nil
}

func (l *Logger) addOrClose(typ Type, out wrappers.Output) (*Handler, error) {
	h, err := l.AddOutput(typ, out)
	if err != nil {
		out.Close()
		return nil, err
	}
	return h, nil
}

func (l *Logger) checkInitialized() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if !l.initialized {
		return ErrNotInitialized
	}
	return nil
}

// RemoveHandler removes the handler from the logger and closes it.
// A handler that is not registered with this logger is still closed.
func (l *Logger) RemoveHandler(h *Handler) error {
	if h == nil {
		return ErrNilOutput
	}
	l.mu.Lock()
	l.handlers = slices.DeleteFunc(l.handlers, func(e *Handler) bool {
		return e == h
	})
	l.mu.Unlock()
	return h.close()
}

// Reset removes and closes all handlers. The logger stays initialized with its level.
func (l *Logger) Reset() error {
	l.mu.Lock()
	handlers := l.handlers
	l.handlers = nil
	l.mu.Unlock()

	var errs []error
	for _, h := range handlers {
		if err := h.close(); err != nil && !errors.Is(err, ErrHandlerClosed) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Shutdown resets the logger, unless ctx is done first.
// A ctx that is already done leaves the handlers in place.
func (l *Logger) Shutdown(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	done := make(chan error, 1)
	go func() {
		done <- l.Reset()
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err returns the last handler error since the previous call to Err, and clears it.
func (l *Logger) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	err := l.lastErr
	l.lastErr = nil
	return err
}

// WithTag returns a new logger with the tag.
// The new logger shares the level and handlers of l.
func (l *Logger) WithTag(key string, val any) *Logger {
	logger := &Logger{
		state: l.state,
		tags:  slices.Clone(l.tags),
	}
	logger.tags = append(logger.tags, wrappers.Tag{
		Key:   key,
		Value: val,
	})
	return logger
}

// WithTags returns a new logger with the tags.
// The number of arguments must be even and the first value of each pair should be a string.
func (l *Logger) WithTags(args ...any) (*Logger, error) {
	if len(args)%2 != 0 {
		return nil, fmt.Errorf("odd number of arguments")
	}
	logger := &Logger{
		state: l.state,
		tags:  slices.Clone(l.tags),
	}
	// Read the args in pairs and create tags.
	for i := 0; i < len(args)-1; i = i + 2 {
		key, ok := args[i].(string)
		if !ok {
			return nil, fmt.Errorf("argument %d is not a string", i)
		}
		logger.tags = append(logger.tags, wrappers.Tag{
			Key:   key,
			Value: args[i+1],
		})
	}
	return logger, nil
}

// Debug logs a debug message. The message is formatted with fmt.Sprintf.
func (l *Logger) Debug(format string, args ...any) {
	l.log(LevelDebug, format, args...)
}

// Info logs an informational message. The message is formatted with fmt.Sprintf.
func (l *Logger) Info(format string, args ...any) {
	l.log(LevelInfo, format, args...)
}

// Warn logs a warning. The message is formatted with fmt.Sprintf.
func (l *Logger) Warn(format string, args ...any) {
	l.log(LevelWarn, format, args...)
}

// Error logs an error. The message is formatted with fmt.Sprintf.
func (l *Logger) Error(format string, args ...any) {
	l.log(LevelError, format, args...)
}

func (l *Logger) log(level Level, format string, args ...any) {
	l.mu.RLock()
	if !l.initialized {
		l.mu.RUnlock()
		return
	}
	m := l.metrics
	if level < l.level {
		l.mu.RUnlock()
		m.Dropped(level.String())
		return
	}
	// Outputs run without the lock so that a callback may log or change handlers.
	handlers := slices.Clone(l.handlers)
	now := l.now()
	l.mu.RUnlock()

	text := fmt.Sprintf(format, args...)
	record := wrappers.Record{
		Time:    now,
		Date:    now.Format(DateLayout),
		Level:   level.wrapper(),
		Text:    text,
		Message: appendTags(text, l.tags),
		Tags:    l.tags,
	}
	m.Dispatched(level.String())

	for _, h := range handlers {
		if h.closed.Load() {
			continue
		}
		if err := h.out.Output(record); err != nil {
			if errors.Is(err, wrappers.ErrClosed) {
				continue
			}
			m.OutputError(h.typ.String())
			l.mu.Lock()
			l.lastErr = fmt.Errorf("could not write to %s: %w", h, err)
			l.mu.Unlock()
		}
	}
}

func appendTags(msg string, tags []wrappers.Tag) string {
	if len(tags) == 0 {
		return msg
	}
	var b strings.Builder
	b.WriteString(msg)
	for _, tag := range tags {
		fmt.Fprintf(&b, " %s=%v", tag.Key, tag.Value)
	}
	return b.String()
}
