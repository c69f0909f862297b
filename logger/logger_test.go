// SPDX-FileCopyrightText: Copyright 2025 Krishna Iyer (www.krishnaiyer.tech)
// SPDX-License-Identifier: Apache-2.0

package logger

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"krishnaiyer.tech/golang/hlog/logger/wrappers"
	"krishnaiyer.tech/golang/hlog/metrics"
)

type stubOutput struct {
	records  []wrappers.Record
	outErr   error
	closeErr error
	closes   int
}

func (s *stubOutput) Output(r wrappers.Record) error {
	s.records = append(s.records, r)
	return s.outErr
}

func (s *stubOutput) Close() error {
	s.closes++
	return s.closeErr
}

var fixedTime = time.Date(2024, time.March, 5, 7, 8, 9, 12_000_000, time.Local)

func fixedClock() time.Time {
	return fixedTime
}

func TestNewDefaults(t *testing.T) {
	ctx := context.Background()
	logger := New(ctx)
	t.Cleanup(func() {
		_ = logger.Shutdown(ctx)
	})
	if logger.Level() != defaultLevel {
		t.Fatalf("expected level %d, got %d", defaultLevel, logger.Level())
	}
	if !logger.initialized {
		t.Fatalf("expected logger to be initialized")
	}
	if len(logger.Handlers()) != 0 {
		t.Fatalf("expected no handlers, got %d", len(logger.Handlers()))
	}
	if len(logger.tags) != 0 {
		t.Fatalf("expected no tags, got %d", len(logger.tags))
	}
}

func TestWithLogLevel(t *testing.T) {
	for _, tt := range []struct {
		name  string
		level Level
		want  Level
	}{
		{name: "ValidNone", level: LevelNone, want: LevelNone},
		{name: "ValidDebug", level: LevelDebug, want: LevelDebug},
		{name: "ValidError", level: LevelError, want: LevelError},
		{name: "InvalidHigh", level: Level(99), want: defaultLevel},
	} {
		t.Run(tt.name, func(t *testing.T) {
			logger := New(context.Background(), WithLogLevel(tt.level))
			if logger.Level() != tt.want {
				t.Fatalf("expected level %d, got %d", tt.want, logger.Level())
			}
		})
	}
}

func TestInitChangesLevel(t *testing.T) {
	logger := &Logger{state: &state{level: defaultLevel}}
	logger.Init(LevelDebug)
	if logger.Level() != LevelDebug {
		t.Fatalf("expected level %s, got %s", LevelDebug, logger.Level())
	}
	logger.Init(LevelError)
	if logger.Level() != LevelError {
		t.Fatalf("expected level %s, got %s", LevelError, logger.Level())
	}
	logger.Init(Level(42))
	if logger.Level() != LevelError {
		t.Fatalf("expected undefined level to be ignored, got %s", logger.Level())
	}
}

func TestUninitializedLogger(t *testing.T) {
	logger := &Logger{state: &state{level: defaultLevel}}

	if _, err := logger.AddCallbackHandler(func(string) {}); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected %v, got %v", ErrNotInitialized, err)
	}
	path := t.TempDir() + "/never.log"
	if _, err := logger.AddFileHandler(path, false); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected %v, got %v", ErrNotInitialized, err)
	}
	// Logging before Init is a no-op.
	logger.Info("dropped")
}

func TestCallbackHandlerReceivesFormattedLine(t *testing.T) {
	ctx := context.Background()
	logger := New(ctx, WithLogLevel(LevelDebug), WithClock(fixedClock))
	var got []string
	h, err := logger.AddCallbackHandler(func(msg string) {
		got = append(got, msg)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Type() != TypeCallback {
		t.Fatalf("expected type %s, got %s", TypeCallback, h.Type())
	}

	logger.Info("Testing 1 2 3")
	logger.Debug("value %d of %s", 7, "x")

	want := []string{
		"2024-03-05 07:08:09,012: Testing 1 2 3",
		"2024-03-05 07:08:09,012: value 7 of x",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d messages, got %d: %q", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("message %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestWriterHandler(t *testing.T) {
	logger := New(context.Background(), WithClock(fixedClock))
	var buf bytes.Buffer
	if _, err := logger.AddWriterHandler(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	logger.Warn("disk at %d%%", 93)
	if want := "2024-03-05 07:08:09,012: disk at 93%\n"; buf.String() != want {
		t.Fatalf("expected %q, got %q", want, buf.String())
	}
}

func TestNilOutputs(t *testing.T) {
	logger := New(context.Background())
	if _, err := logger.AddCallbackHandler(nil); !errors.Is(err, ErrNilOutput) {
		t.Fatalf("expected %v, got %v", ErrNilOutput, err)
	}
	if _, err := logger.AddWriterHandler(nil); !errors.Is(err, ErrNilOutput) {
		t.Fatalf("expected %v, got %v", ErrNilOutput, err)
	}
	if _, err := logger.AddOutput(TypeCustom, nil); !errors.Is(err, ErrNilOutput) {
		t.Fatalf("expected %v, got %v", ErrNilOutput, err)
	}
	if err := logger.RemoveHandler(nil); !errors.Is(err, ErrNilOutput) {
		t.Fatalf("expected %v, got %v", ErrNilOutput, err)
	}
}

func TestLevelThreshold(t *testing.T) {
	for _, tt := range []struct {
		name      string
		threshold Level
		want      []Level
	}{
		{name: "None", threshold: LevelNone, want: []Level{LevelDebug, LevelInfo, LevelWarn, LevelError}},
		{name: "Debug", threshold: LevelDebug, want: []Level{LevelDebug, LevelInfo, LevelWarn, LevelError}},
		{name: "Info", threshold: LevelInfo, want: []Level{LevelInfo, LevelWarn, LevelError}},
		{name: "Warn", threshold: LevelWarn, want: []Level{LevelWarn, LevelError}},
		{name: "Error", threshold: LevelError, want: []Level{LevelError}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubOutput{}
			logger := New(context.Background(), WithLogLevel(tt.threshold), WithCustomOutput(stub))
			logger.Debug("d")
			logger.Info("i")
			logger.Warn("w")
			logger.Error("e")
			if len(stub.records) != len(tt.want) {
				t.Fatalf("expected %d records, got %d", len(tt.want), len(stub.records))
			}
			for i, level := range tt.want {
				if Level(stub.records[i].Level) != level {
					t.Fatalf("record %d: expected level %s, got %d", i, level, stub.records[i].Level)
				}
			}
		})
	}
}

func TestDispatchOrder(t *testing.T) {
	logger := New(context.Background())
	var order []string
	for _, name := range []string{"first", "second", "third"} {
		if _, err := logger.AddCallbackHandler(func(string) {
			order = append(order, name)
		}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	logger.Info("hello")
	if strings.Join(order, ",") != "first,second,third" {
		t.Fatalf("unexpected order: %v", order)
	}
}

func TestRemoveHandler(t *testing.T) {
	logger := New(context.Background())
	stub := &stubOutput{}
	h, err := logger.AddOutput(TypeCustom, stub)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	other := &stubOutput{}
	if _, err := logger.AddOutput(TypeCustom, other); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := logger.RemoveHandler(h); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stub.closes != 1 {
		t.Fatalf("expected output to be closed once, got %d", stub.closes)
	}
	if err := logger.RemoveHandler(h); !errors.Is(err, ErrHandlerClosed) {
		t.Fatalf("expected %v, got %v", ErrHandlerClosed, err)
	}
	if stub.closes != 1 {
		t.Fatalf("expected output to be closed once, got %d", stub.closes)
	}

	logger.Info("after remove")
	if len(stub.records) != 0 {
		t.Fatalf("removed handler received %d records", len(stub.records))
	}
	if len(other.records) != 1 {
		t.Fatalf("expected remaining handler to receive 1 record, got %d", len(other.records))
	}
}

func TestReset(t *testing.T) {
	closeErr := errors.New("close failed")
	ok := &stubOutput{}
	failing := &stubOutput{closeErr: closeErr}
	logger := New(context.Background(), WithCustomOutput(ok), WithCustomOutput(failing))

	err := logger.Reset()
	if !errors.Is(err, closeErr) {
		t.Fatalf("expected error %v, got %v", closeErr, err)
	}
	if ok.closes != 1 || failing.closes != 1 {
		t.Fatalf("expected every output to be closed once, got %d and %d", ok.closes, failing.closes)
	}
	if len(logger.Handlers()) != 0 {
		t.Fatalf("expected no handlers after reset, got %d", len(logger.Handlers()))
	}

	// The logger is still usable.
	if _, err := logger.AddCallbackHandler(func(string) {}); err != nil {
		t.Fatalf("unexpected error after reset: %v", err)
	}
	if err := logger.Reset(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestOutputErrorDoesNotStopDispatch(t *testing.T) {
	writeErr := errors.New("write failed")
	failing := &stubOutput{outErr: writeErr}
	ok := &stubOutput{}
	logger := New(context.Background(), WithCustomOutput(failing), WithCustomOutput(ok))

	logger.Info("hello")
	if len(ok.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(ok.records))
	}
	if err := logger.Err(); !errors.Is(err, writeErr) {
		t.Fatalf("expected error %v, got %v", writeErr, err)
	}
	if err := logger.Err(); err != nil {
		t.Fatalf("expected error to be cleared, got %v", err)
	}
}

func TestCallbackMayLog(t *testing.T) {
	logger := New(context.Background())
	var got []string
	var h *Handler
	h, err := logger.AddCallbackHandler(func(msg string) {
		got = append(got, msg)
		if len(got) == 1 {
			// Re-entrant use must not deadlock.
			_ = logger.RemoveHandler(h)
			logger.Info("nested")
		}
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	logger.Info("outer")
	if len(got) != 1 {
		t.Fatalf("expected 1 message, got %d: %q", len(got), got)
	}
}

func TestLoggerWithTag(t *testing.T) {
	stub := &stubOutput{}
	base := New(context.Background(), WithCustomOutput(stub))
	base = base.WithTag("existing", "tag")
	derived := base.WithTag("key", 42)

	if len(derived.tags) != 2 {
		t.Fatalf("expected two tags, got %d", len(derived.tags))
	}
	if len(base.tags) != 1 {
		t.Fatalf("base logger tags mutated: %d", len(base.tags))
	}
	if derived.state != base.state {
		t.Fatalf("expected state to be shared")
	}

	derived.Info("hello")
	if len(stub.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(stub.records))
	}
	r := stub.records[0]
	if r.Text != "hello" {
		t.Fatalf("unexpected text %q", r.Text)
	}
	if r.Message != "hello existing=tag key=42" {
		t.Fatalf("unexpected message %q", r.Message)
	}
}

func TestLoggerWithTags(t *testing.T) {
	base := New(context.Background()).WithTag("existing", "tag")
	derived, err := base.WithTags("key1", "value1", "key2", 123)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(derived.tags) != 3 {
		t.Fatalf("expected three tags, got %d", len(derived.tags))
	}
	if derived.tags[2].Key != "key2" || derived.tags[2].Value != 123 {
		t.Fatalf("unexpected tag pair: %+v", derived.tags[2])
	}
	if len(base.tags) != 1 {
		t.Fatalf("base logger tags mutated: %d", len(base.tags))
	}

	if _, err := base.WithTags("onlyKey"); err == nil {
		t.Fatalf("expected error for odd arg count")
	}
	if _, err := base.WithTags(100, "value"); err == nil {
		t.Fatalf("expected error for non-string key")
	}
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	failing := &stubOutput{outErr: errors.New("boom")}
	logger := New(context.Background(), WithMetrics(m), WithCustomOutput(failing))

	logger.Debug("below")
	logger.Info("one")
	logger.Info("two")

	if got := testutil.ToFloat64(m.Records().WithLabelValues("info")); got != 2 {
		t.Fatalf("expected 2 dispatched, got %v", got)
	}
	if got := testutil.ToFloat64(m.Drops().WithLabelValues("debug")); got != 1 {
		t.Fatalf("expected 1 dropped, got %v", got)
	}
	if got := testutil.ToFloat64(m.OutputErrors().WithLabelValues("custom")); got != 2 {
		t.Fatalf("expected 2 output errors, got %v", got)
	}
}

func TestLoggerShutdown(t *testing.T) {
	stub := &stubOutput{}
	ctx := context.Background()
	logger := New(ctx, WithCustomOutput(stub))
	if err := logger.Shutdown(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stub.closes != 1 {
		t.Fatalf("expected shutdown to close the output once, got %d", stub.closes)
	}
}

func TestParseLevel(t *testing.T) {
	for _, tt := range []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{in: "debug", want: LevelDebug},
		{in: "INFO", want: LevelInfo},
		{in: " warning ", want: LevelWarn},
		{in: "error", want: LevelError},
		{in: "none", want: LevelNone},
		{in: "verbose", wantErr: true},
	} {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownLevel) {
					t.Fatalf("expected %v, got %v", ErrUnknownLevel, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
			if again, _ := ParseLevel(got.String()); again != got {
				t.Fatalf("String of %s does not parse back", got)
			}
		})
	}
}

func TestLoggerShutdownCanceled(t *testing.T) {
	stub := &stubOutput{}
	logger := New(context.Background(), WithCustomOutput(stub))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := logger.Shutdown(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected %v, got %v", context.Canceled, err)
	}
	if stub.closes != 0 {
		t.Fatalf("expected output to stay open, got %d closes", stub.closes)
	}
	if len(logger.Handlers()) != 1 {
		t.Fatalf("expected handler to stay registered, got %d", len(logger.Handlers()))
	}
}

func TestFormatWithoutArgs(t *testing.T) {
	var got []string
	logger := New(context.Background(), WithClock(fixedClock))
	if _, err := logger.AddCallbackHandler(func(msg string) {
		got = append(got, msg)
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	logger.Info("100%% done")
	logger.Info("100%% of %d", 5)

	want := []string{
		"2024-03-05 07:08:09,012: 100% done",
		"2024-03-05 07:08:09,012: 100% of 5",
	}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestConcurrentUse(t *testing.T) {
	dir := t.TempDir()
	logger := New(context.Background(), WithLogLevel(LevelDebug))
	var buf syncBuffer
	if _, err := logger.AddWriterHandler(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := logger.AddRotatingHandler(filepath.Join(dir, "app.log"), 512, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var (
		wg       sync.WaitGroup
		received atomic.Int64
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tagged := logger.WithTag("worker", i)
			for j := 0; j < 50; j++ {
				h, err := logger.AddCallbackHandler(func(string) {
					received.Add(1)
				})
				if err != nil {
					t.Errorf("unexpected error: %v", err)
					return
				}
				tagged.Info("message %d", j)
				tagged.Debug("detail %d", j)
				if j%10 == 0 {
					logger.SetLevel(LevelDebug)
				}
				if err := logger.RemoveHandler(h); err != nil {
					t.Errorf("unexpected error: %v", err)
					return
				}
			}
		}(i)
	}
	wg.Wait()

	if err := logger.Err(); err != nil {
		t.Fatalf("unexpected output error: %v", err)
	}
	if received.Load() < 8*50 {
		t.Fatalf("expected every goroutine to see its own messages, got %d callbacks", received.Load())
	}
	if got := strings.Count(buf.String(), "\n"); got != 8*50*2 {
		t.Fatalf("expected %d lines, got %d", 8*50*2, got)
	}
	if len(logger.Handlers()) != 2 {
		t.Fatalf("expected the writer and rotating handlers to remain, got %d", len(logger.Handlers()))
	}
	if err := logger.Reset(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
