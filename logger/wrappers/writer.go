// SPDX-FileCopyrightText: Copyright 2025 Krishna Iyer (www.krishnaiyer.tech)
// SPDX-License-Identifier: Apache-2.0

package wrappers

import (
	"fmt"
	"io"
	"sync"
)

// Writer writes each record as a line to an io.Writer.
// The writer is owned by the caller and is not closed.
type Writer struct {
	mu     sync.Mutex
	w      io.Writer
	closed bool
}

// NewWriter returns a new writer output.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Output implements Output.
func (w *Writer) Output(r Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	_, err := fmt.Fprintf(w.w, "%s: %s\n", r.Date, r.Message)
	return err
}

// Close implements Output.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	w.closed = true
	return nil
}
