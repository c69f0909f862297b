// SPDX-FileCopyrightText: Copyright 2025 Krishna Iyer (www.krishnaiyer.tech)
// SPDX-License-Identifier: Apache-2.0

package wrappers

import "sync/atomic"

// Callback calls a function with the formatted line of each record.
// The function is not serialised, and it may use the logger that calls it.
type Callback struct {
	fn     func(string)
	closed atomic.Bool
}

// NewCallback returns a new callback output.
func NewCallback(fn func(string)) *Callback {
	return &Callback{fn: fn}
}

// Output implements Output.
func (c *Callback) Output(r Record) error {
	if c.closed.Load() {
		return ErrClosed
	}
	c.fn(r.Line())
	return nil
}

// Close implements Output.
func (c *Callback) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	return nil
}
