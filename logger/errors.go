// SPDX-FileCopyrightText: Copyright 2025 Krishna Iyer (www.krishnaiyer.tech)
// SPDX-License-Identifier: Apache-2.0

package logger

import "errors"

var (
	// ErrNotInitialized is returned when adding handlers to a logger before Init.
	ErrNotInitialized = errors.New("logger not initialized")
	// ErrNilOutput is returned when adding a handler without a callback, writer or output.
	ErrNilOutput = errors.New("nil output")
	// ErrHandlerClosed is returned when removing a handler that was already removed.
	ErrHandlerClosed = errors.New("handler already closed")
	// ErrUnknownLevel is returned when parsing an unknown level name.
	ErrUnknownLevel = errors.New("unknown level")
)
