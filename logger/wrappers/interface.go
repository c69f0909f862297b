// SPDX-FileCopyrightText: Copyright 2025 Krishna Iyer (www.krishnaiyer.tech)
// SPDX-License-Identifier: Apache-2.0

// Package wrappers provides the outputs a logger dispatches records to.
package wrappers

import (
	"errors"
	"time"
)

// ErrClosed is returned when writing to or closing an output that is already closed.
var ErrClosed = errors.New("output closed")

// Level mirrors the logger level so that outputs can map it onto their own.
type Level uint

const (
	LevelNone  Level = 0
	LevelDebug Level = 1
	LevelInfo  Level = 2
	LevelWarn  Level = 3
	LevelError Level = 4
)

// Tag is a key value pair attached to a record.
type Tag struct {
	Key   string
	Value any
}

// Record is a single formatted log record.
type Record struct {
	Time  time.Time
	Date  string
	Level Level
	// Text is the formatted message.
	Text string
	// Message is Text with the tags appended as key=value.
	Message string
	Tags    []Tag
}

// Line returns the record as "<date>: <message>".
func (r Record) Line() string {
	return r.Date + ": " + r.Message
}

// Output receives records from the logger.
type Output interface {
	Output(Record) error
	Close() error
}
