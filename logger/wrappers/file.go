// SPDX-FileCopyrightText: Copyright 2025 Krishna Iyer (www.krishnaiyer.tech)
// SPDX-License-Identifier: Apache-2.0

package wrappers

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// File writes records to a file that it owns.
type File struct {
	mu   sync.Mutex
	file *os.File
}

// NewFile opens the file at path. If appendMode is false, an existing file is truncated.
// Missing parent directories are created.
func NewFile(path string, appendMode bool) (*File, error) {
	f, err := openLogFile(path, appendMode)
	if err != nil {
		return nil, err
	}
	return &File{file: f}, nil
}

func openLogFile(path string, appendMode bool) (*os.File, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("could not create log directory %s: %w", dir, err)
	}
	flags := os.O_CREATE | os.O_WRONLY
	if appendMode {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0o640)
	if err != nil {
		return nil, fmt.Errorf("could not open log file %s: %w", path, err)
	}
	return f, nil
}

// Output implements Output.
func (f *File) Output(r Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.file == nil {
		return ErrClosed
	}
	_, err := fmt.Fprintf(f.file, "%s: %s\n", r.Date, r.Message)
	return err
}

// Close implements Output.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.file == nil {
		return ErrClosed
	}
	err := f.file.Close()
	f.file = nil
	return err
}
