// SPDX-FileCopyrightText: Copyright 2025 Krishna Iyer (www.krishnaiyer.tech)
// SPDX-License-Identifier: Apache-2.0

package wrappers

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
)

// Rotating writes records to a file and rotates it once it grows beyond maxSize bytes.
// On rotation, path.N is renamed to path.N+1 (up to count), path becomes path.1 and a new path is started.
type Rotating struct {
	mu      sync.Mutex
	path    string
	maxSize int64
	count   int
	size    int64
	file    *os.File
	closed  bool
}

// NewRotating opens path in append mode. The size of an existing file counts towards maxSize.
// A maxSize of 0 disables rotation. A count of 0 keeps no backups.
func NewRotating(path string, maxSize int64, count int) (*Rotating, error) {
	if maxSize < 0 || count < 0 {
		return nil, fmt.Errorf("invalid rotation settings: size %d, count %d", maxSize, count)
	}
	f, err := openLogFile(path, true)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("could not stat log file %s: %w", path, err)
	}
	return &Rotating{
		path:    path,
		maxSize: maxSize,
		count:   count,
		size:    info.Size(),
		file:    f,
	}, nil
}

// Size returns the number of bytes in the current file.
func (r *Rotating) Size() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.size
}

// Output implements Output.
func (r *Rotating) Output(rec Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	if r.file == nil {
		// A previous rotation failed part way, start again from whatever is at path.
		if err := r.reopen(); err != nil {
			return err
		}
	}
	n, err := fmt.Fprintf(r.file, "%s: %s\n", rec.Date, rec.Message)
	r.size += int64(n)
	if err != nil {
		return err
	}
	if r.maxSize > 0 && r.size > r.maxSize {
		return r.rotate()
	}
	return nil
}

func (r *Rotating) rotate() error {
	if err := r.file.Close(); err != nil {
		r.file = nil
		return fmt.Errorf("could not close log file %s: %w", r.path, err)
	}
	r.file = nil

	if err := removeIfExists(r.backup(r.count)); err != nil {
		return err
	}
	for i := r.count - 1; i > 0; i-- {
		if err := renameIfExists(r.backup(i), r.backup(i+1)); err != nil {
			return err
		}
	}
	if r.count > 0 {
		if err := renameIfExists(r.path, r.backup(1)); err != nil {
			return err
		}
	}

	f, err := openLogFile(r.path, false)
	if err != nil {
		return err
	}
	r.file = f
	r.size = 0
	return nil
}

func (r *Rotating) reopen() error {
	f, err := openLogFile(r.path, true)
	if err != nil {
		return err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("could not stat log file %s: %w", r.path, err)
	}
	r.file, r.size = f, info.Size()
	return nil
}

func (r *Rotating) backup(i int) string {
	if i <= 0 {
		return r.path
	}
	return fmt.Sprintf("%s.%d", r.path, i)
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("could not remove %s: %w", path, err)
	}
	return nil
}

func renameIfExists(from, to string) error {
	if err := os.Rename(from, to); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("could not rename %s to %s: %w", from, to, err)
	}
	return nil
}

// Close implements Output.
func (r *Rotating) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	r.closed = true
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}
