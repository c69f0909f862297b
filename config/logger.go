// SPDX-FileCopyrightText: Copyright 2025 Krishna Iyer (www.krishnaiyer.tech)
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/docker/go-units"
	"github.com/rs/zerolog"

	"krishnaiyer.tech/golang/hlog/logger"
)

// FileConfig configures a plain file handler.
type FileConfig struct {
	Path   string `name:"path" description:"log to this file" yaml:"path"`
	Append bool   `name:"append" description:"append to the file instead of truncating it" yaml:"append"`
}

// RotateConfig configures a rotating file handler.
type RotateConfig struct {
	Path    string `name:"path" description:"log to this file and rotate it" yaml:"path"`
	MaxSize string `name:"max-size" description:"rotate once the file exceeds this size, for example 10MB" yaml:"max-size"`
	Count   int    `name:"count" description:"number of rotated files to keep" yaml:"count"`
}

// Config is the logger configuration.
type Config struct {
	Level    string            `name:"level" short:"l" description:"minimum level: none, debug, info, warn or error" yaml:"level"`
	Message  string            `name:"message" short:"m" description:"message to log" yaml:"message"`
	Callback bool              `name:"callback" description:"print records through a callback handler" yaml:"callback"`
	Stderr   bool              `name:"stderr" description:"write records to stderr" yaml:"stderr"`
	SLog     bool              `name:"slog" description:"forward records to a JSON slog logger on stderr" yaml:"slog"`
	Zerolog  bool              `name:"zerolog" description:"forward records to a zerolog logger on stderr" yaml:"zerolog"`
	Metrics  bool              `name:"metrics" description:"print record counters on exit" yaml:"metrics"`
	File     FileConfig        `name:"file" yaml:"file"`
	Rotate   RotateConfig      `name:"rotate" yaml:"rotate"`
	Tags     map[string]string `name:"tags" description:"tags added to every record, as key=value" yaml:"tags"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Level:    "debug",
		Message:  "Testing 1 2 3",
		Callback: true,
		Rotate: RotateConfig{
			MaxSize: "10MB",
			Count:   5,
		},
	}
}

// ParsedLevel returns the configured level.
func (c Config) ParsedLevel() (logger.Level, error) {
	return logger.ParseLevel(c.Level)
}

// MaxSizeBytes returns the rotation size in bytes. An empty size means no rotation.
func (c RotateConfig) MaxSizeBytes() (int64, error) {
	if c.MaxSize == "" {
		return 0, nil
	}
	size, err := units.RAMInBytes(c.MaxSize)
	if err != nil {
		return 0, fmt.Errorf("invalid rotate.max-size %q: %w", c.MaxSize, err)
	}
	return size, nil
}

// Apply initializes l with the configured level, adds the configured handlers and returns l with the configured tags.
// Callback handlers are left to the caller. If a handler cannot be added, the handlers already added are removed.
func (c Config) Apply(l *logger.Logger, stderr io.Writer) (*logger.Logger, error) {
	level, err := c.ParsedLevel()
	if err != nil {
		return nil, err
	}
	maxSize, err := c.Rotate.MaxSizeBytes()
	if err != nil {
		return nil, err
	}
	l.Init(level)

	var added []*logger.Handler
	add := func(h *logger.Handler, err error) error {
		if err != nil {
			for _, h := range added {
				err = errors.Join(err, l.RemoveHandler(h))
			}
			return err
		}
		added = append(added, h)
		return nil
	}

	if c.Stderr {
		if err := add(l.AddWriterHandler(stderr)); err != nil {
			return nil, err
		}
	}
	if c.SLog {
		sl := slog.New(slog.NewJSONHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		if err := add(l.AddSLogHandler(sl)); err != nil {
			return nil, err
		}
	}
	if c.Zerolog {
		zl := zerolog.New(stderr).With().Timestamp().Logger()
		if err := add(l.AddZerologHandler(zl)); err != nil {
			return nil, err
		}
	}
	if c.File.Path != "" {
		if err := add(l.AddFileHandler(c.File.Path, c.File.Append)); err != nil {
			return nil, err
		}
	}
	if c.Rotate.Path != "" {
		if err := add(l.AddRotatingHandler(c.Rotate.Path, maxSize, c.Rotate.Count)); err != nil {
			return nil, err
		}
	}

	if len(c.Tags) == 0 {
		return l, nil
	}
	keys := make([]string, 0, len(c.Tags))
	for k := range c.Tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	tagged := l
	for _, k := range keys {
		tagged = tagged.WithTag(k, c.Tags[k])
	}
	return tagged, nil
}
