// SPDX-FileCopyrightText: Copyright 2025 Krishna Iyer (www.krishnaiyer.tech)
// SPDX-License-Identifier: Apache-2.0

package logger

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"

	"krishnaiyer.tech/golang/hlog/logger/wrappers"
)

// Type is the type of a handler's output.
type Type uint

const (
	TypeCustom Type = iota
	TypeCallback
	TypeWriter
	TypeFile
	TypeRotating
	TypeSLog
	TypeZerolog
)

func (t Type) String() string {
	switch t {
	case TypeCustom:
		return "custom"
	case TypeCallback:
		return "callback"
	case TypeWriter:
		return "writer"
	case TypeFile:
		return "file"
	case TypeRotating:
		return "rotating"
	case TypeSLog:
		return "slog"
	case TypeZerolog:
		return "zerolog"
	default:
		return fmt.Sprintf("type(%d)", uint(t))
	}
}

// Handler is a registered output. It is returned by the Add*Handler functions
// and can be passed to RemoveHandler.
type Handler struct {
	id     uuid.UUID
	typ    Type
	out    wrappers.Output
	closed atomic.Bool
}

func newHandler(typ Type, out wrappers.Output) *Handler {
	return &Handler{
		id:  uuid.New(),
		typ: typ,
		out: out,
	}
}

// ID returns the unique ID of the handler.
func (h *Handler) ID() uuid.UUID {
	return h.id
}

// Type returns the type of the handler.
func (h *Handler) Type() Type {
	return h.typ
}

func (h *Handler) String() string {
	return fmt.Sprintf("%s handler %s", h.typ, h.id)
}

// close closes the output once. Later calls return ErrHandlerClosed.
func (h *Handler) close() error {
	if !h.closed.CompareAndSwap(false, true) {
		return ErrHandlerClosed
	}
	if err := h.out.Close(); err != nil {
		return fmt.Errorf("could not close %s: %w", h, err)
	}
	return nil
}
