// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package interop

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler silently discards all log records.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// loggerPtr stores the active logger. Accessed atomically for thread safety.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	l := slog.New(nopHandler{})
	loggerPtr.Store(l)
}

// slogger returns the current package logger.
// All logging in interop and its backends goes through this function.
func slogger() *slog.Logger { return loggerPtr.Load() }

// SetLogger updates the interop logger. Pass nil to silence logging again.
// fieldview.SetLogger propagates here; most callers should use that instead.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the active logger for use by backend subpackages.
func Logger() *slog.Logger { return slogger() }
