package fieldview

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/fieldview/interop"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for fieldview and its sub-packages.
// By default no log output is produced. Pass nil to restore silence.
//
// Levels used:
//   - [slog.LevelDebug]: per-allocation diagnostics, backend selection
//   - [slog.LevelInfo]: lifecycle events (viewer opened, backend chosen)
//   - [slog.LevelWarn]: non-fatal issues (release errors, dropped frames)
//
// SetLogger is safe for concurrent use.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
	interop.SetLogger(l)
}

// Logger returns the current logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
