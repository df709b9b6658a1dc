package mockup

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// The Enabled method returns false so the caller skips message formatting
// entirely, making disabled logging effectively zero-cost.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	l := newNopLogger()
	loggerPtr.Store(l)
}

// SetLogger configures the logger for mockup and all its sub-packages.
// By default, mockup produces no log output. Call SetLogger to enable logging.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by mockup:
//   - [slog.LevelDebug]: per-render diagnostics (skipped areas, cache hits)
//   - [slog.LevelInfo]: lifecycle events (backend selected)
//   - [slog.LevelWarn]: non-fatal issues (CPU fallback, asset load failures)
//
// Example:
//
//	mockup.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)

	// Propagate to the registered GPU renderer if it supports logging.
	gpuMu.RLock()
	r := gpuLoggerSink
	gpuMu.RUnlock()
	if r != nil {
		propagateLogger(r, l)
	}
}

// Logger returns the current logger used by mockup.
// Sub-packages (editor, psd, preview) call this to share the same
// logger configuration.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// loggerSetter is implemented by renderers that accept a logger.
type loggerSetter interface {
	SetLogger(*slog.Logger)
}

// propagateLogger passes the logger to a renderer if it implements
// the loggerSetter interface.
func propagateLogger(r any, l *slog.Logger) {
	if ls, ok := r.(loggerSetter); ok {
		ls.SetLogger(l)
	}
}
