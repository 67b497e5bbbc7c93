package gobject

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var logger atomic.Pointer[zap.Logger]

func init() {
	logger.Store(zap.NewNop())
}

// Logger returns the gobject package's logger instance.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	return logger.Load()
}

// SetLogger configures the gobject package's logger. GLib threads read it
// from signal and log callbacks, so it is swapped atomically. A nil l
// restores the no-op logger.
// This must be called before the native runtime is created.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger.Store(l)
}
