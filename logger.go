package goglib

import (
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/rayblake800/goglib/gobject"
)

var logger atomic.Pointer[zap.Logger]

func init() {
	logger.Store(zap.NewNop())
}

// Logger returns the logger used for goglib diagnostics.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	return logger.Load()
}

// SetLogger configures the goglib logger. Diagnostics are written at debug
// level and never change behavior. A nil l restores the no-op logger.
// This must be called before any handles are created.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger.Store(l)
}

func objectField(p gobject.Pointer) zap.Field {
	return zap.Uintptr("object", uintptr(p))
}
