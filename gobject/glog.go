//go:build !ios && !android && (amd64 || arm64)

package gobject

import (
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel is a GLogLevelFlags value.
type LogLevel uint32

// GLib log levels.
const (
	LogError    LogLevel = 1 << 2
	LogCritical LogLevel = 1 << 3
	LogWarning  LogLevel = 1 << 4
	LogMessage  LogLevel = 1 << 5
	LogInfo     LogLevel = 1 << 6
	LogDebug    LogLevel = 1 << 7

	logLevelMask LogLevel = ^LogLevel(3)
)

// String returns the level name GLib prints.
func (l LogLevel) String() string {
	switch {
	case l&LogError != 0:
		return "ERROR"
	case l&LogCritical != 0:
		return "CRITICAL"
	case l&LogWarning != 0:
		return "WARNING"
	case l&LogMessage != 0:
		return "Message"
	case l&LogInfo != 0:
		return "INFO"
	default:
		return "DEBUG"
	}
}

// zapLevel maps a GLib level to a zap level. Criticals usually report
// misuse of the object system, so they are logged as errors.
func (l LogLevel) zapLevel() zapcore.Level {
	switch {
	case l&(LogError|LogCritical) != 0:
		return zapcore.ErrorLevel
	case l&LogWarning != 0:
		return zapcore.WarnLevel
	case l&(LogMessage|LogInfo) != 0:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

// LogHandler receives one GLib log message.
type LogHandler func(domain string, level LogLevel, message string)

var (
	logHandlerMu  sync.Mutex
	logHandler    LogHandler
	logHandlerPtr uintptr
	prevHandler   uintptr

	gLogSetDefaultHandler func(handler, data uintptr) uintptr
)

// SetLogHandler routes messages GLib logs through g_log to h. Pass nil to
// restore GLib's own handler.
func SetLogHandler(h LogHandler) error {
	if err := load(); err != nil {
		return err
	}
	if gLogSetDefaultHandler == nil {
		return ErrNotLoaded
	}

	logHandlerMu.Lock()
	defer logHandlerMu.Unlock()

	if h == nil {
		if logHandler != nil {
			gLogSetDefaultHandler(prevHandler, 0)
		}
		logHandler = nil
		return nil
	}

	if logHandlerPtr == 0 {
		logHandlerPtr = purego.NewCallback(logTrampoline)
	}
	if logHandler == nil {
		prevHandler = gLogSetDefaultHandler(logHandlerPtr, 0)
	}
	logHandler = h
	return nil
}

// RouteLogs sends GLib's log messages to Logger().
func RouteLogs() error {
	return SetLogHandler(func(domain string, level LogLevel, message string) {
		if ce := Logger().Check(level.zapLevel(), message); ce != nil {
			ce.Write(zap.String("domain", domain), zap.Stringer("glibLevel", level&logLevelMask))
		}
	})
}

// logTrampoline matches GLogFunc:
// void (*)(const gchar *domain, GLogLevelFlags level, const gchar *message, gpointer data)
func logTrampoline(_ purego.CDecl, domain *byte, level uint32, message *byte, _ uintptr) {
	logHandlerMu.Lock()
	h := logHandler
	logHandlerMu.Unlock()

	if h == nil {
		return
	}
	h(goString(domain), LogLevel(level), goString(message))
}

// goString copies a NUL-terminated C string.
func goString(p *byte) string {
	if p == nil {
		return ""
	}
	n := 0
	for *(*byte)(unsafe.Add(unsafe.Pointer(p), n)) != 0 {
		n++
	}
	return string(unsafe.Slice(p, n))
}
