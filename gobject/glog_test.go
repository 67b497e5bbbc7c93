//go:build !ios && !android && (amd64 || arm64)

package gobject

import (
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level LogLevel
		want  string
		zap   zapcore.Level
	}{
		{LogError, "ERROR", zapcore.ErrorLevel},
		{LogCritical | 1, "CRITICAL", zapcore.ErrorLevel},
		{LogWarning, "WARNING", zapcore.WarnLevel},
		{LogMessage, "Message", zapcore.InfoLevel},
		{LogInfo, "INFO", zapcore.InfoLevel},
		{LogDebug, "DEBUG", zapcore.DebugLevel},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.level, got, tt.want)
		}
		if got := tt.level.zapLevel(); got != tt.zap {
			t.Errorf("%d.zapLevel() = %v, want %v", tt.level, got, tt.zap)
		}
	}
}

func TestSetLogHandler(t *testing.T) {
	newNative(t)

	var got []string
	err := SetLogHandler(func(domain string, level LogLevel, message string) {
		if level&LogCritical != 0 {
			got = append(got, domain+": "+message)
		}
	})
	if err != nil {
		t.Fatalf("SetLogHandler: %v", err)
	}
	defer SetLogHandler(nil)

	// g_object_unref(NULL) fails its precondition check with a critical.
	gObjectUnref(nil)
	if len(got) != 1 {
		t.Fatalf("handler received %d criticals, want 1", len(got))
	}
	if !strings.Contains(got[0], "g_object_unref") {
		t.Errorf("message = %q", got[0])
	}
}
