package gobject

import (
	"math"
	"testing"
)

func TestAsInt64(t *testing.T) {
	tests := []struct {
		in   any
		want int64
		ok   bool
	}{
		{int(-3), -3, true},
		{int8(math.MinInt8), math.MinInt8, true},
		{uint32(math.MaxUint32), math.MaxUint32, true},
		{uint64(math.MaxInt64), math.MaxInt64, true},
		{uint64(math.MaxInt64) + 1, 0, false},
		{1.5, 0, false},
		{"1", 0, false},
		{nil, 0, false},
	}
	for _, tt := range tests {
		got, ok := AsInt64(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("AsInt64(%#v) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestAsFloat64(t *testing.T) {
	if f, ok := AsFloat64(float32(0.5)); !ok || f != 0.5 {
		t.Errorf("AsFloat64(float32) = %v, %v", f, ok)
	}
	if f, ok := AsFloat64(7); !ok || f != 7 {
		t.Errorf("AsFloat64(int) = %v, %v", f, ok)
	}
	if _, ok := AsFloat64(true); ok {
		t.Error("AsFloat64(bool) succeeded")
	}
}

func TestNotifySignal(t *testing.T) {
	if got := NotifySignal("label"); got != "notify::label" {
		t.Errorf("NotifySignal = %q", got)
	}
}
