//go:build !ios && !android && (amd64 || arm64)

package goglib

import (
	"context"
	"testing"
	"time"

	"github.com/rayblake800/goglib/gobject"
)

func nativeRuntime(t *testing.T) *gobject.Native {
	t.Helper()
	rt, err := gobject.NewNative()
	if err != nil {
		t.Skipf("GLib not available: %v", err)
	}
	return rt
}

func TestNativeOwnedClaimsFloatingObject(t *testing.T) {
	rt := nativeRuntime(t)
	typ, err := rt.TypeFromSymbol("g_initially_unowned_get_type")
	if err != nil {
		t.Fatalf("TypeFromSymbol: %v", err)
	}

	p := rt.New(typ, nil)
	w := WeakRefTo(rt, p)
	defer w.Clear()

	o := NewOwned(rt, typ, p)
	if rt.IsFloating(p) || rt.RefCount(p) != 1 {
		t.Fatalf("after claim: floating=%v refs=%d", rt.IsFloating(p), rt.RefCount(p))
	}
	c := o.Clone()
	if rt.RefCount(p) != 2 {
		t.Errorf("RefCount after Clone = %d, want 2", rt.RefCount(p))
	}
	c.Release()
	if rt.RefCount(p) != 1 {
		t.Errorf("RefCount after releasing the copy = %d, want 1", rt.RefCount(p))
	}
	o.Release()
	if w.Object() != nil {
		t.Error("object alive after releasing the original")
	}
}

func TestNativeSignalHandler(t *testing.T) {
	rt := nativeRuntime(t)
	if !rt.HasGIO() {
		t.Skip("libgio-2.0 not available")
	}
	typ, err := rt.TypeFromSymbol("g_simple_action_get_type")
	if err != nil {
		t.Fatalf("TypeFromSymbol: %v", err)
	}

	mc := NewMainContext()
	defer mc.Close()
	r := &recorder{properties: []string{"enabled"}}
	r.h = NewSignalHandler(r, WithDispatcher(mc))

	action := NewObject(rt, typ, map[string]any{"name": "test", "enabled": true})
	if action.IsNull() {
		t.Fatal("could not create a GSimpleAction")
	}
	r.h.ConnectAllSignals(action)
	if r.h.SignalCount(action) != 1 {
		t.Fatalf("SignalCount = %d, want 1", r.h.SignalCount(action))
	}

	SetProperty(action, "enabled", false)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := mc.Call(ctx, func() {}); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if got := r.Changes(); len(got) != 1 || got[0] != "enabled" {
		t.Errorf("changes = %v, want [enabled]", got)
	}
	if v, ok := Property[bool](action, "enabled"); !ok || v {
		t.Errorf("enabled = %v, %v", v, ok)
	}

	r.h.Close()
	SetProperty(action, "enabled", true)
	if err := mc.Call(ctx, func() {}); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if got := r.Changes(); len(got) != 1 {
		t.Errorf("receiver called after Close: %v", got)
	}
	action.Release()
}
