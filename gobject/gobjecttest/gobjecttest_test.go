package gobjecttest

import (
	"testing"

	"github.com/rayblake800/goglib/gobject"
)

func TestRefCounting(t *testing.T) {
	r := New()
	p := r.New(TypeObject, nil)
	if got := r.RefCount(p); got != 1 {
		t.Fatalf("RefCount = %d, want 1", got)
	}
	r.Ref(p)
	r.Unref(p)
	r.Unref(p)
	if r.Alive(p) {
		t.Error("object alive after last Unref")
	}
	r.Unref(p)
	if v := r.Violations(); len(v) != 1 {
		t.Errorf("Violations = %v, want one double free", v)
	}
}

func TestFloatingTypes(t *testing.T) {
	r := New()
	widget := r.RegisterType("Widget", TypeInitiallyUnowned)
	p := r.New(widget, nil)
	if !r.IsFloating(p) {
		t.Fatal("instance of GInitiallyUnowned subtype is not floating")
	}
	r.RefSink(p)
	if r.IsFloating(p) || r.RefCount(p) != 1 {
		t.Errorf("after RefSink: floating=%v refs=%d", r.IsFloating(p), r.RefCount(p))
	}
	if !r.IsA(p, TypeObject) || !r.IsA(p, TypeInitiallyUnowned) {
		t.Error("IsA does not follow the parent chain")
	}
	if r.IsA(p, r.RegisterType("Other", TypeObject)) {
		t.Error("IsA matched an unrelated type")
	}
	if got := r.TypeFromName("Widget"); got != widget {
		t.Errorf("TypeFromName = %d, want %d", got, widget)
	}
}

func TestWeakSlots(t *testing.T) {
	r := New()
	p := r.New(TypeObject, nil)
	slot := r.WeakInit(p)

	got := r.WeakGet(slot)
	if got != p {
		t.Fatalf("WeakGet = %p, want %p", got, p)
	}
	r.Unref(got)

	r.Destroy(p)
	if r.WeakGet(slot) != nil {
		t.Error("WeakGet returned a destroyed object")
	}
	r.WeakClear(slot)
	if r.LiveWeakSlots() != 0 {
		t.Error("slot still live after WeakClear")
	}
	r.WeakClear(slot)
	if len(r.Violations()) != 1 {
		t.Errorf("Violations = %v, want one double clear", r.Violations())
	}
}

func TestSignals(t *testing.T) {
	r := New()
	p := r.New(TypeObject, nil)

	var names []string
	id := r.Connect(p, "notify", func(source, arg gobject.Pointer, data uintptr) {
		names = append(names, r.ParamName(arg))
	}, 0)
	detailed := r.Connect(p, "notify::label", func(gobject.Pointer, gobject.Pointer, uintptr) {
		names = append(names, "detailed")
	}, 0)

	r.SetProperty(p, "label", "x")
	r.Notify(p, "other")
	want := []string{"label", "detailed", "other"}
	if len(names) != len(want) {
		t.Fatalf("handlers saw %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}

	r.Disconnect(p, id)
	r.Disconnect(p, detailed)
	if r.Handlers(p) != 0 || r.Disconnects(p) != 2 {
		t.Errorf("Handlers = %d, Disconnects = %d", r.Handlers(p), r.Disconnects(p))
	}
	r.Disconnect(p, id)
	if len(r.Violations()) != 1 {
		t.Errorf("Violations = %v, want one unknown handler", r.Violations())
	}
}

func TestFailConnect(t *testing.T) {
	r := New()
	p := r.New(TypeObject, nil)
	r.FailConnect("activate")
	if id := r.Connect(p, "activate", func(gobject.Pointer, gobject.Pointer, uintptr) {}, 0); id != 0 {
		t.Errorf("Connect = %d, want 0", id)
	}
}

func TestObjectProperties(t *testing.T) {
	r := New()
	child := r.New(TypeObject, nil)
	parent := r.New(TypeObject, map[string]any{"child": child})
	r.Unref(child)
	if !r.Alive(child) {
		t.Fatal("property value freed while still held")
	}

	v, ok := r.GetProperty(parent, "child")
	if !ok || v != child {
		t.Fatalf("GetProperty = %v, %v", v, ok)
	}
	r.Unref(child)

	r.Unref(parent)
	if r.Alive(child) {
		t.Error("property value outlived its holder")
	}
	if v := r.Violations(); len(v) != 0 {
		t.Errorf("Violations = %v", v)
	}
}
