package goglib

import (
	"testing"

	"github.com/rayblake800/goglib/gobject"
	"github.com/rayblake800/goglib/gobject/gobjecttest"
)

func TestObjectPtrFromOwned(t *testing.T) {
	rt := newRuntime(t)

	o := NewObject(rt, gobjecttest.TypeObject, nil)
	defer o.Release()

	ptr := NewObjectPtr(o)
	p := ptr.Pointer()
	if p == nil {
		t.Fatal("ObjectPtr of a live Owned is null")
	}
	if rt.RefCount(p) != 1 {
		t.Error("ObjectPtr of an Owned added a reference")
	}
	ptr.Release()
	ptr.Release()
	if !rt.Alive(p) || rt.RefCount(p) != 1 {
		t.Error("releasing the ObjectPtr of an Owned dropped a reference")
	}
}

func TestObjectPtrFromBorrowed(t *testing.T) {
	rt := newRuntime(t)

	p := rt.New(gobjecttest.TypeObject, nil)
	b := NewBorrowed(rt, gobjecttest.TypeObject, p)
	defer b.Release()

	ptr := NewObjectPtr(b)
	if ptr.Pointer() != p || rt.RefCount(p) != 2 {
		t.Fatalf("ObjectPtr of a Borrowed: ptr=%p refs=%d", ptr.Pointer(), rt.RefCount(p))
	}
	// The pointer stays valid for the scope even if the owner lets go.
	rt.Unref(p)
	if !rt.Alive(p) {
		t.Fatal("object finalized while an ObjectPtr held it")
	}
	ptr.Release()
	if rt.Alive(p) {
		t.Error("object alive after the ObjectPtr was released")
	}
}

func TestAdoptPtr(t *testing.T) {
	rt := newRuntime(t)

	p := rt.New(gobjecttest.TypeObject, nil)
	ptr := AdoptPtr(rt, p)
	ptr.Release()
	if rt.Alive(p) {
		t.Error("AdoptPtr did not release its reference")
	}

	null := AdoptPtr(rt, nil)
	if !null.IsNull() {
		t.Error("AdoptPtr(nil) is not null")
	}
	null.Release()
}

func TestWithObject(t *testing.T) {
	rt := newRuntime(t)

	o := NewObject(rt, gobjecttest.TypeObject, nil)
	defer o.Release()

	var got gobject.Pointer
	if !WithObject(o, func(p gobject.Pointer) { got = p }) {
		t.Fatal("WithObject did not run for a live object")
	}
	if !o.Holds(got) {
		t.Error("WithObject passed the wrong pointer")
	}
	if WithObject(NewOwned(rt, gobjecttest.TypeObject, nil), func(gobject.Pointer) {}) {
		t.Error("WithObject ran for a null handle")
	}
	if WithObject(nil, func(gobject.Pointer) {}) {
		t.Error("WithObject ran for nil")
	}
}
