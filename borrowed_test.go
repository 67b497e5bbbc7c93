package goglib

import (
	"testing"

	"github.com/rayblake800/goglib/gobject"
	"github.com/rayblake800/goglib/gobject/gobjecttest"
)

func TestBorrowedDoesNotKeepAlive(t *testing.T) {
	rt := newRuntime(t)

	p := rt.New(gobjecttest.TypeObject, nil)
	b := NewBorrowed(rt, gobjecttest.TypeObject, p)
	defer b.Release()

	if b.IsOwned() || b.IsNull() {
		t.Fatalf("IsOwned=%v IsNull=%v", b.IsOwned(), b.IsNull())
	}
	if got := b.RefCount(); got != 1 {
		t.Errorf("RefCount = %d, want 1", got)
	}
	if rt.RefCount(p) != 1 {
		t.Error("Borrowed changed the reference count")
	}

	rt.Unref(p)
	if rt.Alive(p) {
		t.Fatal("Borrowed kept the object alive")
	}
	if !b.IsNull() || b.RefCount() != 0 {
		t.Error("Borrowed of a finalized object is not null")
	}
	if WithObject(b, func(gobject.Pointer) { t.Error("WithObject ran for a finalized object") }) {
		t.Error("WithObject reported success")
	}
}

func TestBorrowedTypeCheck(t *testing.T) {
	rt := newRuntime(t)
	label := rt.RegisterType("Label", gobjecttest.TypeObject)

	p := rt.New(gobjecttest.TypeObject, nil)
	defer rt.Unref(p)
	b := NewBorrowed(rt, label, p)
	defer b.Release()
	if !b.IsNull() {
		t.Error("Borrowed accepted an object of the wrong type")
	}
}

func TestBorrowedInvalidate(t *testing.T) {
	rt := newRuntime(t)

	p := rt.New(gobjecttest.TypeObject, nil)
	defer rt.Unref(p)
	b := NewBorrowed(rt, gobjecttest.TypeObject, p)
	b.Invalidate()
	if !b.IsNull() {
		t.Error("Invalidate did not make the handle null")
	}
	b.Set(p)
	if !b.Holds(p) {
		t.Error("Set after Invalidate did not take")
	}
	b.Release()
	b.Release()
	if !b.IsNull() {
		t.Error("released Borrowed is not null")
	}
}

func TestBorrowedEqualsOwned(t *testing.T) {
	rt := newRuntime(t)

	o := NewObject(rt, gobjecttest.TypeObject, nil)
	p := NewObjectPtr(o).Pointer()
	b := NewBorrowed(rt, gobjecttest.TypeObject, p)
	defer b.Release()

	if !b.Equal(o) || !o.Equal(b) {
		t.Error("Borrowed and Owned of the same object are not equal")
	}
	o.Release()
	if b.Equal(o) {
		t.Error("handles compare equal after the object was finalized")
	}
}
