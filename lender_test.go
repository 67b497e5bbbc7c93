package goglib

import (
	"testing"

	"github.com/rayblake800/goglib/gobject/gobjecttest"
)

func TestLenderSharesHandles(t *testing.T) {
	rt := newRuntime(t)
	l := NewLender(rt, gobjecttest.TypeObject)
	defer l.InvalidateAll()

	p := rt.New(gobjecttest.TypeObject, nil)
	defer rt.Unref(p)

	a := l.Borrow(p)
	b := l.Borrow(p)
	if a != b {
		t.Fatal("Borrow returned distinct handles for one object")
	}
	if !l.Has(p) || l.Find(p) != a {
		t.Error("lent handle not found")
	}
	if rt.RefCount(p) != 1 {
		t.Error("Lender changed the reference count")
	}
	if len(l.All()) != 1 {
		t.Errorf("All = %d handles, want 1", len(l.All()))
	}
}

func TestLenderInvalidate(t *testing.T) {
	rt := newRuntime(t)
	l := NewLender(rt, gobjecttest.TypeObject)

	p := rt.New(gobjecttest.TypeObject, nil)
	q := rt.New(gobjecttest.TypeObject, nil)
	defer rt.Unref(p)
	defer rt.Unref(q)

	a := l.Borrow(p)
	b := l.Borrow(q)
	l.Invalidate(p)
	if !a.IsNull() || l.Has(p) {
		t.Error("Invalidate left the handle usable")
	}
	if b.IsNull() {
		t.Error("Invalidate reached another object")
	}
	if c := l.Borrow(p); c == a || c.IsNull() {
		t.Error("Borrow after Invalidate returned the old handle")
	}

	l.InvalidateAll()
	if !b.IsNull() || len(l.All()) != 0 {
		t.Error("InvalidateAll left handles usable")
	}
	if rt.LiveWeakSlots() != 0 {
		t.Errorf("live weak slots = %d, want 0", rt.LiveWeakSlots())
	}
}

func TestLenderDropsFinalizedObjects(t *testing.T) {
	rt := newRuntime(t)
	l := NewLender(rt, gobjecttest.TypeObject)
	defer l.InvalidateAll()

	p := rt.New(gobjecttest.TypeObject, nil)
	b := l.Borrow(p)
	rt.Unref(p)

	if !b.IsNull() {
		t.Error("handle of a finalized object is not null")
	}
	if l.Has(p) || len(l.All()) != 0 {
		t.Error("Lender still lists a finalized object")
	}
}

func TestLenderRejectsInvalidPointers(t *testing.T) {
	rt := newRuntime(t)
	label := rt.RegisterType("Label", gobjecttest.TypeObject)
	l := NewLender(rt, label)
	defer l.InvalidateAll()

	p := rt.New(gobjecttest.TypeObject, nil)
	defer rt.Unref(p)

	if b := l.Borrow(p); !b.IsNull() {
		t.Error("borrowed an object of the wrong type")
	}
	if b := l.Borrow(nil); !b.IsNull() {
		t.Error("Borrow(nil) is not null")
	}
	if l.Has(p) || l.Find(nil) != nil {
		t.Error("invalid pointers were recorded")
	}
}
