package goglib

import (
	"github.com/rayblake800/goglib/gobject"
)

// Borrowed refers to an object whose lifetime belongs to someone else. It
// holds no reference; every read goes through a weak reference, so a Borrowed
// whose object was finalized simply becomes null.
type Borrowed struct {
	object
	weak *WeakRef
}

// NewBorrowed returns a handle observing p. A p of the wrong type leaves the
// handle null.
func NewBorrowed(rt gobject.Runtime, t gobject.Type, p gobject.Pointer) *Borrowed {
	b := &Borrowed{
		object: object{rt: rt, typ: t},
		weak:   NewWeakRef(rt),
	}
	b.Set(p)
	return b
}

// Set observes p instead of the current object. A p of the wrong type is
// ignored.
func (b *Borrowed) Set(p gobject.Pointer) {
	if !b.checkType("borrow", p) {
		return
	}
	b.weak.Set(p)
}

// Invalidate makes b null without releasing its weak slot.
func (b *Borrowed) Invalidate() {
	b.weak.Set(nil)
}

// Release frees b's weak slot. b stays null afterwards.
func (b *Borrowed) Release() {
	b.weak.Clear()
}

// IsOwned always reports false.
func (b *Borrowed) IsOwned() bool {
	return false
}

// IsNull reports whether b's object is unset or already finalized.
func (b *Borrowed) IsNull() bool {
	ptr := b.weak.resolve()
	defer ptr.Release()
	return ptr.IsNull()
}

// RefCount returns the object's reference count, or 0 if it is gone.
func (b *Borrowed) RefCount() int {
	ptr := b.weak.resolve()
	defer ptr.Release()
	if ptr.IsNull() {
		return 0
	}
	// Minus the reference resolve just took.
	return b.rt.RefCount(ptr.Pointer()) - 1
}

// Equal reports whether b and other refer to the same live object.
func (b *Borrowed) Equal(other Object) bool {
	return sameObject(b, other)
}

// Holds reports whether b refers to the live object p.
func (b *Borrowed) Holds(p gobject.Pointer) bool {
	return b.weak.Holds(p)
}

func (b *Borrowed) acquire() (gobject.Pointer, bool) {
	return b.weak.Object(), true
}
