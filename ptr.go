package goglib

import (
	"github.com/rayblake800/goglib/gobject"
)

// ObjectPtr exposes a raw object pointer for the length of one scope, for
// passing to runtime calls. It releases whatever reference it took when
// Release is called. Do not store an ObjectPtr or its pointer.
//
//	ptr := goglib.NewObjectPtr(obj)
//	defer ptr.Release()
//	if !ptr.IsNull() {
//		rt.SetProperty(ptr.Pointer(), "enabled", true)
//	}
type ObjectPtr struct {
	rt   gobject.Runtime
	ptr  gobject.Pointer
	owns bool
}

// NewObjectPtr returns the pointer held by o. The pointer of an Owned is used
// as is since o keeps it alive; a Borrowed is resolved to a new reference.
func NewObjectPtr(o Object) *ObjectPtr {
	if o == nil {
		return &ObjectPtr{}
	}
	p, release := o.acquire()
	return &ObjectPtr{rt: o.Runtime(), ptr: p, owns: release && p != nil}
}

// AdoptPtr returns an ObjectPtr that takes over the caller's reference to p.
func AdoptPtr(rt gobject.Runtime, p gobject.Pointer) *ObjectPtr {
	return &ObjectPtr{rt: rt, ptr: p, owns: p != nil}
}

// Pointer returns the raw pointer, or nil.
func (p *ObjectPtr) Pointer() gobject.Pointer {
	return p.ptr
}

// IsNull reports whether there is no pointer.
func (p *ObjectPtr) IsNull() bool {
	return p.ptr == nil
}

// Release drops the reference p took, if any, and makes p null.
func (p *ObjectPtr) Release() {
	if p.owns {
		p.rt.Unref(p.ptr)
	}
	p.ptr = nil
	p.owns = false
}

// WithObject calls fn with o's pointer if o refers to a live object and
// reports whether fn ran.
func WithObject(o Object, fn func(p gobject.Pointer)) bool {
	ptr := NewObjectPtr(o)
	defer ptr.Release()
	if ptr.IsNull() {
		return false
	}
	fn(ptr.Pointer())
	return true
}
