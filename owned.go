package goglib

import (
	"runtime"
	"sync"

	"github.com/rayblake800/goglib/gobject"
)

// Owned holds exactly one reference to a foreign object and releases it in
// Release. Copies made with Clone or Assign hold their own reference; Move
// transfers it.
//
// An Owned that becomes unreachable without Release drops its reference from
// a runtime cleanup, but callers should not rely on the garbage collector for
// timely release.
type Owned struct {
	object
	state *ownedState
}

type ownedState struct {
	mu  sync.Mutex
	rt  gobject.Runtime
	ptr gobject.Pointer
}

// take clears the held pointer and returns it.
func (s *ownedState) take() gobject.Pointer {
	s.mu.Lock()
	p := s.ptr
	s.ptr = nil
	s.mu.Unlock()
	return p
}

func (s *ownedState) release() {
	if p := s.take(); p != nil {
		s.rt.Unref(p)
	}
}

func newOwned(rt gobject.Runtime, t gobject.Type) *Owned {
	o := &Owned{
		object: object{rt: rt, typ: t},
		state:  &ownedState{rt: rt},
	}
	runtime.AddCleanup(o, (*ownedState).release, o.state)
	return o
}

// NewOwned returns a handle that claims p. A floating reference is sunk,
// otherwise a new reference is added, so the caller keeps its own.
// A p of the wrong type leaves the handle null.
func NewOwned(rt gobject.Runtime, t gobject.Type, p gobject.Pointer) *Owned {
	o := newOwned(rt, t)
	o.Set(p)
	return o
}

// AdoptOwned returns a handle that takes over the caller's reference to p
// instead of adding one. If p has the wrong type the reference is dropped.
func AdoptOwned(rt gobject.Runtime, t gobject.Type, p gobject.Pointer) *Owned {
	return adoptOwned(rt, t, p, true)
}

// adoptOwned takes over one reference to p. With sink, a floating p is
// sunk, which turns its floating reference into the adopted one. Without
// sink the adopted reference is a separate full one and p stays floating.
func adoptOwned(rt gobject.Runtime, t gobject.Type, p gobject.Pointer, sink bool) *Owned {
	o := newOwned(rt, t)
	if p == nil {
		return o
	}
	if !o.checkType("adopt", p) {
		rt.Unref(p)
		return o
	}
	if sink && rt.IsFloating(p) {
		rt.RefSink(p)
	}
	o.state.ptr = p
	return o
}

// NewObject constructs a new object of type t and claims it.
func NewObject(rt gobject.Runtime, t gobject.Type, props map[string]any) *Owned {
	return AdoptOwned(rt, t, rt.New(t, props))
}

// Set replaces the held object with p.
//
// A nil p releases the current reference. A p of the wrong type is ignored.
// Setting the object already held does nothing. Otherwise p is claimed the
// way NewOwned claims it and the old reference is released.
func (o *Owned) Set(p gobject.Pointer) {
	if p == nil {
		o.state.release()
		return
	}
	if !o.checkType("set", p) {
		return
	}
	s := o.state
	s.mu.Lock()
	if s.ptr == p {
		s.mu.Unlock()
		return
	}
	// RefSink claims a floating reference and adds one otherwise.
	o.rt.RefSink(p)
	old := s.ptr
	s.ptr = p
	s.mu.Unlock()

	if old != nil {
		o.rt.Unref(old)
	}
}

// Assign makes o share other's object, adding a reference of its own.
func (o *Owned) Assign(other *Owned) {
	if other == nil {
		o.Set(nil)
		return
	}
	if other == o {
		return
	}
	if p, _ := other.acquire(); p != nil && o.Holds(p) {
		return
	}
	other.state.mu.Lock()
	p := other.state.ptr
	if p == nil {
		other.state.mu.Unlock()
		o.Set(nil)
		return
	}
	if !o.checkType("assign", p) {
		other.state.mu.Unlock()
		return
	}
	// Referenced while other's lock pins p.
	o.rt.Ref(p)
	other.state.mu.Unlock()

	s := o.state
	s.mu.Lock()
	old := s.ptr
	s.ptr = p
	s.mu.Unlock()

	// old == p when another goroutine set the same object meanwhile.
	if old != nil {
		o.rt.Unref(old)
	}
}

// Clone returns a new handle to the same object with its own reference.
func (o *Owned) Clone() *Owned {
	c := newOwned(o.rt, o.typ)
	o.state.mu.Lock()
	if p := o.state.ptr; p != nil {
		o.rt.Ref(p)
		c.state.ptr = p
	}
	o.state.mu.Unlock()
	return c
}

// Move returns a new handle holding o's reference and leaves o null.
func (o *Owned) Move() *Owned {
	m := newOwned(o.rt, o.typ)
	m.state.ptr = o.state.take()
	return m
}

// Release drops the held reference. Calling it again does nothing.
func (o *Owned) Release() {
	o.state.release()
}

// IsOwned always reports true.
func (o *Owned) IsOwned() bool {
	return true
}

// IsNull reports whether o holds no object.
func (o *Owned) IsNull() bool {
	o.state.mu.Lock()
	defer o.state.mu.Unlock()
	return o.state.ptr == nil
}

// RefCount returns the object's reference count minus o's own reference.
func (o *Owned) RefCount() int {
	o.state.mu.Lock()
	defer o.state.mu.Unlock()
	if o.state.ptr == nil {
		return 0
	}
	return o.rt.RefCount(o.state.ptr) - 1
}

// Equal reports whether o and other refer to the same live object.
func (o *Owned) Equal(other Object) bool {
	return sameObject(o, other)
}

// Holds reports whether o holds p.
func (o *Owned) Holds(p gobject.Pointer) bool {
	o.state.mu.Lock()
	defer o.state.mu.Unlock()
	return p != nil && o.state.ptr == p
}

func (o *Owned) acquire() (gobject.Pointer, bool) {
	o.state.mu.Lock()
	defer o.state.mu.Unlock()
	return o.state.ptr, false
}
