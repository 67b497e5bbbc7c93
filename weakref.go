package goglib

import (
	"runtime"
	"sync"

	"go.uber.org/zap"

	"github.com/rayblake800/goglib/gobject"
)

// WeakRef observes a foreign object without keeping it alive. It is safe for
// concurrent use: resolving may happen from any number of goroutines while
// Init, Set and Clear are serialized against everything else.
type WeakRef struct {
	state *weakState
}

type weakState struct {
	mu          sync.RWMutex
	rt          gobject.Runtime
	slot        gobject.WeakSlot
	initialized bool
	cleared     bool
}

func (s *weakState) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cleared {
		return
	}
	if s.initialized {
		s.rt.WeakClear(s.slot)
	}
	s.slot = nil
	s.cleared = true
}

// NewWeakRef returns an uninitialized weak reference.
func NewWeakRef(rt gobject.Runtime) *WeakRef {
	w := &WeakRef{state: &weakState{rt: rt}}
	runtime.AddCleanup(w, (*weakState).clear, w.state)
	return w
}

// WeakRefTo returns a weak reference initialized to p.
func WeakRefTo(rt gobject.Runtime, p gobject.Pointer) *WeakRef {
	w := NewWeakRef(rt)
	w.Init(p)
	return w
}

// Init sets up the weak slot pointing at p, which may be nil. Only the first
// call has any effect.
func (w *WeakRef) Init(p gobject.Pointer) {
	s := w.state
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized || s.cleared {
		return
	}
	s.slot = s.rt.WeakInit(p)
	s.initialized = true
}

// Set points w at p, or at nothing if p is nil. An uninitialized WeakRef is
// initialized to p.
func (w *WeakRef) Set(p gobject.Pointer) {
	s := w.state
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cleared {
		Logger().Debug("set on a cleared weak reference", objectField(p))
		return
	}
	if !s.initialized {
		s.slot = s.rt.WeakInit(p)
		s.initialized = true
		return
	}
	s.rt.WeakSet(s.slot, p)
}

// Object returns the target with a new reference the caller must release,
// or nil if the target was finalized or w was never initialized or already
// cleared. Wrap the result with AdoptPtr to release it at the end of the
// scope.
func (w *WeakRef) Object() gobject.Pointer {
	s := w.state
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.initialized || s.cleared {
		Logger().Debug("read of an unusable weak reference",
			zap.Bool("initialized", s.initialized), zap.Bool("cleared", s.cleared))
		return nil
	}
	return s.rt.WeakGet(s.slot)
}

// resolve returns the target as an ObjectPtr owning the new reference.
func (w *WeakRef) resolve() *ObjectPtr {
	return AdoptPtr(w.state.rt, w.Object())
}

// Equal reports whether w and other currently refer to the same live object.
// Both sides are resolved to strong references for the comparison, so a
// finalized target never compares equal.
func (w *WeakRef) Equal(other *WeakRef) bool {
	if other == nil {
		return false
	}
	a := w.resolve()
	defer a.Release()
	b := other.resolve()
	defer b.Release()
	return a.Pointer() != nil && a.Pointer() == b.Pointer()
}

// Holds reports whether w currently refers to the live object p.
func (w *WeakRef) Holds(p gobject.Pointer) bool {
	if p == nil {
		return false
	}
	a := w.resolve()
	defer a.Release()
	return a.Pointer() == p
}

// IsValid reports whether w is initialized and not cleared. A valid WeakRef
// may still resolve to nil.
func (w *WeakRef) IsValid() bool {
	s := w.state
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized && !s.cleared
}

// Clear releases the weak slot. w resolves to nil from then on. Calling it
// again does nothing.
func (w *WeakRef) Clear() {
	w.state.clear()
}
