package goglib

import (
	"sync"

	"github.com/rayblake800/goglib/gobject"
)

// Lender hands out one shared Borrowed per object, so every caller asking
// for the same object sees the same handle and invalidating it reaches them
// all.
type Lender struct {
	rt  gobject.Runtime
	typ gobject.Type

	mu   sync.Mutex
	lent map[gobject.Pointer]*Borrowed
}

// NewLender returns a Lender for objects of type t.
func NewLender(rt gobject.Runtime, t gobject.Type) *Lender {
	return &Lender{rt: rt, typ: t, lent: make(map[gobject.Pointer]*Borrowed)}
}

// Borrow returns the shared handle for p, creating it if needed. A nil p or
// one of the wrong type yields a null handle that is not shared.
func (l *Lender) Borrow(p gobject.Pointer) *Borrowed {
	if p == nil || !l.rt.IsA(p, l.typ) {
		return NewBorrowed(l.rt, l.typ, nil)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if b := l.lookup(p); b != nil {
		return b
	}
	b := NewBorrowed(l.rt, l.typ, p)
	l.lent[p] = b
	return b
}

// lookup returns the live handle for p and prunes a stale one. Callers hold
// l.mu.
func (l *Lender) lookup(p gobject.Pointer) *Borrowed {
	b, ok := l.lent[p]
	if !ok {
		return nil
	}
	if b.Holds(p) {
		return b
	}
	// p was finalized and its address possibly reused.
	delete(l.lent, p)
	b.Release()
	return nil
}

// Find returns the shared handle for p, or nil if none was lent.
func (l *Lender) Find(p gobject.Pointer) *Borrowed {
	if p == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lookup(p)
}

// Has reports whether a handle for p is lent out.
func (l *Lender) Has(p gobject.Pointer) bool {
	return l.Find(p) != nil
}

// Invalidate makes the shared handle for p null and forgets it.
func (l *Lender) Invalidate(p gobject.Pointer) {
	l.mu.Lock()
	b, ok := l.lent[p]
	delete(l.lent, p)
	l.mu.Unlock()
	if ok {
		b.Invalidate()
		b.Release()
	}
}

// InvalidateAll invalidates every lent handle.
func (l *Lender) InvalidateAll() {
	l.mu.Lock()
	lent := l.lent
	l.lent = make(map[gobject.Pointer]*Borrowed)
	l.mu.Unlock()
	for _, b := range lent {
		b.Invalidate()
		b.Release()
	}
}

// All returns every lent handle whose object is still alive.
func (l *Lender) All() []*Borrowed {
	l.mu.Lock()
	defer l.mu.Unlock()
	all := make([]*Borrowed, 0, len(l.lent))
	for p := range l.lent {
		if b := l.lookup(p); b != nil {
			all = append(all, b)
		}
	}
	return all
}
