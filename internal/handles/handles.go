// Package handles maps Go values to opaque integer tokens that can be handed
// to a foreign runtime as callback user data.
//
// The foreign runtime may keep user data for as long as a signal handler stays
// connected, and may pass it back from any thread. It must never hold a Go
// pointer, so callers register the Go value and pass the returned token
// instead. A token resolves to nothing once it is unregistered, which turns a
// late callback into a harmless no-op.
package handles

import (
	"sync"
)

// Table is a thread-safe token table for values of type T.
// The zero token is never issued.
type Table[T any] struct {
	mu     sync.RWMutex
	values map[uintptr]T
	nextID uintptr
}

// New creates an empty table.
func New[T any]() *Table[T] {
	return &Table[T]{
		values: make(map[uintptr]T),
		nextID: 1,
	}
}

// Register stores v and returns its token.
func (t *Table[T]) Register(v T) uintptr {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.nextID
	t.nextID++
	if t.nextID == 0 {
		t.nextID = 1
	}
	t.values[id] = v
	return id
}

// Lookup returns the value registered under id.
func (t *Table[T]) Lookup(id uintptr) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.values[id]
	return v, ok
}

// Unregister removes id and returns the value it held.
// Unregistering an unknown or already removed token is a no-op.
func (t *Table[T]) Unregister(id uintptr) (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.values[id]
	if ok {
		delete(t.values, id)
	}
	return v, ok
}

// Len returns the number of registered tokens.
// Useful for leak checks in tests.
func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.values)
}
