package goglib

import (
	"fmt"
	"sync"
	"testing"

	"github.com/rayblake800/goglib/gobject"
	"github.com/rayblake800/goglib/gobject/gobjecttest"
)

func TestOwnedConcurrentCopies(t *testing.T) {
	rt := newRuntime(t)

	base := NewObject(rt, gobjecttest.TypeObject, nil)
	p := NewObjectPtr(base).Pointer()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				c := base.Clone()
				a := NewOwned(rt, gobjecttest.TypeObject, nil)
				a.Assign(c)
				a.Assign(base)
				m := a.Move()
				c.Release()
				a.Release()
				m.Release()
			}
		}()
	}
	wg.Wait()

	if got := rt.RefCount(p); got != 1 {
		t.Errorf("RefCount = %d, want 1", got)
	}
	base.Release()
	if rt.Alive(p) {
		t.Error("object alive after the last handle was released")
	}
	if got, want := rt.Releases(p), rt.Acquires(p)+1; got != want {
		t.Errorf("releases = %d, want %d", got, want)
	}
}

func TestOwnedConcurrentSet(t *testing.T) {
	rt := newRuntime(t)

	targets := []gobject.Pointer{
		rt.New(gobjecttest.TypeObject, nil),
		rt.New(gobjecttest.TypeObject, nil),
		nil,
	}
	shared := NewOwned(rt, gobjecttest.TypeObject, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 300; j++ {
				shared.Set(targets[(i+j)%len(targets)])
			}
		}(i)
	}
	wg.Wait()

	shared.Release()
	for _, p := range targets[:2] {
		if got := rt.RefCount(p); got != 1 {
			t.Errorf("RefCount = %d, want 1", got)
		}
		rt.Unref(p)
	}
}

func TestSignalHandlerConcurrentSubscriptions(t *testing.T) {
	rt := newRuntime(t)
	tokens := connections.Len()

	objects := make([]*Owned, 4)
	for i := range objects {
		objects[i] = NewObject(rt, gobjecttest.TypeObject, nil)
	}
	h := NewSignalHandler(newRecorder(false))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				o := objects[(i+j)%len(objects)]
				c := h.ConnectSignal(o, fmt.Sprintf("s%d", i), func(Object, gobject.Pointer) {}, j%2 == 0)
				p := NewObjectPtr(o).Pointer()
				rt.Emit(p, fmt.Sprintf("s%d", i), nil)
				if j%3 == 0 {
					h.DisconnectSignals(o)
				} else if c != nil {
					c.Disconnect()
				}
			}
		}(i)
	}
	wg.Wait()
	h.Close()

	for _, o := range objects {
		p := NewObjectPtr(o).Pointer()
		if n := rt.Handlers(p); n != 0 {
			t.Errorf("object has %d handlers after Close", n)
		}
		o.Release()
		if rt.Alive(p) {
			t.Error("held reference leaked")
		}
	}
	if connections.Len() != tokens {
		t.Errorf("token table holds %d entries, want %d", connections.Len(), tokens)
	}
}

func TestSignalHandlerEmitDuringClose(t *testing.T) {
	rt := newRuntime(t)
	r := newRecorder(false, "x")

	o := NewObject(rt, gobjecttest.TypeObject, nil)
	defer o.Release()
	p := NewObjectPtr(o).Pointer()
	r.h.ConnectAllSignals(o)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				rt.Notify(p, "x")
			}
		}()
	}
	r.h.Close()
	wg.Wait()

	n := len(r.Changes())
	rt.Notify(p, "x")
	if len(r.Changes()) != n {
		t.Error("receiver called after Close returned and emissions stopped")
	}
}

func TestConnectionDisconnectDuringClose(t *testing.T) {
	const (
		objects = 4
		perObj  = 16
	)
	rt := newRuntime(t)
	h := NewSignalHandler(newRecorder(false))

	var ptrs []gobject.Pointer
	var conns []*Connection
	for i := 0; i < objects; i++ {
		o := NewObject(rt, gobjecttest.TypeObject, nil)
		ptrs = append(ptrs, NewObjectPtr(o).Pointer())
		for j := 0; j < perObj; j++ {
			c := h.ConnectSignal(o, fmt.Sprintf("s%d", j), func(Object, gobject.Pointer) {}, true)
			if c == nil {
				t.Fatal("ConnectSignal returned nil")
			}
			conns = append(conns, c)
		}
		o.Release()
	}

	var wg sync.WaitGroup
	start := make(chan struct{})
	for _, c := range conns {
		wg.Add(1)
		go func(c *Connection) {
			defer wg.Done()
			<-start
			c.Disconnect()
		}(c)
	}
	close(start)
	h.Close()
	wg.Wait()

	for i, p := range ptrs {
		if rt.Alive(p) {
			t.Errorf("object %d still held after Close", i)
			continue
		}
		if n := rt.Disconnects(p); n != perObj {
			t.Errorf("object %d: disconnects = %d, want %d", i, n, perObj)
		}
	}
	for _, c := range conns {
		if c.Connected() {
			t.Error("connection still active after Close")
			break
		}
	}
	if n := rt.LiveWeakSlots(); n != 0 {
		t.Errorf("%d weak slots left", n)
	}
}
