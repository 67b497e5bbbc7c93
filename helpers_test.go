package goglib

import (
	"sync"
	"testing"

	"github.com/rayblake800/goglib/gobject"
	"github.com/rayblake800/goglib/gobject/gobjecttest"
)

// newRuntime returns a fake runtime that fails the test on any misuse.
func newRuntime(t *testing.T) *gobjecttest.Runtime {
	t.Helper()
	rt := gobjecttest.New()
	t.Cleanup(func() {
		if v := rt.Violations(); len(v) > 0 {
			t.Errorf("runtime violations: %v", v)
		}
	})
	return rt
}

// rawObject hands out a pointer without holding any reference, like a
// handle that outlived its object.
type rawObject struct {
	object
	p gobject.Pointer
}

func newRawObject(rt gobject.Runtime, p gobject.Pointer) rawObject {
	return rawObject{object: object{rt: rt, typ: gobject.TypeObject}, p: p}
}

func (r rawObject) IsOwned() bool { return false }
func (r rawObject) IsNull() bool { return r.p == nil }
func (r rawObject) RefCount() int { return 0 }
func (r rawObject) Equal(other Object) bool { return sameObject(r, other) }
func (r rawObject) Holds(p gobject.Pointer) bool { return p != nil && p == r.p }
func (r rawObject) acquire() (gobject.Pointer, bool) { return r.p, false }

// recorder subscribes to a fixed list of properties and records changes.
type recorder struct {
	h          *SignalHandler
	properties []string
	holdRef    bool

	mu      sync.Mutex
	changes []string
}

func newRecorder(holdRef bool, properties ...string) *recorder {
	r := &recorder{properties: properties, holdRef: holdRef}
	r.h = NewSignalHandler(r)
	return r
}

func (r *recorder) ConnectSignals(source Object) {
	for _, p := range r.properties {
		r.h.ConnectNotifySignal(source, p, r.holdRef)
	}
}

func (r *recorder) PropertyChanged(source Object, property string) {
	r.mu.Lock()
	r.changes = append(r.changes, property)
	r.mu.Unlock()
}

func (r *recorder) Changes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.changes...)
}
