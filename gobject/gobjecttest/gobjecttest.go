// Package gobjecttest provides an in-memory gobject.Runtime for tests.
//
// Objects are plain Go values addressed through gobject.Pointer. Freed objects
// are never reused, so every misuse of a stale pointer is detected and
// recorded as a violation instead of crashing the process.
package gobjecttest

import (
	"fmt"
	"strings"
	"sync"
	"unsafe"

	"github.com/rayblake800/goglib/gobject"
)

// Predefined types.
const (
	TypeObject           = gobject.TypeObject
	TypeInitiallyUnowned = gobject.Type(0x1000)
)

type typeInfo struct {
	name     string
	parent   gobject.Type
	floating bool
}

type handler struct {
	id     gobject.SignalID
	signal string
	cb     gobject.Callback
	data   uintptr
}

type object struct {
	typ      gobject.Type
	refs     int
	floating bool
	freed    bool
	handlers []*handler
	props    map[string]any
	weak     map[*weakSlot]struct{}
}

type weakSlot struct {
	target  *object
	cleared bool
}

// paramSpec is what notify handlers receive as their argument.
type paramSpec struct {
	name string
}

// Runtime is a fake gobject.Runtime. The zero value is not usable; call New.
type Runtime struct {
	mu sync.Mutex

	types    map[gobject.Type]*typeInfo
	nextType gobject.Type

	objects map[*object]struct{}
	slots   map[*weakSlot]struct{}
	pspecs  map[string]*paramSpec

	nextHandler gobject.SignalID
	failConnect map[string]bool

	acquires    map[*object]int
	releases    map[*object]int
	connects    int
	disconnects map[*object]int
	violations  []string
}

var _ gobject.Runtime = (*Runtime)(nil)

// New returns an empty runtime that knows TypeObject and
// TypeInitiallyUnowned.
func New() *Runtime {
	return &Runtime{
		types: map[gobject.Type]*typeInfo{
			TypeObject:           {name: "GObject"},
			TypeInitiallyUnowned: {name: "GInitiallyUnowned", parent: TypeObject, floating: true},
		},
		nextType:    TypeInitiallyUnowned + 4,
		objects:     make(map[*object]struct{}),
		slots:       make(map[*weakSlot]struct{}),
		pspecs:      make(map[string]*paramSpec),
		failConnect: make(map[string]bool),
		acquires:    make(map[*object]int),
		releases:    make(map[*object]int),
		disconnects: make(map[*object]int),
	}
}

// RegisterType registers a new type derived from parent. Instances of types
// derived from TypeInitiallyUnowned start floating.
func (r *Runtime) RegisterType(name string, parent gobject.Type) gobject.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.types[parent]
	if !ok {
		panic(fmt.Sprintf("gobjecttest: unknown parent type %d", parent))
	}
	t := r.nextType
	r.nextType += 4
	r.types[t] = &typeInfo{name: name, parent: parent, floating: p.floating}
	return t
}

// FailConnect makes every later Connect for signal return 0.
func (r *Runtime) FailConnect(signal string) {
	r.mu.Lock()
	r.failConnect[signal] = true
	r.mu.Unlock()
}

func toObject(p gobject.Pointer) *object {
	return (*object)(p)
}

func (r *Runtime) violation(format string, args ...any) {
	r.violations = append(r.violations, fmt.Sprintf(format, args...))
}

// live returns the object behind p, recording a violation for freed or
// unknown pointers. Callers hold r.mu.
func (r *Runtime) live(op string, p gobject.Pointer) *object {
	if p == nil {
		return nil
	}
	o := toObject(p)
	if _, ok := r.objects[o]; !ok {
		r.violation("%s: unknown object %p", op, p)
		return nil
	}
	if o.freed {
		r.violation("%s: use after free of %p", op, p)
		return nil
	}
	return o
}

// Ref implements gobject.Runtime.
func (r *Runtime) Ref(p gobject.Pointer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o := r.live("ref", p); o != nil {
		o.refs++
		r.acquires[o]++
	}
}

// Unref implements gobject.Runtime.
func (r *Runtime) Unref(p gobject.Pointer) {
	r.mu.Lock()
	if p != nil && toObject(p).freed {
		r.violation("unref: double free of %p", p)
		r.mu.Unlock()
		return
	}
	o := r.live("unref", p)
	if o == nil {
		r.mu.Unlock()
		return
	}
	o.refs--
	r.releases[o]++
	var held []gobject.Pointer
	if o.refs == 0 {
		held = r.finalize(o)
	}
	r.mu.Unlock()
	r.releaseAll(held)
}

// RefSink implements gobject.Runtime. Claiming a floating reference counts as
// an acquire.
func (r *Runtime) RefSink(p gobject.Pointer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o := r.live("ref_sink", p)
	if o == nil {
		return
	}
	if o.floating {
		o.floating = false
	} else {
		o.refs++
	}
	r.acquires[o]++
}

// IsFloating implements gobject.Runtime.
func (r *Runtime) IsFloating(p gobject.Pointer) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	o := r.live("is_floating", p)
	return o != nil && o.floating
}

// RefCount implements gobject.Runtime. Freed objects report 0.
func (r *Runtime) RefCount(p gobject.Pointer) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p == nil {
		return 0
	}
	o := toObject(p)
	if _, ok := r.objects[o]; !ok || o.freed {
		return 0
	}
	return o.refs
}

// New implements gobject.Runtime. Any property name is accepted.
func (r *Runtime) New(t gobject.Type, props map[string]any) gobject.Pointer {
	r.mu.Lock()
	defer r.mu.Unlock()
	info, ok := r.types[t]
	if !ok {
		return nil
	}
	o := &object{
		typ:      t,
		refs:     1,
		floating: info.floating,
		props:    make(map[string]any, len(props)),
		weak:     make(map[*weakSlot]struct{}),
	}
	r.objects[o] = struct{}{}
	for name, value := range props {
		if v, ok := value.(gobject.Pointer); ok && v != nil {
			if target := r.live("construct property", v); target != nil {
				target.refs++
			}
		}
		o.props[name] = value
	}
	return gobject.Pointer(o)
}

// finalize frees o and returns the object-valued properties it held. Callers
// hold r.mu and must release the returned pointers after unlocking.
func (r *Runtime) finalize(o *object) []gobject.Pointer {
	o.freed = true
	o.refs = 0
	for s := range o.weak {
		s.target = nil
	}
	o.weak = nil
	o.handlers = nil
	var held []gobject.Pointer
	for _, v := range o.props {
		if p, ok := v.(gobject.Pointer); ok && p != nil {
			held = append(held, p)
		}
	}
	o.props = nil
	return held
}

func (r *Runtime) releaseAll(ps []gobject.Pointer) {
	for _, p := range ps {
		r.mu.Lock()
		o := toObject(p)
		var held []gobject.Pointer
		if !o.freed {
			o.refs--
			if o.refs == 0 {
				held = r.finalize(o)
			}
		}
		r.mu.Unlock()
		r.releaseAll(held)
	}
}

// Destroy finalizes p immediately regardless of its reference count, as if
// another owner disposed of it.
func (r *Runtime) Destroy(p gobject.Pointer) {
	r.mu.Lock()
	o := r.live("destroy", p)
	if o == nil {
		r.mu.Unlock()
		return
	}
	held := r.finalize(o)
	r.mu.Unlock()
	r.releaseAll(held)
}

// TypeOf implements gobject.Runtime.
func (r *Runtime) TypeOf(p gobject.Pointer) gobject.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o := r.live("type_of", p); o != nil {
		return o.typ
	}
	return gobject.TypeInvalid
}

// IsA implements gobject.Runtime.
func (r *Runtime) IsA(p gobject.Pointer, t gobject.Type) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	o := r.live("is_a", p)
	if o == nil {
		return false
	}
	for cur := o.typ; cur != gobject.TypeInvalid; {
		if cur == t {
			return true
		}
		info, ok := r.types[cur]
		if !ok {
			return false
		}
		cur = info.parent
	}
	return false
}

// TypeName implements gobject.Runtime.
func (r *Runtime) TypeName(t gobject.Type) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if info, ok := r.types[t]; ok {
		return info.name
	}
	return ""
}

// TypeFromName implements gobject.Runtime.
func (r *Runtime) TypeFromName(name string) gobject.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	for t, info := range r.types {
		if info.name == name {
			return t
		}
	}
	return gobject.TypeInvalid
}

// WeakInit implements gobject.Runtime.
func (r *Runtime) WeakInit(p gobject.Pointer) gobject.WeakSlot {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := &weakSlot{}
	r.slots[s] = struct{}{}
	r.attach(s, p)
	return gobject.WeakSlot(s)
}

func (r *Runtime) attach(s *weakSlot, p gobject.Pointer) {
	if s.target != nil {
		delete(s.target.weak, s)
		s.target = nil
	}
	if o := r.live("weak_ref_set", p); o != nil {
		s.target = o
		o.weak[s] = struct{}{}
	}
}

func (r *Runtime) slot(op string, ws gobject.WeakSlot) *weakSlot {
	if ws == nil {
		return nil
	}
	s := (*weakSlot)(ws)
	if _, ok := r.slots[s]; !ok {
		r.violation("%s: unknown weak slot %p", op, ws)
		return nil
	}
	if s.cleared {
		r.violation("%s: use of cleared weak slot %p", op, ws)
		return nil
	}
	return s
}

// WeakSet implements gobject.Runtime.
func (r *Runtime) WeakSet(ws gobject.WeakSlot, p gobject.Pointer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s := r.slot("weak_ref_set", ws); s != nil {
		r.attach(s, p)
	}
}

// WeakGet implements gobject.Runtime.
func (r *Runtime) WeakGet(ws gobject.WeakSlot) gobject.Pointer {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.slot("weak_ref_get", ws)
	if s == nil || s.target == nil {
		return nil
	}
	s.target.refs++
	r.acquires[s.target]++
	return gobject.Pointer(s.target)
}

// WeakClear implements gobject.Runtime.
func (r *Runtime) WeakClear(ws gobject.WeakSlot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ws != nil && (*weakSlot)(ws).cleared {
		r.violation("weak_ref_clear: double clear of %p", ws)
		return
	}
	s := r.slot("weak_ref_clear", ws)
	if s == nil {
		return
	}
	if s.target != nil {
		delete(s.target.weak, s)
		s.target = nil
	}
	s.cleared = true
}

// Connect implements gobject.Runtime.
func (r *Runtime) Connect(p gobject.Pointer, signal string, cb gobject.Callback, data uintptr) gobject.SignalID {
	r.mu.Lock()
	defer r.mu.Unlock()
	o := r.live("connect", p)
	if o == nil || cb == nil || r.failConnect[signal] {
		return 0
	}
	r.nextHandler++
	o.handlers = append(o.handlers, &handler{id: r.nextHandler, signal: signal, cb: cb, data: data})
	r.connects++
	return r.nextHandler
}

// Disconnect implements gobject.Runtime. Disconnecting an id the object does
// not hold is recorded as a violation.
func (r *Runtime) Disconnect(p gobject.Pointer, id gobject.SignalID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o := r.live("disconnect", p)
	if o == nil {
		return
	}
	for i, h := range o.handlers {
		if h.id == id {
			o.handlers = append(o.handlers[:i:i], o.handlers[i+1:]...)
			r.disconnects[o]++
			return
		}
	}
	r.violation("disconnect: unknown handler %d on %p", id, p)
}

// ParamName implements gobject.Runtime.
func (r *Runtime) ParamName(pspec gobject.Pointer) string {
	if pspec == nil {
		return ""
	}
	return (*paramSpec)(pspec).name
}

// GetProperty implements gobject.Runtime. Unset properties are reported as
// missing.
func (r *Runtime) GetProperty(p gobject.Pointer, name string) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o := r.live("get_property", p)
	if o == nil {
		return nil, false
	}
	v, ok := o.props[name]
	if ptr, isPtr := v.(gobject.Pointer); isPtr && ptr != nil {
		if target := r.live("get_property", ptr); target != nil {
			target.refs++
			r.acquires[target]++
		}
	}
	return v, ok
}

// SetProperty implements gobject.Runtime. It emits notify for the property
// after storing the value.
func (r *Runtime) SetProperty(p gobject.Pointer, name string, value any) bool {
	r.mu.Lock()
	o := r.live("set_property", p)
	if o == nil {
		r.mu.Unlock()
		return false
	}
	if v, ok := value.(gobject.Pointer); ok && v != nil {
		if target := r.live("set_property", v); target != nil {
			target.refs++
		}
	}
	old := o.props[name]
	o.props[name] = value
	r.mu.Unlock()

	if v, ok := old.(gobject.Pointer); ok && v != nil {
		r.releaseAll([]gobject.Pointer{v})
	}
	r.Notify(p, name)
	return true
}

// Emit invokes the handlers connected to signal on p with arg. Handlers run
// on the calling goroutine without the runtime lock held. Handlers connected
// to a signal name without detail also receive its detailed emissions.
func (r *Runtime) Emit(p gobject.Pointer, signal string, arg gobject.Pointer) int {
	r.mu.Lock()
	o := r.live("emit", p)
	if o == nil {
		r.mu.Unlock()
		return 0
	}
	base, _, _ := strings.Cut(signal, "::")
	var hs []*handler
	for _, h := range o.handlers {
		if h.signal == signal || h.signal == base {
			hs = append(hs, h)
		}
	}
	r.mu.Unlock()

	for _, h := range hs {
		if !r.stillConnected(o, h) {
			continue
		}
		h.cb(p, arg, h.data)
	}
	return len(hs)
}

func (r *Runtime) stillConnected(o *object, h *handler) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, cur := range o.handlers {
		if cur == h {
			return true
		}
	}
	return false
}

// Notify emits notify::property on p.
func (r *Runtime) Notify(p gobject.Pointer, property string) int {
	return r.Emit(p, gobject.NotifySignal(property), r.ParamSpec(property))
}

// ParamSpec returns the stable parameter spec pointer used for property.
func (r *Runtime) ParamSpec(property string) gobject.Pointer {
	r.mu.Lock()
	defer r.mu.Unlock()
	ps, ok := r.pspecs[property]
	if !ok {
		ps = &paramSpec{name: property}
		r.pspecs[property] = ps
	}
	return unsafe.Pointer(ps)
}

// Alive reports whether p has not been finalized.
func (r *Runtime) Alive(p gobject.Pointer) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p == nil {
		return false
	}
	o := toObject(p)
	_, ok := r.objects[o]
	return ok && !o.freed
}

// Acquires returns how many references were added to p after creation.
func (r *Runtime) Acquires(p gobject.Pointer) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.acquires[toObject(p)]
}

// Releases returns how many times p was unreferenced.
func (r *Runtime) Releases(p gobject.Pointer) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.releases[toObject(p)]
}

// Handlers returns the number of handlers currently connected on p.
func (r *Runtime) Handlers(p gobject.Pointer) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p == nil {
		return 0
	}
	return len(toObject(p).handlers)
}

// Connects returns the total number of successful Connect calls.
func (r *Runtime) Connects() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.connects
}

// Disconnects returns how many handlers were disconnected from p.
func (r *Runtime) Disconnects(p gobject.Pointer) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.disconnects[toObject(p)]
}

// LiveWeakSlots returns the number of weak slots not yet cleared.
func (r *Runtime) LiveWeakSlots() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for s := range r.slots {
		if !s.cleared {
			n++
		}
	}
	return n
}

// Violations returns every misuse recorded so far.
func (r *Runtime) Violations() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.violations...)
}
