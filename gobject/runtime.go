// Package gobject is the boundary between goglib and the GObject runtime.
//
// Everything goglib needs from the foreign object system is described by the
// Runtime interface: reference counting, dynamic type checks, weak reference
// slots, signal connection and property access. Native implements it on top
// of libgobject-2.0 loaded with purego; package gobjecttest provides an
// instrumented in-memory implementation for tests.
//
// Values of type Pointer are raw foreign object pointers. Code outside goglib
// should not keep them; wrap them in goglib.Owned or goglib.Borrowed instead.
package gobject

import (
	"errors"
	"unsafe"
)

// Pointer is a raw GObject* (or GParamSpec* for notify signal arguments).
type Pointer = unsafe.Pointer

// WeakSlot is storage for one foreign weak reference (a GWeakRef).
// Slots are allocated by WeakInit and released by WeakClear.
type WeakSlot = unsafe.Pointer

// SignalID identifies one connected signal handler. Zero means the connection
// failed.
type SignalID uint64

// Type is a runtime type tag (a GType).
type Type uintptr

// TypeInvalid is the zero type tag.
const TypeInvalid Type = 0

// Fundamental type tags, G_TYPE_MAKE_FUNDAMENTAL(n) == n << 2.
const (
	TypeNone    Type = 1 << 2
	TypeChar    Type = 3 << 2
	TypeUChar   Type = 4 << 2
	TypeBoolean Type = 5 << 2
	TypeInt     Type = 6 << 2
	TypeUInt    Type = 7 << 2
	TypeLong    Type = 8 << 2
	TypeULong   Type = 9 << 2
	TypeInt64   Type = 10 << 2
	TypeUInt64  Type = 11 << 2
	TypeEnum    Type = 12 << 2
	TypeFlags   Type = 13 << 2
	TypeFloat   Type = 14 << 2
	TypeDouble  Type = 15 << 2
	TypeString  Type = 16 << 2
	TypePointer Type = 17 << 2
	TypeBoxed   Type = 18 << 2
	TypeParam   Type = 19 << 2
	TypeObject  Type = 20 << 2
)

// NotifyPrefix starts the detailed name of every property change signal.
const NotifyPrefix = "notify::"

// NotifySignal returns the detailed signal emitted when property changes.
func NotifySignal(property string) string {
	return NotifyPrefix + property
}

// ErrNotSupported is returned by NewNative on platforms purego cannot serve.
var ErrNotSupported = errors.New("goglib: native GObject runtime not supported on this platform")

// Callback receives signal emissions. source is the emitting object, arg the
// single signal parameter (the GParamSpec of a notify signal) or nil, and data
// the value passed to Connect. It may be called from any thread.
type Callback func(source, arg Pointer, data uintptr)

// Lifetime covers reference counting.
type Lifetime interface {
	// Ref adds a reference to p.
	Ref(p Pointer)

	// Unref removes a reference from p, freeing it when none remain.
	Unref(p Pointer)

	// RefSink claims a floating reference, or adds a reference if p is not
	// floating.
	RefSink(p Pointer)

	// IsFloating reports whether p still holds an unclaimed reference.
	IsFloating(p Pointer) bool

	// RefCount returns the current reference count. Only use this for
	// debugging.
	RefCount(p Pointer) int

	// New constructs an object of type t with the given construct
	// properties. The result is floating for GInitiallyUnowned types and
	// holds one reference owned by the caller otherwise.
	New(t Type, props map[string]any) Pointer
}

// Types covers dynamic type checks.
type Types interface {
	// TypeOf returns the concrete type of p.
	TypeOf(p Pointer) Type

	// IsA reports whether p is an instance of t or one of its subtypes.
	IsA(p Pointer, t Type) bool

	// TypeName returns the registered name of t.
	TypeName(t Type) string

	// TypeFromName returns the type registered as name, or TypeInvalid.
	TypeFromName(name string) Type
}

// WeakRefs covers weak reference slots.
type WeakRefs interface {
	// WeakInit allocates a slot pointing at p (which may be nil).
	WeakInit(p Pointer) WeakSlot

	// WeakSet repoints the slot.
	WeakSet(slot WeakSlot, p Pointer)

	// WeakGet returns the slot's target with a new reference, or nil if the
	// target was finalized.
	WeakGet(slot WeakSlot) Pointer

	// WeakClear detaches and frees the slot. The slot must not be used
	// afterwards.
	WeakClear(slot WeakSlot)
}

// Signals covers signal subscription.
type Signals interface {
	// Connect registers cb for the detailed signal on p. data is passed back
	// to cb unchanged.
	Connect(p Pointer, signal string, cb Callback, data uintptr) SignalID

	// Disconnect removes a handler returned by Connect. Disconnecting a
	// handler the runtime already dropped is a no-op.
	Disconnect(p Pointer, id SignalID)

	// ParamName returns the property name held by a notify signal argument.
	ParamName(pspec Pointer) string
}

// Properties covers property access.
type Properties interface {
	// GetProperty reads a property. Object-valued properties are returned as
	// a Pointer holding a new reference the caller must release.
	GetProperty(p Pointer, name string) (any, bool)

	// SetProperty writes a property, converting value to the property type.
	SetProperty(p Pointer, name string, value any) bool
}

// Runtime is the complete foreign object runtime.
type Runtime interface {
	Lifetime
	Types
	WeakRefs
	Signals
	Properties
}
