//go:build !ios && !android && (amd64 || arm64)

package gobject

import (
	"fmt"
	"sync/atomic"
	"unsafe"

	"github.com/ebitengine/purego"
	"go.uber.org/zap"

	"github.com/rayblake800/goglib/internal/bindings"
	"github.com/rayblake800/goglib/internal/platform"
)

// gWeakRefSize is sizeof(GWeakRef): a union holding one pointer.
const gWeakRefSize = platform.PointerSize

// Native is the Runtime backed by libgobject-2.0.
type Native struct{}

var _ Runtime = (*Native)(nil)

// NewNative loads GLib and returns the native runtime.
// It is safe to call multiple times.
func NewNative() (*Native, error) {
	if err := load(); err != nil {
		return nil, err
	}
	if !bindingsRegistered {
		return nil, ErrNotLoaded
	}
	initTrampolines()
	return &Native{}, nil
}

// HasGIO reports whether libgio-2.0 was found, making its types available to
// TypeFromSymbol.
func (n *Native) HasGIO() bool {
	return bindings.HasGIO()
}

// Ref adds a reference to p.
func (n *Native) Ref(p Pointer) {
	if p != nil {
		gObjectRef(p)
	}
}

// Unref removes a reference from p.
func (n *Native) Unref(p Pointer) {
	if p != nil {
		gObjectUnref(p)
	}
}

// RefSink claims a floating reference or adds a normal one.
func (n *Native) RefSink(p Pointer) {
	if p != nil {
		gObjectRefSink(p)
	}
}

// IsFloating reports whether p holds a floating reference.
func (n *Native) IsFloating(p Pointer) bool {
	return p != nil && gObjectIsFloating(p) != 0
}

// RefCount reads GObject.ref_count, which follows the GTypeInstance header.
func (n *Native) RefCount(p Pointer) int {
	if p == nil {
		return 0
	}
	return int(atomic.LoadUint32((*uint32)(unsafe.Add(p, platform.PointerSize))))
}

// New constructs an object with g_object_new_with_properties.
func (n *Native) New(t Type, props map[string]any) Pointer {
	if t == TypeInvalid {
		return nil
	}
	if len(props) == 0 {
		return gObjectNewWithProperties(uintptr(t), 0, nil, nil)
	}

	class := gTypeClassRef(uintptr(t))
	if class == nil {
		return nil
	}
	defer gTypeClassUnref(class)

	names := make([]unsafe.Pointer, 0, len(props))
	values := make([]gvalue, len(props))
	defer func() {
		for _, name := range names {
			gFree(name)
		}
		for i := range values {
			if values[i].gType != 0 {
				gValueUnset(&values[i])
			}
		}
	}()

	for name, value := range props {
		pspec := gObjectClassFindProperty(class, name)
		if pspec == nil {
			Logger().Debug("unknown construct property",
				zap.String("type", n.TypeName(t)), zap.String("property", name))
			return nil
		}
		v := &values[len(names)]
		gValueInit(v, uintptr(pspecValueType(pspec)))
		names = append(names, cString(name))
		if !writeValue(v, value) {
			Logger().Debug("construct property has the wrong type",
				zap.String("property", name), zap.String("value", fmt.Sprintf("%T", value)))
			return nil
		}
	}
	return gObjectNewWithProperties(uintptr(t), uint32(len(names)),
		unsafe.Pointer(&names[0]), unsafe.Pointer(&values[0]))
}

// cString copies s into g_malloc'd memory. Free it with gFree.
func cString(s string) unsafe.Pointer {
	mem := gMalloc0(uintptr(len(s) + 1))
	copy(unsafe.Slice((*byte)(mem), len(s)), s)
	return mem
}

// TypeOf returns G_TYPE_FROM_INSTANCE(p).
func (n *Native) TypeOf(p Pointer) Type {
	if p == nil {
		return TypeInvalid
	}
	return instanceType(p)
}

// IsA reports whether p is an instance of t.
func (n *Native) IsA(p Pointer, t Type) bool {
	return p != nil && t != TypeInvalid && gTypeCheckInstanceIsA(p, uintptr(t)) != 0
}

// TypeName returns g_type_name(t).
func (n *Native) TypeName(t Type) string {
	if t == TypeInvalid {
		return ""
	}
	return gTypeName(uintptr(t))
}

// TypeFromName returns g_type_from_name(name). Types are only registered once
// their get_type function ran; see TypeFromSymbol.
func (n *Native) TypeFromName(name string) Type {
	return Type(gTypeFromName(name))
}

// TypeFromSymbol calls a GType getter such as "g_simple_action_get_type"
// exported by one of the loaded libraries, registering the type if needed.
func (n *Native) TypeFromSymbol(symbol string) (Type, error) {
	fn, err := bindings.Symbol(symbol)
	if err != nil {
		return TypeInvalid, err
	}
	t, _, _ := purego.SyscallN(fn)
	return Type(t), nil
}

// WeakInit allocates a GWeakRef in C memory, where GLib may keep its address.
func (n *Native) WeakInit(p Pointer) WeakSlot {
	slot := gMalloc0(gWeakRefSize)
	gWeakRefInit(slot, p)
	return slot
}

// WeakSet repoints slot to p.
func (n *Native) WeakSet(slot WeakSlot, p Pointer) {
	if slot != nil {
		gWeakRefSet(slot, p)
	}
}

// WeakGet returns the slot's target with a new reference, or nil.
func (n *Native) WeakGet(slot WeakSlot) Pointer {
	if slot == nil {
		return nil
	}
	return gWeakRefGet(slot)
}

// WeakClear detaches the slot from its target and frees it.
func (n *Native) WeakClear(slot WeakSlot) {
	if slot == nil {
		return
	}
	gWeakRefClear(slot)
	gFree(slot)
}

// Connect connects cb with g_signal_connect_data. Signals whose handler
// signature has no matching trampoline are refused with a zero SignalID.
func (n *Native) Connect(p Pointer, signal string, cb Callback, data uintptr) SignalID {
	if p == nil || cb == nil {
		return 0
	}
	var trampoline uintptr
	switch signalArity(p, signal) {
	case 0:
		trampoline = signal0Ptr
	case 1:
		trampoline = signal1Ptr
	default:
		return 0
	}

	token := closures.Register(nativeClosure{cb: cb, data: data})
	id := handlerID(gSignalConnectData(p, signal, trampoline, token, destroyPtr, 0))
	if id == 0 {
		// GLib did not take the closure, so destroy_data never runs.
		closures.Unregister(token)
	}
	return id
}

// Disconnect removes handler id from p if GLib still has it.
func (n *Native) Disconnect(p Pointer, id SignalID) {
	if p == nil || id == 0 {
		return
	}
	if gSignalHandlerIsConnected(p, uint64(id)) == 0 {
		return
	}
	gSignalHandlerDisconnect(p, uint64(id))
}

// ParamName returns the name of a GParamSpec.
func (n *Native) ParamName(pspec Pointer) string {
	if pspec == nil {
		return ""
	}
	return gParamSpecGetName(pspec)
}

// GetProperty reads a property through a GValue of the property's type.
func (n *Native) GetProperty(p Pointer, name string) (any, bool) {
	if p == nil {
		return nil, false
	}
	pspec := gObjectClassFindProperty(instanceClass(p), name)
	if pspec == nil {
		Logger().Debug("unknown property",
			zap.String("type", n.TypeName(instanceType(p))), zap.String("property", name))
		return nil, false
	}
	var v gvalue
	gValueInit(&v, uintptr(pspecValueType(pspec)))
	defer gValueUnset(&v)
	gObjectGetProperty(p, name, &v)
	value, ok := readValue(&v)
	if !ok {
		Logger().Debug("unsupported property type",
			zap.String("property", name), zap.String("valueType", n.TypeName(Type(v.gType))))
	}
	return value, ok
}

// SetProperty writes a property, converting value to the property's type.
func (n *Native) SetProperty(p Pointer, name string, value any) bool {
	if p == nil {
		return false
	}
	pspec := gObjectClassFindProperty(instanceClass(p), name)
	if pspec == nil {
		Logger().Debug("unknown property",
			zap.String("type", n.TypeName(instanceType(p))), zap.String("property", name))
		return false
	}
	var v gvalue
	gValueInit(&v, uintptr(pspecValueType(pspec)))
	defer gValueUnset(&v)
	if !writeValue(&v, value) {
		Logger().Debug("property value has the wrong type",
			zap.String("property", name), zap.String("value", fmt.Sprintf("%T", value)))
		return false
	}
	gObjectSetProperty(p, name, &v)
	return true
}
