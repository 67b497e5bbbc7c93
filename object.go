package goglib

import (
	"go.uber.org/zap"

	"github.com/rayblake800/goglib/gobject"
)

// Object is a typed handle to one foreign object. It is implemented by
// *Owned and *Borrowed only.
type Object interface {
	// IsOwned reports whether the handle holds its own reference.
	IsOwned() bool

	// IsNull reports whether the handle currently refers to no live object.
	IsNull() bool

	// Type returns the object type the handle accepts. It is fixed at
	// construction.
	Type() gobject.Type

	// IsValidType reports whether p is nil or an instance of Type.
	IsValidType(p gobject.Pointer) bool

	// RefCount returns the foreign reference count, not counting any
	// reference held by the handle itself. Only use this for debugging.
	RefCount() int

	// Runtime returns the runtime the object lives in.
	Runtime() gobject.Runtime

	// Equal reports whether both handles refer to the same live object.
	Equal(other Object) bool

	// Holds reports whether the handle refers to p, which must not be nil.
	Holds(p gobject.Pointer) bool

	// acquire returns the object pointer. When release is true the pointer
	// carries a new reference the caller must drop.
	acquire() (p gobject.Pointer, release bool)
}

// object holds what every handle shares: its runtime and accepted type.
type object struct {
	rt  gobject.Runtime
	typ gobject.Type
}

func (o object) Type() gobject.Type {
	return o.typ
}

func (o object) Runtime() gobject.Runtime {
	return o.rt
}

func (o object) IsValidType(p gobject.Pointer) bool {
	return p == nil || o.rt.IsA(p, o.typ)
}

// checkType reports whether p may be stored, logging the mismatch otherwise.
func (o object) checkType(op string, p gobject.Pointer) bool {
	if o.IsValidType(p) {
		return true
	}
	Logger().Debug("ignoring object of the wrong type",
		zap.String("op", op),
		objectField(p),
		zap.String("want", o.rt.TypeName(o.typ)),
		zap.String("got", o.rt.TypeName(o.rt.TypeOf(p))))
	return false
}

// sameObject resolves both handles and compares their pointers.
func sameObject(a, b Object) bool {
	if a == nil || b == nil {
		return false
	}
	pa := NewObjectPtr(a)
	defer pa.Release()
	pb := NewObjectPtr(b)
	defer pb.Release()
	return pa.Pointer() != nil && pa.Pointer() == pb.Pointer()
}
