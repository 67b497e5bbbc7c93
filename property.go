package goglib

import (
	"go.uber.org/zap"

	"github.com/rayblake800/goglib/gobject"
)

// Property reads property name of o as a T. Integer and float values are
// converted when T is int, int64, uint, uint64 or float64 and the value fits.
// Object-valued properties are read with ObjectProperty.
func Property[T any](o Object, name string) (T, bool) {
	var zero T
	var value any
	var ok bool
	WithObject(o, func(p gobject.Pointer) {
		value, ok = o.Runtime().GetProperty(p, name)
	})
	if !ok {
		return zero, false
	}
	if p, isPtr := value.(gobject.Pointer); isPtr {
		if p != nil {
			o.Runtime().Unref(p)
		}
		Logger().Debug("object property read as a value", zap.String("property", name))
		return zero, false
	}
	v, ok := convertValue[T](value)
	if !ok {
		Logger().Debug("property has a different type",
			zap.String("property", name), zap.Any("value", value))
	}
	return v, ok
}

func convertValue[T any](value any) (T, bool) {
	if v, ok := value.(T); ok {
		return v, true
	}
	var out T
	switch dst := any(&out).(type) {
	case *int:
		i, ok := gobject.AsInt64(value)
		if !ok || int64(int(i)) != i {
			return out, false
		}
		*dst = int(i)
	case *int64:
		i, ok := gobject.AsInt64(value)
		if !ok {
			return out, false
		}
		*dst = i
	case *uint:
		i, ok := gobject.AsInt64(value)
		if !ok || i < 0 {
			return out, false
		}
		*dst = uint(i)
	case *uint64:
		if u, ok := value.(uint64); ok {
			*dst = u
			break
		}
		i, ok := gobject.AsInt64(value)
		if !ok || i < 0 {
			return out, false
		}
		*dst = uint64(i)
	case *float64:
		f, ok := gobject.AsFloat64(value)
		if !ok {
			return out, false
		}
		*dst = f
	default:
		return out, false
	}
	return out, true
}

// SetProperty writes property name of o. An Object value is passed as its
// pointer.
func SetProperty(o Object, name string, value any) bool {
	if v, ok := value.(Object); ok {
		ptr := NewObjectPtr(v)
		defer ptr.Release()
		value = ptr.Pointer()
	}
	var ok bool
	WithObject(o, func(p gobject.Pointer) {
		ok = o.Runtime().SetProperty(p, name, value)
	})
	return ok
}

// ObjectProperty reads an object-valued property as an Owned of type t.
// The result is null if the property is unset, missing or of another type.
// A floating value is left floating; the Owned holds the full reference the
// getter returned.
func ObjectProperty(o Object, name string, t gobject.Type) *Owned {
	var value any
	WithObject(o, func(p gobject.Pointer) {
		value, _ = o.Runtime().GetProperty(p, name)
	})
	p, _ := value.(gobject.Pointer)
	return adoptOwned(o.Runtime(), t, p, false)
}
