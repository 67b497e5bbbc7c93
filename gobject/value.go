//go:build !ios && !android && (amd64 || arm64)

package gobject

import (
	"math"
	"unsafe"
)

// pspecValueType reads G_PARAM_SPEC_VALUE_TYPE: the GTypeInstance header,
// the name pointer and the 32-bit flags (padded) precede it.
func pspecValueType(pspec unsafe.Pointer) Type {
	return *(*Type)(unsafe.Add(pspec, 24))
}

// instanceClass returns G_OBJECT_GET_CLASS(p).
func instanceClass(p unsafe.Pointer) unsafe.Pointer {
	return *(*unsafe.Pointer)(p)
}

// instanceType returns G_TYPE_FROM_INSTANCE(p).
func instanceType(p unsafe.Pointer) Type {
	class := instanceClass(p)
	if class == nil {
		return TypeInvalid
	}
	return *(*Type)(class)
}

// readValue converts an initialized GValue to a Go value.
func readValue(v *gvalue) (any, bool) {
	switch Type(gTypeFundamental(v.gType)) {
	case TypeBoolean:
		return gValueGetBoolean(v) != 0, true
	case TypeChar:
		return gValueGetSchar(v), true
	case TypeUChar:
		return gValueGetUchar(v), true
	case TypeInt:
		return gValueGetInt(v), true
	case TypeUInt:
		return gValueGetUint(v), true
	case TypeLong:
		return gValueGetLong(v), true
	case TypeULong:
		return gValueGetUlong(v), true
	case TypeInt64:
		return gValueGetInt64(v), true
	case TypeUInt64:
		return gValueGetUint64(v), true
	case TypeEnum:
		return gValueGetEnum(v), true
	case TypeFlags:
		return gValueGetFlags(v), true
	case TypeFloat:
		return gValueGetFloat(v), true
	case TypeDouble:
		return gValueGetDouble(v), true
	case TypeString:
		return gValueGetString(v), true
	case TypeObject:
		return Pointer(gValueDupObject(v)), true
	}
	return nil, false
}

// writeValue stores value into a GValue already initialized to its property
// type. Integer values are converted when they fit the target type.
func writeValue(v *gvalue, value any) bool {
	switch Type(gTypeFundamental(v.gType)) {
	case TypeBoolean:
		b, ok := value.(bool)
		if !ok {
			return false
		}
		var i int32
		if b {
			i = 1
		}
		gValueSetBoolean(v, i)
	case TypeChar:
		i, ok := AsInt64(value)
		if !ok || i < math.MinInt8 || i > math.MaxInt8 {
			return false
		}
		gValueSetSchar(v, int8(i))
	case TypeUChar:
		i, ok := AsInt64(value)
		if !ok || i < 0 || i > math.MaxUint8 {
			return false
		}
		gValueSetUchar(v, uint8(i))
	case TypeInt, TypeEnum:
		i, ok := AsInt64(value)
		if !ok || i < math.MinInt32 || i > math.MaxInt32 {
			return false
		}
		if Type(gTypeFundamental(v.gType)) == TypeEnum {
			gValueSetEnum(v, int32(i))
		} else {
			gValueSetInt(v, int32(i))
		}
	case TypeUInt, TypeFlags:
		i, ok := AsInt64(value)
		if !ok || i < 0 || i > math.MaxUint32 {
			return false
		}
		if Type(gTypeFundamental(v.gType)) == TypeFlags {
			gValueSetFlags(v, uint32(i))
		} else {
			gValueSetUint(v, uint32(i))
		}
	case TypeLong, TypeInt64:
		i, ok := AsInt64(value)
		if !ok {
			return false
		}
		if Type(gTypeFundamental(v.gType)) == TypeLong {
			gValueSetLong(v, i)
		} else {
			gValueSetInt64(v, i)
		}
	case TypeULong, TypeUInt64:
		var u uint64
		switch n := value.(type) {
		case uint64:
			u = n
		case uint:
			u = uint64(n)
		default:
			i, ok := AsInt64(value)
			if !ok || i < 0 {
				return false
			}
			u = uint64(i)
		}
		if Type(gTypeFundamental(v.gType)) == TypeULong {
			gValueSetUlong(v, u)
		} else {
			gValueSetUint64(v, u)
		}
	case TypeFloat:
		f, ok := AsFloat64(value)
		if !ok {
			return false
		}
		gValueSetFloat(v, float32(f))
	case TypeDouble:
		f, ok := AsFloat64(value)
		if !ok {
			return false
		}
		gValueSetDouble(v, f)
	case TypeString:
		s, ok := value.(string)
		if !ok {
			return false
		}
		gValueSetString(v, s)
	case TypeObject:
		switch p := value.(type) {
		case nil:
			gValueSetObject(v, nil)
		case unsafe.Pointer:
			gValueSetObject(v, p)
		default:
			return false
		}
	default:
		return false
	}
	return true
}
