//go:build !ios && !android && (amd64 || arm64)

package gobject

import (
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/rayblake800/goglib/internal/bindings"
)

// ErrNotLoaded is returned when the native runtime is used before GLib is
// loaded.
var ErrNotLoaded = bindings.ErrNotLoaded

// ErrLibraryNotFound is returned when libgobject-2.0 or libglib-2.0 cannot be
// found.
var ErrLibraryNotFound = bindings.ErrLibraryNotFound

// gvalue mirrors GValue: a type tag followed by a two word data union.
type gvalue struct {
	gType uintptr
	data  [2]uint64
}

// signalQuery mirrors GSignalQuery.
type signalQuery struct {
	signalID    uint32
	signalName  unsafe.Pointer
	itype       uintptr
	signalFlags uint32
	returnType  uintptr
	nParams     uint32
	paramTypes  unsafe.Pointer
}

// Function bindings - registered by registerBindings
var (
	gObjectRef        func(obj unsafe.Pointer) unsafe.Pointer
	gObjectUnref      func(obj unsafe.Pointer)
	gObjectRefSink    func(obj unsafe.Pointer) unsafe.Pointer
	gObjectIsFloating func(obj unsafe.Pointer) int32

	gTypeCheckInstanceIsA func(instance unsafe.Pointer, ifaceType uintptr) int32
	gTypeName             func(t uintptr) string
	gTypeFromName         func(name string) uintptr
	gTypeFundamental      func(t uintptr) uintptr
	gTypeClassRef         func(t uintptr) unsafe.Pointer
	gTypeClassUnref       func(class unsafe.Pointer)

	gWeakRefInit  func(slot, obj unsafe.Pointer)
	gWeakRefSet   func(slot, obj unsafe.Pointer)
	gWeakRefGet   func(slot unsafe.Pointer) unsafe.Pointer
	gWeakRefClear func(slot unsafe.Pointer)

	gMalloc0 func(size uintptr) unsafe.Pointer
	gFree    func(mem unsafe.Pointer)

	gSignalConnectData        func(instance unsafe.Pointer, detailedSignal string, handler, data, destroyData uintptr, flags int32) uint64
	gSignalHandlerDisconnect  func(instance unsafe.Pointer, handlerID uint64)
	gSignalHandlerIsConnected func(instance unsafe.Pointer, handlerID uint64) int32
	gSignalParseName          func(detailedSignal string, itype uintptr, signalID, detail *uint32, forceDetailQuark int32) int32
	gSignalQuery              func(signalID uint32, query *signalQuery)
	gParamSpecGetName         func(pspec unsafe.Pointer) string
	gObjectClassFindProperty  func(class unsafe.Pointer, name string) unsafe.Pointer
	gObjectGetProperty        func(obj unsafe.Pointer, name string, value *gvalue)
	gObjectSetProperty        func(obj unsafe.Pointer, name string, value *gvalue)
	gObjectNewWithProperties  func(t uintptr, n uint32, names, values unsafe.Pointer) unsafe.Pointer

	gValueInit       func(value *gvalue, t uintptr) unsafe.Pointer
	gValueUnset      func(value *gvalue)
	gValueGetBoolean func(value *gvalue) int32
	gValueSetBoolean func(value *gvalue, v int32)
	gValueGetSchar   func(value *gvalue) int8
	gValueSetSchar   func(value *gvalue, v int8)
	gValueGetUchar   func(value *gvalue) uint8
	gValueSetUchar   func(value *gvalue, v uint8)
	gValueGetInt     func(value *gvalue) int32
	gValueSetInt     func(value *gvalue, v int32)
	gValueGetUint    func(value *gvalue) uint32
	gValueSetUint    func(value *gvalue, v uint32)
	gValueGetLong    func(value *gvalue) int64
	gValueSetLong    func(value *gvalue, v int64)
	gValueGetUlong   func(value *gvalue) uint64
	gValueSetUlong   func(value *gvalue, v uint64)
	gValueGetInt64   func(value *gvalue) int64
	gValueSetInt64   func(value *gvalue, v int64)
	gValueGetUint64  func(value *gvalue) uint64
	gValueSetUint64  func(value *gvalue, v uint64)
	gValueGetFloat   func(value *gvalue) float32
	gValueSetFloat   func(value *gvalue, v float32)
	gValueGetDouble  func(value *gvalue) float64
	gValueSetDouble  func(value *gvalue, v float64)
	gValueGetString  func(value *gvalue) string
	gValueSetString  func(value *gvalue, v string)
	gValueGetEnum    func(value *gvalue) int32
	gValueSetEnum    func(value *gvalue, v int32)
	gValueGetFlags   func(value *gvalue) uint32
	gValueSetFlags   func(value *gvalue, v uint32)
	gValueDupObject  func(value *gvalue) unsafe.Pointer
	gValueSetObject  func(value *gvalue, obj unsafe.Pointer)

	registerOnce       sync.Once
	bindingsRegistered bool
)

// load loads GLib and registers every function binding once.
func load() error {
	if err := bindings.Load(); err != nil {
		return err
	}
	registerOnce.Do(registerBindings)
	return nil
}

func registerBindings() {
	obj := bindings.LibGObject()
	glib := bindings.LibGLib()
	if obj == 0 || glib == 0 {
		return
	}

	purego.RegisterLibFunc(&gObjectRef, obj, "g_object_ref")
	purego.RegisterLibFunc(&gObjectUnref, obj, "g_object_unref")
	purego.RegisterLibFunc(&gObjectRefSink, obj, "g_object_ref_sink")
	purego.RegisterLibFunc(&gObjectIsFloating, obj, "g_object_is_floating")

	purego.RegisterLibFunc(&gTypeCheckInstanceIsA, obj, "g_type_check_instance_is_a")
	purego.RegisterLibFunc(&gTypeName, obj, "g_type_name")
	purego.RegisterLibFunc(&gTypeFromName, obj, "g_type_from_name")
	purego.RegisterLibFunc(&gTypeFundamental, obj, "g_type_fundamental")
	purego.RegisterLibFunc(&gTypeClassRef, obj, "g_type_class_ref")
	purego.RegisterLibFunc(&gTypeClassUnref, obj, "g_type_class_unref")

	purego.RegisterLibFunc(&gWeakRefInit, obj, "g_weak_ref_init")
	purego.RegisterLibFunc(&gWeakRefSet, obj, "g_weak_ref_set")
	purego.RegisterLibFunc(&gWeakRefGet, obj, "g_weak_ref_get")
	purego.RegisterLibFunc(&gWeakRefClear, obj, "g_weak_ref_clear")

	purego.RegisterLibFunc(&gMalloc0, glib, "g_malloc0")
	purego.RegisterLibFunc(&gFree, glib, "g_free")
	purego.RegisterLibFunc(&gLogSetDefaultHandler, glib, "g_log_set_default_handler")

	purego.RegisterLibFunc(&gSignalConnectData, obj, "g_signal_connect_data")
	purego.RegisterLibFunc(&gSignalHandlerDisconnect, obj, "g_signal_handler_disconnect")
	purego.RegisterLibFunc(&gSignalHandlerIsConnected, obj, "g_signal_handler_is_connected")
	purego.RegisterLibFunc(&gSignalParseName, obj, "g_signal_parse_name")
	purego.RegisterLibFunc(&gSignalQuery, obj, "g_signal_query")
	purego.RegisterLibFunc(&gParamSpecGetName, obj, "g_param_spec_get_name")
	purego.RegisterLibFunc(&gObjectClassFindProperty, obj, "g_object_class_find_property")
	purego.RegisterLibFunc(&gObjectGetProperty, obj, "g_object_get_property")
	purego.RegisterLibFunc(&gObjectSetProperty, obj, "g_object_set_property")
	purego.RegisterLibFunc(&gObjectNewWithProperties, obj, "g_object_new_with_properties")

	purego.RegisterLibFunc(&gValueInit, obj, "g_value_init")
	purego.RegisterLibFunc(&gValueUnset, obj, "g_value_unset")
	purego.RegisterLibFunc(&gValueGetBoolean, obj, "g_value_get_boolean")
	purego.RegisterLibFunc(&gValueSetBoolean, obj, "g_value_set_boolean")
	purego.RegisterLibFunc(&gValueGetSchar, obj, "g_value_get_schar")
	purego.RegisterLibFunc(&gValueSetSchar, obj, "g_value_set_schar")
	purego.RegisterLibFunc(&gValueGetUchar, obj, "g_value_get_uchar")
	purego.RegisterLibFunc(&gValueSetUchar, obj, "g_value_set_uchar")
	purego.RegisterLibFunc(&gValueGetInt, obj, "g_value_get_int")
	purego.RegisterLibFunc(&gValueSetInt, obj, "g_value_set_int")
	purego.RegisterLibFunc(&gValueGetUint, obj, "g_value_get_uint")
	purego.RegisterLibFunc(&gValueSetUint, obj, "g_value_set_uint")
	purego.RegisterLibFunc(&gValueGetLong, obj, "g_value_get_long")
	purego.RegisterLibFunc(&gValueSetLong, obj, "g_value_set_long")
	purego.RegisterLibFunc(&gValueGetUlong, obj, "g_value_get_ulong")
	purego.RegisterLibFunc(&gValueSetUlong, obj, "g_value_set_ulong")
	purego.RegisterLibFunc(&gValueGetInt64, obj, "g_value_get_int64")
	purego.RegisterLibFunc(&gValueSetInt64, obj, "g_value_set_int64")
	purego.RegisterLibFunc(&gValueGetUint64, obj, "g_value_get_uint64")
	purego.RegisterLibFunc(&gValueSetUint64, obj, "g_value_set_uint64")
	purego.RegisterLibFunc(&gValueGetFloat, obj, "g_value_get_float")
	purego.RegisterLibFunc(&gValueSetFloat, obj, "g_value_set_float")
	purego.RegisterLibFunc(&gValueGetDouble, obj, "g_value_get_double")
	purego.RegisterLibFunc(&gValueSetDouble, obj, "g_value_set_double")
	purego.RegisterLibFunc(&gValueGetString, obj, "g_value_get_string")
	purego.RegisterLibFunc(&gValueSetString, obj, "g_value_set_string")
	purego.RegisterLibFunc(&gValueGetEnum, obj, "g_value_get_enum")
	purego.RegisterLibFunc(&gValueSetEnum, obj, "g_value_set_enum")
	purego.RegisterLibFunc(&gValueGetFlags, obj, "g_value_get_flags")
	purego.RegisterLibFunc(&gValueSetFlags, obj, "g_value_set_flags")
	purego.RegisterLibFunc(&gValueDupObject, obj, "g_value_dup_object")
	purego.RegisterLibFunc(&gValueSetObject, obj, "g_value_set_object")

	bindingsRegistered = true
}
