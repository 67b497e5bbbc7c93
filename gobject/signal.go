//go:build !ios && !android && (amd64 || arm64)

package gobject

import (
	"runtime"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
	"go.uber.org/zap"

	"github.com/rayblake800/goglib/internal/handles"
)

// nativeClosure is what one connected GLib handler resolves to.
type nativeClosure struct {
	cb   Callback
	data uintptr
}

// closures holds every closure GLib may still call. GLib receives only the
// token; the destroy-notify trampoline drops it when GLib frees the closure.
var closures = handles.New[nativeClosure]()

// Pre-registered trampolines to avoid hitting purego's callback limit.
// They are created once and shared by every connection.
var (
	trampolineOnce sync.Once
	signal0Ptr     uintptr
	signal1Ptr     uintptr
	destroyPtr     uintptr
)

func initTrampolines() {
	trampolineOnce.Do(func() {
		// void handler(gpointer instance, gpointer user_data)
		signal0Ptr = purego.NewCallback(func(_ purego.CDecl, instance unsafe.Pointer, token uintptr) {
			dispatchSignal(instance, nil, token)
		})

		// void handler(gpointer instance, gpointer arg, gpointer user_data)
		signal1Ptr = purego.NewCallback(func(_ purego.CDecl, instance, arg unsafe.Pointer, token uintptr) {
			dispatchSignal(instance, arg, token)
		})

		// void destroy_data(gpointer data, GClosure *closure)
		destroyPtr = purego.NewCallback(func(_ purego.CDecl, token uintptr, _ unsafe.Pointer) {
			closures.Unregister(token)
		})
	})
}

// dispatchSignal runs on whatever thread GLib emits from. A panic must not
// unwind into C frames.
func dispatchSignal(instance, arg unsafe.Pointer, token uintptr) {
	c, ok := closures.Lookup(token)
	if !ok || c.cb == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			Logger().Error("signal callback panicked", zap.Any("panic", r))
		}
	}()
	c.cb(instance, arg, c.data)
}

// signalArity returns how many parameters the handler of signal receives,
// or -1 if no trampoline matches its C signature.
func signalArity(p unsafe.Pointer, signal string) int {
	var id, detail uint32
	if gSignalParseName(signal, uintptr(instanceType(p)), &id, &detail, 0) == 0 {
		Logger().Debug("unknown signal", zap.String("signal", signal))
		return -1
	}
	var q signalQuery
	gSignalQuery(id, &q)
	if q.signalID == 0 {
		return -1
	}
	// Non-void returns would be read from an unset register.
	if Type(q.returnType&^1) != TypeNone {
		Logger().Debug("signal returns a value",
			zap.String("signal", signal), zap.Uintptr("returnType", q.returnType))
		return -1
	}
	switch q.nParams {
	case 0:
		return 0
	case 1:
		if q.paramTypes == nil {
			return -1
		}
		// G_SIGNAL_TYPE_STATIC_SCOPE is stored in the low bit.
		paramType := *(*uintptr)(q.paramTypes) &^ 1
		switch Type(gTypeFundamental(paramType)) {
		case TypeFloat, TypeDouble:
			// Passed in floating point registers, not where the trampoline reads.
			Logger().Debug("signal parameter is a float", zap.String("signal", signal))
			return -1
		}
		return 1
	}
	Logger().Debug("signal has too many parameters",
		zap.String("signal", signal), zap.Uint32("params", q.nParams))
	return -1
}

// handlerID converts a gulong return value. gulong is 32 bits on Windows.
func handlerID(id uint64) SignalID {
	if runtime.GOOS == "windows" {
		id &= 0xffffffff
	}
	return SignalID(id)
}
