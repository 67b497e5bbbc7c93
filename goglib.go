// Package goglib lets Go code hold, share and observe GObject instances
// without reading freed memory, leaking references or leaving signal handlers
// connected to dead objects.
//
// Raw object pointers stay behind one of two handle types: Owned holds one
// reference and releases it, Borrowed observes an object through a weak
// reference. Code that must pass the raw pointer to the runtime takes it from
// an ObjectPtr, which lives for one scope only.
//
// SignalHandler tracks every signal connection an observer made and severs
// them when either side goes away.
//
// Every type talks to the object system through a gobject.Runtime. Use
// gobject.NewNative for libgobject-2.0 and gobjecttest.New in tests.
package goglib
