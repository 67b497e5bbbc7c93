package goglib

import (
	"sync"

	"go.uber.org/zap"

	"github.com/rayblake800/goglib/gobject"
)

// SignalReceiver is implemented by every observer of a SignalHandler.
// ConnectSignals subscribes to everything the observer wants from source,
// usually through ConnectNotifySignal and ConnectSignal.
type SignalReceiver interface {
	ConnectSignals(source Object)
}

// PropertyReceiver is implemented by observers that subscribe to property
// changes. Receivers without it ignore them.
type PropertyReceiver interface {
	PropertyChanged(source Object, property string)
}

// SignalFunc handles one emission of a signal without a value. source is a
// Borrowed handle to the emitter, valid until the function returns. arg is
// the raw signal parameter, or nil for signals without one; it is only
// meaningful when the handler has no Dispatcher.
type SignalFunc func(source Object, arg gobject.Pointer)

// HandlerOptions configures a SignalHandler.
type HandlerOptions struct {
	// Dispatcher receives every callback. Nil runs callbacks on the thread
	// that emitted the signal.
	Dispatcher Dispatcher

	// Logger overrides the package logger for this handler.
	Logger *zap.Logger
}

// HandlerOption configures a SignalHandler.
type HandlerOption func(*HandlerOptions)

// WithDispatcher hands every callback to d instead of running it on the
// emitting thread.
func WithDispatcher(d Dispatcher) HandlerOption {
	return func(o *HandlerOptions) {
		o.Dispatcher = d
	}
}

// WithLogger sets the logger for the handler's diagnostics.
func WithLogger(l *zap.Logger) HandlerOption {
	return func(o *HandlerOptions) {
		o.Logger = l
	}
}

// sourceEntry holds every subscription a handler made on one object.
type sourceEntry struct {
	rt            gobject.Runtime
	typ           gobject.Type
	weak          *WeakRef
	referenceHeld bool
	conns         []*Connection
}

// SignalHandler records the signal connections one receiver made on any
// number of objects, and disconnects them all on Close.
//
// Objects are tracked through weak references unless a connection asked to
// hold a reference. Entries for objects that were finalized behind the
// handler's back are dropped the next time they are looked at.
type SignalHandler struct {
	receiver SignalReceiver
	opts     HandlerOptions

	mu         sync.Mutex
	sources    map[gobject.Pointer]*sourceEntry
	connecting map[gobject.Pointer]struct{}
	closed     bool
}

// NewSignalHandler returns a handler dispatching to receiver.
func NewSignalHandler(receiver SignalReceiver, opts ...HandlerOption) *SignalHandler {
	h := &SignalHandler{
		receiver:   receiver,
		sources:    make(map[gobject.Pointer]*sourceEntry),
		connecting: make(map[gobject.Pointer]struct{}),
	}
	for _, opt := range opts {
		opt(&h.opts)
	}
	return h
}

func (h *SignalHandler) log() *zap.Logger {
	if h.opts.Logger != nil {
		return h.opts.Logger
	}
	return Logger()
}

// ConnectAllSignals lets the receiver subscribe to source, unless the handler
// is already connected to it.
func (h *SignalHandler) ConnectAllSignals(source Object) {
	ptr := NewObjectPtr(source)
	defer ptr.Release()
	p := ptr.Pointer()
	if p == nil {
		h.log().Debug("not connecting signals of a null object")
		return
	}

	var stale []*ObjectPtr
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	if _, busy := h.connecting[p]; busy || h.liveEntry(p, &stale) != nil {
		h.mu.Unlock()
		releasePtrs(stale)
		return
	}
	h.connecting[p] = struct{}{}
	h.mu.Unlock()
	releasePtrs(stale)

	defer func() {
		h.mu.Lock()
		delete(h.connecting, p)
		h.mu.Unlock()
	}()
	h.receiver.ConnectSignals(source)
}

// ConnectSignal connects fn to signal on source and returns the connection,
// or nil if source is null or the runtime refused. With holdRef the handler
// keeps source alive until its subscriptions end.
func (h *SignalHandler) ConnectSignal(source Object, signal string, fn SignalFunc, holdRef bool) *Connection {
	if fn == nil {
		return nil
	}
	return h.connect(source, signal, "", fn, holdRef)
}

// ConnectNotifySignal subscribes the receiver's PropertyChanged to changes of
// property on source. An empty property subscribes to every property.
func (h *SignalHandler) ConnectNotifySignal(source Object, property string, holdRef bool) *Connection {
	signal := "notify"
	if property != "" {
		signal = gobject.NotifySignal(property)
	}
	return h.connect(source, signal, property, nil, holdRef)
}

func (h *SignalHandler) connect(source Object, signal, property string, fn SignalFunc, holdRef bool) *Connection {
	log := h.log().With(zap.String("signal", signal))
	if source == nil {
		log.Debug("not connecting to a nil object")
		return nil
	}
	ptr := NewObjectPtr(source)
	defer ptr.Release()
	p := ptr.Pointer()
	if p == nil {
		log.Debug("not connecting to a null object")
		return nil
	}

	rt := source.Runtime()
	c := &Connection{
		signal:   signal,
		property: property,
		handler:  h,
		rt:       rt,
		typ:      source.Type(),
		fn:       fn,
	}
	c.token = connections.Register(c)
	cb := gobject.Callback(signalCallback)
	if fn == nil {
		cb = notifyCallback
	}
	c.id = rt.Connect(p, signal, cb, c.token)
	if c.id == 0 {
		c.close()
		log.Debug("runtime refused the connection", objectField(p))
		return nil
	}

	var stale []*ObjectPtr
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		rt.Disconnect(p, c.id)
		c.close()
		return nil
	}
	e := h.liveEntry(p, &stale)
	if e == nil {
		e = &sourceEntry{rt: rt, typ: source.Type(), weak: WeakRefTo(rt, p)}
		h.sources[p] = e
	}
	if holdRef && !e.referenceHeld {
		rt.Ref(p)
		e.referenceHeld = true
	}
	e.conns = append(e.conns, c)
	h.mu.Unlock()
	releasePtrs(stale)
	return c
}

// liveEntry returns the entry for p if its object is still the one at p.
// A stale entry is removed and its connections closed; the runtime already
// dropped their handlers. References taken while checking are appended to
// release, to be dropped once h.mu is unlocked. Callers hold h.mu.
func (h *SignalHandler) liveEntry(p gobject.Pointer, release *[]*ObjectPtr) *sourceEntry {
	e, ok := h.sources[p]
	if !ok {
		return nil
	}
	cur := e.weak.resolve()
	*release = append(*release, cur)
	if cur.Pointer() == p {
		return e
	}
	h.log().Debug("pruning subscriptions of a finalized object", objectField(p))
	delete(h.sources, p)
	for _, c := range e.conns {
		c.close()
	}
	e.weak.Clear()
	return nil
}

func releasePtrs(ptrs []*ObjectPtr) {
	for _, ptr := range ptrs {
		ptr.Release()
	}
}

// IsConnected reports whether the handler has subscriptions on source.
func (h *SignalHandler) IsConnected(source Object) bool {
	ptr := NewObjectPtr(source)
	defer ptr.Release()
	if ptr.IsNull() {
		return false
	}
	var stale []*ObjectPtr
	h.mu.Lock()
	e := h.liveEntry(ptr.Pointer(), &stale)
	h.mu.Unlock()
	releasePtrs(stale)
	return e != nil
}

// SignalCount returns the number of subscriptions on source.
func (h *SignalHandler) SignalCount(source Object) int {
	ptr := NewObjectPtr(source)
	defer ptr.Release()
	if ptr.IsNull() {
		return 0
	}
	var stale []*ObjectPtr
	h.mu.Lock()
	n := 0
	if e := h.liveEntry(ptr.Pointer(), &stale); e != nil {
		n = len(e.conns)
	}
	h.mu.Unlock()
	releasePtrs(stale)
	return n
}

// SourceCount returns the number of objects with subscriptions, including
// finalized ones not yet pruned.
func (h *SignalHandler) SourceCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sources)
}

// DisconnectSignals severs every subscription on source and reports whether
// any handler was disconnected.
func (h *SignalHandler) DisconnectSignals(source Object) bool {
	ptr := NewObjectPtr(source)
	defer ptr.Release()
	if ptr.IsNull() {
		return false
	}
	h.mu.Lock()
	e, ok := h.sources[ptr.Pointer()]
	delete(h.sources, ptr.Pointer())
	h.mu.Unlock()
	if !ok {
		return false
	}
	return h.teardown(e) > 0
}

// DisconnectAll severs every subscription. The handler stays usable.
func (h *SignalHandler) DisconnectAll() {
	h.mu.Lock()
	sources := h.sources
	h.sources = make(map[gobject.Pointer]*sourceEntry)
	h.mu.Unlock()
	for _, e := range sources {
		h.teardown(e)
	}
}

// Close severs every subscription and refuses new ones. Callbacks still
// queued on a Dispatcher are skipped. Calling Close again does nothing.
func (h *SignalHandler) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	h.mu.Unlock()
	h.DisconnectAll()
}

// teardown disconnects every handler of e from its object if the object is
// still alive, drops the reference e held and clears its weak slot. It runs
// without h.mu so the runtime may call back into the handler. It returns the
// number of handlers disconnected.
func (h *SignalHandler) teardown(e *sourceEntry) int {
	cur := e.weak.resolve()
	defer cur.Release()

	n := 0
	if p := cur.Pointer(); p != nil {
		for _, c := range e.conns {
			if c.close() {
				e.rt.Disconnect(p, c.id)
				n++
			}
		}
		if e.referenceHeld {
			e.rt.Unref(p)
		}
	}
	for _, c := range e.conns {
		c.close()
	}
	e.weak.Clear()
	return n
}

// disconnect severs a single connection, dropping its object's entry once
// it holds no more connections.
func (h *SignalHandler) disconnect(c *Connection) bool {
	var stale []*ObjectPtr
	var emptied *sourceEntry
	var owner gobject.Pointer

	h.mu.Lock()
	for p, e := range h.sources {
		for i, ec := range e.conns {
			if ec != c {
				continue
			}
			owner = p
			e.conns = append(e.conns[:i:i], e.conns[i+1:]...)
			if len(e.conns) == 0 {
				delete(h.sources, p)
				emptied = e
			}
			break
		}
		if owner != nil {
			break
		}
	}
	if owner == nil {
		// Not in the table: already severed, or taken out by a teardown
		// that will disconnect it.
		h.mu.Unlock()
		return false
	}
	var cur *ObjectPtr
	if emptied != nil {
		cur = emptied.weak.resolve()
	} else {
		cur = h.sources[owner].weak.resolve()
	}
	stale = append(stale, cur)
	h.mu.Unlock()
	defer releasePtrs(stale)

	if !c.close() {
		return false
	}
	disconnected := false
	if p := cur.Pointer(); p != nil {
		c.rt.Disconnect(p, c.id)
		disconnected = true
		if emptied != nil && emptied.referenceHeld {
			c.rt.Unref(p)
		}
	}
	if emptied != nil {
		emptied.weak.Clear()
	}
	return disconnected
}

// ShareSignalSources connects the receiver to every object other is
// connected to.
func (h *SignalHandler) ShareSignalSources(other *SignalHandler) {
	if other == nil || other == h {
		return
	}
	type shared struct {
		rt  gobject.Runtime
		typ gobject.Type
		ptr *ObjectPtr
	}
	var sources []shared
	other.mu.Lock()
	for _, e := range other.sources {
		ptr := e.weak.resolve()
		sources = append(sources, shared{rt: e.rt, typ: e.typ, ptr: ptr})
	}
	other.mu.Unlock()

	for _, s := range sources {
		if p := s.ptr.Pointer(); p != nil {
			b := NewBorrowed(s.rt, s.typ, p)
			h.ConnectAllSignals(b)
			b.Release()
		}
		s.ptr.Release()
	}
}

// dropReporter is implemented by dispatchers that can refuse work, such as a
// closed MainContext.
type dropReporter interface {
	DispatchOr(fn, onFailure func()) bool
}

// dispatch runs fn through the handler's Dispatcher. If the dispatcher drops
// fn, onDrop runs instead.
func (h *SignalHandler) dispatch(fn, onDrop func()) {
	switch d := h.opts.Dispatcher.(type) {
	case nil:
		fn()
	case dropReporter:
		d.DispatchOr(fn, onDrop)
	default:
		d.Dispatch(fn)
	}
}

// signalEmitted forwards one emission to the connection's function.
func (h *SignalHandler) signalEmitted(c *Connection, source, arg gobject.Pointer) {
	b := NewBorrowed(c.rt, c.typ, source)
	h.dispatch(func() {
		defer b.Release()
		if c.closed.Load() {
			return
		}
		c.fn(b, arg)
	}, b.Release)
}

// propertyChanged forwards one property change to the receiver.
func (h *SignalHandler) propertyChanged(c *Connection, source gobject.Pointer, property string) {
	pr, ok := h.receiver.(PropertyReceiver)
	if !ok {
		return
	}
	b := NewBorrowed(c.rt, c.typ, source)
	h.dispatch(func() {
		defer b.Release()
		if c.closed.Load() {
			return
		}
		pr.PropertyChanged(b, property)
	}, b.Release)
}
