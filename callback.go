package goglib

import (
	"github.com/rayblake800/goglib/gobject"
)

// signalCallback and notifyCallback are the only functions handed to the
// runtime. Each resolves its token and forwards exactly once.

func signalCallback(source, arg gobject.Pointer, token uintptr) {
	c, ok := connections.Lookup(token)
	if !ok || c.closed.Load() {
		return
	}
	c.handler.signalEmitted(c, source, arg)
}

func notifyCallback(source, pspec gobject.Pointer, token uintptr) {
	c, ok := connections.Lookup(token)
	if !ok || c.closed.Load() {
		return
	}
	property := c.rt.ParamName(pspec)
	if property == "" {
		property = c.property
	}
	c.handler.propertyChanged(c, source, property)
}
