package goglib

import (
	"sync/atomic"

	"github.com/rayblake800/goglib/gobject"
	"github.com/rayblake800/goglib/internal/handles"
)

// connections maps the token the runtime passes back to each callback to
// its Connection. The runtime never holds a Go pointer.
var connections = handles.New[*Connection]()

// Connection is one signal subscription made by a SignalHandler.
type Connection struct {
	signal   string
	property string
	id       gobject.SignalID
	token    uintptr

	handler *SignalHandler
	rt      gobject.Runtime
	typ     gobject.Type
	fn      SignalFunc

	closed atomic.Bool
}

// Signal returns the detailed signal name.
func (c *Connection) Signal() string {
	return c.signal
}

// ID returns the handler id the runtime assigned.
func (c *Connection) ID() gobject.SignalID {
	return c.id
}

// Connected reports whether the subscription is still active.
func (c *Connection) Connected() bool {
	return !c.closed.Load()
}

// Disconnect severs this subscription only. It reports whether the handler
// was still connected on a live object.
func (c *Connection) Disconnect() bool {
	return c.handler.disconnect(c)
}

// close marks c inactive and drops its token. It returns false if c was
// already closed.
func (c *Connection) close() bool {
	if c.closed.Swap(true) {
		return false
	}
	connections.Unregister(c.token)
	return true
}
