package signal

import "sync/atomic"

// Connection tracks one handler's membership in a signal.
//
// Connections are created by Signal.Connect and owned by the signal;
// callers hold them only to query liveness and to disconnect. A
// connection must not be used after the owning signal is closed, other
// than observing that it is now disconnected.
type Connection[T any] struct {
	signal    *Signal[T]
	token     uint64
	connected atomic.Bool
}

// Connected reports whether the connection's handler is still
// registered. It never becomes true again after a disconnect.
func (c *Connection[T]) Connected() bool {
	return c.connected.Load()
}

// Disconnect removes the connection's handler from the owning signal.
// Other connections are unaffected, regardless of the order in which
// they were made. Disconnect is idempotent.
func (c *Connection[T]) Disconnect() {
	if !c.connected.CompareAndSwap(true, false) {
		return
	}
	c.signal.disconnect(c.token)
}
