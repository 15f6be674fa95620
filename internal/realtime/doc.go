// Package realtime implements the connection manager for the crmdeck
// realtime feed.
//
// The Manager owns the transport handle and its lifecycle, translates
// transport retry notifications into externally visible connection states,
// buffers outbound messages while disconnected in a bounded FIFO queue,
// routes server-pushed domain events to registered handlers, and republishes
// every state transition as a connection:status event so UI surfaces can
// subscribe to connection health like any other event.
//
// Connect, Disconnect, and Emit never block and never return errors to the
// caller; outcomes are observed through the status event stream.
package realtime
