// Package transport implements the bidirectional message transport beneath
// the connection manager.
//
// A Socket wraps a single gorilla/websocket connection to the crmdeck
// backend. It owns the bounded retry loop (dial failures and dropped
// connections are retried with exponential backoff up to a configured
// attempt cap), frames messages as JSON {event, data} envelopes, and keeps
// the connection alive with ping/pong heartbeats. Lifecycle and message
// callbacks are delivered to a Handler from the socket's single run
// goroutine, so handler implementations never see concurrent calls.
package transport
