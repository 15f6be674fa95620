// Package events defines the event vocabulary exchanged with the crmdeck
// backend over the realtime connection.
//
// Server-pushed domain events announce entity changes (contacts, tasks,
// messages, calendar events, workflows). Payloads are opaque JSON owned by
// the backend; this package only names the events, it does not decode them.
// The reserved connection:status event is produced locally by the connection
// manager and never arrives from the server.
package events
