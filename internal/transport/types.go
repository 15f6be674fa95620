package transport

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"
)

// Errors
var ErrNotConnected = errors.New("not connected")

// Transport is a bidirectional, self-retrying message transport. Connect
// returns immediately; outcomes arrive through the Handler.
type Transport interface {
	// Connect starts the dial/retry loop with the given bearer token.
	// No-op if the transport is already running.
	Connect(ctx context.Context, token string) error

	// Send writes one named event to the connection.
	Send(event string, payload []byte) error

	// Close tears the connection down and suppresses any pending retry.
	Close() error

	// ID identifies this transport instance in logs and error reports.
	ID() string
}

// Handler receives transport callbacks. All callbacks are invoked from the
// transport's single run goroutine.
type Handler interface {
	// HandleOpen fires after a successful dial.
	HandleOpen()

	// HandleClose fires when an established connection ends.
	HandleClose(reason CloseReason)

	// HandleError fires on mid-session errors that do not end the
	// connection (malformed frames, write failures).
	HandleError(err error)

	// HandleMessage delivers one named server frame. The payload is the
	// raw JSON data, forwarded verbatim.
	HandleMessage(event string, payload []byte)

	// HandleRetry fires before each backoff wait, carrying the attempt
	// number (1-based) and the configured cap.
	HandleRetry(attempt, maxAttempts int)

	// HandleExhausted fires when the retry budget is spent. The run loop
	// has stopped; only a new Connect call revives the transport.
	HandleExhausted(err error)
}

// CloseReason describes why an established connection ended.
type CloseReason struct {
	Code   int    // WebSocket close code, or -1 when none was received
	Text   string // Close frame text or underlying error message
	Manual bool   // True when Close() ended the connection locally
}

// ServerInitiated reports whether the server deliberately terminated the
// session (going away / service restart), as opposed to the link dropping.
func (r CloseReason) ServerInitiated() bool {
	return r.Code == websocket.CloseGoingAway || r.Code == websocket.CloseServiceRestart
}

// frame is the JSON envelope for every message on the wire.
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Config configures a Socket.
type Config struct {
	URL            string        // WebSocket URL (e.g., ws://localhost:4001/realtime)
	ConnectTimeout time.Duration // Handshake deadline per dial attempt
	WriteTimeout   time.Duration // Write deadline for sends
	PingInterval   time.Duration // Keepalive ping cadence
	PongTimeout    time.Duration // Max silence before the connection is considered stale
	MaxAttempts    int           // Retry budget per outage
	BaseDelay      time.Duration // First backoff delay
	MaxDelay       time.Duration // Backoff cap
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		ConnectTimeout: 20 * time.Second,
		WriteTimeout:   5 * time.Second,
		PingInterval:   15 * time.Second,
		PongTimeout:    60 * time.Second,
		MaxAttempts:    10,
		BaseDelay:      1 * time.Second,
		MaxDelay:       30 * time.Second,
	}
}
