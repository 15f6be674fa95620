package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/crmdeck/realtime/internal/auth"
	"github.com/crmdeck/realtime/internal/events"
	"github.com/crmdeck/realtime/internal/track"
	"github.com/crmdeck/realtime/internal/transport"
)

// TransportFactory builds the transport for one connection session. Tests
// inject fakes through it.
type TransportFactory func(cfg transport.Config, h transport.Handler, logger *slog.Logger) transport.Transport

// Config configures a Manager.
type Config struct {
	Transport     transport.Config
	QueueCapacity int // Outbound queue bound; 0 means the default (100)
}

// Stats is a point-in-time snapshot of the manager.
type Stats struct {
	State        ConnectionState
	Attempt      int
	MaxAttempts  int
	QueueDepth   int
	QueueDropped int64
	Handlers     int
}

// Manager owns the realtime connection: lifecycle, auth injection, event
// routing, outbound queueing, and status broadcasting. Construct one per
// application at the composition root and call Disconnect at teardown.
type Manager struct {
	cfg      Config
	tokens   auth.TokenSource
	logger   *slog.Logger
	reporter track.Reporter
	factory  TransportFactory

	disp  *dispatcher
	queue *outboundQueue

	mu        sync.Mutex
	state     ConnectionState
	transport transport.Transport
	ctx       context.Context
	attempt   int
	manual    bool
}

// Option customizes a Manager.
type Option func(*Manager)

// WithReporter routes recovered errors to r instead of the log-backed
// default.
func WithReporter(r track.Reporter) Option {
	return func(m *Manager) { m.reporter = r }
}

// WithTransportFactory overrides how transports are built.
func WithTransportFactory(f TransportFactory) Option {
	return func(m *Manager) { m.factory = f }
}

// NewManager creates a Manager. The token source decides whether the
// realtime feature is available at all; with no token Connect is a silent
// no-op.
func NewManager(cfg Config, tokens auth.TokenSource, logger *slog.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.QueueCapacity == 0 {
		cfg.QueueCapacity = 100
	}

	m := &Manager{
		cfg:    cfg,
		tokens: tokens,
		logger: logger,
		disp:   newDispatcher(logger),
		queue:  newOutboundQueue(cfg.QueueCapacity),
		state:  StateDisconnected,
		factory: func(tc transport.Config, h transport.Handler, l *slog.Logger) transport.Transport {
			return transport.NewSocket(tc, h, l)
		},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.reporter == nil {
		m.reporter = track.NewLogReporter(logger)
	}

	return m
}

// Connect opens the realtime connection. It returns immediately and is a
// no-op while a connection or attempt is already in flight. Without an auth
// token the feature is simply unavailable: Connect logs and does nothing.
func (m *Manager) Connect(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}

	m.mu.Lock()
	switch m.state {
	case StateConnecting, StateConnected, StateReconnecting:
		state := m.state
		m.mu.Unlock()
		m.logger.Debug("connect ignored", "state", string(state))
		return
	}

	token, err := m.tokens.Token()
	if err != nil {
		m.mu.Unlock()
		m.logger.Warn("token source failed, realtime unavailable", "error", err)
		return
	}
	if token == "" {
		m.mu.Unlock()
		m.logger.Info("no auth token, realtime unavailable")
		return
	}

	m.manual = false
	m.attempt = 0
	m.ctx = ctx
	m.state = StateConnecting
	t := m.factory(m.cfg.Transport, transportHook{m}, m.logger)
	m.transport = t
	m.mu.Unlock()

	m.publish(StateConnecting, events.StatusPayload{})

	if err := t.Connect(ctx, token); err != nil {
		m.logger.Warn("transport connect failed", "socket_id", t.ID(), "error", err)
	}
}

// Disconnect tears the connection down, suppresses reconnection, and resets
// retry counters. Safe to call in any state.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	m.manual = true
	m.attempt = 0
	was := m.state
	m.state = StateDisconnected
	t := m.transport
	m.transport = nil
	m.mu.Unlock()

	if t != nil {
		t.Close()
	}
	if was != StateDisconnected {
		m.publish(StateDisconnected, events.StatusPayload{})
	}
}

// Emit sends a named event to the server, or queues it while disconnected.
// The call never blocks and never reports failure to the caller; queued
// messages are replayed on the next successful connection.
func (m *Manager) Emit(event events.Event, payload []byte) {
	m.mu.Lock()
	state := m.state
	t := m.transport
	m.mu.Unlock()

	if state == StateConnected && t != nil {
		err := t.Send(string(event), payload)
		if err == nil {
			return
		}
		m.logger.Warn("send failed, queueing message",
			"event", string(event),
			"socket_id", t.ID(),
			"error", err,
		)
	}

	m.queue.push(QueuedMessage{
		Event:      event,
		Payload:    payload,
		EnqueuedAt: time.Now(),
	})
}

// On registers a handler for event and returns its unsubscribe function.
// Unknown event names are rejected with a no-op unsubscribe.
func (m *Manager) On(event events.Event, fn Handler) func() {
	if !event.Valid() {
		m.logger.Warn("refusing handler for unknown event", "event", string(event))
		return func() {}
	}
	return m.disp.on(event, fn)
}

// State returns the current connection state.
func (m *Manager) State() ConnectionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Stats returns a snapshot of the manager.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	state := m.state
	attempt := m.attempt
	m.mu.Unlock()

	return Stats{
		State:        state,
		Attempt:      attempt,
		MaxAttempts:  m.cfg.Transport.MaxAttempts,
		QueueDepth:   m.queue.len(),
		QueueDropped: m.queue.droppedCount(),
		Handlers:     m.disp.handlerCount(),
	}
}

// transportHook adapts transport callbacks onto the Manager without
// exporting them on its API.
type transportHook struct {
	m *Manager
}

func (h transportHook) HandleOpen()                         { h.m.onOpen() }
func (h transportHook) HandleClose(r transport.CloseReason) { h.m.onClose(r) }
func (h transportHook) HandleError(err error)               { h.m.onError(err) }
func (h transportHook) HandleMessage(ev string, p []byte)   { h.m.onMessage(ev, p) }
func (h transportHook) HandleRetry(attempt, max int)        { h.m.onRetry(attempt, max) }
func (h transportHook) HandleExhausted(err error)           { h.m.onExhausted(err) }

func (m *Manager) onOpen() {
	m.mu.Lock()
	if m.manual {
		// A dial that was in flight when Disconnect ran can still complete.
		m.mu.Unlock()
		m.logger.Debug("ignoring open after manual disconnect")
		return
	}
	m.attempt = 0
	m.state = StateConnected
	m.mu.Unlock()

	// Subscribers see the connected status before queued messages replay.
	m.publish(StateConnected, events.StatusPayload{})
	m.flush()
}

func (m *Manager) onClose(reason transport.CloseReason) {
	m.mu.Lock()
	manual := m.manual || reason.Manual
	ctx := m.ctx
	m.mu.Unlock()

	if manual {
		// Disconnect already published the state change.
		return
	}

	if reason.ServerInitiated() {
		// The server ended the session deliberately; the transport's retry
		// loop has stopped, so re-initiate the connection ourselves.
		m.logger.Info("server closed session, reconnecting",
			"code", reason.Code,
			"reason", reason.Text,
		)

		m.mu.Lock()
		m.state = StateReconnecting
		m.mu.Unlock()
		m.publish(StateReconnecting, events.StatusPayload{Reason: reason.Text})

		token, err := m.tokens.Token()
		if err != nil || token == "" {
			m.logger.Warn("no auth token for reconnect", "error", err)
			m.mu.Lock()
			m.state = StateDisconnected
			m.transport = nil
			m.mu.Unlock()
			m.publish(StateDisconnected, events.StatusPayload{Reason: "token unavailable"})
			return
		}

		// The old socket's loop has exited and will refuse another Connect,
		// so the new session needs a fresh transport.
		m.mu.Lock()
		if m.manual {
			m.mu.Unlock()
			return
		}
		t := m.factory(m.cfg.Transport, transportHook{m}, m.logger)
		m.transport = t
		m.mu.Unlock()

		if err := t.Connect(ctx, token); err != nil {
			m.logger.Warn("transport connect failed", "socket_id", t.ID(), "error", err)
		}
		return
	}

	// Link dropped; the transport is already redialing.
	m.mu.Lock()
	m.state = StateReconnecting
	m.mu.Unlock()
	m.publish(StateReconnecting, events.StatusPayload{Reason: reason.Text})
}

func (m *Manager) onRetry(attempt, maxAttempts int) {
	m.mu.Lock()
	m.attempt = attempt
	m.state = StateReconnecting
	m.mu.Unlock()

	m.publish(StateReconnecting, events.StatusPayload{
		Attempt:     attempt,
		MaxAttempts: maxAttempts,
	})
}

func (m *Manager) onExhausted(err error) {
	norm := normalizeError(KindConnect, err)

	m.mu.Lock()
	m.state = StateFailed
	m.mu.Unlock()

	m.logger.Error("reconnection attempts exhausted, call Connect to retry",
		"error", norm,
	)
	m.report(norm)

	m.publish(StateFailed, events.StatusPayload{
		Reason:  "reconnect_exhausted",
		Message: norm.Message,
	})
}

func (m *Manager) onError(err error) {
	norm := normalizeError(KindSession, err)

	m.mu.Lock()
	attempt := m.attempt
	manual := m.manual
	t := m.transport
	m.mu.Unlock()

	socketID := ""
	if t != nil {
		socketID = t.ID()
	}

	m.logger.Warn("transport error",
		"kind", norm.Kind,
		"socket_id", socketID,
		"attempt", attempt,
		"manual_disconnect", manual,
		"error", norm.Message,
	)
	m.report(norm)
}

func (m *Manager) onMessage(name string, payload []byte) {
	event := events.Event(name)
	if !event.Valid() || event == events.ConnectionStatus {
		m.logger.Debug("ignoring unknown event", "event", name)
		return
	}
	m.disp.dispatch(event, payload)
}

// flush drains the outbound queue in FIFO order. A message whose send fails
// goes back to the head so order is preserved for the next flush.
func (m *Manager) flush() {
	m.mu.Lock()
	t := m.transport
	m.mu.Unlock()
	if t == nil {
		return
	}

	sent := 0
	for {
		msg, ok := m.queue.pop()
		if !ok {
			break
		}
		if err := t.Send(string(msg.Event), msg.Payload); err != nil {
			m.queue.pushFront(msg)
			m.logger.Warn("flush interrupted, message requeued",
				"event", string(msg.Event),
				"sent", sent,
				"remaining", m.queue.len(),
				"error", err,
			)
			return
		}
		sent++
	}

	if sent > 0 {
		m.logger.Debug("flushed outbound queue", "sent", sent)
	}
}

// publish republishes a state transition as a connection:status event.
func (m *Manager) publish(state ConnectionState, p events.StatusPayload) {
	p.Status = string(state)
	data, err := json.Marshal(p)
	if err != nil {
		m.logger.Error("encode status payload", "error", err)
		return
	}

	m.logger.Debug("connection status", "status", p.Status, "attempt", p.Attempt)
	m.disp.dispatch(events.ConnectionStatus, data)
}

func (m *Manager) report(err *TransportError) {
	m.mu.Lock()
	attempt := m.attempt
	manual := m.manual
	t := m.transport
	m.mu.Unlock()

	tags := map[string]string{
		"kind":              err.Kind,
		"attempt":           strconv.Itoa(attempt),
		"manual_disconnect": strconv.FormatBool(manual),
	}
	if t != nil {
		tags["socket_id"] = t.ID()
	}
	m.reporter.Capture(err, tags)
}
