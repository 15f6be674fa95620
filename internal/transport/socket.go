package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Socket is the gorilla/websocket implementation of Transport.
type Socket struct {
	cfg     Config
	handler Handler
	logger  *slog.Logger
	id      string

	// Write serialization
	writeMu sync.Mutex

	// State
	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
	running   bool
	closed    bool
	done      chan struct{}
}

var _ Transport = (*Socket)(nil)

// NewSocket creates a socket for the given endpoint. Callbacks fire on h
// from a single goroutine once Connect is called.
func NewSocket(cfg Config, h Handler, logger *slog.Logger) *Socket {
	if logger == nil {
		logger = slog.Default()
	}

	id := uuid.NewString()
	return &Socket{
		cfg:     cfg,
		handler: h,
		logger:  logger.With("socket_id", id),
		id:      id,
	}
}

// ID returns the socket's unique identifier.
func (s *Socket) ID() string {
	return s.id
}

// Connect starts the dial/retry loop. It returns immediately; the outcome is
// reported through the Handler. Calling Connect while a loop is already
// running is a no-op.
func (s *Socket) Connect(ctx context.Context, token string) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.closed = false
	s.done = make(chan struct{})
	done := s.done
	s.mu.Unlock()

	go s.run(ctx, token, done)
	return nil
}

// Send writes one named event to the connection.
func (s *Socket) Send(event string, payload []byte) error {
	s.mu.Lock()
	conn := s.conn
	connected := s.connected
	s.mu.Unlock()

	if !connected || conn == nil {
		return ErrNotConnected
	}

	data, err := json.Marshal(frame{Event: event, Data: payload})
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	return conn.WriteMessage(websocket.TextMessage, data)
}

// Close tears the connection down and suppresses any pending retry.
func (s *Socket) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.connected = false
	conn := s.conn
	done := s.done
	s.mu.Unlock()

	if done != nil {
		close(done)
	}

	if conn != nil {
		conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		return conn.Close()
	}

	return nil
}

// run is the dial/retry loop. It exits when the retry budget is spent, the
// socket is closed locally, the server deliberately ends the session, or the
// context is canceled.
func (s *Socket) run(ctx context.Context, token string, done chan struct{}) {
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	for attempt := 1; ; attempt++ {
		conn, err := s.dial(ctx, token)
		if err == nil {
			// A local Close can land while the dial is in flight. Drop the
			// late connection instead of reporting it open.
			select {
			case <-done:
				conn.Close()
				return
			default:
			}

			s.setConn(conn)
			s.logger.Debug("websocket connected", "url", s.cfg.URL)
			s.handler.HandleOpen()

			reason := s.readLoop(conn, done)

			s.clearConn()
			conn.Close()
			s.handler.HandleClose(reason)

			if reason.Manual || reason.ServerInitiated() {
				return
			}

			// Dropped link: redial immediately, then back off.
			attempt = 0
			continue
		}

		s.logger.Warn("dial failed",
			"attempt", attempt,
			"max_attempts", s.cfg.MaxAttempts,
			"error", err,
		)

		if attempt >= s.cfg.MaxAttempts {
			s.handler.HandleExhausted(err)
			return
		}
		s.handler.HandleRetry(attempt, s.cfg.MaxAttempts)

		select {
		case <-time.After(s.backoff(attempt)):
		case <-done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// dial performs one connection attempt.
func (s *Socket) dial(ctx context.Context, token string) (*websocket.Conn, error) {
	header := http.Header{}
	header.Set("Accept", "application/json")
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: s.cfg.ConnectTimeout,
	}

	conn, _, err := dialer.DialContext(ctx, s.cfg.URL, header)
	return conn, err
}

// backoff returns the wait before retry n, doubling from BaseDelay up to
// MaxDelay.
func (s *Socket) backoff(attempt int) time.Duration {
	wait := s.cfg.BaseDelay
	for i := 1; i < attempt; i++ {
		wait *= 2
		if wait >= s.cfg.MaxDelay {
			return s.cfg.MaxDelay
		}
	}
	if wait > s.cfg.MaxDelay {
		wait = s.cfg.MaxDelay
	}
	return wait
}

func (s *Socket) setConn(conn *websocket.Conn) {
	s.mu.Lock()
	s.conn = conn
	s.connected = true
	s.mu.Unlock()
}

func (s *Socket) clearConn() {
	s.mu.Lock()
	s.conn = nil
	s.connected = false
	s.mu.Unlock()
}

// readLoop reads frames until the connection ends and returns why it ended.
func (s *Socket) readLoop(conn *websocket.Conn, done chan struct{}) CloseReason {
	stopPing := make(chan struct{})
	go s.pingLoop(conn, stopPing, done)
	defer close(stopPing)

	if s.cfg.PongTimeout > 0 {
		conn.SetReadDeadline(time.Now().Add(s.cfg.PongTimeout))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(s.cfg.PongTimeout))
		})
		conn.SetPingHandler(func(data string) error {
			conn.SetReadDeadline(time.Now().Add(s.cfg.PongTimeout))
			return conn.WriteControl(
				websocket.PongMessage,
				[]byte(data),
				time.Now().Add(time.Second),
			)
		})
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			// Ignore errors caused by a local Close()
			select {
			case <-done:
				return CloseReason{
					Code:   websocket.CloseNormalClosure,
					Text:   "client disconnect",
					Manual: true,
				}
			default:
			}

			var ce *websocket.CloseError
			if errors.As(err, &ce) {
				return CloseReason{Code: ce.Code, Text: ce.Text}
			}
			return CloseReason{Code: -1, Text: err.Error()}
		}

		var f frame
		if err := json.Unmarshal(data, &f); err != nil {
			s.handler.HandleError(fmt.Errorf("malformed frame: %w", err))
			continue
		}
		if f.Event == "" {
			s.handler.HandleError(errors.New("frame missing event name"))
			continue
		}

		s.handler.HandleMessage(f.Event, f.Data)
	}
}

// pingLoop sends keepalive pings until the connection or socket ends.
func (s *Socket) pingLoop(conn *websocket.Conn, stop, done chan struct{}) {
	if s.cfg.PingInterval <= 0 {
		return
	}

	ticker := time.NewTicker(s.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-done:
			return
		case <-ticker.C:
			deadline := time.Now().Add(s.cfg.WriteTimeout)
			if err := conn.WriteControl(websocket.PingMessage, []byte("keepalive"), deadline); err != nil {
				s.logger.Debug("failed to send ping", "error", err)
			}
		}
	}
}
