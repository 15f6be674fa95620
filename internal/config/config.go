package config

import "time"

// ClientConfig is the top-level configuration for the realtime client.
type ClientConfig struct {
	Server    ServerConfig    `yaml:"server"`
	Auth      AuthConfig      `yaml:"auth"`
	Reconnect ReconnectConfig `yaml:"reconnect"`
	Queue     QueueConfig     `yaml:"queue"`
}

// ServerConfig describes the realtime endpoint.
type ServerConfig struct {
	URL            string        `yaml:"url"`             // WebSocket URL (e.g., ws://localhost:4001/realtime)
	ConnectTimeout time.Duration `yaml:"connect_timeout"` // Handshake deadline per attempt
	WriteTimeout   time.Duration `yaml:"write_timeout"`   // Write deadline for sends
	PingInterval   time.Duration `yaml:"ping_interval"`   // Keepalive ping cadence
	PongTimeout    time.Duration `yaml:"pong_timeout"`    // Max silence before the socket is considered stale
}

// AuthConfig supplies the bearer token. Token wins over TokenFile; when both
// are empty the realtime feature is unavailable until a token appears in the
// CRMDECK_TOKEN environment variable.
type AuthConfig struct {
	Token     string `yaml:"token"`
	TokenFile string `yaml:"token_file"`
}

// ReconnectConfig bounds the transport's retry loop.
type ReconnectConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay"`
	MaxDelay    time.Duration `yaml:"max_delay"`
}

// QueueConfig bounds the outbound message queue.
type QueueConfig struct {
	Capacity int `yaml:"capacity"`
}
