package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultServerURL      = "ws://localhost:4001/realtime"
	DefaultConnectTimeout = 20 * time.Second
	DefaultWriteTimeout   = 5 * time.Second
	DefaultPingInterval   = 15 * time.Second
	DefaultPongTimeout    = 60 * time.Second
	DefaultMaxAttempts    = 10
	DefaultBaseDelay      = 1 * time.Second
	DefaultMaxDelay       = 30 * time.Second
	DefaultQueueCapacity  = 100
)

// Default returns a config with every optional field set to its default.
func Default() *ClientConfig {
	cfg := &ClientConfig{}
	cfg.applyDefaults()
	return cfg
}

func (c *ClientConfig) applyDefaults() {
	if c.Server.URL == "" {
		c.Server.URL = DefaultServerURL
	}
	if c.Server.ConnectTimeout == 0 {
		c.Server.ConnectTimeout = DefaultConnectTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = DefaultWriteTimeout
	}
	if c.Server.PingInterval == 0 {
		c.Server.PingInterval = DefaultPingInterval
	}
	if c.Server.PongTimeout == 0 {
		c.Server.PongTimeout = DefaultPongTimeout
	}

	if c.Reconnect.MaxAttempts == 0 {
		c.Reconnect.MaxAttempts = DefaultMaxAttempts
	}
	if c.Reconnect.BaseDelay == 0 {
		c.Reconnect.BaseDelay = DefaultBaseDelay
	}
	if c.Reconnect.MaxDelay == 0 {
		c.Reconnect.MaxDelay = DefaultMaxDelay
	}

	if c.Queue.Capacity == 0 {
		c.Queue.Capacity = DefaultQueueCapacity
	}
}
