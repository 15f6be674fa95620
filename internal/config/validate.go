package config

import (
	"errors"
	"strings"
)

// Validate checks that all required fields are set and values are valid.
func (c *ClientConfig) Validate() error {
	if c.Server.URL == "" {
		return errors.New("server.url is required")
	}
	if !strings.HasPrefix(c.Server.URL, "ws://") && !strings.HasPrefix(c.Server.URL, "wss://") {
		return errors.New("server.url must use ws:// or wss:// scheme")
	}

	if c.Server.ConnectTimeout < 0 {
		return errors.New("server.connect_timeout must be >= 0")
	}
	if c.Server.WriteTimeout < 0 {
		return errors.New("server.write_timeout must be >= 0")
	}

	if c.Reconnect.MaxAttempts < 1 {
		return errors.New("reconnect.max_attempts must be >= 1")
	}
	if c.Reconnect.BaseDelay <= 0 {
		return errors.New("reconnect.base_delay must be > 0")
	}
	if c.Reconnect.MaxDelay < c.Reconnect.BaseDelay {
		return errors.New("reconnect.max_delay must be >= reconnect.base_delay")
	}

	if c.Queue.Capacity < 1 {
		return errors.New("queue.capacity must be >= 1")
	}

	return nil
}
