package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "client.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  url: wss://api.crmdeck.io/realtime
auth:
  token: abc123
reconnect:
  max_attempts: 5
queue:
  capacity: 25
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.URL != "wss://api.crmdeck.io/realtime" {
		t.Errorf("unexpected server url: %s", cfg.Server.URL)
	}
	if cfg.Auth.Token != "abc123" {
		t.Errorf("unexpected token: %s", cfg.Auth.Token)
	}
	if cfg.Reconnect.MaxAttempts != 5 {
		t.Errorf("expected max_attempts 5, got %d", cfg.Reconnect.MaxAttempts)
	}
	if cfg.Queue.Capacity != 25 {
		t.Errorf("expected capacity 25, got %d", cfg.Queue.Capacity)
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("CRMDECK_TEST_TOKEN", "tok-from-env")

	path := writeConfig(t, `
auth:
  token: ${CRMDECK_TEST_TOKEN}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Auth.Token != "tok-from-env" {
		t.Errorf("expected env-expanded token, got %q", cfg.Auth.Token)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	path := writeConfig(t, `
auth:
  token: abc123
`)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	if cfg.Server.URL != DefaultServerURL {
		t.Errorf("expected default url, got %s", cfg.Server.URL)
	}
	if cfg.Server.ConnectTimeout != 20*time.Second {
		t.Errorf("expected 20s connect timeout, got %s", cfg.Server.ConnectTimeout)
	}
	if cfg.Reconnect.MaxAttempts != 10 {
		t.Errorf("expected 10 max attempts, got %d", cfg.Reconnect.MaxAttempts)
	}
	if cfg.Reconnect.BaseDelay != time.Second {
		t.Errorf("expected 1s base delay, got %s", cfg.Reconnect.BaseDelay)
	}
	if cfg.Reconnect.MaxDelay != 30*time.Second {
		t.Errorf("expected 30s max delay, got %s", cfg.Reconnect.MaxDelay)
	}
	if cfg.Queue.Capacity != 100 {
		t.Errorf("expected queue capacity 100, got %d", cfg.Queue.Capacity)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ClientConfig)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *ClientConfig) {},
		},
		{
			name:    "missing url",
			mutate:  func(c *ClientConfig) { c.Server.URL = "" },
			wantErr: "server.url",
		},
		{
			name:    "bad scheme",
			mutate:  func(c *ClientConfig) { c.Server.URL = "https://api.crmdeck.io" },
			wantErr: "scheme",
		},
		{
			name:    "negative attempts",
			mutate:  func(c *ClientConfig) { c.Reconnect.MaxAttempts = -1 },
			wantErr: "max_attempts",
		},
		{
			name:    "max delay below base",
			mutate:  func(c *ClientConfig) { c.Reconnect.MaxDelay = c.Reconnect.BaseDelay / 2 },
			wantErr: "max_delay",
		},
		{
			name:    "zero capacity",
			mutate:  func(c *ClientConfig) { c.Queue.Capacity = -5 },
			wantErr: "capacity",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}
