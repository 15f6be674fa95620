// Package auth supplies bearer tokens for the realtime connection.
//
// Token issuance belongs to the crmdeck session service; this package only
// hands the current token to the connection manager. An empty token means the
// realtime feature is unavailable, not that something failed.
package auth

import (
	"fmt"
	"os"
	"strings"
)

// EnvToken is the environment variable consulted by the default source.
const EnvToken = "CRMDECK_TOKEN"

// TokenSource supplies the current bearer token. An empty token with a nil
// error means no session exists yet.
type TokenSource interface {
	Token() (string, error)
}

// StaticToken is a fixed token, typically loaded from config.
type StaticToken string

func (s StaticToken) Token() (string, error) {
	return string(s), nil
}

// envSource reads the token from an environment variable on every call,
// picking up tokens exported after process start.
type envSource struct {
	key string
}

func (e envSource) Token() (string, error) {
	return strings.TrimSpace(os.Getenv(e.key)), nil
}

// FromEnv returns a source backed by the named environment variable.
func FromEnv(key string) TokenSource {
	if key == "" {
		key = EnvToken
	}
	return envSource{key: key}
}

// fileSource re-reads the token file on every call so rotated tokens are
// picked up without a restart.
type fileSource struct {
	path string
}

func (f fileSource) Token() (string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return "", fmt.Errorf("read token file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// FromFile returns a source backed by a token file.
func FromFile(path string) TokenSource {
	return fileSource{path: path}
}

// Chain returns the first non-empty token among its sources. An error from a
// source is reported only when no later source yields a token.
type Chain []TokenSource

func (c Chain) Token() (string, error) {
	var firstErr error
	for _, src := range c {
		tok, err := src.Token()
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if tok != "" {
			return tok, nil
		}
	}
	return "", firstErr
}
