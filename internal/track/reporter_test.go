package track

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestLogReporter_Capture(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	r := NewLogReporter(logger)
	r.Capture(errors.New("socket hang up"), map[string]string{
		"socket_id": "abc-123",
		"attempt":   "4",
	})

	out := buf.String()
	if !strings.Contains(out, "socket hang up") {
		t.Errorf("expected error in log output, got %q", out)
	}
	if !strings.Contains(out, "socket_id=abc-123") {
		t.Errorf("expected socket_id tag in log output, got %q", out)
	}
	if !strings.Contains(out, "attempt=4") {
		t.Errorf("expected attempt tag in log output, got %q", out)
	}
}

func TestNop(t *testing.T) {
	// Must accept anything without side effects.
	Nop{}.Capture(nil, nil)
	Nop{}.Capture(errors.New("ignored"), map[string]string{"k": "v"})
}
