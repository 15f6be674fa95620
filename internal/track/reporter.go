// Package track forwards recovered connection errors to an external
// error-tracking service. The service itself lives outside this module;
// hosts inject their own Reporter, and the default just logs.
package track

import "log/slog"

// Reporter receives errors the connection manager recovered from, with
// string tags for context (socket id, attempt count, manual-disconnect flag).
type Reporter interface {
	Capture(err error, tags map[string]string)
}

// LogReporter writes captured errors to a structured logger.
type LogReporter struct {
	logger *slog.Logger
}

// NewLogReporter creates a Reporter backed by logger.
func NewLogReporter(logger *slog.Logger) *LogReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogReporter{logger: logger}
}

// Capture logs the error with its tags.
func (r *LogReporter) Capture(err error, tags map[string]string) {
	attrs := make([]any, 0, 2*len(tags)+2)
	attrs = append(attrs, "error", err)
	for k, v := range tags {
		attrs = append(attrs, k, v)
	}
	r.logger.Error("captured connection error", attrs...)
}

// Nop discards every capture.
type Nop struct{}

func (Nop) Capture(error, map[string]string) {}
