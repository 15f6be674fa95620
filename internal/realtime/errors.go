package realtime

import "fmt"

// Error kinds for normalized transport failures.
const (
	KindConnect = "connect" // dial/handshake failures
	KindSession = "session" // errors on an established connection
	KindSend    = "send"    // outbound write failures
)

// TransportError is the single internal shape for failures surfaced by the
// transport, whatever the underlying value was. Raw preserves the original
// value for error reports.
type TransportError struct {
	Kind    string
	Message string
	Raw     any
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s error: %s", e.Kind, e.Message)
}

// Unwrap exposes the original error, when there was one.
func (e *TransportError) Unwrap() error {
	if err, ok := e.Raw.(error); ok {
		return err
	}
	return nil
}

// normalizeError converts an arbitrary value from the transport boundary
// into a TransportError.
func normalizeError(kind string, v any) *TransportError {
	msg := ""
	switch t := v.(type) {
	case nil:
		msg = "unknown error"
	case error:
		msg = t.Error()
	case string:
		msg = t
	case fmt.Stringer:
		msg = t.String()
	default:
		msg = fmt.Sprintf("%v", t)
	}

	return &TransportError{Kind: kind, Message: msg, Raw: v}
}
