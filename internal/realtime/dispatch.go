package realtime

import (
	"log/slog"
	"sync"

	"github.com/crmdeck/realtime/internal/events"
)

// Handler consumes the raw payload of one event occurrence.
type Handler func(payload []byte)

// registration identifies one registered handler. Identity is the pointer,
// so the same function can be registered twice and removed independently.
type registration struct {
	fn Handler
}

// dispatcher routes named events to registered handlers. Dispatch is
// synchronous in the caller's goroutine; a panicking handler is isolated and
// never blocks delivery to the remaining handlers.
type dispatcher struct {
	logger *slog.Logger

	mu       sync.Mutex
	handlers map[events.Event][]*registration
}

func newDispatcher(logger *slog.Logger) *dispatcher {
	return &dispatcher{
		logger:   logger,
		handlers: make(map[events.Event][]*registration),
	}
}

// on registers fn for event and returns an unsubscribe function. The
// unsubscribe removes exactly this registration and is safe to call more
// than once.
func (d *dispatcher) on(event events.Event, fn Handler) func() {
	reg := &registration{fn: fn}

	d.mu.Lock()
	d.handlers[event] = append(d.handlers[event], reg)
	d.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { d.off(event, reg) })
	}
}

// off removes one registration. The event's entry is deleted when the last
// handler goes, so no orphaned binding survives.
func (d *dispatcher) off(event events.Event, reg *registration) {
	d.mu.Lock()
	defer d.mu.Unlock()

	regs := d.handlers[event]
	for i, r := range regs {
		if r == reg {
			d.handlers[event] = append(regs[:i], regs[i+1:]...)
			break
		}
	}
	if len(d.handlers[event]) == 0 {
		delete(d.handlers, event)
	}
}

// dispatch invokes every handler registered for event with payload.
func (d *dispatcher) dispatch(event events.Event, payload []byte) {
	d.mu.Lock()
	regs := d.handlers[event]
	snapshot := make([]*registration, len(regs))
	copy(snapshot, regs)
	d.mu.Unlock()

	for _, reg := range snapshot {
		d.invoke(event, reg, payload)
	}
}

// invoke runs one handler, containing any panic to that handler.
func (d *dispatcher) invoke(event events.Event, reg *registration, payload []byte) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("event handler panicked",
				"event", string(event),
				"panic", r,
			)
		}
	}()

	reg.fn(payload)
}

// handlerCount returns the total number of registered handlers.
func (d *dispatcher) handlerCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := 0
	for _, regs := range d.handlers {
		n += len(regs)
	}
	return n
}
