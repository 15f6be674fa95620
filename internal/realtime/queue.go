package realtime

import (
	"sync"
	"time"

	"github.com/crmdeck/realtime/internal/events"
)

// QueuedMessage is an outbound emit captured while disconnected.
type QueuedMessage struct {
	Event      events.Event
	Payload    []byte
	EnqueuedAt time.Time
}

// outboundQueue is a thread-safe bounded FIFO ring of queued messages.
// When full, the oldest entry is evicted to make room for the newest.
type outboundQueue struct {
	mu       sync.Mutex
	buf      []QueuedMessage
	head     int // read position
	count    int
	capacity int

	// Stats
	dropped int64
}

// newOutboundQueue creates a queue with the given capacity (minimum 1).
func newOutboundQueue(capacity int) *outboundQueue {
	if capacity < 1 {
		capacity = 1
	}
	return &outboundQueue{
		buf:      make([]QueuedMessage, capacity),
		capacity: capacity,
	}
}

// push appends a message, evicting the oldest entry when at capacity.
func (q *outboundQueue) push(m QueuedMessage) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.count == q.capacity {
		// Drop-oldest: advance head over the evicted entry.
		q.buf[q.head] = QueuedMessage{}
		q.head = (q.head + 1) % q.capacity
		q.count--
		q.dropped++
	}

	q.buf[(q.head+q.count)%q.capacity] = m
	q.count++
}

// pop removes and returns the oldest message.
func (q *outboundQueue) pop() (QueuedMessage, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.count == 0 {
		return QueuedMessage{}, false
	}

	m := q.buf[q.head]
	q.buf[q.head] = QueuedMessage{} // clear reference for GC
	q.head = (q.head + 1) % q.capacity
	q.count--
	return m, true
}

// pushFront returns a message to the head of the queue, preserving order for
// the next flush. Used when a send fails mid-flush; the slot freed by the
// preceding pop guarantees room.
func (q *outboundQueue) pushFront(m QueuedMessage) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.count == q.capacity {
		// Full again since the pop: give the slot to the older message.
		last := (q.head + q.count - 1) % q.capacity
		q.buf[last] = QueuedMessage{}
		q.count--
		q.dropped++
	}

	q.head = (q.head - 1 + q.capacity) % q.capacity
	q.buf[q.head] = m
	q.count++
}

// len returns the number of queued messages.
func (q *outboundQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// droppedCount returns how many messages were evicted under overflow.
func (q *outboundQueue) droppedCount() int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}
