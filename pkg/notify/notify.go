// Package notify keeps a FIFO list of transient user-facing messages. Every
// entry removes itself after a fixed lifetime on its own timer; entries are
// never coalesced and the queue has no cap.
package notify

import (
	"sync"
	"time"
)

// Severity classifies a notification for presentation.
type Severity string

const (
	Success Severity = "success"
	Warning Severity = "warning"
	Error   Severity = "error"
)

// DefaultLifetime is how long an entry stays active before it expires.
const DefaultLifetime = 3000 * time.Millisecond

// Notification is one transient user-facing message.
type Notification struct {
	ID        uint64
	Message   string
	Severity  Severity
	CreatedAt time.Time
}

// Queue is the FIFO presentation list. Safe for concurrent use.
type Queue struct {
	mu        sync.Mutex
	lifetime  time.Duration
	nextID    uint64
	entries   []Notification
	timers    map[uint64]*time.Timer
	onEnqueue func(Notification)
}

// NewQueue creates a queue with the default entry lifetime.
func NewQueue() *Queue {
	return NewQueueWithLifetime(DefaultLifetime)
}

// NewQueueWithLifetime creates a queue whose entries expire after the given
// duration.
func NewQueueWithLifetime(lifetime time.Duration) *Queue {
	return &Queue{
		lifetime: lifetime,
		timers:   make(map[uint64]*time.Timer),
	}
}

// OnEnqueue registers a hook invoked for every appended entry. Presentation
// layers use it to surface messages as they arrive.
func (q *Queue) OnEnqueue(fn func(Notification)) {
	q.mu.Lock()
	q.onEnqueue = fn
	q.mu.Unlock()
}

// Enqueue appends a notification and schedules its individual expiry.
func (q *Queue) Enqueue(message string, severity Severity) Notification {
	q.mu.Lock()
	q.nextID++
	n := Notification{
		ID:        q.nextID,
		Message:   message,
		Severity:  severity,
		CreatedAt: time.Now(),
	}
	q.entries = append(q.entries, n)
	id := n.ID
	q.timers[id] = time.AfterFunc(q.lifetime, func() { q.expire(id) })
	hook := q.onEnqueue
	q.mu.Unlock()

	if hook != nil {
		hook(n)
	}
	return n
}

// Active returns the entries that have not yet expired, oldest first.
func (q *Queue) Active() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Notification, len(q.entries))
	copy(out, q.entries)
	return out
}

// Close stops all pending expiry timers. Entries already expired are
// unaffected; no further expiries fire.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for id, t := range q.timers {
		t.Stop()
		delete(q.timers, id)
	}
}

func (q *Queue) expire(id uint64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.timers, id)
	for i, n := range q.entries {
		if n.ID == id {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return
		}
	}
}
