// Package toast queues transient success and error notifications.
package toast

import (
	"sync"
	"time"
)

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// DefaultTTL is how long a toast stays on screen.
const DefaultTTL = 4 * time.Second

type Toast struct {
	ID      uint64
	Kind    Kind
	Message string
	At      time.Time
}

// Queue is safe for concurrent use.
type Queue struct {
	mu     sync.Mutex
	ttl    time.Duration
	now    func() time.Time
	nextID uint64
	items  []Toast
}

func NewQueue() *Queue { return &Queue{ttl: DefaultTTL, now: time.Now} }

// WithClock replaces the queue's time source.
func (q *Queue) WithClock(now func() time.Time) *Queue {
	q.mu.Lock()
	q.now = now
	q.mu.Unlock()
	return q
}

func (q *Queue) Success(msg string) { q.push(KindSuccess, msg) }
func (q *Queue) Error(msg string)   { q.push(KindError, msg) }

func (q *Queue) push(k Kind, msg string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.nextID++
	q.items = append(q.items, Toast{ID: q.nextID, Kind: k, Message: msg, At: q.now()})
}

// Drain returns every queued toast and empties the queue.
func (q *Queue) Drain() []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	return out
}

// Active returns toasts younger than the TTL and forgets the expired ones.
func (q *Queue) Active(now time.Time) []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()
	kept := q.items[:0]
	for _, t := range q.items {
		if now.Sub(t.At) < q.ttl {
			kept = append(kept, t)
		}
	}
	q.items = kept
	return append([]Toast(nil), kept...)
}

// Last returns the most recent toast, if any.
func (q *Queue) Last() (Toast, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return Toast{}, false
	}
	return q.items[len(q.items)-1], true
}
