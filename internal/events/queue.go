// Package events implements the FIFO that carries notifications from any
// number of producers to the control loop.
package events

import (
	"errors"
	"sync"
	"time"
)

// DefaultCapacity bounds the queue when no capacity is given.
const DefaultCapacity = 4096

const compactThreshold = 256

// ErrQueueFull is returned by Push when the queue is at capacity. The event
// is dropped.
var ErrQueueFull = errors.New("event queue full")

// Queue is a multi-producer, single-consumer FIFO of events.
//
// The data is guarded by mu. Waiters sleep on wake, a one-slot channel, so
// mu is never held while a goroutine blocks.
type Queue struct {
	mu       sync.Mutex
	events   []Event
	head     int
	capacity int

	wake chan struct{}
}

// NewQueue creates a queue holding at most capacity events.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Queue{
		events:   make([]Event, 0, 64),
		capacity: capacity,
		wake:     make(chan struct{}, 1),
	}
}

// Push appends an event to the tail and wakes a waiting consumer.
func (q *Queue) Push(kind Kind, param int) error {
	q.mu.Lock()
	if len(q.events)-q.head >= q.capacity {
		q.mu.Unlock()
		return ErrQueueFull
	}
	q.events = append(q.events, Event{Kind: kind, Param: param})
	q.mu.Unlock()

	q.Notify()
	return nil
}

// Pop removes and returns the head of the queue. The second result is false
// when the queue is empty.
func (q *Queue) Pop() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.head == len(q.events) {
		return Event{}, false
	}
	ev := q.events[q.head]
	q.head++
	switch {
	case q.head == len(q.events):
		q.events = q.events[:0]
		q.head = 0
	case q.head >= compactThreshold && q.head > len(q.events)/2:
		n := copy(q.events, q.events[q.head:])
		q.events = q.events[:n]
		q.head = 0
	}
	return ev, true
}

// Wait blocks until an event is queued, Notify is called, or timeout
// elapses. It returns at once if events are already waiting. The result
// reports whether events are waiting on return.
func (q *Queue) Wait(timeout time.Duration) bool {
	if q.IsWaiting() {
		return true
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-q.wake:
	case <-timer.C:
	}
	return q.IsWaiting()
}

// Notify wakes a waiter without queueing an event.
func (q *Queue) Notify() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// IsWaiting reports whether events are waiting to be popped.
func (q *Queue) IsWaiting() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events) > q.head
}

// Len returns the number of queued events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events) - q.head
}
