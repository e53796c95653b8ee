package ingest

import (
	"sync"
	"time"
)

// PendingLine is one unit of work waiting for dispatch.
type PendingLine struct {
	Text       string
	EnqueuedAt time.Time
}

// queue is a bounded FIFO of pending lines with drop-oldest eviction.
// A single mutex guards it; the pipeline has one producer and one consumer.
type queue struct {
	mu       sync.Mutex
	items    []PendingLine
	capacity int
}

func newQueue(capacity int) *queue {
	if capacity <= 0 {
		capacity = 1
	}
	return &queue{capacity: capacity}
}

// push admits a line, evicting the oldest pending line when full. The
// return reports whether an eviction happened.
func (q *queue) push(line PendingLine) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	evicted := false
	if len(q.items) >= q.capacity {
		q.items = q.items[1:]
		evicted = true
	}
	q.items = append(q.items, line)
	return evicted
}

// pop removes and returns the oldest pending line.
func (q *queue) pop() (PendingLine, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return PendingLine{}, false
	}
	line := q.items[0]
	q.items = q.items[1:]
	return line, true
}

func (q *queue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// clear discards all pending lines.
func (q *queue) clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = nil
}
