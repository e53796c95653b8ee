package ingest

import "time"

// QuotaState enforces a rolling cap on successful appends. The window
// resets lazily when the current time passes windowStart+windowLength.
// Mutated only by the pipeline's admission check under its own lock.
type QuotaState struct {
	limit       int
	window      time.Duration
	count       int
	windowStart time.Time
}

func newQuotaState(limit int, window time.Duration) *QuotaState {
	return &QuotaState{limit: limit, window: window}
}

// allow reports whether another append may be dispatched at now, resetting
// the window first when it has elapsed.
func (q *QuotaState) allow(now time.Time) bool {
	if q.windowStart.IsZero() {
		q.windowStart = now
	}
	if now.Sub(q.windowStart) >= q.window {
		q.count = 0
		q.windowStart = now
	}
	return q.count < q.limit
}

// commit records one successful append against the current window.
func (q *QuotaState) commit() {
	q.count++
}

// used returns the count consumed in the current window.
func (q *QuotaState) used() int {
	return q.count
}
