// Package ledgertest provides an in-memory ledger fake with failure
// injection and call counting for tests.
package ledgertest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rahulshendre/secure-logchain/internal/ledger"
)

// Ledger is an in-memory implementation of the ledger capability. Indices
// can be made sparse with Remove to simulate pathological gaps, and each
// operation can be forced to fail by setting the corresponding error.
type Ledger struct {
	mu      sync.Mutex
	entries map[uint64]ledger.Entry
	next    uint64

	// Forced failures. When set, the corresponding call returns the error.
	ReadErr     error
	AppendErr   error
	EstimateErr error
	RangeErr    error

	// Call counters.
	ReadCalls     int
	AppendCalls   int
	EstimateCalls int
	RangeCalls    int

	// Now is the clock used to stamp appended entries.
	Now func() time.Time
}

var _ ledger.Ledger = (*Ledger)(nil)
var _ ledger.BulkReader = (*Ledger)(nil)

// New returns an empty fake ledger.
func New() *Ledger {
	return &Ledger{entries: map[uint64]ledger.Entry{}, Now: time.Now}
}

// Seed populates indices 0..n-1 with generated messages.
func (l *Ledger) Seed(n int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := 0; i < n; i++ {
		idx := l.next
		l.entries[idx] = ledger.Entry{
			Index:     idx,
			Message:   fmt.Sprintf("seed-%d", idx),
			Producer:  "ledgertest",
			CreatedAt: l.Now(),
		}
		l.next++
	}
}

// Remove deletes the entry at index, creating a gap.
func (l *Ledger) Remove(index uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, index)
}

// Len returns the number of populated indices.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// EstimateAppendCost implements ledger.Ledger.
func (l *Ledger) EstimateAppendCost(_ context.Context, message string) (ledger.Cost, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.EstimateCalls++
	if l.EstimateErr != nil {
		return 0, l.EstimateErr
	}
	return ledger.Cost(100 + len(message)), nil
}

// Append implements ledger.Ledger.
func (l *Ledger) Append(_ context.Context, message string) (ledger.Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.AppendCalls++
	if l.AppendErr != nil {
		return ledger.Receipt{}, l.AppendErr
	}
	idx := l.next
	l.entries[idx] = ledger.Entry{
		Index:     idx,
		Message:   message,
		Producer:  "ledgertest",
		CreatedAt: l.Now(),
	}
	l.next++
	return ledger.Receipt{Index: idx, ConfirmationID: uuid.NewString()}, nil
}

// ReadByIndex implements ledger.Ledger.
func (l *Ledger) ReadByIndex(_ context.Context, index uint64) (ledger.Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ReadCalls++
	if l.ReadErr != nil {
		return ledger.Entry{}, l.ReadErr
	}
	e, ok := l.entries[index]
	if !ok {
		return ledger.Entry{}, fmt.Errorf("%w: index %d", ledger.ErrAbsent, index)
	}
	return e, nil
}

// ReadRange implements ledger.BulkReader.
func (l *Ledger) ReadRange(_ context.Context, from, to uint64) ([]ledger.Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.RangeCalls++
	if l.RangeErr != nil {
		return nil, l.RangeErr
	}
	var out []ledger.Entry
	for i := from; i <= to; i++ {
		if e, ok := l.entries[i]; ok {
			out = append(out, e)
		}
		if i == ^uint64(0) {
			break
		}
	}
	return out, nil
}
