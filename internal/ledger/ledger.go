package ledger

import (
	"context"
	"time"
)

// Entry is one immutable ledger record. Entries are never updated or
// deleted; indices are assigned by the ledger, strictly increasing and dense
// under normal operation, starting at 0.
type Entry struct {
	Index     uint64    `json:"index"`
	Message   string    `json:"message"`
	Producer  string    `json:"producer"`
	CreatedAt time.Time `json:"createdAt"`
}

// Receipt confirms a successful append.
type Receipt struct {
	Index          uint64 `json:"index"`
	ConfirmationID string `json:"confirmationId"`
}

// Cost is an abstract resource cost in ledger units. Every call against the
// ledger consumes cost; appends must be estimated before they are issued.
type Cost uint64

// Ledger is the capability surface of the external append-only store.
//
// All methods honor the context deadline; a timed-out call reports
// ErrUnreachable, never ErrAbsent.
type Ledger interface {
	// EstimateAppendCost prices an append before it is issued.
	EstimateAppendCost(ctx context.Context, message string) (Cost, error)
	// Append writes one message and returns its assigned index.
	Append(ctx context.Context, message string) (Receipt, error)
	// ReadByIndex fetches the entry at index, or ErrAbsent if the index is
	// not populated.
	ReadByIndex(ctx context.Context, index uint64) (Entry, error)
}

// BulkReader is an optional capability for stores that can serve a range
// scan in one call. Entries come back in ascending index order, inclusive of
// both bounds, with unpopulated indices omitted.
type BulkReader interface {
	ReadRange(ctx context.Context, from, to uint64) ([]Entry, error)
}
