package pebbleledger

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/google/uuid"

	"github.com/rahulshendre/secure-logchain/internal/ledger"
	pebblestore "github.com/rahulshendre/secure-logchain/internal/storage/pebble"
)

// Cost model: flat base per append plus one unit per message byte.
const costBase = ledger.Cost(100)

// Ledger is a Pebble-backed implementation of the ledger capability.
type Ledger struct {
	db       *pebblestore.DB
	producer string

	mu   sync.Mutex
	next uint64

	now func() time.Time
}

var _ ledger.Ledger = (*Ledger)(nil)
var _ ledger.BulkReader = (*Ledger)(nil)

// Open initializes a Ledger and restores the next index from meta (if any).
func Open(db *pebblestore.DB, producer string) (*Ledger, error) {
	l := &Ledger{db: db, producer: producer, now: time.Now}
	meta, ok, err := db.Get(keyMeta)
	if err != nil {
		return nil, fmt.Errorf("pebbleledger: load meta: %w", err)
	}
	if ok && len(meta) >= 8 {
		l.next = binary.BigEndian.Uint64(meta[:8])
	}
	return l, nil
}

// EstimateAppendCost prices an append by message size.
func (l *Ledger) EstimateAppendCost(ctx context.Context, message string) (ledger.Cost, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("%w: %v", ledger.ErrUnreachable, err)
	}
	if message == "" {
		return 0, fmt.Errorf("%w: empty message", ledger.ErrCostEstimation)
	}
	return costBase + ledger.Cost(len(message)), nil
}

// Append writes one message, assigning the next dense index.
func (l *Ledger) Append(ctx context.Context, message string) (ledger.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return ledger.Receipt{}, fmt.Errorf("%w: %v", ledger.ErrUnreachable, err)
	}
	if message == "" {
		return ledger.Receipt{}, fmt.Errorf("%w: empty message", ledger.ErrRejected)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	index := l.next
	b := l.db.NewBatch()
	defer b.Close()

	val := encodeRecord(l.producer, message, l.now().UTC())
	if err := b.Set(keyEntry(index), val, nil); err != nil {
		return ledger.Receipt{}, fmt.Errorf("%w: %v", ledger.ErrRejected, err)
	}
	var meta [8]byte
	binary.BigEndian.PutUint64(meta[:], index+1)
	if err := b.Set(keyMeta, meta[:], nil); err != nil {
		return ledger.Receipt{}, fmt.Errorf("%w: %v", ledger.ErrRejected, err)
	}
	if err := l.db.CommitBatch(ctx, b); err != nil {
		return ledger.Receipt{}, fmt.Errorf("%w: commit: %v", ledger.ErrUnreachable, err)
	}
	l.next = index + 1

	return ledger.Receipt{Index: index, ConfirmationID: uuid.NewString()}, nil
}

// ReadByIndex fetches one entry, or ErrAbsent when the index holds nothing.
func (l *Ledger) ReadByIndex(ctx context.Context, index uint64) (ledger.Entry, error) {
	if err := ctx.Err(); err != nil {
		return ledger.Entry{}, fmt.Errorf("%w: %v", ledger.ErrUnreachable, err)
	}
	val, ok, err := l.db.Get(keyEntry(index))
	if err != nil {
		return ledger.Entry{}, fmt.Errorf("%w: %v", ledger.ErrUnreachable, err)
	}
	if !ok {
		return ledger.Entry{}, fmt.Errorf("%w: index %d", ledger.ErrAbsent, index)
	}
	dec, valid := decodeRecord(val)
	if !valid {
		// Corrupt value reads back as absent rather than as garbage.
		return ledger.Entry{}, fmt.Errorf("%w: index %d (corrupt record)", ledger.ErrAbsent, index)
	}
	return ledger.Entry{
		Index:     index,
		Message:   dec.Message,
		Producer:  dec.Producer,
		CreatedAt: dec.CreatedAt,
	}, nil
}

// ReadRange scans [from, to] inclusive in ascending index order, omitting
// unpopulated indices.
func (l *Ledger) ReadRange(ctx context.Context, from, to uint64) ([]ledger.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ledger.ErrUnreachable, err)
	}
	if to < from {
		return nil, nil
	}
	low := keyEntry(from)
	hi := keyEntry(to)
	iter, err := l.db.NewIter(&pebble.IterOptions{LowerBound: low, UpperBound: append(hi, 0x00)})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ledger.ErrUnreachable, err)
	}
	defer iter.Close()

	entries := make([]ledger.Entry, 0, to-from+1)
	for ok := iter.First(); ok; ok = iter.Next() {
		dec, valid := decodeRecord(iter.Value())
		if !valid {
			continue
		}
		entries = append(entries, ledger.Entry{
			Index:     indexFromKey(iter.Key()),
			Message:   dec.Message,
			Producer:  dec.Producer,
			CreatedAt: dec.CreatedAt,
		})
	}
	return entries, nil
}
