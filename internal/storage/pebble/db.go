package pebblestore

import (
	"context"
	"errors"
	"time"

	"github.com/cockroachdb/pebble"
)

// FsyncMode defines durability behavior for write operations.
type FsyncMode int

const (
	FsyncModeUnspecified FsyncMode = iota
	// FsyncModeAlways requests a WAL fsync on each committed batch/write.
	FsyncModeAlways
	// FsyncModeInterval lets Pebble coalesce WAL syncs for operations within
	// the configured interval (group commit).
	FsyncModeInterval
	// FsyncModeNever avoids forcing WAL syncs from the application. Pebble may
	// still sync based on its own policies.
	FsyncModeNever
)

// Options configures the store.
type Options struct {
	// DataDir is the path to the Pebble database directory.
	DataDir string
	// Fsync determines when to sync the WAL.
	Fsync FsyncMode
	// FsyncInterval controls group commit when Fsync=FsyncModeInterval.
	FsyncInterval time.Duration
	// PebbleOptions allows advanced tuning. If nil, defaults are used.
	PebbleOptions *pebble.Options
	// Metrics observes read/write/commit latencies and sizes. Optional.
	Metrics MetricsHook
}

// MetricsHook is a minimal hook surface for storage observations.
type MetricsHook interface {
	ObserveRead(elapsed time.Duration, bytes int)
	ObserveBatchCommit(elapsed time.Duration, bytes int)
}

// NoopMetrics is used when no metrics hook is provided.
type NoopMetrics struct{}

func (NoopMetrics) ObserveRead(time.Duration, int)        {}
func (NoopMetrics) ObserveBatchCommit(time.Duration, int) {}

// DB wraps a Pebble database instance with a fsync policy and basic helpers.
type DB struct {
	inner     *pebble.DB
	writeSync bool
	metrics   MetricsHook
}

// Open creates or opens a Pebble database with the provided options.
func Open(opts Options) (*DB, error) {
	if opts.DataDir == "" {
		return nil, errors.New("pebblestore: Options.DataDir is required")
	}

	po := opts.PebbleOptions
	if po == nil {
		po = &pebble.Options{}
	}

	switch opts.Fsync {
	case FsyncModeAlways:
		// Sync is requested per commit; WALMinSyncInterval stays at default.
	case FsyncModeInterval:
		if opts.FsyncInterval <= 0 {
			opts.FsyncInterval = 5 * time.Millisecond
		}
		po.WALMinSyncInterval = func() time.Duration { return opts.FsyncInterval }
	case FsyncModeNever:
	default:
		// Small group-commit window as a reasonable latency/throughput tradeoff.
		po.WALMinSyncInterval = func() time.Duration { return 5 * time.Millisecond }
	}

	inner, err := pebble.Open(opts.DataDir, po)
	if err != nil {
		return nil, err
	}

	metrics := opts.Metrics
	if metrics == nil {
		metrics = NoopMetrics{}
	}

	return &DB{
		inner:     inner,
		writeSync: opts.Fsync == FsyncModeAlways,
		metrics:   metrics,
	}, nil
}

// Close closes the underlying database.
func (db *DB) Close() error {
	if db == nil || db.inner == nil {
		return nil
	}
	return db.inner.Close()
}

// NewBatch creates a new batch for atomic multi-key updates.
func (db *DB) NewBatch() *pebble.Batch {
	return db.inner.NewBatch()
}

// CommitBatch commits the provided batch with the configured fsync policy.
func (db *DB) CommitBatch(ctx context.Context, b *pebble.Batch) error {
	if b == nil {
		return errors.New("pebblestore: nil batch")
	}
	start := time.Now()
	size := b.Len()
	defer func() { db.metrics.ObserveBatchCommit(time.Since(start), size) }()

	syncMode := pebble.NoSync
	if db.writeSync {
		syncMode = pebble.Sync
	}
	return b.Commit(syncMode)
}

// Set writes a single key through a small batch respecting the fsync policy.
func (db *DB) Set(key, value []byte) error {
	b := db.inner.NewBatch()
	defer b.Close()
	if err := b.Set(key, value, nil); err != nil {
		return err
	}
	return db.CommitBatch(context.Background(), b)
}

// Get copies the value for the given key. The second return reports whether
// the key exists; a missing key is not an error.
func (db *DB) Get(key []byte) ([]byte, bool, error) {
	start := time.Now()
	val, closer, err := db.inner.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer closer.Close()
	buf := append([]byte(nil), val...)
	db.metrics.ObserveRead(time.Since(start), len(buf))
	return buf, true, nil
}

// NewIter creates a raw Pebble iterator with the provided options.
func (db *DB) NewIter(opts *pebble.IterOptions) (*pebble.Iterator, error) {
	return db.inner.NewIter(opts)
}
