// Package pebblestore wraps a Pebble database with logchain's durability
// policy and small helpers for point reads, batched writes, and iteration.
//
// The wrapper owns the fsync decision: callers commit batches and the store
// applies the configured FsyncMode. An optional MetricsHook observes read,
// write, and commit latencies without coupling the store to a metrics
// implementation.
package pebblestore
