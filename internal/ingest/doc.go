// Package ingest turns a bursty raw byte stream into a safely paced stream
// of ledger appends.
//
// Incoming chunks are assembled into complete lines; blank lines are
// discarded. Complete lines enter a bounded queue that evicts the oldest
// pending line when full, so recency wins over completeness for this
// best-effort telemetry stream. A single dispatch loop drains at most one
// line per configured interval, and a rolling quota caps successful appends
// per window. A failed append is reported (throttled, via the availability
// tracker) and the line is dropped; the pipeline never retries and never
// signals backpressure upstream.
package ingest
