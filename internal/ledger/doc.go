// Package ledger defines the capability interface for the append-only store
// logchain writes to. The store exposes exactly three operations: estimate
// the cost of an append, append one message, and read one entry by its
// sequential index. There is no range query and no count operation; every
// higher-level behavior (index discovery, tail retrieval, paced ingestion)
// is built on top of these three calls.
//
// Any backing store can satisfy the interface: the local Pebble-backed
// implementation (pebbleledger), a remote logchain instance (httpledger), or
// a test fake (ledgertest). Implementations that can serve a cheap range
// scan additionally implement BulkReader, which tail retrieval uses as a
// fallback when individual reads fail.
package ledger
