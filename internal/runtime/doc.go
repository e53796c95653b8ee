// Package runtime wires configuration, the ledger (local Pebble store or a
// remote HTTP ledger), index discovery, tail retrieval, the ingestion
// pipeline, and availability tracking into one single-node instance.
package runtime
