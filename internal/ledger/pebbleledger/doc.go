// Package pebbleledger implements the ledger capability on a local Pebble
// store. Entries live under big-endian index keys so iterator order matches
// index order; a meta key carries the next index to assign so the sequence
// stays dense across restarts. Records are CRC32C-framed so a torn or
// corrupt value reads back as absent rather than as garbage.
package pebbleledger
