// Package locate discovers how many entries the ledger holds and retrieves
// the most recent ones, using only read-by-index calls.
//
// The ledger has no count operation and no range query, and a full linear
// scan is cost-prohibitive, so the Locator finds the highest populated index
// in two phases: a coarse backward probe from a configured ceiling by a
// fixed stride, then a binary search inside the stride window the probe
// pinned down. The TailReader then walks the last n indices individually,
// skipping gaps, and falls back to one bulk range read when individual
// reads fail wholesale.
package locate
