package pebbleledger

import "encoding/binary"

// Keyspace layout (byte-wise, lexicographically sortable):
//
//	lg/m            meta: next index to assign (8 bytes big-endian)
//	lg/e/{idx_be8}  one entry per populated index
var (
	keyMeta     = []byte("lg/m")
	entryPrefix = []byte("lg/e/")
)

// keyEntry builds the entry key with a big-endian index for proper ordering.
func keyEntry(index uint64) []byte {
	k := make([]byte, 0, len(entryPrefix)+8)
	k = append(k, entryPrefix...)
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], index)
	return append(k, b[:]...)
}

// indexFromKey recovers the index from an entry key.
func indexFromKey(k []byte) uint64 {
	return binary.BigEndian.Uint64(k[len(k)-8:])
}
