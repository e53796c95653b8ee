package pebbleledger

import (
	"encoding/binary"
	"hash/crc32"
	"time"
)

// Record encoding:
//
//	created_ms_be8 | varint producerLen | producer | message | crc32c(all preceding)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

func encodeRecord(producer, message string, createdAt time.Time) []byte {
	out := make([]byte, 0, 8+10+len(producer)+len(message)+4)
	var ms [8]byte
	binary.BigEndian.PutUint64(ms[:], uint64(createdAt.UnixMilli()))
	out = append(out, ms[:]...)

	var tmp [10]byte
	n := binary.PutUvarint(tmp[:], uint64(len(producer)))
	out = append(out, tmp[:n]...)
	out = append(out, producer...)
	out = append(out, message...)

	crc := crc32.Checksum(out, castagnoli)
	var crcb [4]byte
	binary.BigEndian.PutUint32(crcb[:], crc)
	return append(out, crcb[:]...)
}

type decoded struct {
	Producer  string
	Message   string
	CreatedAt time.Time
}

func decodeRecord(b []byte) (decoded, bool) {
	if len(b) < 8+1+4 {
		return decoded{}, false
	}
	body, crcb := b[:len(b)-4], b[len(b)-4:]
	if crc32.Checksum(body, castagnoli) != binary.BigEndian.Uint32(crcb) {
		return decoded{}, false
	}
	ms := binary.BigEndian.Uint64(body[:8])
	plen, n := binary.Uvarint(body[8:])
	if n <= 0 || 8+n+int(plen) > len(body) {
		return decoded{}, false
	}
	producer := string(body[8+n : 8+n+int(plen)])
	message := string(body[8+n+int(plen):])
	return decoded{
		Producer:  producer,
		Message:   message,
		CreatedAt: time.UnixMilli(int64(ms)).UTC(),
	}, true
}
