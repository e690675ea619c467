package utils

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/cespare/xxhash/v2"
)

// Checksum returns the xxhash64 of raw as 16 hex chars.
func Checksum(raw []byte) string {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, xxhash.Sum64(raw))
	return hex.EncodeToString(buf)
}
