package boc

import (
	"encoding/binary"
	"hash/crc32"
)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// CRC32C is the Castagnoli checksum of data.
func CRC32C(data []byte) uint32 {
	return crc32.Checksum(data, castagnoli)
}

// crcTrailer returns the checksum in its wire form (little-endian).
func crcTrailer(data []byte) []byte {
	var b [crcBytes]byte
	binary.LittleEndian.PutUint32(b[:], CRC32C(data))
	return b[:]
}
