package boc

import "errors"

const (
	MagicFlagged = 0xB5EE9C72
	MagicLean    = 0x68FF65F3
	MagicLeanCRC = 0xACC3A728

	magicBytes = 4
	crcBytes   = 4

	flagIndex     = 0x80
	flagCRC32C    = 0x40
	flagCacheBits = 0x20

	// MaxSizeBytes is the widest cell index the 3-bit size field can declare.
	MaxSizeBytes = 7
	// MaxOffsetBytes is the widest byte offset this implementation reads.
	MaxOffsetBytes = 8
)

var (
	ErrMalformedHeader      = errors.New("boc: malformed header")
	ErrChecksumMismatch     = errors.New("boc: crc32c mismatch")
	ErrBrokenReferenceOrder = errors.New("boc: reference does not point forward")
	ErrMalformedCell        = errors.New("boc: malformed cell record")
)
