package boc

import (
	"encoding/binary"
	"fmt"
	"math/bits"

	"github.com/forestrie/go-bagofcells/cell"
)

// byteWidth is the number of bytes needed to hold n, never less than one.
func byteWidth(n uint64) int {
	return max(1, (bits.Len64(n)+7)/8)
}

// appendUint appends the low width bytes of v, big-endian.
func appendUint(dst []byte, v uint64, width int) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return append(dst, b[8-width:]...)
}

type header struct {
	magic       uint32
	hasIndex    bool
	hasCRC      bool
	hasCache    bool
	flags       uint8
	sizeBytes   int
	offsetBytes int
	cells       uint64
	roots       uint64
	absent      uint64
	totalSize   uint64
}

func (h header) String() string {
	return fmt.Sprintf("magic=%08X cells=%d roots=%d size_bytes=%d offset_bytes=%d total=%d idx=%v crc=%v cache=%v",
		h.magic, h.cells, h.roots, h.sizeBytes, h.offsetBytes, h.totalSize, h.hasIndex, h.hasCRC, h.hasCache)
}

// flagsByte packs the second header byte of the flagged form.
func (h header) flagsByte() byte {
	b := byte(h.sizeBytes) | (h.flags&3)<<3
	if h.hasIndex {
		b |= flagIndex
	}
	if h.hasCRC {
		b |= flagCRC32C
	}
	if h.hasCache {
		b |= flagCacheBits
	}
	return b
}

func (h header) appendTo(dst []byte) []byte {
	dst = binary.BigEndian.AppendUint32(dst, MagicFlagged)
	dst = append(dst, h.flagsByte(), byte(h.offsetBytes))
	dst = appendUint(dst, h.cells, h.sizeBytes)
	dst = appendUint(dst, h.roots, h.sizeBytes)
	dst = appendUint(dst, h.absent, h.sizeBytes)
	return appendUint(dst, h.totalSize, h.offsetBytes)
}

// cellRecordSize is the serialized length of one table row.
func cellRecordSize(e cell.TableEntry, sizeBytes int) int {
	return 2 + len(e.Cell.Payload()) + len(e.Refs)*sizeBytes
}

func appendCellRecord(dst []byte, e cell.TableEntry, sizeBytes int) []byte {
	d := e.Cell.Descriptors()
	dst = append(dst, d[0], d[1])
	dst = append(dst, e.Cell.Payload()...)
	for _, r := range e.Refs {
		dst = appendUint(dst, uint64(r), sizeBytes)
	}
	return dst
}

// Serialize writes the DAG under root as a single-root bag of cells in the
// flagged (B5EE9C72) form. Cells are deduplicated by hash and laid out as
// cell.Sort orders them, so the root is cell 0.
//
// size_bytes and offset_bytes are the smallest widths that hold the cell
// count and the total cell data size.
func Serialize(root *cell.Cell, opts ...Option) ([]byte, error) {
	o := NewOptions(opts...)

	if o.CacheBits && !o.Index {
		return nil, fmt.Errorf("%w: cache bits without index", ErrMalformedHeader)
	}

	table, err := cell.Sort(root)
	if err != nil {
		return nil, err
	}

	h := header{
		magic:     MagicFlagged,
		hasIndex:  o.Index,
		hasCRC:    o.CRC32C,
		hasCache:  o.CacheBits,
		flags:     o.Flags,
		sizeBytes: byteWidth(uint64(len(table))),
		cells:     uint64(len(table)),
		roots:     1,
	}
	if h.sizeBytes > MaxSizeBytes {
		return nil, fmt.Errorf("%w: %d cells need %d index bytes", ErrMalformedHeader, len(table), h.sizeBytes)
	}

	ends := make([]uint64, len(table))
	var total uint64
	for i, e := range table {
		total += uint64(cellRecordSize(e, h.sizeBytes))
		ends[i] = total
	}
	h.totalSize = total
	h.offsetBytes = byteWidth(total)

	size := 6 + 3*h.sizeBytes + h.offsetBytes + h.sizeBytes + int(total)
	if h.hasIndex {
		size += len(table) * h.offsetBytes
	}
	if h.hasCRC {
		size += crcBytes
	}

	out := make([]byte, 0, size)
	out = h.appendTo(out)
	// the single root is row 0
	out = appendUint(out, 0, h.sizeBytes)
	if h.hasIndex {
		for _, end := range ends {
			out = appendUint(out, end, h.offsetBytes)
		}
	}
	for _, e := range table {
		out = appendCellRecord(out, e, h.sizeBytes)
	}
	if h.hasCRC {
		out = append(out, crcTrailer(out)...)
	}

	o.debugf("boc: serialized %s into %d bytes", h, len(out))
	return out, nil
}
