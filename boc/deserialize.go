package boc

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/bits"

	"github.com/forestrie/go-bagofcells/bitstring"
	"github.com/forestrie/go-bagofcells/cell"
)

const (
	// bytes per stored hash record: hash plus 2 byte depth
	storedHashBytes = cell.HashBytes + 2
	// every cell record is at least the two descriptor bytes
	minCellRecord = 2
)

// cursor reads big-endian fields from a byte slice. Reads past the end fail
// with ErrMalformedHeader.
type cursor struct {
	data []byte
	pos  int
}

func (c *cursor) remaining() int { return len(c.data) - c.pos }

func (c *cursor) take(n int, what string) ([]byte, error) {
	if n < 0 || n > c.remaining() {
		return nil, fmt.Errorf("%w: %s needs %d bytes, %d remain", ErrMalformedHeader, what, n, c.remaining())
	}
	b := c.data[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

func (c *cursor) readUint(width int, what string) (uint64, error) {
	b, err := c.take(width, what)
	if err != nil {
		return 0, err
	}
	var buf [8]byte
	copy(buf[8-width:], b)
	return binary.BigEndian.Uint64(buf[:]), nil
}

func (c *cursor) readByte(what string) (byte, error) {
	b, err := c.take(1, what)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// readHeader parses everything up to the root list and checks the declared
// sizes against the bytes present.
func readHeader(c *cursor) (header, error) {
	var h header

	m, err := c.readUint(magicBytes, "magic")
	if err != nil {
		return h, err
	}
	h.magic = uint32(m)

	switch h.magic {
	case MagicFlagged:
		b, err := c.readByte("flags")
		if err != nil {
			return h, err
		}
		h.hasIndex = b&flagIndex != 0
		h.hasCRC = b&flagCRC32C != 0
		h.hasCache = b&flagCacheBits != 0
		h.flags = (b >> 3) & 3
		h.sizeBytes = int(b & 7)
		if h.hasCache && !h.hasIndex {
			return h, fmt.Errorf("%w: cache bits without index", ErrMalformedHeader)
		}
	case MagicLean, MagicLeanCRC:
		b, err := c.readByte("size_bytes")
		if err != nil {
			return h, err
		}
		h.hasIndex = true
		h.hasCRC = h.magic == MagicLeanCRC
		h.sizeBytes = int(b)
	default:
		return h, fmt.Errorf("%w: unknown magic %08X", ErrMalformedHeader, h.magic)
	}

	if h.sizeBytes < 1 || h.sizeBytes > MaxSizeBytes {
		return h, fmt.Errorf("%w: size_bytes %d", ErrMalformedHeader, h.sizeBytes)
	}
	ob, err := c.readByte("offset_bytes")
	if err != nil {
		return h, err
	}
	h.offsetBytes = int(ob)
	if h.offsetBytes < 1 || h.offsetBytes > MaxOffsetBytes {
		return h, fmt.Errorf("%w: offset_bytes %d", ErrMalformedHeader, h.offsetBytes)
	}

	if h.cells, err = c.readUint(h.sizeBytes, "cell count"); err != nil {
		return h, err
	}
	if h.roots, err = c.readUint(h.sizeBytes, "root count"); err != nil {
		return h, err
	}
	if h.absent, err = c.readUint(h.sizeBytes, "absent count"); err != nil {
		return h, err
	}
	if h.totalSize, err = c.readUint(h.offsetBytes, "total cells size"); err != nil {
		return h, err
	}

	switch {
	case h.cells == 0:
		return h, fmt.Errorf("%w: no cells", ErrMalformedHeader)
	case h.roots == 0 || h.roots > h.cells:
		return h, fmt.Errorf("%w: %d roots for %d cells", ErrMalformedHeader, h.roots, h.cells)
	case h.absent != 0:
		return h, fmt.Errorf("%w: %d absent cells", ErrMalformedHeader, h.absent)
	}

	// Everything after this point must fit in what is left, and every
	// count is bounded by it before anything is allocated.
	avail := uint64(c.remaining())
	need := h.roots * uint64(h.sizeBytes)
	if h.roots > avail/uint64(h.sizeBytes) {
		return h, fmt.Errorf("%w: root list exceeds input", ErrMalformedHeader)
	}
	if h.hasIndex {
		if h.cells > (avail-need)/uint64(h.offsetBytes) {
			return h, fmt.Errorf("%w: index exceeds input", ErrMalformedHeader)
		}
		need += h.cells * uint64(h.offsetBytes)
	}
	if h.totalSize != avail-need {
		return h, fmt.Errorf("%w: declared %d bytes of cells, %d present", ErrMalformedHeader, h.totalSize, avail-need)
	}
	if h.cells > h.totalSize/minCellRecord {
		return h, fmt.Errorf("%w: %d cells cannot fit in %d bytes", ErrMalformedHeader, h.cells, h.totalSize)
	}
	return h, nil
}

// record is a decoded but unlinked cell.
type record struct {
	kind cell.Kind
	bits *bitstring.BitString
	refs []int
}

func readCell(c *cursor, index int, h header) (record, error) {
	var r record
	malformed := func(err error) error {
		return fmt.Errorf("%w: cell %d: %w", ErrMalformedCell, index, err)
	}

	d, err := c.take(2, "cell descriptors")
	if err != nil {
		return r, malformed(err)
	}
	d1, d2 := d[0], d[1]

	refCount := int(d1 & 7)
	exotic := d1&8 != 0
	levelMask := d1 >> 5
	if refCount > cell.MaxRefs {
		return r, malformed(fmt.Errorf("%d refs", refCount))
	}
	// The level mask only sizes the stored hash block; cells are rebuilt at
	// level 0 (see cell.Level).
	if d1&16 != 0 {
		n := (bits.OnesCount8(levelMask) + 1) * storedHashBytes
		if _, err := c.take(n, "stored hashes"); err != nil {
			return r, malformed(err)
		}
	}

	payload, err := c.take(int(d2/2+d2&1), "cell data")
	if err != nil {
		return r, malformed(err)
	}
	if exotic {
		if len(payload) == 0 {
			return r, malformed(errors.New("exotic cell without kind byte"))
		}
		if r.kind, err = cell.ParseExoticKind(payload[0]); err != nil {
			return r, malformed(err)
		}
		payload = payload[1:]
	}
	if r.bits, err = bitstring.FromTopUpped(payload, d2&1 == 0); err != nil {
		return r, malformed(err)
	}

	r.refs = make([]int, refCount)
	for j := range r.refs {
		ref, err := c.readUint(h.sizeBytes, "ref index")
		if err != nil {
			return r, malformed(err)
		}
		if ref <= uint64(index) || ref >= h.cells {
			return r, fmt.Errorf("%w: cell %d ref %d -> %d", ErrBrokenReferenceOrder, index, j, ref)
		}
		r.refs[j] = int(ref)
	}
	return r, nil
}

// DeserializeAll decodes a bag of cells in any of the three recognised
// forms and returns its roots in the order the root list declares them.
func DeserializeAll(data []byte, opts ...Option) ([]*cell.Cell, error) {
	o := NewOptions(opts...)

	c := &cursor{data: data}
	if len(data) >= magicBytes {
		// the checksum covers everything before it, so strip it first
		m := binary.BigEndian.Uint32(data)
		crc := m == MagicLeanCRC || (m == MagicFlagged && len(data) > magicBytes && data[magicBytes]&flagCRC32C != 0)
		if crc {
			if len(data) < magicBytes+crcBytes {
				return nil, fmt.Errorf("%w: too short for checksum", ErrMalformedHeader)
			}
			body := data[:len(data)-crcBytes]
			want := binary.LittleEndian.Uint32(data[len(body):])
			if got := CRC32C(body); got != want {
				return nil, fmt.Errorf("%w: computed %08x, trailer %08x", ErrChecksumMismatch, got, want)
			}
			c.data = body
		}
	}

	h, err := readHeader(c)
	if err != nil {
		return nil, err
	}
	o.debugf("boc: decoding %s", h)

	rootIdx := make([]int, h.roots)
	for i := range rootIdx {
		v, err := c.readUint(h.sizeBytes, "root index")
		if err != nil {
			return nil, err
		}
		if v >= h.cells {
			return nil, fmt.Errorf("%w: root index %d of %d cells", ErrMalformedHeader, v, h.cells)
		}
		rootIdx[i] = int(v)
	}
	if h.hasIndex {
		// offsets are advisory; cells are decoded sequentially
		if _, err := c.take(int(h.cells)*h.offsetBytes, "index"); err != nil {
			return nil, err
		}
	}

	start := c.pos
	records := make([]record, h.cells)
	for i := range records {
		if records[i], err = readCell(c, i, h); err != nil {
			return nil, err
		}
	}
	if used := uint64(c.pos - start); used != h.totalSize {
		return nil, fmt.Errorf("%w: cells used %d of %d declared bytes", ErrMalformedHeader, used, h.totalSize)
	}

	// refs point strictly forward, so walking backward finds every child
	// already built
	cells := make([]*cell.Cell, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		refs := make([]*cell.Cell, len(r.refs))
		for j, idx := range r.refs {
			refs[j] = cells[idx]
		}
		if cells[i], err = cell.New(r.kind, r.bits, refs); err != nil {
			return nil, fmt.Errorf("%w: cell %d: %w", ErrMalformedCell, i, err)
		}
	}

	roots := make([]*cell.Cell, len(rootIdx))
	for i, idx := range rootIdx {
		roots[i] = cells[idx]
	}
	return roots, nil
}

// Deserialize decodes data and returns its first root.
func Deserialize(data []byte, opts ...Option) (*cell.Cell, error) {
	roots, err := DeserializeAll(data, opts...)
	if err != nil {
		return nil, err
	}
	return roots[0], nil
}
