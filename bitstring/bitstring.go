package bitstring

import (
	"fmt"
	"math/big"
)

// BitString is an append-only sequence of at most Cap() bits.
//
// Bits past Len() in the backing storage are always zero.
type BitString struct {
	data     []byte
	length   int
	capacity int
}

// New returns an empty bit string able to hold capacity bits.
func New(capacity int) *BitString {
	if capacity < 0 {
		capacity = 0
	}
	return &BitString{
		data:     make([]byte, (capacity+7)/8),
		capacity: capacity,
	}
}

// FromBytes returns a bit string holding the first length bits of data. The
// capacity is exactly length.
func FromBytes(data []byte, length int) (*BitString, error) {
	if length < 0 || length > len(data)*8 {
		return nil, fmt.Errorf("%w: %d bits from %d bytes", ErrOutOfRange, length, len(data))
	}
	b := New(length)
	copy(b.data, data[:(length+7)/8])
	b.length = length
	b.clearTail()
	return b, nil
}

func (b *BitString) Len() int  { return b.length }
func (b *BitString) Cap() int  { return b.capacity }
func (b *BitString) Free() int { return b.capacity - b.length }

// Bit returns bit i (MSB first). i must be < Len(); no range check is made.
func (b *BitString) Bit(i int) bool {
	return b.data[i>>3]&(0x80>>uint(i&7)) != 0
}

// Bytes returns a copy of the ceil(Len()/8) bytes holding the written bits.
// Unwritten trailing bits are zero.
func (b *BitString) Bytes() []byte {
	out := make([]byte, (b.length+7)/8)
	copy(out, b.data)
	return out
}

// Clone returns an independent copy with the same capacity.
func (b *BitString) Clone() *BitString {
	c := New(b.capacity)
	copy(c.data, b.data)
	c.length = b.length
	return c
}

// Equal reports whether both strings hold the same bits. Capacity is ignored.
func (b *BitString) Equal(o *BitString) bool {
	if b.length != o.length {
		return false
	}
	full := b.length / 8
	for i := 0; i < full; i++ {
		if b.data[i] != o.data[i] {
			return false
		}
	}
	for i := full * 8; i < b.length; i++ {
		if b.Bit(i) != o.Bit(i) {
			return false
		}
	}
	return true
}

func (b *BitString) ensure(n int) error {
	if n < 0 || b.length+n > b.capacity {
		return fmt.Errorf("%w: %d+%d > %d", ErrCapacityExceeded, b.length, n, b.capacity)
	}
	return nil
}

// appendBit writes one bit; the caller has already checked the capacity.
func (b *BitString) appendBit(v bool) {
	if v {
		b.data[b.length>>3] |= 0x80 >> uint(b.length&7)
	}
	b.length++
}

func (b *BitString) clearTail() {
	if rem := b.length & 7; rem != 0 {
		b.data[b.length>>3] &= 0xFF << uint(8-rem)
	}
	for i := (b.length + 7) / 8; i < len(b.data); i++ {
		b.data[i] = 0
	}
}

func (b *BitString) WriteBit(v bool) error {
	if err := b.ensure(1); err != nil {
		return err
	}
	b.appendBit(v)
	return nil
}

// WriteUint writes v as an unsigned big-endian integer of width bits.
func (b *BitString) WriteUint(v uint64, width int) error {
	if width < 0 || (width < 64 && v>>uint(width) != 0) {
		return fmt.Errorf("%w: %d in uint%d", ErrValueOutOfRange, v, width)
	}
	if err := b.ensure(width); err != nil {
		return err
	}
	for i := width - 1; i >= 0; i-- {
		if i >= 64 {
			b.appendBit(false)
			continue
		}
		b.appendBit((v>>uint(i))&1 == 1)
	}
	return nil
}

// WriteBigUint is WriteUint for values of arbitrary width.
func (b *BitString) WriteBigUint(v *big.Int, width int) error {
	if width < 0 || v.Sign() < 0 || v.BitLen() > width {
		return fmt.Errorf("%w: %s in uint%d", ErrValueOutOfRange, v, width)
	}
	if err := b.ensure(width); err != nil {
		return err
	}
	b.appendBigUint(v, width)
	return nil
}

func (b *BitString) appendBigUint(v *big.Int, width int) {
	for i := width - 1; i >= 0; i-- {
		b.appendBit(v.Bit(i) == 1)
	}
}

// WriteInt writes v in two's complement over width bits. A 1-bit field only
// holds -1 and 0.
func (b *BitString) WriteInt(v int64, width int) error {
	return b.WriteBigInt(big.NewInt(v), width)
}

// WriteBigInt writes v in two's complement over width bits: the sign bit,
// then 2^(width-1)+v for negative values (v itself otherwise) over width-1
// bits.
func (b *BitString) WriteBigInt(v *big.Int, width int) error {
	if !fitsInt(v, width) {
		return fmt.Errorf("%w: %s in int%d", ErrValueOutOfRange, v, width)
	}
	if err := b.ensure(width); err != nil {
		return err
	}
	if width == 0 {
		return nil
	}
	if v.Sign() < 0 {
		b.appendBit(true)
		m := new(big.Int).Lsh(big.NewInt(1), uint(width-1))
		b.appendBigUint(m.Add(m, v), width-1)
		return nil
	}
	b.appendBit(false)
	b.appendBigUint(v, width-1)
	return nil
}

func fitsInt(v *big.Int, width int) bool {
	if width <= 0 {
		return width == 0 && v.Sign() == 0
	}
	if v.Sign() >= 0 {
		return v.BitLen() <= width-1
	}
	// -2^(w-1) <= v  <=>  bitlen(-v-1) <= w-1
	m := new(big.Int).Neg(v)
	return m.Sub(m, big.NewInt(1)).BitLen() <= width-1
}

// WriteVarUint writes the byte length of v in headerWidth bits followed by
// the big-endian magnitude bytes. Zero is a zero length and no payload.
func (b *BitString) WriteVarUint(v *big.Int, headerWidth int) error {
	if v.Sign() < 0 {
		return fmt.Errorf("%w: negative varuint %s", ErrValueOutOfRange, v)
	}
	n := (v.BitLen() + 7) / 8
	if headerWidth < 0 || (headerWidth < 63 && uint64(n)>>uint(headerWidth) != 0) {
		return fmt.Errorf("%w: %d bytes in a %d-bit length header", ErrValueOutOfRange, n, headerWidth)
	}
	if err := b.ensure(headerWidth + n*8); err != nil {
		return err
	}
	for i := headerWidth - 1; i >= 0; i-- {
		b.appendBit(i < 63 && (uint64(n)>>uint(i))&1 == 1)
	}
	b.appendBigUint(v, n*8)
	return nil
}

// WriteCoins writes a nanoton amount as varuint(4).
func (b *BitString) WriteCoins(v *big.Int) error {
	return b.WriteVarUint(v, 4)
}

func (b *BitString) WriteBytes(p []byte) error {
	if err := b.ensure(len(p) * 8); err != nil {
		return err
	}
	if b.length&7 == 0 {
		copy(b.data[b.length>>3:], p)
		b.length += len(p) * 8
		return nil
	}
	for _, x := range p {
		for i := 7; i >= 0; i-- {
			b.appendBit((x>>uint(i))&1 == 1)
		}
	}
	return nil
}

// WriteBitString appends every written bit of o.
func (b *BitString) WriteBitString(o *BitString) error {
	if err := b.ensure(o.length); err != nil {
		return err
	}
	for i := 0; i < o.length; i++ {
		b.appendBit(o.Bit(i))
	}
	return nil
}
