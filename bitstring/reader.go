package bitstring

import (
	"fmt"
	"math/big"
)

// Reader is a read cursor over a BitString. The cursor never moves past the
// string's written length and a failed read leaves it where it was.
type Reader struct {
	bits   *BitString
	offset int
}

func NewReader(b *BitString) *Reader {
	return &Reader{bits: b}
}

func (r *Reader) Offset() int    { return r.offset }
func (r *Reader) Remaining() int { return r.bits.length - r.offset }

func (r *Reader) check(n int) error {
	if n < 0 || r.offset+n > r.bits.length {
		return fmt.Errorf("%w: want %d bits, have %d", ErrOutOfRange, n, r.Remaining())
	}
	return nil
}

func (r *Reader) next() bool {
	v := r.bits.Bit(r.offset)
	r.offset++
	return v
}

func (r *Reader) Skip(n int) error {
	if err := r.check(n); err != nil {
		return err
	}
	r.offset += n
	return nil
}

func (r *Reader) ReadBit() (bool, error) {
	if err := r.check(1); err != nil {
		return false, err
	}
	return r.next(), nil
}

// ReadUint reads an unsigned integer of at most 64 bits.
func (r *Reader) ReadUint(width int) (uint64, error) {
	if width > 64 {
		return 0, fmt.Errorf("%w: uint%d does not fit uint64", ErrValueOutOfRange, width)
	}
	if err := r.check(width); err != nil {
		return 0, err
	}
	var v uint64
	for i := 0; i < width; i++ {
		v <<= 1
		if r.next() {
			v |= 1
		}
	}
	return v, nil
}

func (r *Reader) ReadBigUint(width int) (*big.Int, error) {
	if err := r.check(width); err != nil {
		return nil, err
	}
	return r.bigUint(width), nil
}

func (r *Reader) bigUint(width int) *big.Int {
	v := new(big.Int)
	for i := 0; i < width; i++ {
		v.Lsh(v, 1)
		if r.next() {
			v.SetBit(v, 0, 1)
		}
	}
	return v
}

// ReadInt reads a two's complement integer of at most 64 bits.
func (r *Reader) ReadInt(width int) (int64, error) {
	if width > 64 {
		return 0, fmt.Errorf("%w: int%d does not fit int64", ErrValueOutOfRange, width)
	}
	v, err := r.ReadBigInt(width)
	if err != nil {
		return 0, err
	}
	return v.Int64(), nil
}

func (r *Reader) ReadBigInt(width int) (*big.Int, error) {
	if err := r.check(width); err != nil {
		return nil, err
	}
	if width == 0 {
		return new(big.Int), nil
	}
	neg := r.next()
	v := r.bigUint(width - 1)
	if neg {
		v.Sub(v, new(big.Int).Lsh(big.NewInt(1), uint(width-1)))
	}
	return v, nil
}

// ReadVarUint reads a headerWidth-bit byte length and that many magnitude
// bytes.
func (r *Reader) ReadVarUint(headerWidth int) (*big.Int, error) {
	start := r.offset
	n, err := r.ReadUint(headerWidth)
	if err != nil {
		return nil, err
	}
	if n > uint64(r.Remaining()/8) {
		r.offset = start
		return nil, fmt.Errorf("%w: varuint of %d bytes, have %d bits", ErrOutOfRange, n, r.Remaining())
	}
	return r.bigUint(int(n) * 8), nil
}

func (r *Reader) ReadCoins() (*big.Int, error) {
	return r.ReadVarUint(4)
}

func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if err := r.check(n * 8); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	if r.offset&7 == 0 {
		copy(out, r.bits.data[r.offset>>3:])
		r.offset += n * 8
		return out, nil
	}
	for i := range out {
		var x byte
		for j := 0; j < 8; j++ {
			x <<= 1
			if r.next() {
				x |= 1
			}
		}
		out[i] = x
	}
	return out, nil
}

// ReadBits returns the next n bits as a new BitString of capacity n.
func (r *Reader) ReadBits(n int) (*BitString, error) {
	if err := r.check(n); err != nil {
		return nil, err
	}
	out := New(n)
	for i := 0; i < n; i++ {
		out.appendBit(r.next())
	}
	return out, nil
}

// PreloadBits returns the next n bits without moving the cursor.
func (r *Reader) PreloadBits(n int) (*BitString, error) {
	start := r.offset
	out, err := r.ReadBits(n)
	r.offset = start
	return out, err
}
