package bitstring

import "fmt"

// Aligned reports whether the length is a whole number of bytes.
func (b *BitString) Aligned() bool { return b.length&7 == 0 }

// TopUpped returns the canonical byte form: the written bits followed, when
// not byte aligned, by a single 1 bit and zero fill.
func (b *BitString) TopUpped() []byte {
	out := b.Bytes()
	if rem := b.length & 7; rem != 0 {
		out[len(out)-1] |= 0x80 >> uint(rem)
	}
	return out
}

// FromTopUpped inverts TopUpped. aligned says whether the original length was
// a whole number of bytes (the wire descriptor carries this); otherwise the
// last 1 bit of data is the terminator and is stripped with everything after
// it.
func FromTopUpped(data []byte, aligned bool) (*BitString, error) {
	if aligned {
		return FromBytes(data, len(data)*8)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: no data", ErrBadTopUp)
	}
	last := data[len(data)-1]
	if last == 0 {
		return nil, fmt.Errorf("%w: trailing byte is zero", ErrBadTopUp)
	}
	trailing := 0
	for last&1 == 0 {
		last >>= 1
		trailing++
	}
	return FromBytes(data, len(data)*8-trailing-1)
}
