package cell

import (
	"fmt"
	"math/big"

	"github.com/forestrie/go-bagofcells/bitstring"
)

// Builder accumulates bits and refs for one cell. A failed store leaves the
// builder unchanged. After EndCell every call fails with ErrBuilderClosed.
type Builder struct {
	bits   *bitstring.BitString
	refs   []*Cell
	closed bool
}

func NewBuilder() *Builder {
	return &Builder{bits: bitstring.New(MaxBits)}
}

func (b *Builder) BitsUsed() int { return b.bits.Len() }
func (b *Builder) RefsUsed() int { return len(b.refs) }
func (b *Builder) BitsLeft() int { return b.bits.Free() }
func (b *Builder) RefsLeft() int { return MaxRefs - len(b.refs) }

func (b *Builder) open() error {
	if b.closed {
		return ErrBuilderClosed
	}
	return nil
}

func (b *Builder) StoreBit(v bool) error {
	if err := b.open(); err != nil {
		return err
	}
	return b.bits.WriteBit(v)
}

func (b *Builder) StoreUint(v uint64, width int) error {
	if err := b.open(); err != nil {
		return err
	}
	return b.bits.WriteUint(v, width)
}

func (b *Builder) StoreBigUint(v *big.Int, width int) error {
	if err := b.open(); err != nil {
		return err
	}
	return b.bits.WriteBigUint(v, width)
}

func (b *Builder) StoreInt(v int64, width int) error {
	if err := b.open(); err != nil {
		return err
	}
	return b.bits.WriteInt(v, width)
}

func (b *Builder) StoreBigInt(v *big.Int, width int) error {
	if err := b.open(); err != nil {
		return err
	}
	return b.bits.WriteBigInt(v, width)
}

func (b *Builder) StoreVarUint(v *big.Int, headerWidth int) error {
	if err := b.open(); err != nil {
		return err
	}
	return b.bits.WriteVarUint(v, headerWidth)
}

// StoreCoins stores a nanoton amount (VarUInteger 16).
func (b *Builder) StoreCoins(v *big.Int) error {
	if err := b.open(); err != nil {
		return err
	}
	return b.bits.WriteCoins(v)
}

func (b *Builder) StoreBytes(p []byte) error {
	if err := b.open(); err != nil {
		return err
	}
	return b.bits.WriteBytes(p)
}

func (b *Builder) StoreBitString(s *bitstring.BitString) error {
	if err := b.open(); err != nil {
		return err
	}
	return b.bits.WriteBitString(s)
}

func (b *Builder) StoreRef(c *Cell) error {
	if err := b.open(); err != nil {
		return err
	}
	if c == nil {
		return ErrNilRef
	}
	if len(b.refs) >= MaxRefs {
		return fmt.Errorf("%w: refs already at %d", ErrCapacityExceeded, MaxRefs)
	}
	b.refs = append(b.refs, c)
	return nil
}

// StoreMaybeRef stores a presence bit and, when c is not nil, a ref to c.
func (b *Builder) StoreMaybeRef(c *Cell) error {
	if err := b.open(); err != nil {
		return err
	}
	if c == nil {
		return b.bits.WriteBit(false)
	}
	if b.BitsLeft() < 1 || b.RefsLeft() < 1 {
		return fmt.Errorf("%w: no room for maybe ref", ErrCapacityExceeded)
	}
	_ = b.bits.WriteBit(true)
	b.refs = append(b.refs, c)
	return nil
}

// StoreSlice appends the unread bits and refs of s without consuming them.
func (b *Builder) StoreSlice(s *Slice) error {
	bits, err := s.bits.PreloadBits(s.RemainingBits())
	if err != nil {
		return err
	}
	return b.storeParts(bits, s.refs[s.nextRef:])
}

// StoreCell appends every bit and ref of c.
func (b *Builder) StoreCell(c *Cell) error {
	return b.storeParts(c.bits, c.refs)
}

func (b *Builder) storeParts(bits *bitstring.BitString, refs []*Cell) error {
	if err := b.open(); err != nil {
		return err
	}
	if len(refs) > b.RefsLeft() {
		return fmt.Errorf("%w: %d refs do not fit", ErrCapacityExceeded, len(refs))
	}
	if err := b.bits.WriteBitString(bits); err != nil {
		return err
	}
	b.refs = append(b.refs, refs...)
	return nil
}

// StoreDict stores a non-empty dictionary root as a plain ref (Hashmap).
func (b *Builder) StoreDict(root *Cell) error {
	if root == nil {
		return fmt.Errorf("%w: empty dictionary needs StoreOptDict", ErrDictionaryShape)
	}
	return b.StoreRef(root)
}

// StoreOptDict stores a possibly empty dictionary (HashmapE): one presence
// bit and the root ref when present.
func (b *Builder) StoreOptDict(root *Cell) error {
	return b.StoreMaybeRef(root)
}

// EndCell freezes the accumulated data into an ordinary cell and closes the
// builder.
func (b *Builder) EndCell() (*Cell, error) {
	return b.end(Ordinary)
}

// EndExoticCell is EndCell for the exotic kinds. The payload must leave room
// for the discriminant byte (MaxExoticBits).
func (b *Builder) EndExoticCell(kind Kind) (*Cell, error) {
	if !kind.IsExotic() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidExoticKind, kind)
	}
	return b.end(kind)
}

func (b *Builder) end(kind Kind) (*Cell, error) {
	if err := b.open(); err != nil {
		return nil, err
	}
	c, err := New(kind, b.bits, b.refs)
	if err != nil {
		return nil, err
	}
	b.closed = true
	return c, nil
}
