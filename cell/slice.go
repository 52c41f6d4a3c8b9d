package cell

import (
	"fmt"
	"math/big"

	"github.com/forestrie/go-bagofcells/bitstring"
)

// Slice is a read cursor over one cell: a bit cursor plus the refs not yet
// loaded. Refs are consumed strictly in order.
type Slice struct {
	bits    *bitstring.Reader
	refs    []*Cell
	nextRef int
}

func (s *Slice) RemainingBits() int { return s.bits.Remaining() }
func (s *Slice) RemainingRefs() int { return len(s.refs) - s.nextRef }

func (s *Slice) LoadBit() (bool, error)                  { return s.bits.ReadBit() }
func (s *Slice) LoadUint(width int) (uint64, error)      { return s.bits.ReadUint(width) }
func (s *Slice) LoadBigUint(width int) (*big.Int, error) { return s.bits.ReadBigUint(width) }
func (s *Slice) LoadInt(width int) (int64, error)        { return s.bits.ReadInt(width) }
func (s *Slice) LoadBigInt(width int) (*big.Int, error)  { return s.bits.ReadBigInt(width) }
func (s *Slice) LoadCoins() (*big.Int, error)            { return s.bits.ReadCoins() }
func (s *Slice) LoadBytes(n int) ([]byte, error)         { return s.bits.ReadBytes(n) }
func (s *Slice) Skip(n int) error                        { return s.bits.Skip(n) }

func (s *Slice) LoadVarUint(headerWidth int) (*big.Int, error) {
	return s.bits.ReadVarUint(headerWidth)
}

func (s *Slice) LoadBits(n int) (*bitstring.BitString, error) {
	return s.bits.ReadBits(n)
}

// LoadRef returns the next unread ref.
func (s *Slice) LoadRef() (*Cell, error) {
	if s.nextRef >= len(s.refs) {
		return nil, fmt.Errorf("%w: all %d refs consumed", ErrOutOfRange, len(s.refs))
	}
	c := s.refs[s.nextRef]
	s.nextRef++
	return c, nil
}

// LoadMaybeRef reads a presence bit and, when set, the next ref. It returns
// nil for an absent ref. On error nothing is consumed.
func (s *Slice) LoadMaybeRef() (*Cell, error) {
	flag, err := s.bits.PreloadBits(1)
	if err != nil {
		return nil, err
	}
	if !flag.Bit(0) {
		_ = s.bits.Skip(1)
		return nil, nil
	}
	if s.RemainingRefs() == 0 {
		return nil, fmt.Errorf("%w: maybe ref flagged present but no refs left", ErrOutOfRange)
	}
	_ = s.bits.Skip(1)
	return s.LoadRef()
}

// EndParse fails if any bits or refs are left unread.
func (s *Slice) EndParse() error {
	if s.RemainingBits() != 0 || s.RemainingRefs() != 0 {
		return fmt.Errorf("%w: %d bits, %d refs", ErrDataRemaining, s.RemainingBits(), s.RemainingRefs())
	}
	return nil
}

// ToCell returns a new cell holding the unread bits and refs.
func (s *Slice) ToCell() (*Cell, error) {
	b := NewBuilder()
	if err := b.StoreSlice(s); err != nil {
		return nil, err
	}
	return b.EndCell()
}
