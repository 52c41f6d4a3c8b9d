package cell

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/forestrie/go-bagofcells/bitstring"
)

// Cell is an immutable DAG node: up to MaxBits of payload and up to MaxRefs
// ordered child references. Cells are created complete, by a Builder or by
// New, and are safe for concurrent readers. The same *Cell may be referenced
// by many parents.
type Cell struct {
	kind Kind
	bits *bitstring.BitString
	refs []*Cell

	// hash and depth are filled exactly once, see hash.go
	once  sync.Once
	ready atomic.Bool
	hash  [HashBytes]byte
	depth int
}

// New returns a cell holding bits and refs. The cell takes ownership of bits;
// the caller must not write to it afterwards.
func New(kind Kind, bits *bitstring.BitString, refs []*Cell) (*Cell, error) {
	if kind > MerkleUpdate {
		return nil, fmt.Errorf("%w: %d", ErrInvalidExoticKind, uint8(kind))
	}
	if bits == nil {
		bits = bitstring.New(0)
	}
	if bits.Len() > kind.maxBits() {
		return nil, fmt.Errorf("%w: %d bits in a %s cell", ErrCapacityExceeded, bits.Len(), kind)
	}
	if len(refs) > MaxRefs {
		return nil, fmt.Errorf("%w: %d refs", ErrCapacityExceeded, len(refs))
	}
	for i, r := range refs {
		if r == nil {
			return nil, fmt.Errorf("%w: ref %d", ErrNilRef, i)
		}
		if d := r.Depth(); d >= MaxDepth {
			return nil, fmt.Errorf("%w: ref %d has depth %d, max cell depth is %d", ErrCapacityExceeded, i, d, MaxDepth)
		}
	}
	return &Cell{
		kind: kind,
		bits: bits,
		refs: append([]*Cell(nil), refs...),
	}, nil
}

// Empty returns a new ordinary cell with no bits and no refs.
func Empty() *Cell {
	return &Cell{bits: bitstring.New(0)}
}

func (c *Cell) Kind() Kind     { return c.kind }
func (c *Cell) IsExotic() bool { return c.kind.IsExotic() }
func (c *Cell) BitLen() int    { return c.bits.Len() }
func (c *Cell) RefCount() int  { return len(c.refs) }

// Bits returns a copy of the payload.
func (c *Cell) Bits() *bitstring.BitString { return c.bits.Clone() }

// Ref returns child i.
func (c *Cell) Ref(i int) (*Cell, error) {
	if i < 0 || i >= len(c.refs) {
		return nil, fmt.Errorf("%w: ref %d of %d", ErrOutOfRange, i, len(c.refs))
	}
	return c.refs[i], nil
}

// Refs returns the children in order. The returned slice is a copy.
func (c *Cell) Refs() []*Cell {
	return append([]*Cell(nil), c.refs...)
}

// BeginParse returns a Slice positioned at the first bit and first ref.
func (c *Cell) BeginParse() *Slice {
	return &Slice{
		bits: bitstring.NewReader(c.bits),
		refs: c.refs,
	}
}

// Equal reports whether both cells have the same representation hash.
func (c *Cell) Equal(o *Cell) bool {
	if c == o {
		return true
	}
	if c == nil || o == nil {
		return false
	}
	return c.Hash() == o.Hash()
}
