package celldump

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/forestrie/go-bagofcells/bitstring"
	"github.com/forestrie/go-bagofcells/cell"
)

var (
	ErrInvalidDump  = errors.New("celldump: invalid dump")
	ErrHashMismatch = errors.New("celldump: recomputed hash differs")
)

// Node is one distinct cell. Bits is the fift hex form of the payload and
// Refs are the hex hashes of the children, in order.
type Node struct {
	Hash   string   `json:"hash" cbor:"1,keyasint" yaml:"hash"`
	Kind   string   `json:"kind" cbor:"2,keyasint" yaml:"kind"`
	Depth  int      `json:"depth" cbor:"3,keyasint" yaml:"depth"`
	BitLen int      `json:"bit_len" cbor:"4,keyasint" yaml:"bit_len"`
	Bits   string   `json:"bits" cbor:"5,keyasint" yaml:"bits"`
	Refs   []string `json:"refs,omitempty" cbor:"6,keyasint,omitempty" yaml:"refs,omitempty"`
}

type Dump struct {
	Root  string `json:"root" cbor:"1,keyasint" yaml:"root"`
	Cells []Node `json:"cells" cbor:"2,keyasint" yaml:"cells"`
}

func hashString(c *cell.Cell) string {
	h := c.Hash()
	return hex.EncodeToString(h[:])
}

func kindFromString(s string) (cell.Kind, error) {
	for k := cell.Ordinary; k <= cell.MerkleUpdate; k++ {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: kind %q", ErrInvalidDump, s)
}

// FromCell flattens the DAG under root. The root is Cells[0].
func FromCell(root *cell.Cell) (*Dump, error) {
	table, err := cell.Sort(root)
	if err != nil {
		return nil, err
	}
	d := &Dump{Root: hashString(root), Cells: make([]Node, len(table))}
	for i, e := range table {
		n := Node{
			Hash:   hashString(e.Cell),
			Kind:   e.Cell.Kind().String(),
			Depth:  e.Cell.Depth(),
			BitLen: e.Cell.BitLen(),
			Bits:   e.Cell.Bits().String(),
		}
		for _, r := range e.Refs {
			n.Refs = append(n.Refs, hashString(table[r].Cell))
		}
		d.Cells[i] = n
	}
	return d, nil
}

// ToCell rebuilds the DAG. Every node must appear after all nodes that
// reference it, which FromCell guarantees.
func (d *Dump) ToCell() (*cell.Cell, error) {
	if len(d.Cells) == 0 {
		return nil, fmt.Errorf("%w: no cells", ErrInvalidDump)
	}
	built := make(map[string]*cell.Cell, len(d.Cells))
	for i := len(d.Cells) - 1; i >= 0; i-- {
		n := d.Cells[i]
		kind, err := kindFromString(n.Kind)
		if err != nil {
			return nil, err
		}
		bits, err := bitstring.ParseFift(n.Bits)
		if err != nil {
			return nil, fmt.Errorf("%w: cell %s: %w", ErrInvalidDump, n.Hash, err)
		}
		if bits.Len() != n.BitLen {
			return nil, fmt.Errorf("%w: cell %s: bit_len %d, bits hold %d", ErrInvalidDump, n.Hash, n.BitLen, bits.Len())
		}
		refs := make([]*cell.Cell, len(n.Refs))
		for j, h := range n.Refs {
			r, ok := built[h]
			if !ok {
				return nil, fmt.Errorf("%w: cell %s refers to %s which does not follow it", ErrInvalidDump, n.Hash, h)
			}
			refs[j] = r
		}
		c, err := cell.New(kind, bits, refs)
		if err != nil {
			return nil, fmt.Errorf("%w: cell %s: %w", ErrInvalidDump, n.Hash, err)
		}
		if got := hashString(c); got != n.Hash {
			return nil, fmt.Errorf("%w: cell %d: recorded %s, computed %s", ErrHashMismatch, i, n.Hash, got)
		}
		built[n.Hash] = c
	}

	root, ok := built[d.Root]
	if !ok {
		return nil, fmt.Errorf("%w: root %s not among cells", ErrInvalidDump, d.Root)
	}
	return root, nil
}
