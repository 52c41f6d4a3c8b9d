package cell

import (
	"fmt"
	"math/big"
	"math/bits"
)

// Label encodings (HmLabel ~l m, m = key bits left at the node):
//
//	short  0 1^l 0 s[l]          2l+2 bits
//	long   1 0 l[k] s[l]         2+k+l bits
//	same   1 1 v l[k]            3+k bits, label is l copies of v
//
// with k = ceil(log2(m+1)). Ties go to short, then long.

func labelWidth(m int) int { return bits.Len(uint(m)) }

// storeLabel writes the l key bits starting at bit pos of key.
func storeLabel(b *Builder, key *big.Int, keyBits, pos, l int) error {
	m := keyBits - pos
	k := labelWidth(m)

	mask := new(big.Int).Lsh(big.NewInt(1), uint(l))
	mask.Sub(mask, big.NewInt(1))
	label := new(big.Int).Rsh(key, uint(keyBits-pos-l))
	label.And(label, mask)

	ones := l > 0 && label.Cmp(mask) == 0
	same := label.Sign() == 0 || ones

	shortCost := 2*l + 2
	longCost := 2 + k + l
	sameCost := 3 + k

	switch {
	case same && sameCost < shortCost && sameCost < longCost:
		if err := b.StoreUint(0b11, 2); err != nil {
			return err
		}
		if err := b.StoreBit(ones); err != nil {
			return err
		}
		return b.StoreUint(uint64(l), k)
	case longCost < shortCost:
		if err := b.StoreUint(0b10, 2); err != nil {
			return err
		}
		if err := b.StoreUint(uint64(l), k); err != nil {
			return err
		}
		return b.StoreBigUint(label, l)
	default:
		if err := b.StoreBit(false); err != nil {
			return err
		}
		for i := 0; i < l; i++ {
			if err := b.StoreBit(true); err != nil {
				return err
			}
		}
		if err := b.StoreBit(false); err != nil {
			return err
		}
		return b.StoreBigUint(label, l)
	}
}

// loadLabel reads a label at a node with m key bits left and returns its
// value and length.
func loadLabel(s *Slice, m int) (*big.Int, int, error) {
	shape := func(err error) error {
		return fmt.Errorf("%w: label: %w", ErrDictionaryShape, err)
	}
	k := labelWidth(m)

	first, err := s.LoadBit()
	if err != nil {
		return nil, 0, shape(err)
	}
	if !first {
		n := 0
		for {
			one, err := s.LoadBit()
			if err != nil {
				return nil, 0, shape(err)
			}
			if !one {
				break
			}
			n++
			if n > m {
				return nil, 0, fmt.Errorf("%w: short label longer than %d remaining key bits", ErrDictionaryShape, m)
			}
		}
		v, err := s.LoadBigUint(n)
		if err != nil {
			return nil, 0, shape(err)
		}
		return v, n, nil
	}

	second, err := s.LoadBit()
	if err != nil {
		return nil, 0, shape(err)
	}
	if !second {
		n, err := s.LoadUint(k)
		if err != nil {
			return nil, 0, shape(err)
		}
		if n > uint64(m) {
			return nil, 0, fmt.Errorf("%w: long label of %d bits exceeds %d remaining key bits", ErrDictionaryShape, n, m)
		}
		v, err := s.LoadBigUint(int(n))
		if err != nil {
			return nil, 0, shape(err)
		}
		return v, int(n), nil
	}

	one, err := s.LoadBit()
	if err != nil {
		return nil, 0, shape(err)
	}
	n, err := s.LoadUint(k)
	if err != nil {
		return nil, 0, shape(err)
	}
	if n > uint64(m) {
		return nil, 0, fmt.Errorf("%w: same label of %d bits exceeds %d remaining key bits", ErrDictionaryShape, n, m)
	}
	v := new(big.Int)
	if one {
		v.Lsh(big.NewInt(1), uint(n)).Sub(v, big.NewInt(1))
	}
	return v, int(n), nil
}
