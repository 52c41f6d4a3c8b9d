package cell

import (
	"fmt"
	"math/big"
	"slices"
)

// DictEntry is one key/value pair of a dictionary. Key is an unsigned integer
// of the dictionary's key width.
type DictEntry[V any] struct {
	Key   *big.Int
	Value V
}

// EntriesFromMap converts a map keyed by uint64 into entries ordered by key.
func EntriesFromMap[V any](m map[uint64]V) []DictEntry[V] {
	out := make([]DictEntry[V], 0, len(m))
	for k, v := range m {
		out = append(out, DictEntry[V]{Key: new(big.Int).SetUint64(k), Value: v})
	}
	slices.SortFunc(out, func(a, b DictEntry[V]) int { return a.Key.Cmp(b.Key) })
	return out
}

// trieNode is one edge+node of the dictionary trie under construction. The
// keys under it are sorted[lo:hi]; the label starts at key bit pos and is
// labelLen bits long.
type trieNode struct {
	lo, hi   int
	pos      int
	labelLen int
	children [2]int // indices into the node list; leaves have none
}

// EncodeDict builds the HashmapE trie for entries with keyBits-wide keys and
// returns its root, or nil for an empty dictionary. store writes one value
// into the leaf builder after the label.
//
// At every node the label is the longest prefix shared by all keys below it
// and is written in the cheapest of the short, long and same encodings.
func EncodeDict[V any](entries []DictEntry[V], keyBits int, store func(*Builder, V) error) (*Cell, error) {
	if keyBits <= 0 {
		return nil, fmt.Errorf("%w: key width %d", ErrDictionaryShape, keyBits)
	}
	if len(entries) == 0 {
		return nil, nil
	}

	sorted := slices.Clone(entries)
	for i, e := range sorted {
		if e.Key == nil || e.Key.Sign() < 0 || e.Key.BitLen() > keyBits {
			return nil, fmt.Errorf("%w: entry %d key does not fit %d bits", ErrDictionaryShape, i, keyBits)
		}
	}
	slices.SortFunc(sorted, func(a, b DictEntry[V]) int { return a.Key.Cmp(b.Key) })
	for i := 1; i < len(sorted); i++ {
		if sorted[i-1].Key.Cmp(sorted[i].Key) == 0 {
			return nil, fmt.Errorf("%w: duplicate key %s", ErrDictionaryShape, sorted[i].Key)
		}
	}

	bit := func(i, pos int) uint {
		return sorted[i].Key.Bit(keyBits - 1 - pos)
	}

	// Shape the trie top down. Children are always appended after their
	// parent, so building cells in reverse node order sees children first.
	nodes := []trieNode{{lo: 0, hi: len(sorted)}}
	for n := 0; n < len(nodes); n++ {
		nd := &nodes[n]
		if nd.hi-nd.lo == 1 {
			nd.labelLen = keyBits - nd.pos
			continue
		}
		// keys are sorted, so the first and last share the common prefix
		l := 0
		for bit(nd.lo, nd.pos+l) == bit(nd.hi-1, nd.pos+l) {
			l++
		}
		nd.labelLen = l
		split := nd.pos + l
		mid := nd.lo
		for bit(mid, split) == 0 {
			mid++
		}
		lo, hi := nd.lo, nd.hi
		nd.children = [2]int{len(nodes), len(nodes) + 1}
		nodes = append(nodes,
			trieNode{lo: lo, hi: mid, pos: split + 1},
			trieNode{lo: mid, hi: hi, pos: split + 1})
	}

	cells := make([]*Cell, len(nodes))
	for n := len(nodes) - 1; n >= 0; n-- {
		nd := nodes[n]
		b := NewBuilder()
		if err := storeLabel(b, sorted[nd.lo].Key, keyBits, nd.pos, nd.labelLen); err != nil {
			return nil, err
		}
		if nd.hi-nd.lo == 1 {
			if err := store(b, sorted[nd.lo].Value); err != nil {
				return nil, fmt.Errorf("storing value for key %s: %w", sorted[nd.lo].Key, err)
			}
		} else {
			for _, child := range nd.children {
				if err := b.StoreRef(cells[child]); err != nil {
					return nil, err
				}
				cells[child] = nil
			}
		}
		c, err := b.EndCell()
		if err != nil {
			return nil, err
		}
		cells[n] = c
	}
	return cells[0], nil
}

type dictFrame struct {
	c      *Cell
	prefix *big.Int
	width  int
}

// DecodeDict walks the trie under root and returns its entries in traversal
// order (0 branch before 1 branch). load reads one value from the leaf slice,
// positioned just after the label. Exotic children (pruned subtrees) are
// skipped.
func DecodeDict[V any](root *Cell, keyBits int, load func(*Slice) (V, error)) ([]DictEntry[V], error) {
	if keyBits <= 0 {
		return nil, fmt.Errorf("%w: key width %d", ErrDictionaryShape, keyBits)
	}
	if root == nil {
		return nil, nil
	}

	var out []DictEntry[V]
	stack := []dictFrame{{c: root, prefix: new(big.Int), width: keyBits}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		s := f.c.BeginParse()
		label, labelLen, err := loadLabel(s, f.width)
		if err != nil {
			return nil, err
		}
		key := new(big.Int).Lsh(f.prefix, uint(labelLen))
		key.Or(key, label)

		rest := f.width - labelLen
		if rest == 0 {
			v, err := load(s)
			if err != nil {
				return nil, fmt.Errorf("loading value for key %s: %w", key, err)
			}
			out = append(out, DictEntry[V]{Key: key, Value: v})
			continue
		}

		left, err := s.LoadRef()
		if err != nil {
			return nil, fmt.Errorf("%w: fork: %w", ErrDictionaryShape, err)
		}
		right, err := s.LoadRef()
		if err != nil {
			return nil, fmt.Errorf("%w: fork: %w", ErrDictionaryShape, err)
		}
		// push right first so the 0 branch is visited first
		for i, child := range []*Cell{right, left} {
			if child.IsExotic() {
				continue
			}
			p := new(big.Int).Lsh(key, 1)
			if i == 0 {
				p.SetBit(p, 0, 1)
			}
			stack = append(stack, dictFrame{c: child, prefix: p, width: rest - 1})
		}
	}
	return out, nil
}

// LoadDict reads a non-empty dictionary whose root is the next ref of s.
func LoadDict[V any](s *Slice, keyBits int, load func(*Slice) (V, error)) ([]DictEntry[V], error) {
	root, err := s.LoadRef()
	if err != nil {
		return nil, err
	}
	return DecodeDict(root, keyBits, load)
}

// LoadOptDict reads a possibly empty dictionary: a presence bit and, when
// set, the root ref.
func LoadOptDict[V any](s *Slice, keyBits int, load func(*Slice) (V, error)) ([]DictEntry[V], error) {
	root, err := s.LoadMaybeRef()
	if err != nil {
		return nil, err
	}
	return DecodeDict(root, keyBits, load)
}
