package cell

import (
	"fmt"
	"math/big"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storeU32(b *Builder, v uint32) error { return b.StoreUint(uint64(v), 32) }

func loadU32(s *Slice) (uint32, error) {
	v, err := s.LoadUint(32)
	return uint32(v), err
}

func storeU8(b *Builder, v uint8) error { return b.StoreUint(uint64(v), 8) }

func loadU8(s *Slice) (uint8, error) {
	v, err := s.LoadUint(8)
	return uint8(v), err
}

func randomEntries(rng *rand.Rand, keyBits, n int) []DictEntry[uint32] {
	if keyBits < 31 && n > 1<<keyBits {
		n = 1 << keyBits
	}
	seen := map[string]bool{}
	var out []DictEntry[uint32]
	for len(out) < n {
		var k *big.Int
		if keyBits < 31 && n == 1<<keyBits {
			k = big.NewInt(int64(len(out)))
		} else {
			raw := make([]byte, (keyBits+7)/8)
			rng.Read(raw)
			k = new(big.Int).SetBytes(raw)
			k.Rsh(k, uint(len(raw)*8-keyBits))
		}
		if seen[k.String()] {
			continue
		}
		seen[k.String()] = true
		out = append(out, DictEntry[uint32]{Key: k, Value: rng.Uint32()})
	}
	return out
}

func asMap[V any](entries []DictEntry[V]) map[string]V {
	m := make(map[string]V, len(entries))
	for _, e := range entries {
		m[e.Key.String()] = e.Value
	}
	return m
}

func TestDictRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, keyBits := range []int{1, 8, 16, 32, 256} {
		for _, size := range []int{0, 1, 2, 1000} {
			t.Run(fmt.Sprintf("n=%d/size=%d", keyBits, size), func(t *testing.T) {
				entries := randomEntries(rng, keyBits, size)

				root, err := EncodeDict(entries, keyBits, storeU32)
				require.NoError(t, err)
				if len(entries) == 0 {
					require.Nil(t, root)
				}

				got, err := DecodeDict(root, keyBits, loadU32)
				require.NoError(t, err)
				assert.Len(t, got, len(entries))
				assert.Equal(t, asMap(entries), asMap(got))
			})
		}
	}
}

func TestDictEncodingIsOrderIndependent(t *testing.T) {
	entries := EntriesFromMap(map[uint64]uint32{10: 1, 200: 2, 3: 3, 77: 4})
	reversed := make([]DictEntry[uint32], len(entries))
	for i, e := range entries {
		reversed[len(entries)-1-i] = e
	}
	a, err := EncodeDict(entries, 16, storeU32)
	require.NoError(t, err)
	b, err := EncodeDict(reversed, 16, storeU32)
	require.NoError(t, err)
	assert.Equal(t, a.Hash(), b.Hash())
}

func TestDictLabelEncodings(t *testing.T) {
	t.Run("single key uses a long label", func(t *testing.T) {
		root, err := EncodeDict(EntriesFromMap(map[uint64]uint8{5: 0xAA}), 8, storeU8)
		require.NoError(t, err)
		// 10 1000 00000101 10101010
		assert.Equal(t, "A016AA_", root.Bits().String())
		assert.Equal(t, 0, root.RefCount())
	})

	t.Run("fork with same labels", func(t *testing.T) {
		root, err := EncodeDict(EntriesFromMap(map[uint64]uint8{0: 1, 255: 2}), 8, storeU8)
		require.NoError(t, err)
		// empty short label, then two refs
		assert.Equal(t, "2_", root.Bits().String())
		require.Equal(t, 2, root.RefCount())

		left, err := root.Ref(0)
		require.NoError(t, err)
		right, err := root.Ref(1)
		require.NoError(t, err)
		// 11 0 111 00000001 and 11 1 111 00000010
		assert.Equal(t, "DC06_", left.Bits().String())
		assert.Equal(t, "FC0A_", right.Bits().String())

		got, err := DecodeDict(root, 8, loadU8)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, int64(0), got[0].Key.Int64())
		assert.Equal(t, uint8(1), got[0].Value)
		assert.Equal(t, int64(255), got[1].Key.Int64())
		assert.Equal(t, uint8(2), got[1].Value)
	})
}

func TestDictEncodeRejectsBadKeys(t *testing.T) {
	_, err := EncodeDict([]DictEntry[uint8]{{Key: big.NewInt(1)}}, 0, storeU8)
	require.ErrorIs(t, err, ErrDictionaryShape)

	_, err = EncodeDict([]DictEntry[uint8]{{Key: big.NewInt(256)}}, 8, storeU8)
	require.ErrorIs(t, err, ErrDictionaryShape)

	_, err = EncodeDict([]DictEntry[uint8]{{Key: big.NewInt(-1)}}, 8, storeU8)
	require.ErrorIs(t, err, ErrDictionaryShape)

	_, err = EncodeDict([]DictEntry[uint8]{{Key: big.NewInt(4)}, {Key: big.NewInt(4)}}, 8, storeU8)
	require.ErrorIs(t, err, ErrDictionaryShape)
}

func TestDictDecodeRejectsMalformedTries(t *testing.T) {
	t.Run("long label wider than the key", func(t *testing.T) {
		b := NewBuilder()
		require.NoError(t, b.StoreUint(0b10, 2))
		require.NoError(t, b.StoreUint(7, 3))
		require.NoError(t, b.StoreUint(0, 7))
		root, err := b.EndCell()
		require.NoError(t, err)
		_, err = DecodeDict(root, 4, loadU8)
		require.ErrorIs(t, err, ErrDictionaryShape)
	})
	t.Run("fork without refs", func(t *testing.T) {
		b := NewBuilder()
		require.NoError(t, b.StoreUint(0, 2))
		root, err := b.EndCell()
		require.NoError(t, err)
		_, err = DecodeDict(root, 8, loadU8)
		require.ErrorIs(t, err, ErrDictionaryShape)
	})
	t.Run("truncated label", func(t *testing.T) {
		b := NewBuilder()
		require.NoError(t, b.StoreBit(false))
		require.NoError(t, b.StoreBit(true))
		root, err := b.EndCell()
		require.NoError(t, err)
		_, err = DecodeDict(root, 8, loadU8)
		require.ErrorIs(t, err, ErrDictionaryShape)
	})
}

func TestDictDecodeSkipsPrunedBranches(t *testing.T) {
	leaf := NewBuilder()
	require.NoError(t, leaf.StoreUint(0, 2)) // empty short label, no key bits left
	require.NoError(t, storeU8(leaf, 42))
	left, err := leaf.EndCell()
	require.NoError(t, err)

	pb := NewBuilder()
	require.NoError(t, pb.StoreUint(0x0102, 16))
	pruned, err := pb.EndExoticCell(PrunedBranch)
	require.NoError(t, err)

	fork := NewBuilder()
	require.NoError(t, fork.StoreUint(0, 2))
	require.NoError(t, fork.StoreRef(left))
	require.NoError(t, fork.StoreRef(pruned))
	root, err := fork.EndCell()
	require.NoError(t, err)

	got, err := DecodeDict(root, 1, loadU8)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(0), got[0].Key.Int64())
	assert.Equal(t, uint8(42), got[0].Value)
}

func TestDictEmbeddedInParent(t *testing.T) {
	entries := EntriesFromMap(map[uint64]uint32{1: 100, 2: 200})
	root, err := EncodeDict(entries, 32, storeU32)
	require.NoError(t, err)

	b := NewBuilder()
	require.NoError(t, b.StoreOptDict(nil))
	require.NoError(t, b.StoreOptDict(root))
	require.NoError(t, b.StoreDict(root))
	require.ErrorIs(t, b.StoreDict(nil), ErrDictionaryShape)
	parent, err := b.EndCell()
	require.NoError(t, err)

	s := parent.BeginParse()
	empty, err := LoadOptDict(s, 32, loadU32)
	require.NoError(t, err)
	assert.Empty(t, empty)

	opt, err := LoadOptDict(s, 32, loadU32)
	require.NoError(t, err)
	assert.Equal(t, asMap(entries), asMap(opt))

	plain, err := LoadDict(s, 32, loadU32)
	require.NoError(t, err)
	assert.Equal(t, asMap(entries), asMap(plain))

	require.NoError(t, s.EndParse())
}

func TestDictValueErrorsPropagate(t *testing.T) {
	boom := fmt.Errorf("boom")
	_, err := EncodeDict(EntriesFromMap(map[uint64]uint8{1: 1}), 8, func(*Builder, uint8) error { return boom })
	require.ErrorIs(t, err, boom)

	root, err := EncodeDict(EntriesFromMap(map[uint64]uint8{1: 1}), 8, storeU8)
	require.NoError(t, err)
	_, err = DecodeDict(root, 8, func(*Slice) (uint8, error) { return 0, boom })
	require.ErrorIs(t, err, boom)
}
