package cell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func node(t *testing.T, v uint64, refs ...*Cell) *Cell {
	t.Helper()
	b := NewBuilder()
	require.NoError(t, b.StoreUint(v, 16))
	for _, r := range refs {
		require.NoError(t, b.StoreRef(r))
	}
	c, err := b.EndCell()
	require.NoError(t, err)
	return c
}

func requireForward(t *testing.T, table Table) {
	t.Helper()
	for i, e := range table {
		require.Len(t, e.Refs, e.Cell.RefCount())
		for j, r := range e.Refs {
			require.Greater(t, r, i)
			ref, err := e.Cell.Ref(j)
			require.NoError(t, err)
			require.Equal(t, ref.Hash(), table[r].Cell.Hash())
		}
	}
}

func TestSortTreeIsRootFirstLeftToRight(t *testing.T) {
	l1 := node(t, 3)
	l2 := node(t, 4)
	left := node(t, 1, l1)
	right := node(t, 2, l2)
	root := node(t, 0, left, right)

	table, err := Sort(root)
	require.NoError(t, err)
	require.Len(t, table, 5)
	requireForward(t, table)

	assert.Same(t, root, table[0].Cell)
	var got []uint64
	for _, c := range table.Cells() {
		v, err := c.BeginParse().LoadUint(16)
		require.NoError(t, err)
		got = append(got, v)
	}
	// a plain tree comes out in pre-order
	assert.Equal(t, []uint64{0, 1, 3, 2, 4}, got)
}

func TestSortDeduplicatesByHash(t *testing.T) {
	// two distinct instances with identical content
	x1 := node(t, 7)
	x2 := node(t, 7)
	shared := node(t, 9)
	a := node(t, 1, x1, shared)
	b := node(t, 2, x2, shared)
	root := node(t, 0, a, b)

	table, err := Sort(root)
	require.NoError(t, err)
	requireForward(t, table)
	assert.Len(t, table, 5)
}

func TestSortSharedSubtreeComesAfterEveryParent(t *testing.T) {
	shared := node(t, 5, node(t, 6))
	mid := node(t, 1, shared)
	root := node(t, 0, shared, mid)

	table, err := Sort(root)
	require.NoError(t, err)
	require.Len(t, table, 4)
	requireForward(t, table)
}

func TestSortRejectsCycles(t *testing.T) {
	t.Run("self reference", func(t *testing.T) {
		c := node(t, 1)
		c.refs = append(c.refs, c)
		_, err := Sort(c)
		require.ErrorIs(t, err, ErrNotADag)
	})
	t.Run("mutual reference", func(t *testing.T) {
		a := node(t, 1)
		b := node(t, 2, a)
		a.refs = append(a.refs, b)
		root := node(t, 0, a)
		_, err := Sort(root)
		require.ErrorIs(t, err, ErrNotADag)
	})
	t.Run("diamond is not a cycle", func(t *testing.T) {
		leaf := node(t, 9)
		root := node(t, 0, node(t, 1, leaf), node(t, 2, leaf))
		_, err := Sort(root)
		require.NoError(t, err)
	})
}

func TestSortNilRoot(t *testing.T) {
	_, err := Sort(nil)
	require.ErrorIs(t, err, ErrNilRef)
}
