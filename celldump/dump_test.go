package celldump

import (
	"bytes"
	"testing"

	"github.com/forestrie/go-bagofcells/cell"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func mustCell(t *testing.T, kind cell.Kind, fn func(b *cell.Builder) error) *cell.Cell {
	t.Helper()
	b := cell.NewBuilder()
	assert.NilError(t, fn(b))
	var c *cell.Cell
	var err error
	if kind == cell.Ordinary {
		c, err = b.EndCell()
	} else {
		c, err = b.EndExoticCell(kind)
	}
	assert.NilError(t, err)
	return c
}

func sample(t *testing.T) *cell.Cell {
	t.Helper()
	shared := mustCell(t, cell.Ordinary, func(b *cell.Builder) error { return b.StoreUint(0x29, 6) })
	lib := mustCell(t, cell.LibraryReference, func(b *cell.Builder) error { return b.StoreUint(0xBEEF, 16) })
	mid := mustCell(t, cell.Ordinary, func(b *cell.Builder) error {
		if err := b.StoreRef(shared); err != nil {
			return err
		}
		return b.StoreRef(lib)
	})
	return mustCell(t, cell.Ordinary, func(b *cell.Builder) error {
		if err := b.StoreUint(0x0F, 8); err != nil {
			return err
		}
		if err := b.StoreRef(mid); err != nil {
			return err
		}
		return b.StoreRef(shared)
	})
}

func TestFromCell(t *testing.T) {
	root := sample(t)
	d, err := FromCell(root)
	assert.NilError(t, err)

	// shared cell listed once
	assert.Check(t, is.Len(d.Cells, 4))
	assert.Equal(t, d.Root, d.Cells[0].Hash)
	assert.Equal(t, d.Cells[0].Bits, "0F")
	assert.Equal(t, d.Cells[0].Depth, 2)
	assert.Check(t, is.Len(d.Cells[0].Refs, 2))

	kinds := map[string]int{}
	for _, n := range d.Cells {
		kinds[n.Kind]++
	}
	assert.DeepEqual(t, kinds, map[string]int{"ordinary": 3, "library_reference": 1})
}

func TestRoundTripEveryFormat(t *testing.T) {
	root := sample(t)
	d, err := FromCell(root)
	assert.NilError(t, err)

	for _, f := range []Format{JSON, CBOR, YAML} {
		t.Run(string(f), func(t *testing.T) {
			data, err := d.Marshal(f)
			assert.NilError(t, err)

			back, err := Unmarshal(f, data)
			assert.NilError(t, err)

			got, err := back.ToCell()
			assert.NilError(t, err)
			assert.Equal(t, got.Hash(), root.Hash())
		})
	}
}

func TestCBORIsDeterministic(t *testing.T) {
	a, err := FromCell(sample(t))
	assert.NilError(t, err)
	b, err := FromCell(sample(t))
	assert.NilError(t, err)

	x, err := a.Marshal(CBOR)
	assert.NilError(t, err)
	y, err := b.Marshal(CBOR)
	assert.NilError(t, err)
	assert.Check(t, bytes.Equal(x, y))
}

func TestToCellRejectsInconsistentDumps(t *testing.T) {
	fresh := func() *Dump {
		d, err := FromCell(sample(t))
		assert.NilError(t, err)
		return d
	}

	d := fresh()
	d.Cells[0].Bits = "0E"
	_, err := d.ToCell()
	assert.ErrorIs(t, err, ErrHashMismatch)

	d = fresh()
	d.Cells[0].BitLen = 7
	_, err = d.ToCell()
	assert.ErrorIs(t, err, ErrInvalidDump)

	d = fresh()
	d.Cells[1].Kind = "special"
	_, err = d.ToCell()
	assert.ErrorIs(t, err, ErrInvalidDump)

	// a child listed before its parent
	d = fresh()
	d.Cells[0], d.Cells[1] = d.Cells[1], d.Cells[0]
	_, err = d.ToCell()
	assert.ErrorIs(t, err, ErrInvalidDump)

	d = fresh()
	d.Root = "00"
	_, err = d.ToCell()
	assert.ErrorIs(t, err, ErrInvalidDump)

	_, err = (&Dump{}).ToCell()
	assert.ErrorIs(t, err, ErrInvalidDump)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("YAML")
	assert.NilError(t, err)
	assert.Equal(t, f, YAML)

	_, err = ParseFormat("xml")
	assert.ErrorIs(t, err, ErrInvalidDump)

	_, err = Unmarshal(JSON, []byte("{"))
	assert.ErrorIs(t, err, ErrInvalidDump)
}
