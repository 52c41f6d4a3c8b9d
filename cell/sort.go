package cell

import "fmt"

// TableEntry is one row of a topologically sorted cell table. Refs holds the
// table indices of the cell's children, each strictly greater than the row's
// own index.
type TableEntry struct {
	Cell *Cell
	Refs []int
}

// Table is the flat, serializable form of the DAG under one root. The root is
// row 0 and every reference points forward.
type Table []TableEntry

const (
	grey  = 1
	black = 2
)

// Sort linearizes the cells reachable from root so that every reference
// points to a higher index.
//
// Structurally identical cells (equal hashes) collapse to a single row. The
// order is the reverse post-order of a depth-first walk that visits children
// last-to-first, so a plain tree comes out root first and left to right.
//
// A reference cycle fails with ErrNotADag. Cycles are detected on cell
// identity before any hash is computed, as hashing a cyclic graph has no
// meaning.
func Sort(root *Cell) (Table, error) {
	if root == nil {
		return nil, ErrNilRef
	}
	if err := checkAcyclic(root); err != nil {
		return nil, err
	}

	root.resolve()

	state := map[[HashBytes]byte]uint8{}
	var post []*Cell
	stack := []frame{{c: root, next: len(root.refs) - 1}}
	state[root.hash] = grey
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next >= 0 {
			r := top.c.refs[top.next]
			top.next--
			switch state[r.hash] {
			case grey:
				return nil, fmt.Errorf("%w: hash %x revisited on the walk stack", ErrNotADag, r.hash[:4])
			case black:
				continue
			}
			state[r.hash] = grey
			stack = append(stack, frame{c: r, next: len(r.refs) - 1})
			continue
		}
		state[top.c.hash] = black
		post = append(post, top.c)
		stack = stack[:len(stack)-1]
	}

	index := make(map[[HashBytes]byte]int, len(post))
	table := make(Table, len(post))
	for i := range post {
		c := post[len(post)-1-i]
		index[c.hash] = i
		table[i].Cell = c
	}
	for i := range table {
		c := table[i].Cell
		refs := make([]int, len(c.refs))
		for j, r := range c.refs {
			refs[j] = index[r.hash]
			if refs[j] <= i {
				return nil, fmt.Errorf("%w: row %d refers back to row %d", ErrNotADag, i, refs[j])
			}
		}
		table[i].Refs = refs
	}
	return table, nil
}

// checkAcyclic walks the reachable graph by identity with an explicit stack.
func checkAcyclic(root *Cell) error {
	color := map[*Cell]uint8{root: grey}
	stack := []frame{{c: root}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next < len(top.c.refs) {
			r := top.c.refs[top.next]
			top.next++
			switch color[r] {
			case grey:
				return fmt.Errorf("%w: cell reachable from itself", ErrNotADag)
			case black:
				continue
			}
			color[r] = grey
			stack = append(stack, frame{c: r})
			continue
		}
		color[top.c] = black
		stack = stack[:len(stack)-1]
	}
	return nil
}

// Cells returns the cells of the table in order.
func (t Table) Cells() []*Cell {
	out := make([]*Cell, len(t))
	for i := range t {
		out[i] = t[i].Cell
	}
	return out
}
