package cell

import (
	"crypto/sha256"
	"encoding/binary"
)

// Level is the cell level folded into the first descriptor byte. It is always
// zero: exotic cells are hashed as if they were level 0, which matches the
// existing serialized data this package interoperates with but is not the full
// TON level semantics for pruned branches and merkle cells.
func (c *Cell) Level() int { return 0 }

// Descriptors returns the two descriptor bytes shared by the hash
// representation and the wire format:
//
//	d1 = refs + 8*exotic + 32*level
//	d2 = ceil(L/8) + floor(L/8), L = payload bits (+8 for the kind byte)
func (c *Cell) Descriptors() [2]byte {
	d1 := byte(len(c.refs)) + byte(c.Level()*32)
	l := c.bits.Len()
	if c.kind.IsExotic() {
		d1 += 8
		l += 8
	}
	return [2]byte{d1, byte((l+7)/8 + l/8)}
}

// Payload returns the serialized data bytes: the kind discriminant for exotic
// cells followed by the top-upped bits.
func (c *Cell) Payload() []byte {
	data := c.bits.TopUpped()
	if !c.kind.IsExotic() {
		return data
	}
	return append([]byte{byte(c.kind)}, data...)
}

// Hash returns SHA-256 over
//
//	d1 || d2 || payload || depth_be16(ref)... || hash(ref)...
//
// It is computed once per cell instance.
func (c *Cell) Hash() [HashBytes]byte {
	c.resolve()
	return c.hash
}

// Depth is 0 for a cell without refs, otherwise 1 + the deepest child.
func (c *Cell) Depth() int {
	c.resolve()
	return c.depth
}

// resolve fills the hash and depth of c and every unresolved descendant,
// children first. The traversal uses an explicit stack so that arbitrarily
// deep inputs cannot exhaust the goroutine stack.
func (c *Cell) resolve() {
	if c.ready.Load() {
		return
	}
	for _, x := range unresolvedPostorder(c) {
		x.once.Do(x.fill)
	}
}

type frame struct {
	c    *Cell
	next int
}

func unresolvedPostorder(root *Cell) []*Cell {
	var order []*Cell
	seen := map[*Cell]bool{root: true}
	stack := []frame{{c: root}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next < len(top.c.refs) {
			r := top.c.refs[top.next]
			top.next++
			if r.ready.Load() || seen[r] {
				continue
			}
			seen[r] = true
			stack = append(stack, frame{c: r})
			continue
		}
		order = append(order, top.c)
		stack = stack[:len(stack)-1]
	}
	return order
}

// fill assumes every child is already resolved.
func (c *Cell) fill() {
	h := sha256.New()
	d := c.Descriptors()
	_, _ = h.Write(d[:])
	_, _ = h.Write(c.Payload())

	depth := 0
	var b [2]byte
	for _, r := range c.refs {
		depth = max(depth, r.depth+1)
		binary.BigEndian.PutUint16(b[:], uint16(r.depth))
		_, _ = h.Write(b[:])
	}
	for _, r := range c.refs {
		_, _ = h.Write(r.hash[:])
	}
	h.Sum(c.hash[:0])
	c.depth = depth
	c.ready.Store(true)
}
