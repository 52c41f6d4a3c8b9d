package cell

import (
	"strconv"
	"strings"
)

// String renders the DAG under c in the fift dump style, one cell per line,
// children indented by one space per level:
//
//	x{0F}
//	 x{A6_}
//	 x{A6_} ^#1
//
// Exotic cells are prefixed with their kind. Each distinct cell is expanded
// once; later references to it print its bits followed by ^#n, n being the
// position of its first appearance among the expanded cells (root is 0).
func (c *Cell) String() string {
	type item struct {
		c      *Cell
		indent int
	}
	var sb strings.Builder
	first := map[[HashBytes]byte]int{}
	stack := []item{{c: c}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		sb.WriteString(strings.Repeat(" ", it.indent))
		if it.c.kind.IsExotic() {
			sb.WriteString(it.c.kind.String())
			sb.WriteByte(' ')
		}
		sb.WriteString("x{")
		sb.WriteString(it.c.bits.String())
		sb.WriteByte('}')

		h := it.c.Hash()
		if n, seen := first[h]; seen {
			sb.WriteString(" ^#")
			sb.WriteString(strconv.Itoa(n))
			sb.WriteByte('\n')
			continue
		}
		first[h] = len(first)
		sb.WriteByte('\n')

		for i := len(it.c.refs) - 1; i >= 0; i-- {
			stack = append(stack, item{c: it.c.refs[i], indent: it.indent + 1})
		}
	}
	return sb.String()
}
