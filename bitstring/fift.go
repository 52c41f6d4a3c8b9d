package bitstring

import (
	"fmt"
	"strings"
)

const hexDigits = "0123456789ABCDEF"

// String renders the bits in fift hex form: "A6_" for 101001.
func (b *BitString) String() string {
	var sb strings.Builder
	nibbles := b.length / 4
	for i := 0; i < nibbles; i++ {
		sb.WriteByte(hexDigits[b.nibble(i*4, 4)])
	}
	rem := b.length - nibbles*4
	if rem == 0 {
		return sb.String()
	}
	// partial nibble: the remaining bits, a terminator, zero fill
	v := b.nibble(nibbles*4, rem)<<uint(4-rem) | 1<<uint(3-rem)
	sb.WriteByte(hexDigits[v])
	sb.WriteByte('_')
	return sb.String()
}

func (b *BitString) nibble(from, n int) byte {
	var v byte
	for i := 0; i < n; i++ {
		v <<= 1
		if b.Bit(from + i) {
			v |= 1
		}
	}
	return v
}

// ParseFift parses the fift hex form produced by String. The result has a
// capacity equal to its length.
func ParseFift(s string) (*BitString, error) {
	topped := strings.HasSuffix(s, "_")
	s = strings.TrimSuffix(s, "_")
	n := len(s) * 4
	if n == 0 && topped {
		return nil, fmt.Errorf("%w: %q", ErrBadFiftHex, s+"_")
	}
	tmp := New(n)
	for i := 0; i < len(s); i++ {
		v := strings.IndexByte(hexDigits, upper(s[i]))
		if v < 0 {
			return nil, fmt.Errorf("%w: %q", ErrBadFiftHex, s)
		}
		for j := 3; j >= 0; j-- {
			tmp.appendBit((v>>uint(j))&1 == 1)
		}
	}
	if topped {
		for n > 0 && !tmp.Bit(n-1) {
			n--
		}
		if n == 0 {
			return nil, fmt.Errorf("%w: missing terminator", ErrBadFiftHex)
		}
		n--
	}
	return NewReader(tmp).ReadBits(n)
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}
