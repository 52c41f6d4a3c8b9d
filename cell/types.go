package cell

import (
	"errors"
	"fmt"

	"github.com/forestrie/go-bagofcells/bitstring"
)

const (
	// MaxBits is the payload capacity of an ordinary cell.
	MaxBits = 1023
	// MaxExoticBits is the payload capacity of an exotic cell; the kind
	// discriminant takes the first 8 bits of the serialized payload.
	MaxExoticBits = MaxBits - 8
	// MaxRefs is the maximum number of child references of any cell.
	MaxRefs = 4
	// HashBytes is the width of a cell representation hash (SHA-256).
	HashBytes = 32
	// MaxDepth is the deepest a cell may be; depth is serialized in 16
	// bits but the protocol limits it further.
	MaxDepth = 1024
)

var (
	ErrCapacityExceeded = bitstring.ErrCapacityExceeded
	ErrOutOfRange       = bitstring.ErrOutOfRange

	ErrBuilderClosed     = errors.New("cell: builder already closed")
	ErrNilRef            = errors.New("cell: nil reference")
	ErrNotADag           = errors.New("cell: reference graph is not acyclic")
	ErrInvalidExoticKind = errors.New("cell: invalid exotic cell kind")
	ErrDictionaryShape   = errors.New("cell: malformed dictionary")
	ErrDataRemaining     = errors.New("cell: unread data remains in slice")
)

// Kind discriminates ordinary cells from the exotic kinds. For exotic cells
// the value is the discriminant byte that prefixes the serialized payload.
type Kind uint8

const (
	Ordinary         Kind = 0
	PrunedBranch     Kind = 1
	LibraryReference Kind = 2
	MerkleProof      Kind = 3
	MerkleUpdate     Kind = 4
)

func (k Kind) IsExotic() bool { return k != Ordinary }

func (k Kind) String() string {
	switch k {
	case Ordinary:
		return "ordinary"
	case PrunedBranch:
		return "pruned_branch"
	case LibraryReference:
		return "library_reference"
	case MerkleProof:
		return "merkle_proof"
	case MerkleUpdate:
		return "merkle_update"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// ParseExoticKind maps a serialized discriminant byte to its Kind.
func ParseExoticKind(b byte) (Kind, error) {
	k := Kind(b)
	if k < PrunedBranch || k > MerkleUpdate {
		return 0, fmt.Errorf("%w: discriminant %d", ErrInvalidExoticKind, b)
	}
	return k, nil
}

func (k Kind) maxBits() int {
	if k.IsExotic() {
		return MaxExoticBits
	}
	return MaxBits
}
