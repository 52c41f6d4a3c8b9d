package bitstring

import "errors"

var (
	ErrCapacityExceeded = errors.New("bitstring: capacity exceeded")
	ErrOutOfRange       = errors.New("bitstring: read past end of data")
	ErrValueOutOfRange  = errors.New("bitstring: value does not fit the field width")
	ErrBadTopUp         = errors.New("bitstring: top-up terminator missing")
	ErrBadFiftHex       = errors.New("bitstring: invalid fift hex")
)
