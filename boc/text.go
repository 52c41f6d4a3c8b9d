package boc

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/forestrie/go-bagofcells/cell"
)

// FromHex decodes a hex encoded BOC. Whitespace is ignored and either case
// is accepted.
func FromHex(s string, opts ...Option) (*cell.Cell, error) {
	data, err := hex.DecodeString(strings.Join(strings.Fields(s), ""))
	if err != nil {
		return nil, fmt.Errorf("%w: hex: %w", ErrMalformedHeader, err)
	}
	return Deserialize(data, opts...)
}

// FromBase64 decodes a standard (padded) base64 BOC, the form used by most
// TON tooling.
func FromBase64(s string, opts ...Option) (*cell.Cell, error) {
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%w: base64: %w", ErrMalformedHeader, err)
	}
	return Deserialize(data, opts...)
}

// ToHex serializes root and returns upper case hex.
func ToHex(root *cell.Cell, opts ...Option) (string, error) {
	data, err := Serialize(root, opts...)
	if err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(data)), nil
}

func ToBase64(root *cell.Cell, opts ...Option) (string, error) {
	data, err := Serialize(root, opts...)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}
