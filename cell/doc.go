// Package cell implements the TON cell: an immutable node of up to 1023 bits
// and up to 4 ordered references, content addressed by a recursive SHA-256
// representation hash.
//
// Cells are built with a Builder and read back with a Slice. Because a Builder
// can only reference cells that already exist, every graph built through the
// public API is acyclic; Sort still verifies this before linearizing a graph
// for serialization.
//
// The package also holds the HashmapE dictionary codec (EncodeDict,
// DecodeDict), which stores a fixed key width map as a label compressed binary
// trie of cells.
package cell
