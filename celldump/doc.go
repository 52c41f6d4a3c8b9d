// Package celldump converts a cell DAG to and from a flat, encoder neutral
// record form, and encodes that form as JSON, CBOR or YAML.
//
// A Dump lists each distinct cell once, in the same order the BOC
// serializer writes them, with references given as hashes. Hashes are
// recomputed when a dump is turned back into cells, so a dump that was
// edited inconsistently is rejected rather than silently producing a
// different DAG.
package celldump
