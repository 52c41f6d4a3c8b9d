package boc

/*

# Bag of Cells wire format

A BOC is the flat byte form of a rooted cell DAG. Cells are written in the
order produced by cell.Sort, so every reference index points forward and the
reader can link cells in a single pass from the last cell to the first.

## Layout (all integers big-endian unless noted)

	magic            4   B5EE9C72 (flagged), 68FF65F3 (lean), ACC3A728 (lean+crc)
	flags|size_bytes 1   flagged: idx<<7 | crc<<6 | cache<<5 | flags<<3 | size_bytes
	                     lean:    size_bytes
	offset_bytes     1
	cell_count       size_bytes
	root_count       size_bytes
	absent_count     size_bytes
	total_cells_size offset_bytes
	root_list        root_count * size_bytes
	index            cell_count * offset_bytes   (idx only)
	cells            total_cells_size
	crc32c           4, little-endian            (crc only)

Each cell record is

	d1 d2 [kind] topupped-bits ref-index...

where d1 and d2 are the descriptor bytes described in package cell. The lean
magics always carry an index; the second also carries the checksum.

## Untrusted input

Every declared count is checked against the bytes actually present before
anything is allocated for it, and a decode either returns fully linked roots
or an error; a partially linked DAG is never returned.

*/
