package bitstring

/*

# Bit strings for TON cell payloads

This package provides the fixed-capacity, append-only bit sequence that backs
every cell payload, plus an independent read cursor over it.

It follows the same primitives-first style as the rest of the module:

- explicit bit numbering (bit 0 is the MSB of byte 0)
- writes are all-or-nothing: a failing write leaves the string untouched
- reads go through a separate Reader so the written length never moves

## Integer encodings

	uint(w)    w bits, big-endian, MSB first
	int(w)     two's complement over w bits (sign bit first)
	varuint(h) h-bit byte length L, then L big-endian magnitude bytes
	coins      varuint(4)

Zero may be written into a zero-width uint field; it writes nothing.

## Top-up form

The canonical byte form of a bit string (hashed and put on the wire) is padded
to a byte boundary by a single 1 bit followed by zero bits. A string whose
length is already a multiple of 8 is not padded. The wire descriptor records
which case applies, so the inverse needs that flag to strip the terminator.

	101001      -> 1010 0110      (0xA6)
	10100110    -> 1010 0110      (0xA6, aligned, no terminator)

## Text form

String renders the fift hex convention: whole nibbles print as hex, a partial
trailing nibble is topped up to 4 bits and marked with a trailing underscore.

	101001 -> "A6_"

*/
