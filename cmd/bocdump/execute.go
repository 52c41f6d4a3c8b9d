package main

import (
	"bytes"
	"fmt"
	"io"

	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/forestrie/go-bagofcells/boc"
	"github.com/forestrie/go-bagofcells/cell"
	"github.com/forestrie/go-bagofcells/celldump"
)

func (c *config) execute(log logger.Logger, stdin io.Reader, stdout io.Writer) error {
	if err := c.validate(); err != nil {
		return err
	}

	raw, err := readInput(c.in, stdin)
	if err != nil {
		return err
	}
	data, err := decodeText(raw, c.encoding)
	if err != nil {
		return err
	}

	roots, err := boc.DeserializeAll(data, boc.WithLogger(log))
	if err != nil {
		return err
	}
	log.Infof("decoded %d root(s) from %d bytes", len(roots), len(data))

	var out []byte
	if c.reserialize {
		out, err = c.serialize(log, roots)
	} else {
		out, err = c.dump(roots)
	}
	if err != nil {
		return err
	}
	return writeOutput(c.out, stdout, out)
}

func (c *config) serialize(log logger.Logger, roots []*cell.Cell) ([]byte, error) {
	if len(roots) != 1 {
		return nil, fmt.Errorf("can only reserialize a single root, have %d", len(roots))
	}
	data, err := boc.Serialize(roots[0],
		boc.WithIndex(c.index),
		boc.WithCRC32C(c.crc32c),
		boc.WithCacheBits(c.cacheBits),
		boc.WithFlags(c.flags),
		boc.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}
	if c.compress {
		if data, err = compress(data); err != nil {
			return nil, err
		}
		// compressed output stays binary
		return data, nil
	}
	return encodeText(data, c.outEncoding), nil
}

func (c *config) dump(roots []*cell.Cell) ([]byte, error) {
	if c.format == "tree" {
		var buf bytes.Buffer
		for i, r := range roots {
			h := r.Hash()
			fmt.Fprintf(&buf, "root %d %x\n%s", i, h, r.String())
		}
		return buf.Bytes(), nil
	}

	f, err := celldump.ParseFormat(c.format)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	for _, r := range roots {
		d, err := celldump.FromCell(r)
		if err != nil {
			return nil, err
		}
		b, err := d.Marshal(f)
		if err != nil {
			return nil, err
		}
		buf.Write(b)
		if f != celldump.CBOR {
			buf.WriteByte('\n')
		}
	}
	return buf.Bytes(), nil
}
