package main

import (
	"fmt"

	"github.com/spf13/pflag"
)

type config struct {
	in       string
	out      string
	encoding string
	format   string
	logLevel string

	reserialize bool
	outEncoding string
	compress    bool
	index       bool
	crc32c      bool
	cacheBits   bool
	flags       uint8
}

func (c *config) addFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.in, "in", "i", "-", "input file, - for stdin")
	fs.StringVarP(&c.out, "out", "o", "-", "output file, - for stdout")
	fs.StringVarP(&c.encoding, "encoding", "e", "auto", "input encoding: auto, binary, hex or base64")
	fs.StringVarP(&c.format, "format", "f", "tree", "output format: tree, json, cbor or yaml")
	fs.StringVar(&c.logLevel, "log-level", "INFO", "log level")

	fs.BoolVar(&c.reserialize, "reserialize", false, "write the decoded roots back out as a BOC")
	fs.StringVar(&c.outEncoding, "out-encoding", "binary", "BOC output encoding: binary, hex or base64")
	fs.BoolVar(&c.compress, "zstd", false, "zstd compress the BOC output")
	fs.BoolVar(&c.index, "index", true, "write the cell offset index")
	fs.BoolVar(&c.crc32c, "crc32c", true, "append the crc32c trailer")
	fs.BoolVar(&c.cacheBits, "cache-bits", false, "set the cache bits flag")
	fs.Uint8Var(&c.flags, "flags", 0, "2 bit reserved flags field")
}

func (c *config) validate() error {
	switch c.encoding {
	case encAuto, encBinary, encHex, encBase64:
	default:
		return fmt.Errorf("unknown input encoding %q", c.encoding)
	}
	switch c.outEncoding {
	case encBinary, encHex, encBase64:
	default:
		return fmt.Errorf("unknown output encoding %q", c.outEncoding)
	}
	if c.cacheBits && !c.index {
		return fmt.Errorf("--cache-bits needs --index")
	}
	if c.flags > 3 {
		return fmt.Errorf("--flags must be 0..3, got %d", c.flags)
	}
	return nil
}
