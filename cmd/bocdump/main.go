// bocdump decodes a bag of cells and prints it.
//
// Input may be raw bytes, hex or base64, optionally zstd compressed, read
// from a file or stdin. By default each root is printed as a fift style
// tree; --format selects a structured dump (json, cbor or yaml) instead.
// With --reserialize the decoded roots are written back out as a BOC using
// the header flags given on the command line.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		if err == pflag.ErrHelp {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	var cfg config
	flagSet := pflag.NewFlagSet("bocdump", pflag.ContinueOnError)
	cfg.addFlags(flagSet)
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		if cfg.in != "-" || len(rest) > 1 {
			return fmt.Errorf("unexpected argument: %s", rest[len(rest)-1])
		}
		cfg.in = rest[0]
	}

	logger.New(cfg.logLevel)
	defer logger.OnExit()
	log := logger.Sugar.WithServiceName("bocdump")

	return cfg.execute(log, stdin, stdout)
}
