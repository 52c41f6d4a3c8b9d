package celldump

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	JSON Format = "json"
	CBOR Format = "cbor"
	YAML Format = "yaml"
)

// encMode writes Core Deterministic CBOR, so the same DAG always gives the
// same bytes.
var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("celldump: CBOR encoder initialization failed: " + err.Error())
	}
}

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case JSON, CBOR, YAML:
		return f, nil
	}
	return "", fmt.Errorf("%w: unknown format %q", ErrInvalidDump, s)
}

// Marshal encodes d. JSON output is indented.
func (d *Dump) Marshal(f Format) ([]byte, error) {
	switch f {
	case JSON:
		return json.MarshalIndent(d, "", "  ")
	case CBOR:
		return encMode.Marshal(d)
	case YAML:
		return yaml.Marshal(d)
	}
	return nil, fmt.Errorf("%w: unknown format %q", ErrInvalidDump, f)
}

func Unmarshal(f Format, data []byte) (*Dump, error) {
	var d Dump
	var err error
	switch f {
	case JSON:
		err = json.Unmarshal(data, &d)
	case CBOR:
		err = cbor.Unmarshal(data, &d)
	case YAML:
		err = yaml.Unmarshal(data, &d)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", ErrInvalidDump, f)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidDump, f, err)
	}
	return &d, nil
}
