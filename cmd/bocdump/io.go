package main

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
)

const (
	encAuto   = "auto"
	encBinary = "binary"
	encHex    = "hex"
	encBase64 = "base64"
)

var (
	zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}
	bocMagics = [][]byte{
		{0xB5, 0xEE, 0x9C, 0x72},
		{0x68, 0xFF, 0x65, 0xF3},
		{0xAC, 0xC3, 0xA7, 0x28},
	}
)

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

func writeOutput(path string, stdout io.Writer, data []byte) error {
	if path == "-" {
		_, err := stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func decompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	defer dec.Close()
	return dec.DecodeAll(data, nil)
}

func compress(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil), nil
}

func isBOC(data []byte) bool {
	for _, m := range bocMagics {
		if bytes.HasPrefix(data, m) {
			return true
		}
	}
	return false
}

// decodeText turns the raw input into BOC bytes. In auto mode binary is
// recognised by its magic, then hex is tried before base64.
func decodeText(data []byte, encoding string) ([]byte, error) {
	if bytes.HasPrefix(data, zstdMagic) {
		var err error
		if data, err = decompress(data); err != nil {
			return nil, err
		}
	}

	switch encoding {
	case encBinary:
		return data, nil
	case encHex:
		return hex.DecodeString(strings.Join(strings.Fields(string(data)), ""))
	case encBase64:
		return base64.StdEncoding.DecodeString(strings.TrimSpace(string(data)))
	}

	if isBOC(data) {
		return data, nil
	}
	text := strings.Join(strings.Fields(string(data)), "")
	if b, err := hex.DecodeString(text); err == nil {
		return b, nil
	}
	if b, err := base64.StdEncoding.DecodeString(text); err == nil {
		return b, nil
	}
	return nil, errors.New("input is not a binary, hex or base64 BOC")
}

func encodeText(data []byte, encoding string) []byte {
	switch encoding {
	case encHex:
		return []byte(strings.ToUpper(hex.EncodeToString(data)) + "\n")
	case encBase64:
		return []byte(base64.StdEncoding.EncodeToString(data) + "\n")
	}
	return data
}
